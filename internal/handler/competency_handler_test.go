package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/middleware"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/service"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
)

type competencyServiceMock struct {
	lastAccount string
	lastPeriod  models.Period
	lastFilter  models.CohortFilter
	lastMeta    models.RequestMeta
	summaryErr  error
}

func (m *competencyServiceMock) Summary(ctx context.Context, accountID string, period models.Period) (*models.CompetencySummary, error) {
	m.lastAccount, m.lastPeriod = accountID, period
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	return &models.CompetencySummary{AccountID: accountID, Scores: models.SubScores{Total: 72.5}}, nil
}

func (m *competencyServiceMock) Snapshot(ctx context.Context, accountID string, period models.Period) (*models.CompetencyScore, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "no snapshot")
}

func (m *competencyServiceMock) RecalculateAcademic(ctx context.Context, accountID string, period models.Period, meta models.RequestMeta) (*models.AcademicRecalculation, error) {
	m.lastAccount, m.lastPeriod, m.lastMeta = accountID, period, meta
	return &models.AcademicRecalculation{AccountID: accountID, YearLevel: period.YearLevel, Semester: period.Semester, ScoreAcademic: 30}, nil
}

func (m *competencyServiceMock) EnqueueCohort(ctx context.Context, filter models.CohortFilter, meta models.RequestMeta) (*models.BulkRecalculationResult, error) {
	m.lastFilter = filter
	return &models.BulkRecalculationResult{Filter: filter, Enqueued: 3}, nil
}

type overviewServiceMock struct {
	cached    bool
	threshold *float64
}

func (m *overviewServiceMock) Overview(ctx context.Context, filter models.CohortFilter, threshold *float64) (*models.CohortOverview, bool, error) {
	m.threshold = threshold
	return &models.CohortOverview{Filter: filter, StudentCount: 2}, m.cached, nil
}

type exportServiceMock struct {
	format string
}

func (m *exportServiceMock) Export(ctx context.Context, filter models.CohortFilter, format string, threshold *float64) (*service.ExportFile, error) {
	m.format = format
	if format == "xml" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported format")
	}
	return &service.ExportFile{Filename: "competency_cs.csv", ContentType: "text/csv", Data: []byte("a,b\n")}, nil
}

func newCompetencyTestContext(target string, claims *models.JWTClaims, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	c.Params = params
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func TestCompetencySummaryForSelf(t *testing.T) {
	svc := &competencyServiceMock{}
	h := NewCompetencyHandler(svc, &overviewServiceMock{}, &exportServiceMock{})
	c, w := newCompetencyTestContext("/competency/s1?year=2&sem=1",
		&models.JWTClaims{UserID: "s1", Role: models.RoleStudent}, gin.Params{{Key: "accountId", Value: "s1"}})

	h.Summary(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", svc.lastAccount)
	assert.Equal(t, models.Period{YearLevel: 2, Semester: 1}, svc.lastPeriod)
	assert.Contains(t, w.Body.String(), `"total":72.5`)
}

func TestCompetencySummaryRejectsOtherStudent(t *testing.T) {
	h := NewCompetencyHandler(&competencyServiceMock{}, &overviewServiceMock{}, &exportServiceMock{})
	c, w := newCompetencyTestContext("/competency/s2?year=2&sem=1",
		&models.JWTClaims{UserID: "s1", Role: models.RoleStudent}, gin.Params{{Key: "accountId", Value: "s2"}})

	h.Summary(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCompetencySummaryRequiresPeriod(t *testing.T) {
	h := NewCompetencyHandler(&competencyServiceMock{}, &overviewServiceMock{}, &exportServiceMock{})
	c, w := newCompetencyTestContext("/competency/s1?year=2",
		&models.JWTClaims{UserID: "t1", Role: models.RoleTeacher}, gin.Params{{Key: "accountId", Value: "s1"}})

	h.Summary(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecalculatePassesActor(t *testing.T) {
	svc := &competencyServiceMock{}
	h := NewCompetencyHandler(svc, &overviewServiceMock{}, &exportServiceMock{})
	c, w := newCompetencyTestContext("/competency/recalculate/s1?year=1&sem=2",
		&models.JWTClaims{UserID: "t1", Role: models.RoleTeacher}, gin.Params{{Key: "accountId", Value: "s1"}})
	c.Request.Method = http.MethodPost

	h.Recalculate(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t1", svc.lastMeta.ActorID)
	assert.Contains(t, w.Body.String(), `"score_academic":30`)
}

func TestRecalculateCohortAccepted(t *testing.T) {
	svc := &competencyServiceMock{}
	h := NewCompetencyHandler(svc, &overviewServiceMock{}, &exportServiceMock{})
	c, w := newCompetencyTestContext("/competency/recalculate?major=CS&year=2&sem=1",
		&models.JWTClaims{UserID: "t1", Role: models.RoleTeacher}, nil)

	h.RecalculateCohort(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "CS", svc.lastFilter.Major)
	assert.Contains(t, w.Body.String(), `"enqueued":3`)
}

func TestOverviewReportsCacheHit(t *testing.T) {
	overviews := &overviewServiceMock{cached: true}
	h := NewCompetencyHandler(&competencyServiceMock{}, overviews, &exportServiceMock{})
	c, w := newCompetencyTestContext("/competency/overview?major=CS&year=2&sem=1&threshold=65",
		&models.JWTClaims{UserID: "t1", Role: models.RoleTeacher}, nil)

	h.Overview(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, overviews.threshold)
	assert.Equal(t, 65.0, *overviews.threshold)

	var body struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body.Meta["cache_hit"])
}

func TestOverviewRejectsBadThreshold(t *testing.T) {
	for _, raw := range []string{"abc", "NaN", "nan", "Inf", "-Inf", "+Inf"} {
		t.Run(raw, func(t *testing.T) {
			overviews := &overviewServiceMock{}
			h := NewCompetencyHandler(&competencyServiceMock{}, overviews, &exportServiceMock{})
			c, w := newCompetencyTestContext("/competency/overview?major=CS&year=2&sem=1&threshold="+raw,
				&models.JWTClaims{UserID: "t1", Role: models.RoleTeacher}, nil)

			h.Overview(c)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
			assert.Nil(t, overviews.threshold)
		})
	}
}

func TestExportWritesAttachment(t *testing.T) {
	exports := &exportServiceMock{}
	h := NewCompetencyHandler(&competencyServiceMock{}, &overviewServiceMock{}, exports)
	c, w := newCompetencyTestContext("/competency/export?major=CS&year=2&sem=1",
		&models.JWTClaims{UserID: "t1", Role: models.RoleTeacher}, nil)

	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exports.format)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "competency_cs.csv")
	assert.Equal(t, "a,b\n", w.Body.String())

	c, w = newCompetencyTestContext("/competency/export?major=CS&year=2&sem=1&format=xml",
		&models.JWTClaims{UserID: "t1", Role: models.RoleTeacher}, nil)
	h.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
