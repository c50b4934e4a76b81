package service

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
)

type fakeScorer struct {
	students []models.Account
	totals   map[string]float64
	failFor  string
	calls    atomic.Int32
}

func (f *fakeScorer) CohortStudents(ctx context.Context, major string, yearLevel int) ([]models.Account, error) {
	var out []models.Account
	for _, s := range f.students {
		if s.Major != nil && *s.Major == major && s.YearLevel != nil && *s.YearLevel == yearLevel {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeScorer) SummaryFor(ctx context.Context, account *models.Account, period models.Period) (*models.CompetencySummary, error) {
	f.calls.Add(1)
	if account.ID == f.failFor {
		return nil, errors.New("records unavailable")
	}
	total := f.totals[account.ID]
	return &models.CompetencySummary{AccountID: account.ID, Scores: models.SubScores{Academic: total, Total: total}}, nil
}

func newFakeScorer() *fakeScorer {
	return &fakeScorer{
		students: []models.Account{
			*student("s3", "S003", "CS", 2),
			*student("s1", "S001", "CS", 2),
			*student("s2", "S002", "CS", 2),
		},
		totals: map[string]float64{"s1": 80, "s2": 45, "s3": 61},
	}
}

func TestOverviewAggregatesAndSorts(t *testing.T) {
	scorer := newFakeScorer()
	svc := NewOverviewService(scorer, nil, OverviewConfig{Threshold: 50, Concurrency: 2}, nil)

	overview, cached, err := svc.Overview(context.Background(), models.CohortFilter{Major: "CS", YearLevel: 2, Semester: 1}, nil)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 3, overview.StudentCount)
	require.Len(t, overview.Rows, 3)
	assert.Equal(t, "S001", overview.Rows[0].StudentCode)
	assert.Equal(t, "S003", overview.Rows[2].StudentCode)
	assert.Equal(t, 62.0, overview.Averages.Total)
	assert.Equal(t, 1, overview.BelowCount)
	assert.True(t, overview.Rows[1].BelowTarget)
}

func TestOverviewServedFromCache(t *testing.T) {
	scorer := newFakeScorer()
	metrics := NewMetricsService()
	cache := NewCacheService(newMemoryCacheRepo(), metrics, time.Minute, nil, true)
	svc := NewOverviewService(scorer, cache, OverviewConfig{Threshold: 50}, nil)
	filter := models.CohortFilter{Major: "CS", YearLevel: 2, Semester: 1}

	_, cached, err := svc.Overview(context.Background(), filter, nil)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.EqualValues(t, 3, scorer.calls.Load())

	high := 70.0
	overview, cached, err := svc.Overview(context.Background(), filter, &high)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.EqualValues(t, 3, scorer.calls.Load())
	assert.Equal(t, 70.0, overview.Threshold)
	assert.Equal(t, 2, overview.BelowCount)

	snap := metrics.Snapshot()
	assert.EqualValues(t, 1, snap.CacheHits)
	assert.EqualValues(t, 1, snap.CacheMisses)
}

func TestOverviewFailsWhenAnyStudentFails(t *testing.T) {
	scorer := newFakeScorer()
	scorer.failFor = "s2"
	svc := NewOverviewService(scorer, nil, OverviewConfig{}, nil)

	_, _, err := svc.Overview(context.Background(), models.CohortFilter{Major: "CS", YearLevel: 2, Semester: 1}, nil)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestOverviewValidatesInput(t *testing.T) {
	svc := NewOverviewService(newFakeScorer(), nil, OverviewConfig{}, nil)

	_, _, err := svc.Overview(context.Background(), models.CohortFilter{YearLevel: 2, Semester: 1}, nil)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	bad := 120.0
	_, _, err = svc.Overview(context.Background(), models.CohortFilter{Major: "CS", YearLevel: 2, Semester: 1}, &bad)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestOverviewCacheKeyKeepsMajorCase(t *testing.T) {
	scorer := newFakeScorer()
	cache := NewCacheService(newMemoryCacheRepo(), NewMetricsService(), time.Minute, nil, true)
	svc := NewOverviewService(scorer, cache, OverviewConfig{Threshold: 50}, nil)

	lower, cached, err := svc.Overview(context.Background(), models.CohortFilter{Major: "cs", YearLevel: 2, Semester: 1}, nil)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 0, lower.StudentCount)

	upper, cached, err := svc.Overview(context.Background(), models.CohortFilter{Major: " CS ", YearLevel: 2, Semester: 1}, nil)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 3, upper.StudentCount)
	assert.Equal(t, "CS", upper.Filter.Major)
}

func TestOverviewRejectsNaNThreshold(t *testing.T) {
	svc := NewOverviewService(newFakeScorer(), nil, OverviewConfig{}, nil)

	nan := math.NaN()
	_, _, err := svc.Overview(context.Background(), models.CohortFilter{Major: "CS", YearLevel: 2, Semester: 1}, &nan)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	inf := math.Inf(1)
	_, _, err = svc.Overview(context.Background(), models.CohortFilter{Major: "CS", YearLevel: 2, Semester: 1}, &inf)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
