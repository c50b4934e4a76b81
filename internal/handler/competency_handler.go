package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/middleware"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/service"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/response"
)

type competencyService interface {
	Summary(ctx context.Context, accountID string, period models.Period) (*models.CompetencySummary, error)
	Snapshot(ctx context.Context, accountID string, period models.Period) (*models.CompetencyScore, error)
	RecalculateAcademic(ctx context.Context, accountID string, period models.Period, meta models.RequestMeta) (*models.AcademicRecalculation, error)
	EnqueueCohort(ctx context.Context, filter models.CohortFilter, meta models.RequestMeta) (*models.BulkRecalculationResult, error)
}

type overviewService interface {
	Overview(ctx context.Context, filter models.CohortFilter, threshold *float64) (*models.CohortOverview, bool, error)
}

type exportService interface {
	Export(ctx context.Context, filter models.CohortFilter, format string, threshold *float64) (*service.ExportFile, error)
}

// CompetencyHandler serves composite scores, recalculation, overviews and exports.
type CompetencyHandler struct {
	competency competencyService
	overviews  overviewService
	exports    exportService
}

// NewCompetencyHandler constructs the handler.
func NewCompetencyHandler(competency competencyService, overviews overviewService, exports exportService) *CompetencyHandler {
	return &CompetencyHandler{competency: competency, overviews: overviews, exports: exports}
}

func (h *CompetencyHandler) subjectPeriod(c *gin.Context) (string, models.Period, error) {
	accountID := c.Param("accountId")
	if !canReadAccount(claimsFromContext(c), accountID) {
		return "", models.Period{}, appErrors.Clone(appErrors.ErrForbidden, "students can only access their own scores")
	}
	period, err := bindPeriod(c)
	if err != nil {
		return "", models.Period{}, err
	}
	return accountID, period, nil
}

// Summary godoc
// @Summary Composite competency of a student
// @Description Computes the five sub-scores and the equal-weighted total on demand.
// @Tags Competency
// @Produce json
// @Param accountId path string true "Student account ID"
// @Param year query int true "Year level"
// @Param sem query int true "Semester"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /competency/{accountId} [get]
func (h *CompetencyHandler) Summary(c *gin.Context) {
	accountID, period, err := h.subjectPeriod(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.competency.Summary(c.Request.Context(), accountID, period)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Snapshot godoc
// @Summary Last persisted competency snapshot
// @Tags Competency
// @Produce json
// @Param accountId path string true "Student account ID"
// @Param year query int true "Year level"
// @Param sem query int true "Semester"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /competency/{accountId}/snapshot [get]
func (h *CompetencyHandler) Snapshot(c *gin.Context) {
	accountID, period, err := h.subjectPeriod(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	snapshot, err := h.competency.Snapshot(c.Request.Context(), accountID, period)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// Recalculate godoc
// @Summary Recalculate one student's academic block
// @Description Recomputes the composite, persists the snapshot and returns the academic block.
// @Tags Competency
// @Produce json
// @Param accountId path string true "Student account ID"
// @Param year query int true "Year level"
// @Param sem query int true "Semester"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /competency/recalculate/{accountId} [post]
func (h *CompetencyHandler) Recalculate(c *gin.Context) {
	accountID, period, err := h.subjectPeriod(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.competency.RecalculateAcademic(c.Request.Context(), accountID, period, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// RecalculateCohort godoc
// @Summary Queue recalculation for a whole cohort
// @Tags Competency
// @Produce json
// @Param major query string true "Major"
// @Param year query int true "Year level"
// @Param sem query int true "Semester"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /competency/recalculate [post]
func (h *CompetencyHandler) RecalculateCohort(c *gin.Context) {
	filter, err := bindCohort(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.competency.EnqueueCohort(c.Request.Context(), filter, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, result)
}

// Overview godoc
// @Summary Cohort overview
// @Description Per-student totals, averages and the below-threshold count. meta.cache_hit reports whether the overview came from cache.
// @Tags Competency
// @Produce json
// @Param major query string true "Major"
// @Param year query int true "Year level"
// @Param sem query int true "Semester"
// @Param threshold query number false "Low-score threshold (0-100)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /competency/overview [get]
func (h *CompetencyHandler) Overview(c *gin.Context) {
	filter, err := bindCohort(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	threshold, err := optionalFloat(c, "threshold")
	if err != nil {
		response.Error(c, err)
		return
	}
	overview, cached, err := h.overviews.Overview(c.Request.Context(), filter, threshold)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	middleware.SetMeta(c, "threshold", overview.Threshold)
	response.JSON(c, http.StatusOK, overview, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download the cohort overview
// @Tags Competency
// @Produce text/csv
// @Produce application/pdf
// @Param major query string true "Major"
// @Param year query int true "Year level"
// @Param sem query int true "Semester"
// @Param format query string false "csv (default) or pdf"
// @Param threshold query number false "Low-score threshold (0-100)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /competency/export [get]
func (h *CompetencyHandler) Export(c *gin.Context) {
	filter, err := bindCohort(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	threshold, err := optionalFloat(c, "threshold")
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Export(c.Request.Context(), filter, c.DefaultQuery("format", "csv"), threshold)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Data)
}
