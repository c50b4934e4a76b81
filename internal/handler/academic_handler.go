package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/dto"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/response"
)

type academicService interface {
	ListGrades(ctx context.Context, accountID string, yearLevel, semester *int) ([]models.CourseGrade, error)
	AddGrade(ctx context.Context, accountID string, req dto.CourseGradeRequest) (*models.CourseGrade, error)
	BulkUpsertGrades(ctx context.Context, accountID string, req dto.BulkGradesRequest) ([]models.CourseGrade, error)
	DeleteGrade(ctx context.Context, id, ownerID string) error
	SetManualGPA(ctx context.Context, accountID string, req dto.ManualGPARequest) (*models.ManualGPA, error)
	ManualGPA(ctx context.Context, accountID string, period models.Period) (*models.ManualGPA, error)
	ListRequirements(ctx context.Context, major string, period models.Period) ([]models.CourseRequirement, error)
	SetRequirements(ctx context.Context, req dto.RequirementSetRequest, meta models.RequestMeta) ([]models.CourseRequirement, error)
}

// AcademicHandler serves grades, manual GPA and course requirements.
type AcademicHandler struct {
	service academicService
}

// NewAcademicHandler constructs the handler.
func NewAcademicHandler(svc academicService) *AcademicHandler {
	return &AcademicHandler{service: svc}
}

// ListGrades godoc
// @Summary List course grades
// @Tags Academic
// @Produce json
// @Param accountId query string false "Account (teachers and admins only)"
// @Param year query int false "Year level"
// @Param sem query int false "Semester"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /academic/grades [get]
func (h *AcademicHandler) ListGrades(c *gin.Context) {
	accountID, err := readSubject(c, "accountId")
	if err != nil {
		response.Error(c, err)
		return
	}
	year, err := optionalInt(c, "year")
	if err != nil {
		response.Error(c, err)
		return
	}
	sem, err := optionalInt(c, "sem")
	if err != nil {
		response.Error(c, err)
		return
	}
	grades, err := h.service.ListGrades(c.Request.Context(), accountID, year, sem)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// AddGrade godoc
// @Summary Add or replace a course grade
// @Tags Academic
// @Accept json
// @Produce json
// @Param payload body dto.CourseGradeRequest true "Course grade"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /academic/grades [post]
func (h *AcademicHandler) AddGrade(c *gin.Context) {
	accountID, err := writeSubject(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CourseGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	grade, err := h.service.AddGrade(c.Request.Context(), accountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// BulkGrades godoc
// @Summary Upsert many course grades atomically
// @Tags Academic
// @Accept json
// @Produce json
// @Param payload body dto.BulkGradesRequest true "Grades"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /academic/grades/bulk [post]
func (h *AcademicHandler) BulkGrades(c *gin.Context) {
	accountID, err := writeSubject(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.BulkGradesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	grades, err := h.service.BulkUpsertGrades(c.Request.Context(), accountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil, map[string]interface{}{"count": len(grades)})
}

// DeleteGrade godoc
// @Summary Delete a course grade
// @Tags Academic
// @Param id path string true "Grade ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /academic/grades/{id} [delete]
func (h *AcademicHandler) DeleteGrade(c *gin.Context) {
	if err := h.service.DeleteGrade(c.Request.Context(), c.Param("id"), ownerScope(claimsFromContext(c))); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetManualGPA godoc
// @Summary Record the self-reported GPA for a period
// @Tags Academic
// @Accept json
// @Produce json
// @Param payload body dto.ManualGPARequest true "Manual GPA"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /academic/gpa [put]
func (h *AcademicHandler) SetManualGPA(c *gin.Context) {
	accountID, err := writeSubject(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ManualGPARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	gpa, err := h.service.SetManualGPA(c.Request.Context(), accountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gpa, nil)
}

// GetManualGPA godoc
// @Summary Get the self-reported GPA for a period
// @Tags Academic
// @Produce json
// @Param accountId query string false "Account (teachers and admins only)"
// @Param year query int true "Year level"
// @Param sem query int true "Semester"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /academic/gpa [get]
func (h *AcademicHandler) GetManualGPA(c *gin.Context) {
	accountID, err := readSubject(c, "accountId")
	if err != nil {
		response.Error(c, err)
		return
	}
	period, err := bindPeriod(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	gpa, err := h.service.ManualGPA(c.Request.Context(), accountID, period)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gpa, nil)
}

// ListRequirements godoc
// @Summary List required courses of a major
// @Tags Academic
// @Produce json
// @Param major query string true "Major"
// @Param year query int true "Year level"
// @Param sem query int true "Semester"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /academic/requirements [get]
func (h *AcademicHandler) ListRequirements(c *gin.Context) {
	period, err := bindPeriod(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	reqs, err := h.service.ListRequirements(c.Request.Context(), c.Query("major"), period)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reqs, nil)
}

// SetRequirements godoc
// @Summary Replace the required courses of a major and period
// @Tags Academic
// @Accept json
// @Produce json
// @Param payload body dto.RequirementSetRequest true "Requirement set"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /academic/requirements [put]
func (h *AcademicHandler) SetRequirements(c *gin.Context) {
	var req dto.RequirementSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	reqs, err := h.service.SetRequirements(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reqs, nil)
}
