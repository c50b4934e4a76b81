package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/dto"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/response"
)

type languageService interface {
	List(ctx context.Context, accountID string) ([]models.LanguageResult, error)
	Create(ctx context.Context, accountID string, req dto.LanguageResultRequest) (*models.LanguageResult, error)
	Latest(ctx context.Context, accountID string) (map[string]models.LanguageResult, error)
}

type trainingService interface {
	List(ctx context.Context, filter models.RecordFilter) ([]models.Training, error)
	Create(ctx context.Context, accountID string, req dto.TrainingRequest) (*models.Training, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type activityService interface {
	List(ctx context.Context, filter models.RecordFilter) ([]models.Activity, error)
	Create(ctx context.Context, accountID string, req dto.ActivityRequest) (*models.Activity, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// RecordsHandler serves language results, trainings and activities.
type RecordsHandler struct {
	languages  languageService
	trainings  trainingService
	activities activityService
}

// NewRecordsHandler constructs the handler.
func NewRecordsHandler(languages languageService, trainings trainingService, activities activityService) *RecordsHandler {
	return &RecordsHandler{languages: languages, trainings: trainings, activities: activities}
}

func recordFilter(c *gin.Context) (models.RecordFilter, error) {
	accountID, err := readSubject(c, "accountId")
	if err != nil {
		return models.RecordFilter{}, err
	}
	year, err := optionalInt(c, "year")
	if err != nil {
		return models.RecordFilter{}, err
	}
	sem, err := optionalInt(c, "sem")
	if err != nil {
		return models.RecordFilter{}, err
	}
	return models.RecordFilter{AccountID: accountID, YearLevel: year, Semester: sem}, nil
}

// ListLanguage godoc
// @Summary List language exam results
// @Tags Language
// @Produce json
// @Param accountId query string false "Account (teachers and admins only)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /language/results [get]
func (h *RecordsHandler) ListLanguage(c *gin.Context) {
	accountID, err := readSubject(c, "accountId")
	if err != nil {
		response.Error(c, err)
		return
	}
	results, err := h.languages.List(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// LatestLanguage godoc
// @Summary Latest result per language framework
// @Tags Language
// @Produce json
// @Param accountId query string false "Account (teachers and admins only)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /language/latest [get]
func (h *RecordsHandler) LatestLanguage(c *gin.Context) {
	accountID, err := readSubject(c, "accountId")
	if err != nil {
		response.Error(c, err)
		return
	}
	latest, err := h.languages.Latest(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, latest, nil)
}

// CreateLanguage godoc
// @Summary Record a CEPT, ICT or ITPE result
// @Tags Language
// @Accept json
// @Produce json
// @Param payload body dto.LanguageResultRequest true "Result"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /language/results [post]
func (h *RecordsHandler) CreateLanguage(c *gin.Context) {
	accountID, err := writeSubject(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.LanguageResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	result, err := h.languages.Create(c.Request.Context(), accountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListTrainings godoc
// @Summary List technology trainings
// @Tags Technology
// @Produce json
// @Param accountId query string false "Account (teachers and admins only)"
// @Param year query int false "Year level"
// @Param sem query int false "Semester"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /trainings [get]
func (h *RecordsHandler) ListTrainings(c *gin.Context) {
	filter, err := recordFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	trainings, err := h.trainings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trainings, nil)
}

// CreateTraining godoc
// @Summary Record a completed training
// @Tags Technology
// @Accept json
// @Produce json
// @Param payload body dto.TrainingRequest true "Training"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /trainings [post]
func (h *RecordsHandler) CreateTraining(c *gin.Context) {
	accountID, err := writeSubject(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.TrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	training, err := h.trainings.Create(c.Request.Context(), accountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, training)
}

// DeleteTraining godoc
// @Summary Delete a training
// @Tags Technology
// @Param id path string true "Training ID"
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /trainings/{id} [delete]
func (h *RecordsHandler) DeleteTraining(c *gin.Context) {
	if err := h.trainings.Delete(c.Request.Context(), c.Param("id"), ownerScope(claimsFromContext(c))); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListActivities godoc
// @Summary List social activities
// @Tags Activities
// @Produce json
// @Param accountId query string false "Account (teachers and admins only)"
// @Param year query int false "Year level"
// @Param sem query int false "Semester"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /activities [get]
func (h *RecordsHandler) ListActivities(c *gin.Context) {
	filter, err := recordFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	activities, err := h.activities.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities, nil)
}

// CreateActivity godoc
// @Summary Record an activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param payload body dto.ActivityRequest true "Activity"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /activities [post]
func (h *RecordsHandler) CreateActivity(c *gin.Context) {
	accountID, err := writeSubject(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	activity, err := h.activities.Create(c.Request.Context(), accountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}

// DeleteActivity godoc
// @Summary Delete an activity
// @Tags Activities
// @Param id path string true "Activity ID"
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /activities/{id} [delete]
func (h *RecordsHandler) DeleteActivity(c *gin.Context) {
	if err := h.activities.Delete(c.Request.Context(), c.Param("id"), ownerScope(claimsFromContext(c))); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
