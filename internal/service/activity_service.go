package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/dto"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
)

type activityRepository interface {
	List(ctx context.Context, filter models.RecordFilter) ([]models.Activity, error)
	FindByID(ctx context.Context, id string) (*models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id string) error
}

// ActivityService manages social and communication activities.
type ActivityService struct {
	repo      activityRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(repo activityRepository, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, validator: validate, logger: logger}
}

// List returns activities for an account.
func (s *ActivityService) List(ctx context.Context, filter models.RecordFilter) ([]models.Activity, error) {
	activities, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list activities")
	}
	return activities, nil
}

// Create records an activity. Categories are stored lower-cased.
func (s *ActivityService) Create(ctx context.Context, accountID string, req dto.ActivityRequest) (*models.Activity, error) {
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid activity payload")
	}
	activity := &models.Activity{
		AccountID:  accountID,
		Category:   req.Category,
		Title:      req.Title,
		Role:       req.Role,
		Hours:      req.Hours,
		YearLevel:  req.YearLevel,
		Semester:   req.Semester,
		OccurredAt: req.OccurredAt.UTC(),
	}
	if err := s.repo.Create(ctx, activity); err != nil {
		s.logger.Error("create activity failed", zap.String("account_id", accountID), zap.Error(err))
		return nil, internalError(err, "failed to save activity")
	}
	return activity, nil
}

// Delete removes an activity. An empty ownerID skips the ownership check.
func (s *ActivityService) Delete(ctx context.Context, id, ownerID string) error {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "activity not found", "failed to load activity")
	}
	if ownerID != "" && activity.AccountID != ownerID {
		return appErrors.Clone(appErrors.ErrForbidden, "activity belongs to another account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete activity")
	}
	return nil
}
