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

type trainingRepository interface {
	List(ctx context.Context, filter models.RecordFilter) ([]models.Training, error)
	FindByID(ctx context.Context, id string) (*models.Training, error)
	Create(ctx context.Context, training *models.Training) error
	Delete(ctx context.Context, id string) error
}

// TrainingService manages completed technology trainings.
type TrainingService struct {
	repo      trainingRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTrainingService constructs a TrainingService.
func NewTrainingService(repo trainingRepository, validate *validator.Validate, logger *zap.Logger) *TrainingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrainingService{repo: repo, validator: validate, logger: logger}
}

// List returns trainings for an account.
func (s *TrainingService) List(ctx context.Context, filter models.RecordFilter) ([]models.Training, error) {
	trainings, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list trainings")
	}
	return trainings, nil
}

// Create records a training.
func (s *TrainingService) Create(ctx context.Context, accountID string, req dto.TrainingRequest) (*models.Training, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Provider = strings.TrimSpace(req.Provider)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid training payload")
	}
	training := &models.Training{
		AccountID:   accountID,
		Title:       req.Title,
		Provider:    req.Provider,
		Hours:       req.Hours,
		CompletedAt: req.CompletedAt.UTC(),
		YearLevel:   req.YearLevel,
		Semester:    req.Semester,
	}
	if err := s.repo.Create(ctx, training); err != nil {
		s.logger.Error("create training failed", zap.String("account_id", accountID), zap.Error(err))
		return nil, internalError(err, "failed to save training")
	}
	return training, nil
}

// Delete removes a training. An empty ownerID skips the ownership check.
func (s *TrainingService) Delete(ctx context.Context, id, ownerID string) error {
	training, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, "training not found", "failed to load training")
	}
	if ownerID != "" && training.AccountID != ownerID {
		return appErrors.Clone(appErrors.ErrForbidden, "training belongs to another account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete training")
	}
	return nil
}
