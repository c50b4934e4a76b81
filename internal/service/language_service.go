package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/dto"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/scoring"
)

type languageRepository interface {
	ListByAccount(ctx context.Context, accountID string) ([]models.LanguageResult, error)
	Create(ctx context.Context, result *models.LanguageResult) error
}

// LanguageService records certification results.
type LanguageService struct {
	repo      languageRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLanguageService constructs a LanguageService.
func NewLanguageService(repo languageRepository, validate *validator.Validate, logger *zap.Logger) *LanguageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LanguageService{repo: repo, validator: validate, logger: logger}
}

// List returns every result of an account, newest first.
func (s *LanguageService) List(ctx context.Context, accountID string) ([]models.LanguageResult, error) {
	results, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, internalError(err, "failed to list language results")
	}
	return results, nil
}

// Create records a result. CEPT keeps its level; ICT and ITPE keep only the score.
func (s *LanguageService) Create(ctx context.Context, accountID string, req dto.LanguageResultRequest) (*models.LanguageResult, error) {
	req.Framework = strings.ToUpper(strings.TrimSpace(req.Framework))
	if req.Level != nil {
		level := strings.ToUpper(strings.TrimSpace(*req.Level))
		req.Level = &level
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid language result payload")
	}

	result := &models.LanguageResult{
		AccountID:    accountID,
		Framework:    req.Framework,
		Score:        req.Score,
		TakenAt:      req.TakenAt.UTC(),
		AttachmentID: req.AttachmentID,
	}
	if scoring.Framework(req.Framework) == scoring.FrameworkCEPT {
		result.Level = req.Level
	}
	if err := s.repo.Create(ctx, result); err != nil {
		s.logger.Error("create language result failed", zap.String("account_id", accountID), zap.Error(err))
		return nil, internalError(err, "failed to save language result")
	}
	return result, nil
}

// Latest returns the newest result per framework.
func (s *LanguageService) Latest(ctx context.Context, accountID string) (map[string]models.LanguageResult, error) {
	results, err := s.List(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.LanguageResult, 3)
	for _, r := range results {
		fw := strings.ToUpper(r.Framework)
		if cur, ok := out[fw]; ok && !r.TakenAt.After(cur.TakenAt) {
			continue
		}
		out[fw] = r
	}
	return out, nil
}

func toScoringResult(r models.LanguageResult) scoring.LanguageResult {
	res := scoring.LanguageResult{
		Framework: scoring.Framework(r.Framework),
		Score:     r.Score,
		TakenAt:   r.TakenAt,
	}
	if r.Level != nil {
		res.Level = *r.Level
	}
	return res
}
