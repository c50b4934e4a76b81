package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/dto"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/scoring"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
)

type peerRepository interface {
	Upsert(ctx context.Context, eval *models.PeerEvaluation) error
	ListForRatee(ctx context.Context, rateeID string, period models.Period) ([]models.PeerEvaluation, error)
}

type accountLookup interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

// PeerService stores peer and self evaluations and aggregates them.
type PeerService struct {
	repo      peerRepository
	accounts  accountLookup
	weights   scoring.CollaborationWeights
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeerService constructs a PeerService.
func NewPeerService(repo peerRepository, accounts accountLookup, weights scoring.CollaborationWeights, validate *validator.Validate, logger *zap.Logger) *PeerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if weights.Self <= 0 && weights.Peer <= 0 {
		weights = scoring.DefaultConfig().Collaboration
	}
	return &PeerService{repo: repo, accounts: accounts, weights: weights, validator: validate, logger: logger}
}

// Submit records the caller's evaluation of a ratee. Rating oneself is a self-evaluation.
// Resubmitting for the same ratee and period replaces the earlier entry.
func (s *PeerService) Submit(ctx context.Context, raterID string, req dto.PeerEvaluationRequest) (*models.PeerEvaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid peer evaluation payload")
	}
	ratee, err := s.accounts.FindByID(ctx, req.RateeID)
	if err != nil {
		return nil, lookupError(err, "ratee not found", "failed to load ratee")
	}
	if ratee.Role != models.RoleStudent || !ratee.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only active students can be evaluated")
	}

	eval := &models.PeerEvaluation{
		RaterID:        raterID,
		RateeID:        req.RateeID,
		YearLevel:      req.YearLevel,
		Semester:       req.Semester,
		Communication:  req.Communication,
		Teamwork:       req.Teamwork,
		Responsibility: req.Responsibility,
		Cooperation:    req.Cooperation,
		Adaptability:   req.Adaptability,
	}
	if req.Comment != nil {
		comment := strings.TrimSpace(*req.Comment)
		eval.Comment = &comment
	}
	if err := s.repo.Upsert(ctx, eval); err != nil {
		s.logger.Error("upsert peer evaluation failed", zap.String("ratee_id", req.RateeID), zap.Error(err))
		return nil, internalError(err, "failed to save peer evaluation")
	}
	return eval, nil
}

// Summary aggregates the evaluations of a ratee for a period. Individual raters are not exposed.
func (s *PeerService) Summary(ctx context.Context, rateeID string, period models.Period) (*models.PeerSummary, error) {
	evals, err := s.repo.ListForRatee(ctx, rateeID, period)
	if err != nil {
		return nil, internalError(err, "failed to load peer evaluations")
	}
	return summarizeEvaluations(rateeID, period, evals, s.weights), nil
}

func summarizeEvaluations(rateeID string, period models.Period, evals []models.PeerEvaluation, weights scoring.CollaborationWeights) *models.PeerSummary {
	inputs := make([]scoring.Evaluation, 0, len(evals))
	summary := &models.PeerSummary{RateeID: rateeID, YearLevel: period.YearLevel, Semester: period.Semester}
	for _, e := range evals {
		if e.RaterID == e.RateeID {
			summary.HasSelf = true
		} else {
			summary.PeerCount++
		}
		inputs = append(inputs, scoring.Evaluation{
			RaterID: e.RaterID,
			RateeID: e.RateeID,
			Ratings: scoring.Ratings{
				Communication:  e.Communication,
				Teamwork:       e.Teamwork,
				Responsibility: e.Responsibility,
				Cooperation:    e.Cooperation,
				Adaptability:   e.Adaptability,
			},
		})
	}
	summary.PeerAverage = scoring.PeerAverage(inputs)
	summary.SelfAverage = scoring.SelfAverage(inputs)
	summary.Collaboration = scoring.ScoreCollaboration(scoring.CollaborationInput{
		Self:    summary.SelfAverage,
		PeerAvg: summary.PeerAverage,
	}, weights).Score
	return summary
}
