package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
)

// PeerEvaluationRepository persists peer and self evaluations.
type PeerEvaluationRepository struct {
	db *sqlx.DB
}

// NewPeerEvaluationRepository constructs the repository.
func NewPeerEvaluationRepository(db *sqlx.DB) *PeerEvaluationRepository {
	return &PeerEvaluationRepository{db: db}
}

// Upsert stores an evaluation, replacing an earlier one by the same rater for the same period.
func (r *PeerEvaluationRepository) Upsert(ctx context.Context, eval *models.PeerEvaluation) error {
	if eval.ID == "" {
		eval.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if eval.CreatedAt.IsZero() {
		eval.CreatedAt = now
	}
	eval.UpdatedAt = now
	const query = `INSERT INTO peer_evaluations (id, rater_id, ratee_id, year_level, semester, communication, teamwork, responsibility, cooperation, adaptability, comment, created_at, updated_at)
VALUES (:id, :rater_id, :ratee_id, :year_level, :semester, :communication, :teamwork, :responsibility, :cooperation, :adaptability, :comment, :created_at, :updated_at)
ON CONFLICT (rater_id, ratee_id, year_level, semester) DO UPDATE SET communication = EXCLUDED.communication, teamwork = EXCLUDED.teamwork,
responsibility = EXCLUDED.responsibility, cooperation = EXCLUDED.cooperation, adaptability = EXCLUDED.adaptability, comment = EXCLUDED.comment, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, eval); err != nil {
		return fmt.Errorf("upsert peer evaluation: %w", err)
	}
	return nil
}

// ListForRatee returns every evaluation received by a ratee in a period.
func (r *PeerEvaluationRepository) ListForRatee(ctx context.Context, rateeID string, period models.Period) ([]models.PeerEvaluation, error) {
	const query = `SELECT id, rater_id, ratee_id, year_level, semester, communication, teamwork, responsibility, cooperation, adaptability, comment, created_at, updated_at
FROM peer_evaluations WHERE ratee_id = $1 AND year_level = $2 AND semester = $3`
	var evals []models.PeerEvaluation
	if err := r.db.SelectContext(ctx, &evals, query, rateeID, period.YearLevel, period.Semester); err != nil {
		return nil, fmt.Errorf("list peer evaluations: %w", err)
	}
	return evals, nil
}
