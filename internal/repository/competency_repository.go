package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
)

const competencyColumns = `id, account_id, year_level, semester, manual_gpa, computed_gpa, gpa_used, score_gpa, core_completion_pct, score_core,
score_academic, academic_pct, language_pct, technology_pct, social_pct, collaboration_pct, total, calculated_at`

// CompetencyRepository stores per-period competency snapshots.
type CompetencyRepository struct {
	db *sqlx.DB
}

// NewCompetencyRepository constructs the repository.
func NewCompetencyRepository(db *sqlx.DB) *CompetencyRepository {
	return &CompetencyRepository{db: db}
}

// UpsertSnapshot writes the snapshot of one account and period.
func (r *CompetencyRepository) UpsertSnapshot(ctx context.Context, score *models.CompetencyScore) error {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	if score.CalculatedAt.IsZero() {
		score.CalculatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO competency_scores (` + competencyColumns + `)
VALUES (:id, :account_id, :year_level, :semester, :manual_gpa, :computed_gpa, :gpa_used, :score_gpa, :core_completion_pct, :score_core,
:score_academic, :academic_pct, :language_pct, :technology_pct, :social_pct, :collaboration_pct, :total, :calculated_at)
ON CONFLICT (account_id, year_level, semester) DO UPDATE SET manual_gpa = EXCLUDED.manual_gpa, computed_gpa = EXCLUDED.computed_gpa,
gpa_used = EXCLUDED.gpa_used, score_gpa = EXCLUDED.score_gpa, core_completion_pct = EXCLUDED.core_completion_pct, score_core = EXCLUDED.score_core,
score_academic = EXCLUDED.score_academic, academic_pct = EXCLUDED.academic_pct, language_pct = EXCLUDED.language_pct,
technology_pct = EXCLUDED.technology_pct, social_pct = EXCLUDED.social_pct, collaboration_pct = EXCLUDED.collaboration_pct,
total = EXCLUDED.total, calculated_at = EXCLUDED.calculated_at`
	if _, err := r.db.NamedExecContext(ctx, query, score); err != nil {
		return fmt.Errorf("upsert competency snapshot: %w", err)
	}
	return nil
}

// FindSnapshot returns the stored snapshot of an account and period.
func (r *CompetencyRepository) FindSnapshot(ctx context.Context, accountID string, period models.Period) (*models.CompetencyScore, error) {
	query := `SELECT ` + competencyColumns + ` FROM competency_scores WHERE account_id = $1 AND year_level = $2 AND semester = $3`
	var score models.CompetencyScore
	if err := r.db.GetContext(ctx, &score, query, accountID, period.YearLevel, period.Semester); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find competency snapshot: %w", err)
	}
	return &score, nil
}
