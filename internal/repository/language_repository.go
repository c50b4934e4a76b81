package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
)

// LanguageRepository persists CEPT, ICT and ITPE results.
type LanguageRepository struct {
	db *sqlx.DB
}

// NewLanguageRepository constructs the repository.
func NewLanguageRepository(db *sqlx.DB) *LanguageRepository {
	return &LanguageRepository{db: db}
}

// ListByAccount returns every result of an account, newest first.
func (r *LanguageRepository) ListByAccount(ctx context.Context, accountID string) ([]models.LanguageResult, error) {
	const query = `SELECT id, account_id, framework, level, score, taken_at, attachment_id, created_at FROM language_results WHERE account_id = $1 ORDER BY taken_at DESC, created_at DESC`
	var results []models.LanguageResult
	if err := r.db.SelectContext(ctx, &results, query, accountID); err != nil {
		return nil, fmt.Errorf("list language results: %w", err)
	}
	return results, nil
}

// Create inserts a result.
func (r *LanguageRepository) Create(ctx context.Context, result *models.LanguageResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO language_results (id, account_id, framework, level, score, taken_at, attachment_id, created_at) VALUES (:id, :account_id, :framework, :level, :score, :taken_at, :attachment_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("create language result: %w", err)
	}
	return nil
}
