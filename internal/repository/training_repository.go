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

const trainingColumns = `id, account_id, title, provider, hours, completed_at, year_level, semester, created_at`

// TrainingRepository persists technology trainings.
type TrainingRepository struct {
	db *sqlx.DB
}

// NewTrainingRepository constructs the repository.
func NewTrainingRepository(db *sqlx.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

// List returns trainings of an account, optionally for one period.
func (r *TrainingRepository) List(ctx context.Context, filter models.RecordFilter) ([]models.Training, error) {
	where, args := periodConditions("account_id", filter.AccountID, filter.YearLevel, filter.Semester)
	query := fmt.Sprintf("SELECT %s FROM trainings WHERE %s ORDER BY completed_at DESC", trainingColumns, where)
	var trainings []models.Training
	if err := r.db.SelectContext(ctx, &trainings, query, args...); err != nil {
		return nil, fmt.Errorf("list trainings: %w", err)
	}
	return trainings, nil
}

// FindByID returns a training by id.
func (r *TrainingRepository) FindByID(ctx context.Context, id string) (*models.Training, error) {
	query := `SELECT ` + trainingColumns + ` FROM trainings WHERE id = $1`
	var training models.Training
	if err := r.db.GetContext(ctx, &training, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find training: %w", err)
	}
	return &training, nil
}

// Create inserts a training.
func (r *TrainingRepository) Create(ctx context.Context, training *models.Training) error {
	if training.ID == "" {
		training.ID = uuid.NewString()
	}
	if training.CreatedAt.IsZero() {
		training.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO trainings (id, account_id, title, provider, hours, completed_at, year_level, semester, created_at) VALUES (:id, :account_id, :title, :provider, :hours, :completed_at, :year_level, :semester, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, training); err != nil {
		return fmt.Errorf("create training: %w", err)
	}
	return nil
}

// Delete removes a training.
func (r *TrainingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM trainings WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete training: %w", err)
	}
	return nil
}
