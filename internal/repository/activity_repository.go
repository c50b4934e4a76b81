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

const activityColumns = `id, account_id, category, title, role, hours, year_level, semester, occurred_at, created_at`

// ActivityRepository persists social and communication activities.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// List returns activities of an account, optionally for one period.
func (r *ActivityRepository) List(ctx context.Context, filter models.RecordFilter) ([]models.Activity, error) {
	where, args := periodConditions("account_id", filter.AccountID, filter.YearLevel, filter.Semester)
	query := fmt.Sprintf("SELECT %s FROM activities WHERE %s ORDER BY occurred_at DESC", activityColumns, where)
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, args...); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// FindByID returns an activity by id.
func (r *ActivityRepository) FindByID(ctx context.Context, id string) (*models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`
	var activity models.Activity
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find activity: %w", err)
	}
	return &activity, nil
}

// Create inserts an activity.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO activities (id, account_id, category, title, role, hours, year_level, semester, occurred_at, created_at) VALUES (:id, :account_id, :category, :title, :role, :hours, :year_level, :semester, :occurred_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// Delete removes an activity.
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM activities WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}
