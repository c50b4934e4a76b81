package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/database"
)

const courseGradeColumns = `id, account_id, course_code, course_name, credits, grade, year_level, semester, created_at, updated_at`

const upsertCourseGrade = `INSERT INTO course_grades (id, account_id, course_code, course_name, credits, grade, year_level, semester, created_at, updated_at)
VALUES (:id, :account_id, :course_code, :course_name, :credits, :grade, :year_level, :semester, :created_at, :updated_at)
ON CONFLICT (account_id, course_code, year_level, semester)
DO UPDATE SET course_name = EXCLUDED.course_name, credits = EXCLUDED.credits, grade = EXCLUDED.grade, updated_at = EXCLUDED.updated_at`

// AcademicRepository persists course grades, manual GPAs and course requirements.
type AcademicRepository struct {
	db *sqlx.DB
}

// NewAcademicRepository constructs the repository.
func NewAcademicRepository(db *sqlx.DB) *AcademicRepository {
	return &AcademicRepository{db: db}
}

func periodConditions(accountColumn, accountID string, year, sem *int) (string, []interface{}) {
	conds := []string{fmt.Sprintf("%s = $1", accountColumn)}
	args := []interface{}{accountID}
	if year != nil {
		conds = append(conds, fmt.Sprintf("year_level = $%d", len(args)+1))
		args = append(args, *year)
	}
	if sem != nil {
		conds = append(conds, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, *sem)
	}
	return strings.Join(conds, " AND "), args
}

// ListGrades returns the course grades of an account, optionally restricted to a period.
func (r *AcademicRepository) ListGrades(ctx context.Context, filter models.GradeFilter) ([]models.CourseGrade, error) {
	where, args := periodConditions("account_id", filter.AccountID, filter.YearLevel, filter.Semester)
	query := fmt.Sprintf("SELECT %s FROM course_grades WHERE %s ORDER BY year_level, semester, course_code", courseGradeColumns, where)
	var grades []models.CourseGrade
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list course grades: %w", err)
	}
	return grades, nil
}

// FindGrade returns a course grade by id.
func (r *AcademicRepository) FindGrade(ctx context.Context, id string) (*models.CourseGrade, error) {
	query := `SELECT ` + courseGradeColumns + ` FROM course_grades WHERE id = $1`
	var grade models.CourseGrade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find course grade: %w", err)
	}
	return &grade, nil
}

func prepareGrade(grade *models.CourseGrade, now time.Time) {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now
}

// UpsertGrade inserts a grade or replaces the existing one for the same course and period.
func (r *AcademicRepository) UpsertGrade(ctx context.Context, grade *models.CourseGrade) error {
	prepareGrade(grade, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, upsertCourseGrade, grade); err != nil {
		return fmt.Errorf("upsert course grade: %w", err)
	}
	return nil
}

// UpsertGrades writes all grades in one transaction; any failure rolls back the batch.
func (r *AcademicRepository) UpsertGrades(ctx context.Context, grades []models.CourseGrade) error {
	now := time.Now().UTC()
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for i := range grades {
			prepareGrade(&grades[i], now)
			if _, err := tx.NamedExecContext(ctx, upsertCourseGrade, &grades[i]); err != nil {
				return fmt.Errorf("upsert course grade %s: %w", grades[i].CourseCode, err)
			}
		}
		return nil
	})
}

// DeleteGrade removes a grade row.
func (r *AcademicRepository) DeleteGrade(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM course_grades WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete course grade: %w", err)
	}
	return nil
}

// FindManualGPA returns the reported GPA for a period.
func (r *AcademicRepository) FindManualGPA(ctx context.Context, accountID string, period models.Period) (*models.ManualGPA, error) {
	const query = `SELECT id, account_id, year_level, semester, gpa, updated_at FROM manual_gpas WHERE account_id = $1 AND year_level = $2 AND semester = $3`
	var gpa models.ManualGPA
	if err := r.db.GetContext(ctx, &gpa, query, accountID, period.YearLevel, period.Semester); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find manual gpa: %w", err)
	}
	return &gpa, nil
}

// UpsertManualGPA stores the reported GPA for a period.
func (r *AcademicRepository) UpsertManualGPA(ctx context.Context, gpa *models.ManualGPA) error {
	if gpa.ID == "" {
		gpa.ID = uuid.NewString()
	}
	gpa.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO manual_gpas (id, account_id, year_level, semester, gpa, updated_at)
VALUES (:id, :account_id, :year_level, :semester, :gpa, :updated_at)
ON CONFLICT (account_id, year_level, semester) DO UPDATE SET gpa = EXCLUDED.gpa, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, gpa); err != nil {
		return fmt.Errorf("upsert manual gpa: %w", err)
	}
	return nil
}

// ListRequirements returns the required course codes of a major and period.
func (r *AcademicRepository) ListRequirements(ctx context.Context, major string, period models.Period) ([]models.CourseRequirement, error) {
	const query = `SELECT id, major, year_level, semester, course_code, created_at FROM course_requirements WHERE major = $1 AND year_level = $2 AND semester = $3 ORDER BY course_code`
	var reqs []models.CourseRequirement
	if err := r.db.SelectContext(ctx, &reqs, query, major, period.YearLevel, period.Semester); err != nil {
		return nil, fmt.Errorf("list course requirements: %w", err)
	}
	return reqs, nil
}

// ReplaceRequirements swaps the requirement set of a major and period atomically.
func (r *AcademicRepository) ReplaceRequirements(ctx context.Context, major string, period models.Period, codes []string) ([]models.CourseRequirement, error) {
	now := time.Now().UTC()
	reqs := make([]models.CourseRequirement, 0, len(codes))
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM course_requirements WHERE major = $1 AND year_level = $2 AND semester = $3`, major, period.YearLevel, period.Semester); err != nil {
			return fmt.Errorf("clear course requirements: %w", err)
		}
		const insert = `INSERT INTO course_requirements (id, major, year_level, semester, course_code, created_at) VALUES (:id, :major, :year_level, :semester, :course_code, :created_at)`
		for _, code := range codes {
			req := models.CourseRequirement{
				ID:         uuid.NewString(),
				Major:      major,
				YearLevel:  period.YearLevel,
				Semester:   period.Semester,
				CourseCode: code,
				CreatedAt:  now,
			}
			if _, err := tx.NamedExecContext(ctx, insert, req); err != nil {
				return fmt.Errorf("insert course requirement %s: %w", code, err)
			}
			reqs = append(reqs, req)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reqs, nil
}
