package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/database"
)

const announcementColumns = `id, title, content, audience, priority, is_pinned, published_at, expires_at, created_by, created_at, updated_at`

// AnnouncementRepository provides persistence for announcements and their cohort targets.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func audiencesFor(roles []models.UserRole) []string {
	allowed := map[models.AnnouncementAudience]struct{}{models.AnnouncementAudienceAll: {}}
	for _, role := range roles {
		switch role {
		case models.RoleTeacher:
			allowed[models.AnnouncementAudienceTeachers] = struct{}{}
			allowed[models.AnnouncementAudienceCohort] = struct{}{}
		case models.RoleStudent:
			allowed[models.AnnouncementAudienceStudents] = struct{}{}
		case models.RoleAdmin:
			allowed[models.AnnouncementAudienceTeachers] = struct{}{}
			allowed[models.AnnouncementAudienceStudents] = struct{}{}
			allowed[models.AnnouncementAudienceCohort] = struct{}{}
		}
	}
	values := make([]string, 0, len(allowed))
	for v := range allowed {
		values = append(values, string(v))
	}
	sort.Strings(values)
	return values
}

// List returns announcements visible to the provided audiences. Students also see
// COHORT announcements targeting their major and year.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	where := []string{"published_at <= NOW()", "(expires_at IS NULL OR expires_at > NOW())"}
	args := []interface{}{}

	audiences := audiencesFor(filter.AudienceRoles)
	if filter.Major != "" {
		cohort := fmt.Sprintf("EXISTS (SELECT 1 FROM announcement_targets t WHERE t.announcement_id = announcements.id AND t.major = $%d", len(args)+1)
		args = append(args, filter.Major)
		if filter.YearLevel != nil {
			cohort += fmt.Sprintf(" AND (t.year_level IS NULL OR t.year_level = $%d)", len(args)+1)
			args = append(args, *filter.YearLevel)
		}
		cohort += ")"
		where = append(where, fmt.Sprintf("(audience = ANY($%d) OR (audience = 'COHORT' AND %s))", len(args)+1, cohort))
	} else {
		where = append(where, fmt.Sprintf("audience = ANY($%d)", len(args)+1))
	}
	args = append(args, pq.Array(audiences))
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM announcements WHERE %s
ORDER BY is_pinned DESC, priority DESC, published_at DESC
LIMIT %d OFFSET %d`, announcementColumns, whereClause, size, offset)
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM announcements WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}
	if err := r.attachTargets(ctx, announcements); err != nil {
		return nil, 0, err
	}
	return announcements, total, nil
}

func (r *AnnouncementRepository) attachTargets(ctx context.Context, announcements []models.Announcement) error {
	ids := make([]string, 0, len(announcements))
	for _, a := range announcements {
		if a.Audience == models.AnnouncementAudienceCohort {
			ids = append(ids, a.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	const query = `SELECT announcement_id, major, year_level FROM announcement_targets WHERE announcement_id = ANY($1)`
	var targets []models.AnnouncementTarget
	if err := r.db.SelectContext(ctx, &targets, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("list announcement targets: %w", err)
	}
	byID := make(map[string][]models.AnnouncementTarget, len(ids))
	for _, t := range targets {
		byID[t.AnnouncementID] = append(byID[t.AnnouncementID], t)
	}
	for i := range announcements {
		announcements[i].Targets = byID[announcements[i].ID]
	}
	return nil
}

// GetByID returns an announcement by identifier.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE id = $1`
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get announcement: %w", err)
	}
	return &announcement, nil
}

// Create inserts an announcement and its targets in one transaction.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if announcement.CreatedAt.IsZero() {
		announcement.CreatedAt = now
	}
	announcement.UpdatedAt = now
	if announcement.PublishedAt.IsZero() {
		announcement.PublishedAt = now
	}

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insert = `INSERT INTO announcements (` + announcementColumns + `)
VALUES (:id, :title, :content, :audience, :priority, :is_pinned, :published_at, :expires_at, :created_by, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insert, announcement); err != nil {
			return fmt.Errorf("create announcement: %w", err)
		}
		const insertTarget = `INSERT INTO announcement_targets (announcement_id, major, year_level) VALUES (:announcement_id, :major, :year_level)`
		for i := range announcement.Targets {
			announcement.Targets[i].AnnouncementID = announcement.ID
			if _, err := tx.NamedExecContext(ctx, insertTarget, announcement.Targets[i]); err != nil {
				return fmt.Errorf("create announcement target: %w", err)
			}
		}
		return nil
	})
}

// Delete removes an announcement together with its targets.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM announcement_targets WHERE announcement_id = $1", id); err != nil {
			return fmt.Errorf("delete announcement targets: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM announcements WHERE id = $1", id); err != nil {
			return fmt.Errorf("delete announcement: %w", err)
		}
		return nil
	})
}
