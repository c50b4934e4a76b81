package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/dto"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
)

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
	GetByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id string) error
}

// AnnouncementService handles announcement workflows.
type AnnouncementService struct {
	repo      announcementRepository
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AnnouncementService{repo: repo, audit: audit, validator: validate, logger: logger}
	_ = svc.validator.RegisterValidation("audience", func(fl validator.FieldLevel) bool {
		switch models.AnnouncementAudience(strings.ToUpper(fl.Field().String())) {
		case models.AnnouncementAudienceAll, models.AnnouncementAudienceTeachers, models.AnnouncementAudienceStudents, models.AnnouncementAudienceCohort:
			return true
		default:
			return false
		}
	})
	_ = svc.validator.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		switch models.AnnouncementPriority(strings.ToUpper(fl.Field().String())) {
		case models.AnnouncementPriorityLow, models.AnnouncementPriorityNormal, models.AnnouncementPriorityHigh:
			return true
		default:
			return false
		}
	})
	return svc
}

// AnnouncementViewer describes who is reading the feed.
type AnnouncementViewer struct {
	Role      models.UserRole
	Major     string
	YearLevel *int
}

// List returns announcements visible to the viewer.
func (s *AnnouncementService) List(ctx context.Context, viewer AnnouncementViewer, page, pageSize int) ([]models.Announcement, *models.Pagination, error) {
	filter := models.AnnouncementFilter{
		AudienceRoles: []models.UserRole{viewer.Role},
		Page:          page,
		PageSize:      pageSize,
	}
	if viewer.Role == models.RoleStudent {
		filter.Major = viewer.Major
		filter.YearLevel = viewer.YearLevel
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list announcements")
	}
	return rows, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns an announcement by id.
func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	ann, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "announcement not found", "failed to get announcement")
	}
	return ann, nil
}

// Create publishes an announcement together with its cohort targets.
func (s *AnnouncementService) Create(ctx context.Context, req dto.CreateAnnouncementRequest, meta models.RequestMeta) (*models.Announcement, error) {
	req.Audience = strings.ToUpper(strings.TrimSpace(req.Audience))
	req.Priority = strings.ToUpper(strings.TrimSpace(req.Priority))
	if req.Priority == "" {
		req.Priority = string(models.AnnouncementPriorityNormal)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid announcement payload")
	}
	audience := models.AnnouncementAudience(req.Audience)
	if audience == models.AnnouncementAudienceCohort && len(req.Targets) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "targets required for COHORT audience")
	}
	if audience != models.AnnouncementAudienceCohort && len(req.Targets) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "targets are only allowed for COHORT audience")
	}

	published := time.Now().UTC()
	if req.PublishedAt != nil {
		published = req.PublishedAt.UTC()
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(published) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "expires_at must be after published_at")
	}

	announcement := &models.Announcement{
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		Audience:    audience,
		Priority:    models.AnnouncementPriority(req.Priority),
		IsPinned:    req.IsPinned,
		PublishedAt: published,
		ExpiresAt:   req.ExpiresAt,
		CreatedBy:   meta.ActorID,
	}
	for _, t := range req.Targets {
		announcement.Targets = append(announcement.Targets, models.AnnouncementTarget{
			Major:     strings.TrimSpace(t.Major),
			YearLevel: t.YearLevel,
		})
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		s.logger.Error("create announcement failed", zap.Error(err))
		return nil, internalError(err, "failed to create announcement")
	}
	recordAudit(ctx, s.audit, s.logger, meta, models.AuditActionAnnouncementAdd, "announcements", announcement.ID, nil,
		map[string]interface{}{"title": announcement.Title, "audience": announcement.Audience})
	return announcement, nil
}

// Delete removes an announcement. Only its author or an admin may delete it.
func (s *AnnouncementService) Delete(ctx context.Context, id string, actorID string, actorRole models.UserRole) error {
	ann, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if actorRole != models.RoleAdmin && ann.CreatedBy != actorID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the author or an admin can delete this announcement")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete announcement")
	}
	return nil
}
