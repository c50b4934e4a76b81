package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/dto"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
)

type fakeAnnouncementRepo struct {
	items   map[string]*models.Announcement
	filter  models.AnnouncementFilter
	deleted []string
}

func newFakeAnnouncementRepo() *fakeAnnouncementRepo {
	return &fakeAnnouncementRepo{items: map[string]*models.Announcement{}}
}

func (f *fakeAnnouncementRepo) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	f.filter = filter
	out := make([]models.Announcement, 0, len(f.items))
	for _, a := range f.items {
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (f *fakeAnnouncementRepo) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return a, nil
}

func (f *fakeAnnouncementRepo) Create(ctx context.Context, announcement *models.Announcement) error {
	announcement.ID = "ann-1"
	f.items[announcement.ID] = announcement
	return nil
}

func (f *fakeAnnouncementRepo) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.items, id)
	return nil
}

func TestCreateAnnouncementDefaultsAndAudit(t *testing.T) {
	repo := newFakeAnnouncementRepo()
	audit := &fakeAuditRepo{}
	svc := NewAnnouncementService(repo, audit, nil, nil)

	ann, err := svc.Create(context.Background(), dto.CreateAnnouncementRequest{
		Title: "Exam week", Content: "Bring ID", Audience: "students",
	}, models.RequestMeta{ActorID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, models.AnnouncementAudienceStudents, ann.Audience)
	assert.Equal(t, models.AnnouncementPriorityNormal, ann.Priority)
	assert.Equal(t, "t1", ann.CreatedBy)
	assert.False(t, ann.PublishedAt.IsZero())
	require.Len(t, audit.logs, 1)
}

func TestCreateCohortAnnouncementRequiresTargets(t *testing.T) {
	svc := NewAnnouncementService(newFakeAnnouncementRepo(), nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateAnnouncementRequest{Title: "x", Content: "y", Audience: "COHORT"}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, dto.CreateAnnouncementRequest{Title: "x", Content: "y", Audience: "ALL",
		Targets: []dto.AnnouncementTargetRequest{{Major: "CS"}}}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	ann, err := svc.Create(ctx, dto.CreateAnnouncementRequest{Title: "x", Content: "y", Audience: "cohort", Priority: "high",
		Targets: []dto.AnnouncementTargetRequest{{Major: " CS ", YearLevel: intPtr(2)}}}, models.RequestMeta{})
	require.NoError(t, err)
	require.Len(t, ann.Targets, 1)
	assert.Equal(t, "CS", ann.Targets[0].Major)
	assert.Equal(t, models.AnnouncementPriorityHigh, ann.Priority)
}

func TestCreateAnnouncementRejectsBadInput(t *testing.T) {
	svc := NewAnnouncementService(newFakeAnnouncementRepo(), nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateAnnouncementRequest{Title: "x", Content: "y", Audience: "PARENTS"}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, dto.CreateAnnouncementRequest{Title: "x", Content: "y", Audience: "ALL", Priority: "urgent"}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	past := time.Now().Add(-time.Hour)
	_, err = svc.Create(ctx, dto.CreateAnnouncementRequest{Title: "x", Content: "y", Audience: "ALL", ExpiresAt: &past}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestListAnnouncementsScopesStudents(t *testing.T) {
	repo := newFakeAnnouncementRepo()
	svc := NewAnnouncementService(repo, nil, nil, nil)

	_, pagination, err := svc.List(context.Background(), AnnouncementViewer{Role: models.RoleStudent, Major: "CS", YearLevel: intPtr(2)}, 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, "CS", repo.filter.Major)
	assert.Equal(t, []models.UserRole{models.RoleStudent}, repo.filter.AudienceRoles)

	_, _, err = svc.List(context.Background(), AnnouncementViewer{Role: models.RoleTeacher, Major: "CS"}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, repo.filter.Major)
}

func TestDeleteAnnouncementRequiresAuthorOrAdmin(t *testing.T) {
	repo := newFakeAnnouncementRepo()
	repo.items["a1"] = &models.Announcement{ID: "a1", CreatedBy: "t1"}
	svc := NewAnnouncementService(repo, nil, nil, nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, "a1", "t2", models.RoleTeacher), appErrors.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, "a1", "t1", models.RoleTeacher))
	assert.ErrorIs(t, svc.Delete(ctx, "a1", "admin", models.RoleAdmin), appErrors.ErrNotFound)
}
