package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/dto"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
)

type fakeAccountRepo struct {
	accounts  map[string]*models.Account
	created   []*models.Account
	deleted   []string
	auditLogs []*models.AuditLog
	filter    models.AccountFilter
}

func newFakeAccountRepo(accounts ...*models.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{accounts: map[string]*models.Account{}}
	for _, a := range accounts {
		repo.accounts[a.ID] = a
	}
	return repo
}

func (f *fakeAccountRepo) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error) {
	f.filter = filter
	out := make([]models.Account, 0, len(f.accounts))
	for _, a := range f.accounts {
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (f *fakeAccountRepo) FindByID(ctx context.Context, id string) (*models.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAccountRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *models.Account) error {
	account.ID = "new-id"
	f.created = append(f.created, account)
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeAccountRepo) Update(ctx context.Context, account *models.Account) error {
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeAccountRepo) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAccountRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	f.auditLogs = append(f.auditLogs, log)
	return nil
}

func strPtr(v string) *string { return &v }

func TestAccountServiceCreateStudent(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, nil, nil)

	account, err := svc.Create(context.Background(), dto.CreateAccountRequest{
		Email: " Student@Example.com ", Password: "password1", FullName: "Student One", Role: "student",
		StudentCode: strPtr("6501"), Major: strPtr("CS"), YearLevel: intPtr(2),
	}, models.RequestMeta{ActorID: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", account.Email)
	assert.Equal(t, models.RoleStudent, account.Role)
	assert.True(t, account.Active)
	assert.NotEqual(t, "password1", account.PasswordHash)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, "admin", *repo.auditLogs[0].AccountID)
}

func TestAccountServiceCreateValidates(t *testing.T) {
	repo := newFakeAccountRepo(&models.Account{ID: "a1", Email: "taken@example.com"})
	svc := NewAccountService(repo, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateAccountRequest{
		Email: "s@example.com", Password: "password1", FullName: "S", Role: models.RoleStudent,
	}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(context.Background(), dto.CreateAccountRequest{
		Email: "taken@example.com", Password: "password1", FullName: "T", Role: models.RoleTeacher,
	}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestAccountServiceTeacherDropsStudentFields(t *testing.T) {
	svc := NewAccountService(newFakeAccountRepo(), nil, nil)
	account, err := svc.Create(context.Background(), dto.CreateAccountRequest{
		Email: "t@example.com", Password: "password1", FullName: "T", Role: models.RoleTeacher, Major: strPtr("CS"),
	}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Nil(t, account.Major)
}

func TestAccountServiceUpdate(t *testing.T) {
	repo := newFakeAccountRepo(&models.Account{ID: "s1", Role: models.RoleStudent, Major: strPtr("CS"), YearLevel: intPtr(1), Active: true})
	svc := NewAccountService(repo, nil, nil)

	updated, err := svc.Update(context.Background(), "s1", dto.UpdateAccountRequest{YearLevel: intPtr(2)}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 2, *updated.YearLevel)

	_, err = svc.Update(context.Background(), "missing", dto.UpdateAccountRequest{}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAccountServiceDelete(t *testing.T) {
	repo := newFakeAccountRepo(&models.Account{ID: "s1", Active: true})
	svc := NewAccountService(repo, nil, nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), "admin", models.RequestMeta{ActorID: "admin"}), appErrors.ErrConflict)
	require.NoError(t, svc.Delete(context.Background(), "s1", models.RequestMeta{ActorID: "admin"}))
	assert.Equal(t, []string{"s1"}, repo.deleted)
}

func TestAccountServiceListRejectsUnknownRole(t *testing.T) {
	svc := NewAccountService(newFakeAccountRepo(), nil, nil)
	role := models.UserRole("JANITOR")
	_, _, err := svc.List(context.Background(), models.AccountFilter{Role: &role})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, pagination, err := svc.List(context.Background(), models.AccountFilter{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 20, pagination.PageSize)
}
