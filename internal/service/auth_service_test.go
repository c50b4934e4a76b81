package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
)

type fakeAuthRepo struct {
	accounts         map[string]*models.Account
	refreshTokens    map[string]*models.RefreshToken
	findErr          error
	auditLogs        []*models.AuditLog
	lastLoginUpdated bool
	revokedAll       []string
}

func newFakeAuthRepo(accounts ...*models.Account) *fakeAuthRepo {
	repo := &fakeAuthRepo{accounts: map[string]*models.Account{}, refreshTokens: map[string]*models.RefreshToken{}}
	for _, a := range accounts {
		repo.accounts[a.ID] = a
	}
	return repo
}

func (f *fakeAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthRepo) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return a, nil
}

func (f *fakeAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	f.lastLoginUpdated = true
	return nil
}

func (f *fakeAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	f.accounts[id].PasswordHash = passwordHash
	return nil
}

func (f *fakeAuthRepo) RevokeAccountRefreshTokens(ctx context.Context, accountID string) error {
	f.revokedAll = append(f.revokedAll, accountID)
	return nil
}

func (f *fakeAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	f.refreshTokens[token.Token] = token
	return nil
}

func (f *fakeAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := f.refreshTokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rt, nil
}

func (f *fakeAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range f.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (f *fakeAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	f.auditLogs = append(f.auditLogs, log)
	return nil
}

func hashed(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestAuthService(repo *fakeAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		SingleSession:      true,
	})
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	major := "CS"
	repo := newFakeAuthRepo(&models.Account{ID: "s1", Email: "student@example.com", PasswordHash: hashed(t, "password"), Active: true, Role: models.RoleStudent, Major: &major})
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: " student@example.com ", Password: "password", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "CS", *res.User.Major)
	assert.True(t, repo.lastLoginUpdated)
	assert.Equal(t, []string{"s1"}, repo.revokedAll)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)
	assert.Equal(t, "10.0.0.1", repo.auditLogs[0].IPAddress)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	repo := newFakeAuthRepo(&models.Account{ID: "s1", Email: "student@example.com", PasswordHash: hashed(t, "password"), Active: true})
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "student@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "password"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "password"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAuthServiceLoginInactive(t *testing.T) {
	repo := newFakeAuthRepo(&models.Account{ID: "s1", Email: "student@example.com", PasswordHash: hashed(t, "password")})
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "student@example.com", Password: "password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshTokenRotates(t *testing.T) {
	account := &models.Account{ID: "u1", Email: "teacher@example.com", Active: true, Role: models.RoleTeacher}
	repo := newFakeAuthRepo(account)
	repo.refreshTokens["token"] = &models.RefreshToken{ID: "rt1", AccountID: "u1", Token: "token", ExpiresAt: time.Now().Add(time.Hour)}
	svc := newTestAuthService(repo)

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "token", res.RefreshToken)
	assert.True(t, repo.refreshTokens["token"].Revoked)
	assert.Equal(t, models.AuditActionTokenRefresh, repo.auditLogs[0].Action)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "token"})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceLogoutChecksOwner(t *testing.T) {
	repo := newFakeAuthRepo(&models.Account{ID: "u1", Active: true})
	repo.refreshTokens["token"] = &models.RefreshToken{ID: "rt1", AccountID: "u1", Token: "token", ExpiresAt: time.Now().Add(time.Hour)}
	svc := newTestAuthService(repo)

	err := svc.Logout(context.Background(), "token", "u2", "", "")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	require.NoError(t, svc.Logout(context.Background(), "token", "u1", "", ""))
	assert.True(t, repo.refreshTokens["token"].Revoked)
}

func TestAuthServiceChangePassword(t *testing.T) {
	oldHash := hashed(t, "old-password")
	repo := newFakeAuthRepo(&models.Account{ID: "u1", PasswordHash: oldHash, Active: true})
	svc := newTestAuthService(repo)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "newpassword"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	err = svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "old-password", NewPassword: "newpassword"})
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, repo.accounts["u1"].PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.accounts["u1"].PasswordHash), []byte("newpassword")))
	assert.Contains(t, repo.revokedAll, "u1")
}

func TestAuthServiceMe(t *testing.T) {
	repo := newFakeAuthRepo(&models.Account{ID: "u1", Email: "a@example.com", Role: models.RoleAdmin})
	svc := newTestAuthService(repo)

	info, err := svc.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, info.Role)

	_, err = svc.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestValidateToken(t *testing.T) {
	svc := newTestAuthService(newFakeAuthRepo())
	account := &models.Account{ID: "u1", Email: "user@example.com", Role: models.RoleAdmin}
	token, err := svc.generateAccessToken(account)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	_, err = svc.ValidateToken(token + "x")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
