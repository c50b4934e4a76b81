package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var accountCols = []string{"id", "email", "password_hash", "full_name", "role", "student_code", "major", "year_level", "active", "last_login", "created_at", "updated_at"}

func TestFindAccountByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(accountCols).
		AddRow("1", "student@example.com", "hash", "Student", string(models.RoleStudent), "6501", "CS", 2, true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("student@example.com").
		WillReturnRows(rows)

	account, err := repo.FindByEmail(context.Background(), "student@example.com")
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", account.Email)
	require.NotNil(t, account.YearLevel)
	assert.Equal(t, 2, *account.YearLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAccountByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery("FROM accounts WHERE id = \\$1").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCreateRefreshToken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateRefreshToken(context.Background(), &models.RefreshToken{AccountID: "u1", Token: "token", ExpiresAt: time.Now()})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAccountsWithFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	role := models.RoleStudent
	year := 2
	now := time.Now()
	listRows := sqlmock.NewRows(accountCols).
		AddRow("1", "a@example.com", "hash", "A", string(models.RoleStudent), "6501", "CS", 2, true, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE 1=1 AND role = $1 AND major = $2 AND year_level = $3 ORDER BY full_name ASC LIMIT 10 OFFSET 10")).
		WithArgs(role, "CS", year).
		WillReturnRows(listRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM accounts WHERE 1=1 AND role = $1 AND major = $2 AND year_level = $3")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	accounts, total, err := repo.List(context.Background(), models.AccountFilter{
		Role: &role, Major: "CS", YearLevel: &year, Page: 2, PageSize: 10, SortBy: "full_name", SortOrder: "asc",
	})
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAccountsIgnoresUnknownSort(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE 1=1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows(accountCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM accounts WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.AccountFilter{SortBy: "password_hash; DROP TABLE accounts"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCohort(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM accounts WHERE role = \\$1 AND active = TRUE AND major = \\$2 AND year_level = \\$3").
		WithArgs(models.RoleStudent, "CS", 3).
		WillReturnRows(sqlmock.NewRows(accountCols).
			AddRow("s1", "s1@example.com", "h", "S1", "STUDENT", "6501", "CS", 3, true, nil, now, now).
			AddRow("s2", "s2@example.com", "h", "S2", "STUDENT", "6502", "CS", 3, true, nil, now, now))

	accounts, err := repo.ListCohort(context.Background(), "CS", 3)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccountAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO accounts").WillReturnResult(sqlmock.NewResult(1, 1))

	account := &models.Account{Email: "t@example.com", FullName: "T", Role: models.RoleTeacher, Active: true}
	require.NoError(t, repo.Create(context.Background(), account))
	assert.NotEmpty(t, account.ID)
	assert.False(t, account.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAuditLog(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	id := "u1"
	require.NoError(t, repo.CreateAuditLog(context.Background(), &models.AuditLog{AccountID: &id, Action: models.AuditActionLogin, Resource: "auth"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
