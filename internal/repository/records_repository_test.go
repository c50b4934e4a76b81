package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
)

func TestPeriodConditions(t *testing.T) {
	year := 3
	where, args := periodConditions("account_id", "s1", &year, nil)
	assert.Equal(t, "account_id = $1 AND year_level = $2", where)
	assert.Equal(t, []interface{}{"s1", 3}, args)
}

func TestListLanguageResults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLanguageRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM language_results WHERE account_id = $1 ORDER BY taken_at DESC")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "framework", "level", "score", "taken_at", "attachment_id", "created_at"}).
			AddRow("l1", "s1", "CEPT", "B2", nil, now, nil, now).
			AddRow("l2", "s1", "ICT", nil, 72.0, now, nil, now))

	results, err := repo.ListByAccount(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.NotNil(t, results[0].Level)
	assert.Equal(t, "B2", *results[0].Level)
	require.NotNil(t, results[1].Score)
	assert.Equal(t, 72.0, *results[1].Score)
}

func TestCreateTrainingAndActivity(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO trainings").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO activities").WillReturnResult(sqlmock.NewResult(1, 1))

	training := &models.Training{AccountID: "s1", Title: "Go", Hours: 8}
	require.NoError(t, NewTrainingRepository(db).Create(context.Background(), training))
	activity := &models.Activity{AccountID: "s1", Category: "social", Role: "staff", Hours: 4}
	require.NoError(t, NewActivityRepository(db).Create(context.Background(), activity))

	assert.NotEmpty(t, training.ID)
	assert.NotEmpty(t, activity.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActivitiesForPeriod(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	year, sem := 1, 2
	mock.ExpectQuery(regexp.QuoteMeta("FROM activities WHERE account_id = $1 AND year_level = $2 AND semester = $3 ORDER BY occurred_at DESC")).
		WithArgs("s1", 1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "category", "title", "role", "hours", "year_level", "semester", "occurred_at", "created_at"}))

	activities, err := NewActivityRepository(db).List(context.Background(), models.RecordFilter{AccountID: "s1", YearLevel: &year, Semester: &sem})
	require.NoError(t, err)
	assert.Empty(t, activities)
}

func TestFindTrainingNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectQuery("FROM trainings WHERE id").WillReturnError(sql.ErrNoRows)
	_, err := NewTrainingRepository(db).FindByID(context.Background(), "x")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpsertPeerEvaluation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPeerEvaluationRepository(db)

	mock.ExpectExec("INSERT INTO peer_evaluations").WillReturnResult(sqlmock.NewResult(1, 1))
	eval := &models.PeerEvaluation{RaterID: "s1", RateeID: "s2", YearLevel: 1, Semester: 1, Communication: 4, Teamwork: 4, Responsibility: 5, Cooperation: 3, Adaptability: 4}
	require.NoError(t, repo.Upsert(context.Background(), eval))
	assert.NotEmpty(t, eval.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAttachmentSkipsDeleted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttachmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM attachments WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs("a1").
		WillReturnError(sql.ErrNoRows)
	_, err := repo.FindByID(context.Background(), "a1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE attachments SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SoftDelete(context.Background(), "a1", time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
