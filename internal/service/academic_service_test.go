package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/dto"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/scoring"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
)

type fakeAcademicRepo struct {
	grades       []models.CourseGrade
	manual       map[string]*models.ManualGPA
	requirements []models.CourseRequirement
	replaced     []string
	deleted      []string
	bulkErr      error
	listErr      error
}

func newFakeAcademicRepo() *fakeAcademicRepo {
	return &fakeAcademicRepo{manual: map[string]*models.ManualGPA{}}
}

func manualKey(accountID string, p models.Period) string {
	return fmt.Sprintf("%s/%d/%d", accountID, p.YearLevel, p.Semester)
}

func (f *fakeAcademicRepo) ListGrades(ctx context.Context, filter models.GradeFilter) ([]models.CourseGrade, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.CourseGrade
	for _, g := range f.grades {
		if g.AccountID != filter.AccountID {
			continue
		}
		if filter.YearLevel != nil && g.YearLevel != *filter.YearLevel {
			continue
		}
		if filter.Semester != nil && g.Semester != *filter.Semester {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeAcademicRepo) FindGrade(ctx context.Context, id string) (*models.CourseGrade, error) {
	for _, g := range f.grades {
		if g.ID == id {
			copied := g
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAcademicRepo) UpsertGrade(ctx context.Context, grade *models.CourseGrade) error {
	if grade.ID == "" {
		grade.ID = "grade-" + grade.CourseCode
	}
	f.grades = append(f.grades, *grade)
	return nil
}

func (f *fakeAcademicRepo) UpsertGrades(ctx context.Context, grades []models.CourseGrade) error {
	if f.bulkErr != nil {
		return f.bulkErr
	}
	f.grades = append(f.grades, grades...)
	return nil
}

func (f *fakeAcademicRepo) DeleteGrade(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAcademicRepo) FindManualGPA(ctx context.Context, accountID string, period models.Period) (*models.ManualGPA, error) {
	gpa, ok := f.manual[manualKey(accountID, period)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return gpa, nil
}

func (f *fakeAcademicRepo) UpsertManualGPA(ctx context.Context, gpa *models.ManualGPA) error {
	f.manual[manualKey(gpa.AccountID, models.Period{YearLevel: gpa.YearLevel, Semester: gpa.Semester})] = gpa
	return nil
}

func (f *fakeAcademicRepo) ListRequirements(ctx context.Context, major string, period models.Period) ([]models.CourseRequirement, error) {
	var out []models.CourseRequirement
	for _, r := range f.requirements {
		if r.Major == major && r.YearLevel == period.YearLevel && r.Semester == period.Semester {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAcademicRepo) ReplaceRequirements(ctx context.Context, major string, period models.Period, codes []string) ([]models.CourseRequirement, error) {
	f.replaced = codes
	out := make([]models.CourseRequirement, 0, len(codes))
	for _, c := range codes {
		out = append(out, models.CourseRequirement{Major: major, YearLevel: period.YearLevel, Semester: period.Semester, CourseCode: c})
	}
	f.requirements = out
	return out, nil
}

type fakeAuditRepo struct {
	logs []*models.AuditLog
}

func (f *fakeAuditRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func newTestAcademicService(repo *fakeAcademicRepo, audit *fakeAuditRepo) *AcademicService {
	var writer auditWriter
	if audit != nil {
		writer = audit
	}
	return NewAcademicService(repo, writer, scoring.DefaultGradeScale(), nil, nil)
}

func TestAddGradeNormalisesAndValidates(t *testing.T) {
	repo := newFakeAcademicRepo()
	svc := newTestAcademicService(repo, nil)

	grade, err := svc.AddGrade(context.Background(), "acc-1", dto.CourseGradeRequest{
		CourseCode: " cs101 ", Credits: 3, Grade: "b+", YearLevel: 1, Semester: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "CS101", grade.CourseCode)
	assert.Equal(t, "B+", grade.Grade)
	assert.Equal(t, "acc-1", grade.AccountID)

	_, err = svc.AddGrade(context.Background(), "acc-1", dto.CourseGradeRequest{
		CourseCode: "CS102", Credits: 3, Grade: "E", YearLevel: 1, Semester: 1,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAddGradeAcceptsPassFail(t *testing.T) {
	svc := newTestAcademicService(newFakeAcademicRepo(), nil)
	grade, err := svc.AddGrade(context.Background(), "acc-1", dto.CourseGradeRequest{
		CourseCode: "GE100", Credits: 1, Grade: "s", YearLevel: 1, Semester: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "S", grade.Grade)
}

func TestBulkUpsertRejectsWholeBatch(t *testing.T) {
	repo := newFakeAcademicRepo()
	svc := newTestAcademicService(repo, nil)

	_, err := svc.BulkUpsertGrades(context.Background(), "acc-1", dto.BulkGradesRequest{Grades: []dto.CourseGradeRequest{
		{CourseCode: "CS101", Credits: 3, Grade: "A", YearLevel: 1, Semester: 1},
		{CourseCode: "CS102", Credits: 3, Grade: "Z", YearLevel: 1, Semester: 1},
	}})
	require.Error(t, err)
	assert.Empty(t, repo.grades)

	repo.bulkErr = errors.New("tx aborted")
	_, err = svc.BulkUpsertGrades(context.Background(), "acc-1", dto.BulkGradesRequest{Grades: []dto.CourseGradeRequest{
		{CourseCode: "CS101", Credits: 3, Grade: "A", YearLevel: 1, Semester: 1},
	}})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestDeleteGradeChecksOwner(t *testing.T) {
	repo := newFakeAcademicRepo()
	repo.grades = []models.CourseGrade{{ID: "g1", AccountID: "acc-1"}}
	svc := newTestAcademicService(repo, nil)

	err := svc.DeleteGrade(context.Background(), "g1", "acc-2")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	require.NoError(t, svc.DeleteGrade(context.Background(), "g1", "acc-1"))
	require.NoError(t, svc.DeleteGrade(context.Background(), "g1", ""))
	assert.Equal(t, []string{"g1", "g1"}, repo.deleted)

	assert.ErrorIs(t, svc.DeleteGrade(context.Background(), "missing", ""), appErrors.ErrNotFound)
}

func TestManualGPARoundTrip(t *testing.T) {
	repo := newFakeAcademicRepo()
	svc := newTestAcademicService(repo, nil)
	period := models.Period{YearLevel: 2, Semester: 1}

	got, err := svc.ManualGPA(context.Background(), "acc-1", period)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = svc.SetManualGPA(context.Background(), "acc-1", dto.ManualGPARequest{YearLevel: 2, Semester: 1, GPA: 4.5})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.SetManualGPA(context.Background(), "acc-1", dto.ManualGPARequest{YearLevel: 2, Semester: 1, GPA: 3.25})
	require.NoError(t, err)
	got, err = svc.ManualGPA(context.Background(), "acc-1", period)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3.25, got.GPA)
}

func TestSetRequirementsDedupesAndAudits(t *testing.T) {
	repo := newFakeAcademicRepo()
	audit := &fakeAuditRepo{}
	svc := newTestAcademicService(repo, audit)

	reqs, err := svc.SetRequirements(context.Background(), dto.RequirementSetRequest{
		Major: " CS ", YearLevel: 1, Semester: 1, CourseCodes: []string{"cs102", "CS101", "cs101"},
	}, models.RequestMeta{ActorID: "admin-1"})
	require.NoError(t, err)
	assert.Len(t, reqs, 2)
	assert.Equal(t, []string{"CS101", "CS102"}, repo.replaced)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionRequirementSet, audit.logs[0].Action)

	listed, err := svc.ListRequirements(context.Background(), "CS", models.Period{YearLevel: 1, Semester: 1})
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	_, err = svc.ListRequirements(context.Background(), " ", models.Period{YearLevel: 1, Semester: 1})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
