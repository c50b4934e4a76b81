package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/dto"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/scoring"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
)

type academicRepository interface {
	ListGrades(ctx context.Context, filter models.GradeFilter) ([]models.CourseGrade, error)
	FindGrade(ctx context.Context, id string) (*models.CourseGrade, error)
	UpsertGrade(ctx context.Context, grade *models.CourseGrade) error
	UpsertGrades(ctx context.Context, grades []models.CourseGrade) error
	DeleteGrade(ctx context.Context, id string) error
	FindManualGPA(ctx context.Context, accountID string, period models.Period) (*models.ManualGPA, error)
	UpsertManualGPA(ctx context.Context, gpa *models.ManualGPA) error
	ListRequirements(ctx context.Context, major string, period models.Period) ([]models.CourseRequirement, error)
	ReplaceRequirements(ctx context.Context, major string, period models.Period, codes []string) ([]models.CourseRequirement, error)
}

// AcademicService manages course grades, manual GPAs and course requirements.
type AcademicService struct {
	repo      academicRepository
	audit     auditWriter
	scale     scoring.GradeScale
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicService constructs the service and registers the grade validator.
func NewAcademicService(repo academicRepository, audit auditWriter, scale scoring.GradeScale, validate *validator.Validate, logger *zap.Logger) *AcademicService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(scale.Points) == 0 {
		scale = scoring.DefaultGradeScale()
	}
	svc := &AcademicService{repo: repo, audit: audit, scale: scale, validator: validate, logger: logger}
	_ = svc.validator.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		return svc.knownGrade(fl.Field().String())
	})
	return svc
}

func (s *AcademicService) knownGrade(letter string) bool {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if s.scale.NonGraded[letter] {
		return true
	}
	_, ok := s.scale.Points[letter]
	return ok
}

// ListGrades returns course grades for an account, optionally scoped to a period.
func (s *AcademicService) ListGrades(ctx context.Context, accountID string, yearLevel, semester *int) ([]models.CourseGrade, error) {
	grades, err := s.repo.ListGrades(ctx, models.GradeFilter{AccountID: accountID, YearLevel: yearLevel, Semester: semester})
	if err != nil {
		s.logger.Error("list grades failed", zap.String("account_id", accountID), zap.Error(err))
		return nil, internalError(err, "failed to list grades")
	}
	return grades, nil
}

func normalizeGradeRequest(req *dto.CourseGradeRequest) {
	req.CourseCode = strings.ToUpper(strings.TrimSpace(req.CourseCode))
	req.CourseName = strings.TrimSpace(req.CourseName)
	req.Grade = strings.ToUpper(strings.TrimSpace(req.Grade))
}

func gradeFromRequest(accountID string, req dto.CourseGradeRequest) models.CourseGrade {
	return models.CourseGrade{
		AccountID:  accountID,
		CourseCode: req.CourseCode,
		CourseName: req.CourseName,
		Credits:    req.Credits,
		Grade:      req.Grade,
		YearLevel:  req.YearLevel,
		Semester:   req.Semester,
	}
}

// AddGrade inserts or replaces a course grade for the account.
func (s *AcademicService) AddGrade(ctx context.Context, accountID string, req dto.CourseGradeRequest) (*models.CourseGrade, error) {
	normalizeGradeRequest(&req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course grade payload")
	}
	grade := gradeFromRequest(accountID, req)
	if err := s.repo.UpsertGrade(ctx, &grade); err != nil {
		s.logger.Error("upsert grade failed", zap.String("account_id", accountID), zap.Error(err))
		return nil, internalError(err, "failed to save grade")
	}
	return &grade, nil
}

// BulkUpsertGrades writes every grade atomically. Any invalid row rejects the whole batch.
func (s *AcademicService) BulkUpsertGrades(ctx context.Context, accountID string, req dto.BulkGradesRequest) ([]models.CourseGrade, error) {
	for i := range req.Grades {
		normalizeGradeRequest(&req.Grades[i])
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid bulk grade payload")
	}
	grades := make([]models.CourseGrade, 0, len(req.Grades))
	for _, g := range req.Grades {
		grades = append(grades, gradeFromRequest(accountID, g))
	}
	if err := s.repo.UpsertGrades(ctx, grades); err != nil {
		s.logger.Error("bulk upsert grades failed", zap.String("account_id", accountID), zap.Int("rows", len(grades)), zap.Error(err))
		return nil, internalError(err, "failed to save grades")
	}
	return grades, nil
}

// DeleteGrade removes a grade owned by accountID. Admins pass an empty owner to skip the check.
func (s *AcademicService) DeleteGrade(ctx context.Context, id, ownerID string) error {
	grade, err := s.repo.FindGrade(ctx, id)
	if err != nil {
		return lookupError(err, "grade not found", "failed to load grade")
	}
	if ownerID != "" && grade.AccountID != ownerID {
		return appErrors.Clone(appErrors.ErrForbidden, "grade belongs to another account")
	}
	if err := s.repo.DeleteGrade(ctx, id); err != nil {
		return internalError(err, "failed to delete grade")
	}
	return nil
}

// SetManualGPA records the self-reported GPA for a period.
func (s *AcademicService) SetManualGPA(ctx context.Context, accountID string, req dto.ManualGPARequest) (*models.ManualGPA, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid manual gpa payload")
	}
	gpa := &models.ManualGPA{
		AccountID: accountID,
		YearLevel: req.YearLevel,
		Semester:  req.Semester,
		GPA:       req.GPA,
	}
	if err := s.repo.UpsertManualGPA(ctx, gpa); err != nil {
		return nil, internalError(err, "failed to save manual gpa")
	}
	return gpa, nil
}

// ManualGPA returns the recorded GPA for a period, or nil when none exists.
func (s *AcademicService) ManualGPA(ctx context.Context, accountID string, period models.Period) (*models.ManualGPA, error) {
	gpa, err := s.repo.FindManualGPA(ctx, accountID, period)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, internalError(err, "failed to load manual gpa")
	}
	return gpa, nil
}

// ListRequirements returns required course codes for a major and period.
func (s *AcademicService) ListRequirements(ctx context.Context, major string, period models.Period) ([]models.CourseRequirement, error) {
	major = strings.TrimSpace(major)
	if major == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "major is required")
	}
	reqs, err := s.repo.ListRequirements(ctx, major, period)
	if err != nil {
		return nil, internalError(err, "failed to list requirements")
	}
	return reqs, nil
}

// SetRequirements replaces the requirement set of a major and period.
func (s *AcademicService) SetRequirements(ctx context.Context, req dto.RequirementSetRequest, meta models.RequestMeta) ([]models.CourseRequirement, error) {
	req.Major = strings.TrimSpace(req.Major)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid requirement payload")
	}
	codes := dedupeCodes(req.CourseCodes)
	period := models.Period{YearLevel: req.YearLevel, Semester: req.Semester}
	reqs, err := s.repo.ReplaceRequirements(ctx, req.Major, period, codes)
	if err != nil {
		s.logger.Error("replace requirements failed", zap.String("major", req.Major), zap.Error(err))
		return nil, internalError(err, "failed to replace requirements")
	}
	recordAudit(ctx, s.audit, s.logger, meta, models.AuditActionRequirementSet, "course_requirements", req.Major, nil,
		map[string]interface{}{"year_level": req.YearLevel, "semester": req.Semester, "course_codes": codes})
	return reqs, nil
}

func dedupeCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
