package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/scoring"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/config"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/jobs"
)

// Recalculation triggers reported to metrics.
const (
	TriggerManual = "manual"
	TriggerJob    = "job"

	recalculationJobType = "competency.recalculate"
	overviewCachePattern = "overview:*"
)

type competencyAccountReader interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
	ListCohort(ctx context.Context, major string, yearLevel int) ([]models.Account, error)
}

type academicReader interface {
	ListGrades(ctx context.Context, filter models.GradeFilter) ([]models.CourseGrade, error)
	FindManualGPA(ctx context.Context, accountID string, period models.Period) (*models.ManualGPA, error)
	ListRequirements(ctx context.Context, major string, period models.Period) ([]models.CourseRequirement, error)
}

type languageReader interface {
	ListByAccount(ctx context.Context, accountID string) ([]models.LanguageResult, error)
}

type trainingReader interface {
	List(ctx context.Context, filter models.RecordFilter) ([]models.Training, error)
}

type activityReader interface {
	List(ctx context.Context, filter models.RecordFilter) ([]models.Activity, error)
}

type peerReader interface {
	ListForRatee(ctx context.Context, rateeID string, period models.Period) ([]models.PeerEvaluation, error)
}

type snapshotStore interface {
	UpsertSnapshot(ctx context.Context, score *models.CompetencyScore) error
	FindSnapshot(ctx context.Context, accountID string, period models.Period) (*models.CompetencyScore, error)
}

type jobEnqueuer interface {
	Enqueue(ctx context.Context, job jobs.Job) error
}

// CompetencySources groups the record stores the composite is computed from.
type CompetencySources struct {
	Accounts   competencyAccountReader
	Academic   academicReader
	Language   languageReader
	Trainings  trainingReader
	Activities activityReader
	Peers      peerReader
	Snapshots  snapshotStore
	Audit      auditWriter
}

// CompetencyService computes sub-scores from stored records and persists snapshots.
type CompetencyService struct {
	src     CompetencySources
	cfg     scoring.Config
	cache   *CacheService
	metrics *MetricsService
	queue   jobEnqueuer
	logger  *zap.Logger
	now     func() time.Time
}

// ScoringConfigFrom overlays configured weights on the scoring defaults.
func ScoringConfigFrom(sc config.ScoringConfig) scoring.Config {
	cfg := scoring.DefaultConfig()
	if sc.ManualGPAWeight > 0 || sc.RequirementWeight > 0 {
		cfg.Academic = scoring.AcademicWeights{ManualGPA: sc.ManualGPAWeight, Requirement: sc.RequirementWeight}
	}
	if sc.SelfWeight > 0 || sc.PeerWeight > 0 {
		cfg.Collaboration = scoring.CollaborationWeights{Self: sc.SelfWeight, Peer: sc.PeerWeight}
	}
	if sc.ActivityPerHour > 0 {
		cfg.Activity.PerHour = sc.ActivityPerHour
	}
	if sc.ActivityStaffFactor > 0 {
		cfg.Activity.StaffFactor = sc.ActivityStaffFactor
	}
	if sc.ActivityTarget > 0 {
		cfg.Activity.TargetPoints = sc.ActivityTarget
	}
	return cfg.Normalize()
}

// NewCompetencyService constructs the service. cache and metrics may be nil.
func NewCompetencyService(src CompetencySources, cfg scoring.Config, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *CompetencyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompetencyService{
		src:     src,
		cfg:     cfg.Normalize(),
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetQueue attaches the background queue used for cohort recalculation.
func (s *CompetencyService) SetQueue(q jobEnqueuer) {
	s.queue = q
}

// Config returns the effective scoring configuration.
func (s *CompetencyService) Config() scoring.Config {
	return s.cfg
}

func (s *CompetencyService) loadStudent(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.src.Accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, lookupError(err, "account not found", "failed to load account")
	}
	if account.Role != models.RoleStudent || !account.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "competency is only tracked for active students")
	}
	return account, nil
}

type studentRecords struct {
	periodGrades []models.CourseGrade
	allGrades    []models.CourseGrade
	manualGPA    *float64
	required     []string
	language     []models.LanguageResult
	trainings    []models.Training
	activities   []models.Activity
	evaluations  []models.PeerEvaluation
}

// loadRecords fetches every record source concurrently.
func (s *CompetencyService) loadRecords(ctx context.Context, account *models.Account, period models.Period) (*studentRecords, error) {
	recs := &studentRecords{}
	periodFilter := models.RecordFilter{AccountID: account.ID, YearLevel: intPtr(period.YearLevel), Semester: intPtr(period.Semester)}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		recs.allGrades, err = s.src.Academic.ListGrades(gctx, models.GradeFilter{AccountID: account.ID})
		return err
	})
	g.Go(func() error {
		gpa, err := s.src.Academic.FindManualGPA(gctx, account.ID, period)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		value := gpa.GPA
		recs.manualGPA = &value
		return nil
	})
	if account.Major != nil && *account.Major != "" {
		major := *account.Major
		g.Go(func() error {
			reqs, err := s.src.Academic.ListRequirements(gctx, major, period)
			if err != nil {
				return err
			}
			for _, r := range reqs {
				recs.required = append(recs.required, r.CourseCode)
			}
			return nil
		})
	}
	g.Go(func() (err error) {
		recs.language, err = s.src.Language.ListByAccount(gctx, account.ID)
		return err
	})
	g.Go(func() (err error) {
		recs.trainings, err = s.src.Trainings.List(gctx, periodFilter)
		return err
	})
	g.Go(func() (err error) {
		recs.activities, err = s.src.Activities.List(gctx, periodFilter)
		return err
	})
	g.Go(func() (err error) {
		recs.evaluations, err = s.src.Peers.ListForRatee(gctx, account.ID, period)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, grade := range recs.allGrades {
		if grade.YearLevel == period.YearLevel && grade.Semester == period.Semester {
			recs.periodGrades = append(recs.periodGrades, grade)
		}
	}
	return recs, nil
}

func toCourseGrades(grades []models.CourseGrade) []scoring.CourseGrade {
	out := make([]scoring.CourseGrade, 0, len(grades))
	for _, g := range grades {
		out = append(out, scoring.CourseGrade{CourseCode: g.CourseCode, Grade: g.Grade, Credits: g.Credits})
	}
	return out
}

// academicBlock prefers the manual GPA and falls back to the computed one.
// Required courses passed in any period count towards completion.
func (s *CompetencyService) academicBlock(accountID string, period models.Period, recs *studentRecords) models.AcademicRecalculation {
	computed := s.cfg.Grades.WeightedGPA(toCourseGrades(recs.periodGrades))
	gpaUsed := recs.manualGPA
	if gpaUsed == nil {
		gpaUsed = computed
	}

	out := models.AcademicRecalculation{
		AccountID:   accountID,
		YearLevel:   period.YearLevel,
		Semester:    period.Semester,
		ManualGPA:   recs.manualGPA,
		ComputedGPA: computed,
		GPAUsed:     gpaUsed,
	}
	if gpaUsed != nil {
		out.ScoreGPA = scoring.ScoreGPA(*gpaUsed)
	}
	out.CoreCompletionPct = s.cfg.Grades.CoreCompletionPct(recs.required, toCourseGrades(recs.allGrades))
	if out.CoreCompletionPct != nil {
		core := scoring.CoreScore15(*out.CoreCompletionPct)
		out.ScoreCore = &core
	}

	res := scoring.ScoreAcademic(gpaUsed, out.ScoreCore, s.cfg.Academic)
	out.ScoreAcademic = res.Score
	out.AcademicPercent = res.Percent
	return out
}

func (s *CompetencyService) compose(account *models.Account, period models.Period, recs *studentRecords) *models.CompetencySummary {
	academic := s.academicBlock(account.ID, period, recs)

	langInputs := make([]scoring.LanguageResult, 0, len(recs.language))
	for _, r := range recs.language {
		langInputs = append(langInputs, toScoringResult(r))
	}
	latest := scoring.LatestByFramework(langInputs)
	pick := func(fw scoring.Framework) *scoring.LanguageResult {
		if r, ok := latest[fw]; ok {
			return &r
		}
		return nil
	}
	cept, ict, itpe := pick(scoring.FrameworkCEPT), pick(scoring.FrameworkICT), pick(scoring.FrameworkITPE)

	language := models.LanguageBreakdown{Latest: map[string]float64{}}
	if cept != nil {
		lvl := scoring.ScoreLang(cept.Level)
		language.Level = strings.ToUpper(cept.Level)
		language.Score = lvl.Score
		language.Percent = lvl.Percent
		language.Latest[string(scoring.FrameworkCEPT)] = scoring.CEPTPercent(cept)
	}
	if ict != nil {
		language.Latest[string(scoring.FrameworkICT)] = scoring.ResultPercent(ict)
	}
	if itpe != nil {
		language.Latest[string(scoring.FrameworkITPE)] = scoring.ResultPercent(itpe)
	}

	tech := scoring.ScoreTech(len(recs.trainings), scoring.ResultPercent(ict), scoring.ResultPercent(itpe), cept, s.cfg.Tech)
	technology := models.TechnologyBreakdown{
		TrainingCount: len(recs.trainings),
		ICTPercent:    scoring.ResultPercent(ict),
		ITPEPercent:   scoring.ResultPercent(itpe),
		Base:          tech.Base,
		PassBonus:     tech.PassBonus,
		TrainingBonus: tech.TrainingBonus,
		Score:         tech.Score,
		Percent:       tech.Percent,
	}

	records := make([]scoring.ActivityRecord, 0, len(recs.activities))
	var hours float64
	for _, a := range recs.activities {
		records = append(records, scoring.ActivityRecord{Category: a.Category, Role: scoring.ActivityRole(a.Role), Hours: a.Hours})
		hours += a.Hours
	}
	act := scoring.ScoreActivities(records, s.cfg.Activity)
	social := models.SocialBreakdown{
		Hours:      hours,
		RawPoints:  act.RawPoints,
		Points:     act.Points,
		Percent:    act.Percent,
		ByCategory: act.ByCategory,
	}

	peer := summarizeEvaluations(account.ID, period, recs.evaluations, s.cfg.Collaboration)
	collaboration := models.CollaborationBreakdown{
		PeerCount:   peer.PeerCount,
		SelfAverage: peer.SelfAverage,
		PeerAverage: peer.PeerAverage,
		Score:       peer.Collaboration,
	}

	composite := scoring.NewComposite(academic.AcademicPercent, language.Percent, technology.Percent, social.Percent, collaboration.Score)
	return &models.CompetencySummary{
		AccountID:     account.ID,
		FullName:      account.FullName,
		StudentCode:   account.StudentCode,
		Major:         account.Major,
		YearLevel:     period.YearLevel,
		Semester:      period.Semester,
		Academic:      academic,
		Language:      language,
		Technology:    technology,
		Social:        social,
		Collaboration: collaboration,
		Scores: models.SubScores{
			Academic:      composite.Academic,
			Language:      composite.Language,
			Technology:    composite.Technology,
			Social:        composite.Social,
			Collaboration: composite.Collaboration,
			Total:         composite.Total,
		},
		CalculatedAt: s.now(),
	}
}

// Summary computes the full composite for a student and period without persisting it.
func (s *CompetencyService) Summary(ctx context.Context, accountID string, period models.Period) (*models.CompetencySummary, error) {
	account, err := s.loadStudent(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.SummaryFor(ctx, account, period)
}

// CohortStudents lists active students of a major and year.
func (s *CompetencyService) CohortStudents(ctx context.Context, major string, yearLevel int) ([]models.Account, error) {
	students, err := s.src.Accounts.ListCohort(ctx, strings.TrimSpace(major), yearLevel)
	if err != nil {
		return nil, internalError(err, "failed to list cohort")
	}
	return students, nil
}

// SummaryFor computes the composite for an already loaded student account.
func (s *CompetencyService) SummaryFor(ctx context.Context, account *models.Account, period models.Period) (*models.CompetencySummary, error) {
	recs, err := s.loadRecords(ctx, account, period)
	if err != nil {
		s.logger.Error("load competency records failed", zap.String("account_id", account.ID), zap.Error(err))
		return nil, internalError(err, "failed to load competency records")
	}
	return s.compose(account, period, recs), nil
}

// Snapshot returns the last persisted recalculation for a period.
func (s *CompetencyService) Snapshot(ctx context.Context, accountID string, period models.Period) (*models.CompetencyScore, error) {
	snap, err := s.src.Snapshots.FindSnapshot(ctx, accountID, period)
	if err != nil {
		return nil, lookupError(err, "no recalculation recorded for this period", "failed to load snapshot")
	}
	return snap, nil
}

// RecalculateAcademic recomputes and persists the snapshot for one student and returns the academic block.
func (s *CompetencyService) RecalculateAcademic(ctx context.Context, accountID string, period models.Period, meta models.RequestMeta) (*models.AcademicRecalculation, error) {
	summary, err := s.recalculate(ctx, accountID, period, TriggerManual)
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.src.Audit, s.logger, meta, models.AuditActionRecalculate, "competency_scores", accountID, nil,
		map[string]interface{}{"year_level": period.YearLevel, "semester": period.Semester, "total": summary.Scores.Total})
	return &summary.Academic, nil
}

func (s *CompetencyService) recalculate(ctx context.Context, accountID string, period models.Period, trigger string) (summary *models.CompetencySummary, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveRecalculation(trigger, err, time.Since(started))
	}()

	summary, err = s.Summary(ctx, accountID, period)
	if err != nil {
		return nil, err
	}
	snapshot := snapshotFrom(summary)
	if err = s.src.Snapshots.UpsertSnapshot(ctx, snapshot); err != nil {
		s.logger.Error("persist competency snapshot failed", zap.String("account_id", accountID), zap.Error(err))
		return nil, internalError(err, "failed to persist competency snapshot")
	}
	s.invalidateOverview(ctx)
	return summary, nil
}

func snapshotFrom(summary *models.CompetencySummary) *models.CompetencyScore {
	a := summary.Academic
	return &models.CompetencyScore{
		AccountID:         summary.AccountID,
		YearLevel:         summary.YearLevel,
		Semester:          summary.Semester,
		ManualGPA:         a.ManualGPA,
		ComputedGPA:       a.ComputedGPA,
		GPAUsed:           a.GPAUsed,
		ScoreGPA:          a.ScoreGPA,
		CoreCompletionPct: a.CoreCompletionPct,
		ScoreCore:         a.ScoreCore,
		ScoreAcademic:     a.ScoreAcademic,
		AcademicPct:       summary.Scores.Academic,
		LanguagePct:       summary.Scores.Language,
		TechnologyPct:     summary.Scores.Technology,
		SocialPct:         summary.Scores.Social,
		CollaborationPct:  summary.Scores.Collaboration,
		Total:             summary.Scores.Total,
		CalculatedAt:      summary.CalculatedAt,
	}
}

func (s *CompetencyService) invalidateOverview(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, overviewCachePattern); err != nil {
		s.logger.Warn("overview cache invalidation failed", zap.Error(err))
	}
}

// EnqueueCohort queues one recalculation job per active student of the cohort.
func (s *CompetencyService) EnqueueCohort(ctx context.Context, filter models.CohortFilter, meta models.RequestMeta) (*models.BulkRecalculationResult, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "recalculation queue is not running")
	}
	filter.Major = strings.TrimSpace(filter.Major)
	students, err := s.CohortStudents(ctx, filter.Major, filter.YearLevel)
	if err != nil {
		return nil, err
	}

	result := &models.BulkRecalculationResult{Filter: filter}
	for _, st := range students {
		job := jobs.Job{
			ID:   fmt.Sprintf("%s:%d:%d", st.ID, filter.YearLevel, filter.Semester),
			Type: recalculationJobType,
			Payload: models.RecalculationJob{
				AccountID: st.ID,
				YearLevel: filter.YearLevel,
				Semester:  filter.Semester,
			},
		}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			s.logger.Warn("enqueue recalculation failed", zap.String("account_id", st.ID), zap.Error(err))
			result.Skipped++
			continue
		}
		result.Enqueued++
	}
	recordAudit(ctx, s.src.Audit, s.logger, meta, models.AuditActionRecalculate, "competency_scores", filter.Major, nil,
		map[string]interface{}{"year_level": filter.YearLevel, "semester": filter.Semester, "enqueued": result.Enqueued})
	return result, nil
}

// HandleJob is the queue handler for recalculation jobs. Bad payloads and
// students that no longer qualify are not retried.
func (s *CompetencyService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(models.RecalculationJob)
	if !ok {
		return jobs.Permanent(fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID))
	}
	_, err := s.recalculate(ctx, payload.AccountID, models.Period{YearLevel: payload.YearLevel, Semester: payload.Semester}, TriggerJob)
	if errors.Is(err, appErrors.ErrNotFound) || errors.Is(err, appErrors.ErrValidation) {
		return jobs.Permanent(err)
	}
	return err
}
