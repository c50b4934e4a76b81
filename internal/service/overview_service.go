package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
)

type cohortScorer interface {
	CohortStudents(ctx context.Context, major string, yearLevel int) ([]models.Account, error)
	SummaryFor(ctx context.Context, account *models.Account, period models.Period) (*models.CompetencySummary, error)
}

// OverviewConfig tunes cohort overview generation.
type OverviewConfig struct {
	CacheTTL    time.Duration
	Threshold   float64
	Concurrency int
}

// OverviewService aggregates composites for a whole cohort.
type OverviewService struct {
	scorer cohortScorer
	cache  *CacheService
	cfg    OverviewConfig
	logger *zap.Logger
}

// NewOverviewService constructs an OverviewService. cache may be nil.
func NewOverviewService(scorer cohortScorer, cache *CacheService, cfg OverviewConfig, logger *zap.Logger) *OverviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 50
	}
	return &OverviewService{scorer: scorer, cache: cache, cfg: cfg, logger: logger}
}

func overviewCacheKey(filter models.CohortFilter) string {
	return fmt.Sprintf("overview:%s:%d:%d", filter.Major, filter.YearLevel, filter.Semester)
}

// Overview returns the cohort overview and whether it was served from cache.
// A nil threshold uses the configured default.
func (s *OverviewService) Overview(ctx context.Context, filter models.CohortFilter, threshold *float64) (*models.CohortOverview, bool, error) {
	filter.Major = strings.TrimSpace(filter.Major)
	if filter.Major == "" || filter.YearLevel < 1 || filter.Semester < 1 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "major, year and sem are required")
	}
	limit := s.cfg.Threshold
	if threshold != nil {
		if math.IsNaN(*threshold) || *threshold < 0 || *threshold > 100 {
			return nil, false, appErrors.Clone(appErrors.ErrValidation, "threshold must be between 0 and 100")
		}
		limit = *threshold
	}

	key := overviewCacheKey(filter)
	var cached models.CohortOverview
	if s.cache.Get(ctx, key, &cached) {
		applyThreshold(&cached, limit)
		return &cached, true, nil
	}

	overview, err := s.build(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	s.cache.Set(ctx, key, overview, s.cfg.CacheTTL)
	applyThreshold(overview, limit)
	return overview, false, nil
}

func (s *OverviewService) build(ctx context.Context, filter models.CohortFilter) (*models.CohortOverview, error) {
	students, err := s.scorer.CohortStudents(ctx, filter.Major, filter.YearLevel)
	if err != nil {
		return nil, err
	}
	period := models.Period{YearLevel: filter.YearLevel, Semester: filter.Semester}

	p := pool.NewWithResults[models.OverviewRow]().
		WithMaxGoroutines(s.cfg.Concurrency).
		WithContext(ctx).
		WithCancelOnError()
	for i := range students {
		student := students[i]
		p.Go(func(ctx context.Context) (models.OverviewRow, error) {
			summary, err := s.scorer.SummaryFor(ctx, &student, period)
			if err != nil {
				return models.OverviewRow{}, err
			}
			row := models.OverviewRow{
				AccountID: student.ID,
				FullName:  student.FullName,
				Scores:    summary.Scores,
			}
			if student.StudentCode != nil {
				row.StudentCode = *student.StudentCode
			}
			return row, nil
		})
	}
	rows, err := p.Wait()
	if err != nil {
		s.logger.Error("build cohort overview failed", zap.String("major", filter.Major), zap.Error(err))
		return nil, internalError(err, "failed to build cohort overview")
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StudentCode == rows[j].StudentCode {
			return rows[i].AccountID < rows[j].AccountID
		}
		return rows[i].StudentCode < rows[j].StudentCode
	})

	overview := &models.CohortOverview{
		Filter:       filter,
		StudentCount: len(rows),
		Rows:         rows,
		GeneratedAt:  time.Now().UTC(),
	}
	overview.Averages = averageScores(rows)
	return overview, nil
}

func averageScores(rows []models.OverviewRow) models.SubScores {
	var avg models.SubScores
	if len(rows) == 0 {
		return avg
	}
	for _, r := range rows {
		avg.Academic += r.Scores.Academic
		avg.Language += r.Scores.Language
		avg.Technology += r.Scores.Technology
		avg.Social += r.Scores.Social
		avg.Collaboration += r.Scores.Collaboration
		avg.Total += r.Scores.Total
	}
	n := float64(len(rows))
	return models.SubScores{
		Academic:      round2(avg.Academic / n),
		Language:      round2(avg.Language / n),
		Technology:    round2(avg.Technology / n),
		Social:        round2(avg.Social / n),
		Collaboration: round2(avg.Collaboration / n),
		Total:         round2(avg.Total / n),
	}
}

func applyThreshold(overview *models.CohortOverview, threshold float64) {
	overview.Threshold = threshold
	overview.BelowCount = 0
	for i := range overview.Rows {
		below := overview.Rows[i].Scores.Total < threshold
		overview.Rows[i].BelowTarget = below
		if below {
			overview.BelowCount++
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
