package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/export"
)

type overviewProvider interface {
	Overview(ctx context.Context, filter models.CohortFilter, threshold *float64) (*models.CohortOverview, bool, error)
}

// ExportFile is a rendered overview ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders cohort overviews as CSV or PDF.
type ExportService struct {
	overviews overviewProvider
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(overviews overviewProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{overviews: overviews, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

var overviewHeaders = []string{
	"Student Code", "Full Name", "Academic", "Language", "Technology", "Social", "Collaboration", "Total", "Below Threshold",
}

// Export renders the overview of a cohort in the requested format.
func (s *ExportService) Export(ctx context.Context, filter models.CohortFilter, format string, threshold *float64) (*ExportFile, error) {
	parsed, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	overview, _, err := s.overviews.Overview(ctx, filter, threshold)
	if err != nil {
		return nil, err
	}

	renderer := export.For(parsed)
	title := fmt.Sprintf("Competency Overview %s Y%d S%d", overview.Filter.Major, overview.Filter.YearLevel, overview.Filter.Semester)
	payload, err := renderer.Render(overviewDataset(overview), title)
	if err != nil {
		s.logger.Error("render overview export failed", zap.String("format", string(parsed)), zap.Error(err))
		return nil, internalError(err, "failed to render export")
	}
	return &ExportFile{
		Filename:    s.buildFilename(overview.Filter, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        payload,
	}, nil
}

func overviewDataset(overview *models.CohortOverview) export.Dataset {
	rows := make([]map[string]string, 0, len(overview.Rows)+1)
	for _, r := range overview.Rows {
		below := "no"
		if r.BelowTarget {
			below = "yes"
		}
		rows = append(rows, map[string]string{
			"Student Code":    r.StudentCode,
			"Full Name":       r.FullName,
			"Academic":        formatScore(r.Scores.Academic),
			"Language":        formatScore(r.Scores.Language),
			"Technology":      formatScore(r.Scores.Technology),
			"Social":          formatScore(r.Scores.Social),
			"Collaboration":   formatScore(r.Scores.Collaboration),
			"Total":           formatScore(r.Scores.Total),
			"Below Threshold": below,
		})
	}
	avg := overview.Averages
	rows = append(rows, map[string]string{
		"Full Name":       "Average",
		"Academic":        formatScore(avg.Academic),
		"Language":        formatScore(avg.Language),
		"Technology":      formatScore(avg.Technology),
		"Social":          formatScore(avg.Social),
		"Collaboration":   formatScore(avg.Collaboration),
		"Total":           formatScore(avg.Total),
		"Below Threshold": fmt.Sprintf("%d of %d", overview.BelowCount, overview.StudentCount),
	})
	return export.Dataset{Headers: overviewHeaders, Rows: rows}
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func (s *ExportService) buildFilename(filter models.CohortFilter, ext string) string {
	timestamp := s.now().Format("20060102_150405")
	return fmt.Sprintf("competency_%s_y%d_s%d_%s.%s", sanitizeFilename(filter.Major), filter.YearLevel, filter.Semester, timestamp, ext)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := strings.ToLower(replacer.Replace(raw))
	if len(result) > 64 {
		return result[:64]
	}
	return result
}
