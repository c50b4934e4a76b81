package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/repository"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/service"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/config"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/database"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/logger"
)

// competency-report prints a cohort overview table to stdout.
func main() {
	major := flag.String("major", "", "major code")
	year := flag.Int("year", 0, "year level")
	sem := flag.Int("sem", 0, "semester")
	threshold := flag.Float64("threshold", -1, "low score threshold (defaults to configured value)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	accounts := repository.NewAccountRepository(db)
	academic := repository.NewAcademicRepository(db)
	competency := service.NewCompetencyService(service.CompetencySources{
		Accounts:   accounts,
		Academic:   academic,
		Language:   repository.NewLanguageRepository(db),
		Trainings:  repository.NewTrainingRepository(db),
		Activities: repository.NewActivityRepository(db),
		Peers:      repository.NewPeerEvaluationRepository(db),
		Snapshots:  repository.NewCompetencyRepository(db),
		Audit:      accounts,
	}, service.ScoringConfigFrom(cfg.Scoring), nil, nil, logr)
	overviews := service.NewOverviewService(competency, nil, service.OverviewConfig{
		Threshold:   cfg.Competency.LowScoreThreshold,
		Concurrency: cfg.Competency.WorkerConcurrency,
	}, logr)

	var limit *float64
	if *threshold >= 0 {
		limit = threshold
	}
	overview, _, err := overviews.Overview(context.Background(), models.CohortFilter{Major: *major, YearLevel: *year, Semester: *sem}, limit)
	if err != nil {
		color.Red("overview failed: %v", err)
		os.Exit(1)
	}
	render(overview)
}

func render(overview *models.CohortOverview) {
	color.Cyan("\n%s year %d semester %d", overview.Filter.Major, overview.Filter.YearLevel, overview.Filter.Semester)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Code", "Name", "Academic", "Language", "Technology", "Social", "Collab", "Total", "Below"})
	table.AppendBulk(tableRows(overview, color.New(color.FgRed, color.Bold).SprintFunc()))
	avg := overview.Averages
	table.SetFooter([]string{"", "Average", score(avg.Academic), score(avg.Language), score(avg.Technology),
		score(avg.Social), score(avg.Collaboration), score(avg.Total), ""})
	table.Render()

	summary := fmt.Sprintf("%d students, %d below %.2f", overview.StudentCount, overview.BelowCount, overview.Threshold)
	if overview.BelowCount > 0 {
		color.Yellow("%s", summary)
		return
	}
	color.Green("%s", summary)
}

// tableRows formats one row per student; alert wraps totals below the threshold.
func tableRows(overview *models.CohortOverview, alert func(a ...interface{}) string) [][]string {
	rows := make([][]string, 0, len(overview.Rows))
	for _, row := range overview.Rows {
		below, total := "", score(row.Scores.Total)
		if row.BelowTarget {
			below, total = "yes", alert(total)
		}
		rows = append(rows, []string{
			row.StudentCode,
			row.FullName,
			score(row.Scores.Academic),
			score(row.Scores.Language),
			score(row.Scores.Technology),
			score(row.Scores.Social),
			score(row.Scores.Collaboration),
			total,
			below,
		})
	}
	return rows
}

func score(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
