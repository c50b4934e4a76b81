package models

import "time"

// CompetencyScore is the persisted per-period snapshot written by a recalculation.
type CompetencyScore struct {
	ID                string    `db:"id" json:"id"`
	AccountID         string    `db:"account_id" json:"account_id"`
	YearLevel         int       `db:"year_level" json:"year_level"`
	Semester          int       `db:"semester" json:"semester"`
	ManualGPA         *float64  `db:"manual_gpa" json:"manual_gpa"`
	ComputedGPA       *float64  `db:"computed_gpa" json:"computed_gpa"`
	GPAUsed           *float64  `db:"gpa_used" json:"gpa_used"`
	ScoreGPA          float64   `db:"score_gpa" json:"score_gpa"`
	CoreCompletionPct *float64  `db:"core_completion_pct" json:"core_completion_pct"`
	ScoreCore         *float64  `db:"score_core" json:"score_core"`
	ScoreAcademic     float64   `db:"score_academic" json:"score_academic"`
	AcademicPct       float64   `db:"academic_pct" json:"academic_pct"`
	LanguagePct       float64   `db:"language_pct" json:"language_pct"`
	TechnologyPct     float64   `db:"technology_pct" json:"technology_pct"`
	SocialPct         float64   `db:"social_pct" json:"social_pct"`
	CollaborationPct  float64   `db:"collaboration_pct" json:"collaboration_pct"`
	Total             float64   `db:"total" json:"total"`
	CalculatedAt      time.Time `db:"calculated_at" json:"calculated_at"`
}

// AcademicRecalculation is returned by the single-student recalculation endpoint.
type AcademicRecalculation struct {
	AccountID         string   `json:"account_id"`
	YearLevel         int      `json:"year_level"`
	Semester          int      `json:"semester"`
	ManualGPA         *float64 `json:"manual_gpa"`
	ComputedGPA       *float64 `json:"computed_gpa"`
	GPAUsed           *float64 `json:"gpa_used"`
	ScoreGPA          float64  `json:"score_gpa"`
	CoreCompletionPct *float64 `json:"core_completion_pct"`
	ScoreCore         *float64 `json:"score_core"`
	ScoreAcademic     float64  `json:"score_academic"`
	AcademicPercent   float64  `json:"academic_percent"`
}

// LanguageBreakdown lists the latest result per framework.
type LanguageBreakdown struct {
	Level   string             `json:"level,omitempty"`
	Score   float64            `json:"score"`
	Percent float64            `json:"percent"`
	Latest  map[string]float64 `json:"latest_percent"`
}

// TechnologyBreakdown explains the technology sub-score.
type TechnologyBreakdown struct {
	TrainingCount int     `json:"training_count"`
	ICTPercent    float64 `json:"ict_percent"`
	ITPEPercent   float64 `json:"itpe_percent"`
	Base          float64 `json:"base"`
	PassBonus     float64 `json:"pass_bonus"`
	TrainingBonus float64 `json:"training_bonus"`
	Score         float64 `json:"score"`
	Percent       float64 `json:"percent"`
}

// SocialBreakdown explains the activity sub-score.
type SocialBreakdown struct {
	Hours      float64            `json:"hours"`
	RawPoints  float64            `json:"raw_points"`
	Points     float64            `json:"points"`
	Percent    float64            `json:"percent"`
	ByCategory map[string]float64 `json:"by_category"`
}

// CollaborationBreakdown explains the peer/self blend.
type CollaborationBreakdown struct {
	PeerCount   int     `json:"peer_count"`
	SelfAverage float64 `json:"self_average"`
	PeerAverage float64 `json:"peer_average"`
	Score       float64 `json:"score"`
}

// CompetencySummary is the full composite for one student and period.
type CompetencySummary struct {
	AccountID     string                 `json:"account_id"`
	FullName      string                 `json:"full_name"`
	StudentCode   *string                `json:"student_code,omitempty"`
	Major         *string                `json:"major,omitempty"`
	YearLevel     int                    `json:"year_level"`
	Semester      int                    `json:"semester"`
	Academic      AcademicRecalculation  `json:"academic"`
	Language      LanguageBreakdown      `json:"language"`
	Technology    TechnologyBreakdown    `json:"technology"`
	Social        SocialBreakdown        `json:"social"`
	Collaboration CollaborationBreakdown `json:"collaboration"`
	Scores        SubScores              `json:"scores"`
	CalculatedAt  time.Time              `json:"calculated_at"`
}

// SubScores holds the five normalised percents and their equal-weighted total.
type SubScores struct {
	Academic      float64 `json:"academic"`
	Language      float64 `json:"language"`
	Technology    float64 `json:"technology"`
	Social        float64 `json:"social"`
	Collaboration float64 `json:"collaboration"`
	Total         float64 `json:"total"`
}

// CohortFilter selects students of a major and year for a period.
type CohortFilter struct {
	Major     string `json:"major"`
	YearLevel int    `json:"year_level"`
	Semester  int    `json:"semester"`
}

// OverviewRow is one student's line in a cohort overview.
type OverviewRow struct {
	AccountID   string    `json:"account_id"`
	StudentCode string    `json:"student_code"`
	FullName    string    `json:"full_name"`
	Scores      SubScores `json:"scores"`
	BelowTarget bool      `json:"below_threshold"`
}

// CohortOverview aggregates totals for a cohort.
type CohortOverview struct {
	Filter       CohortFilter  `json:"filter"`
	StudentCount int           `json:"student_count"`
	Averages     SubScores     `json:"averages"`
	Threshold    float64       `json:"threshold"`
	BelowCount   int           `json:"below_threshold_count"`
	Rows         []OverviewRow `json:"rows"`
	GeneratedAt  time.Time     `json:"generated_at"`
}

// RecalculationJob is the queue payload for one student's recalculation.
type RecalculationJob struct {
	AccountID string `json:"account_id"`
	YearLevel int    `json:"year_level"`
	Semester  int    `json:"semester"`
}

// BulkRecalculationResult reports how many jobs were queued.
type BulkRecalculationResult struct {
	Filter   CohortFilter `json:"filter"`
	Enqueued int          `json:"enqueued"`
	Skipped  int          `json:"skipped"`
}
