package scoring

import (
	"strings"
	"time"
)

// Framework identifies an external certification exam.
type Framework string

const (
	FrameworkCEPT Framework = "CEPT"
	FrameworkICT  Framework = "ICT"
	FrameworkITPE Framework = "ITPE"
)

const langMax = 20.0

var ceptLevels = map[string]float64{
	"A1": 4,
	"A2": 8,
	"B1": 12,
	"B2": 16,
	"C1": 18,
	"C2": 20,
}

// LevelResult is a 0-20 table score and its percent.
type LevelResult struct {
	Score   float64 `json:"score"`
	Percent float64 `json:"percent"`
}

// LanguageResult is one exam outcome. Level is used for CEPT, Score (0-100)
// for percentage-based exams.
type LanguageResult struct {
	Framework Framework
	Level     string
	Score     *float64
	TakenAt   time.Time
}

// ScoreLang maps a CEPT level to its table score. Unknown levels score zero.
func ScoreLang(level string) LevelResult {
	score, ok := ceptLevels[strings.ToUpper(strings.TrimSpace(level))]
	if !ok {
		return LevelResult{}
	}
	return LevelResult{Score: score, Percent: round2(score / langMax * 100)}
}

// CEPTPercent returns the percent used for the technology blend: the level
// table when the level is known, otherwise the raw score.
func CEPTPercent(r *LanguageResult) float64 {
	if r == nil {
		return 0
	}
	if lvl := ScoreLang(r.Level); lvl.Score > 0 {
		return lvl.Percent
	}
	if r.Score != nil {
		return clampPct(finite(*r.Score))
	}
	return 0
}

// LatestByFramework keeps the newest result per framework. On equal
// timestamps the later entry in the input wins.
func LatestByFramework(results []LanguageResult) map[Framework]LanguageResult {
	latest := make(map[Framework]LanguageResult, 3)
	for _, r := range results {
		fw := Framework(strings.ToUpper(strings.TrimSpace(string(r.Framework))))
		if fw == "" {
			continue
		}
		r.Framework = fw
		if cur, ok := latest[fw]; ok && r.TakenAt.Before(cur.TakenAt) {
			continue
		}
		latest[fw] = r
	}
	return latest
}

// ResultPercent returns the percent carried by a non-CEPT result.
func ResultPercent(r *LanguageResult) float64 {
	if r == nil || r.Score == nil {
		return 0
	}
	return clampPct(finite(*r.Score))
}
