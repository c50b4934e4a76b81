package scoring

import "math"

// TechResult is the 0-20 technology score broken into its parts.
type TechResult struct {
	Base          float64 `json:"base"`
	PassBonus     float64 `json:"pass_bonus"`
	TrainingBonus float64 `json:"training_bonus"`
	Score         float64 `json:"score"`
	Percent       float64 `json:"percent"`
}

// ScoreTech scores the best exam percentage plus pass and training bonuses.
func ScoreTech(trainingCount int, ictPct, itpePct float64, cept *LanguageResult, cfg TechConfig) TechResult {
	if cfg.MaxScore <= 0 {
		cfg = DefaultTechConfig()
	}
	ict := clampPct(finite(ictPct))
	itpe := clampPct(finite(itpePct))
	best := math.Max(ict, math.Max(itpe, CEPTPercent(cept)))
	base := best / 100 * cfg.ExamPoints

	var pass float64
	if ict >= cfg.ICTPassPct && ict > 0 {
		pass += cfg.ICTPassBonus
	}
	switch {
	case itpe >= cfg.ITPEPassPct && itpe > 0:
		pass += cfg.ITPEPassBonus
	case itpe >= cfg.ITPENearPassPct && itpe > 0:
		pass += cfg.ITPENearBonus
	}
	pass = math.Min(pass, cfg.MaxPassBonus)

	if trainingCount < 0 {
		trainingCount = 0
	}
	training := math.Min(float64(trainingCount)*cfg.TrainingBonus, cfg.MaxTrainingBonus)

	total := clamp(base+pass+training, 0, cfg.MaxScore)
	return TechResult{
		Base:          round2(base),
		PassBonus:     round2(pass),
		TrainingBonus: round2(training),
		Score:         round2(total),
		Percent:       round2(clampPct(total / cfg.MaxScore * 100)),
	}
}
