package scoring

const (
	academicMax = 40.0
	coreMax     = 15.0
	gpaMax      = 4.0
)

// AcademicResult is the academic block on its native 0-40 scale plus the normalised percent.
type AcademicResult struct {
	Score   float64 `json:"score"`
	Percent float64 `json:"percent"`
}

// ScoreGPA converts a 0-4 GPA onto the 0-40 academic scale.
func ScoreGPA(gpa float64) float64 {
	return round2(clamp(finite(gpa), 0, gpaMax) * 10)
}

// CoreScore15 converts a requirement completion percentage onto the stored 0-15 core scale.
func CoreScore15(pct float64) float64 {
	return round2(clampPct(finite(pct)) / 100 * coreMax)
}

// ScoreAcademic blends the GPA scale and the requirement scale. When only one
// side is present it carries the full weight; with neither the score is zero.
func ScoreAcademic(manualGPA, coreScore15 *float64, w AcademicWeights) AcademicResult {
	var gpaPart, corePart float64
	hasGPA := manualGPA != nil
	hasCore := coreScore15 != nil
	if hasGPA {
		gpaPart = clamp(finite(*manualGPA), 0, gpaMax) * 10
	}
	if hasCore {
		corePart = clamp(finite(*coreScore15), 0, coreMax) / coreMax * academicMax
	}

	wGPA, wCore := finite(w.ManualGPA), finite(w.Requirement)
	if wGPA < 0 {
		wGPA = 0
	}
	if wCore < 0 {
		wCore = 0
	}
	switch {
	case hasGPA && hasCore:
		if total := wGPA + wCore; total > 0 {
			wGPA, wCore = wGPA/total, wCore/total
		} else {
			wGPA, wCore = DefaultManualGPAWeight, DefaultRequirementWeight
		}
	case hasGPA:
		wGPA, wCore = 1, 0
	case hasCore:
		wGPA, wCore = 0, 1
	default:
		return AcademicResult{}
	}

	score := clamp(gpaPart*wGPA+corePart*wCore, 0, academicMax)
	return AcademicResult{
		Score:   round2(score),
		Percent: round2(clampPct(score / academicMax * 100)),
	}
}
