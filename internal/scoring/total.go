package scoring

// Composite carries the five normalised sub-scores and their equal-weighted total.
type Composite struct {
	Academic      float64 `json:"academic"`
	Language      float64 `json:"language"`
	Technology    float64 `json:"technology"`
	Social        float64 `json:"social"`
	Collaboration float64 `json:"collaboration"`
	Total         float64 `json:"total"`
}

// EqualWeightedTotal averages scores with equal weight after clamping each to [0,100].
func EqualWeightedTotal(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += clampPct(finite(s))
	}
	return round2(sum / float64(len(scores)))
}

// NewComposite clamps the five percents and computes the total.
func NewComposite(academic, language, technology, social, collaboration float64) Composite {
	c := Composite{
		Academic:      round2(clampPct(finite(academic))),
		Language:      round2(clampPct(finite(language))),
		Technology:    round2(clampPct(finite(technology))),
		Social:        round2(clampPct(finite(social))),
		Collaboration: round2(clampPct(finite(collaboration))),
	}
	c.Total = EqualWeightedTotal([]float64{c.Academic, c.Language, c.Technology, c.Social, c.Collaboration})
	return c
}
