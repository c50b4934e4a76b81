package scoring

import "strings"

// GradeScale maps letter grades to grade points. Letters listed in NonGraded
// are excluded from GPA; those in PassingNonGraded still count as passed.
type GradeScale struct {
	Points           map[string]float64 `json:"points"`
	NonGraded        map[string]bool    `json:"non_graded"`
	PassingNonGraded map[string]bool    `json:"passing_non_graded"`
	PassPoints       float64            `json:"pass_points"`
}

// DefaultGradeScale returns the standard A-F scale with S/U pass-fail marks.
func DefaultGradeScale() GradeScale {
	return GradeScale{
		Points: map[string]float64{
			"A":  4,
			"B+": 3.5,
			"B":  3,
			"C+": 2.5,
			"C":  2,
			"D+": 1.5,
			"D":  1,
			"F":  0,
		},
		NonGraded:        map[string]bool{"S": true, "U": true},
		PassingNonGraded: map[string]bool{"S": true},
		PassPoints:       1,
	}
}

// CourseGrade is a single course outcome used by GPA and requirement checks.
type CourseGrade struct {
	CourseCode string
	Grade      string
	Credits    float64
}

func normalizeLetter(letter string) string {
	return strings.ToUpper(strings.TrimSpace(letter))
}

// PointsFor returns grade points for a letter and whether it is graded.
func (g GradeScale) PointsFor(letter string) (float64, bool) {
	letter = normalizeLetter(letter)
	if g.NonGraded[letter] {
		return 0, false
	}
	p, ok := g.Points[letter]
	return p, ok
}

// Passed reports whether the letter counts as a passed course.
func (g GradeScale) Passed(letter string) bool {
	letter = normalizeLetter(letter)
	if g.NonGraded[letter] {
		return g.PassingNonGraded[letter]
	}
	p, ok := g.Points[letter]
	return ok && p >= g.PassPoints
}

// WeightedGPA computes the credit-weighted GPA of graded courses. It returns
// nil when no graded course carries credit.
func (g GradeScale) WeightedGPA(courses []CourseGrade) *float64 {
	var sum, credits float64
	for _, c := range courses {
		cr := finite(c.Credits)
		if cr <= 0 {
			continue
		}
		p, ok := g.PointsFor(c.Grade)
		if !ok {
			continue
		}
		sum += p * cr
		credits += cr
	}
	if credits == 0 {
		return nil
	}
	return ptr(round2(clamp(sum/credits, 0, 4)))
}

// CoreCompletionPct returns the percentage of required course codes the
// student has passed. It returns nil when the requirement set is empty.
func (g GradeScale) CoreCompletionPct(required []string, courses []CourseGrade) *float64 {
	need := make(map[string]struct{}, len(required))
	for _, code := range required {
		code = normalizeLetter(code)
		if code != "" {
			need[code] = struct{}{}
		}
	}
	if len(need) == 0 {
		return nil
	}
	passed := make(map[string]struct{}, len(need))
	for _, c := range courses {
		code := normalizeLetter(c.CourseCode)
		if _, ok := need[code]; !ok {
			continue
		}
		if g.Passed(c.Grade) {
			passed[code] = struct{}{}
		}
	}
	return ptr(round2(float64(len(passed)) / float64(len(need)) * 100))
}
