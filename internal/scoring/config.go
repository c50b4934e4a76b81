// Package scoring turns self-reported student records into normalised competency sub-scores.
//
// Every function is pure: inputs are values already fetched by the caller, outputs are numbers.
// Malformed or missing input degrades to zero (or nil where absence is meaningful) instead of
// returning an error. All business weights and lookup tables live in Config.
package scoring

// AcademicWeights blends the GPA-based and requirement-based academic scales.
type AcademicWeights struct {
	ManualGPA   float64 `json:"manual_gpa"`
	Requirement float64 `json:"requirement"`
}

// CollaborationWeights blends self and peer evaluation averages.
type CollaborationWeights struct {
	Self float64 `json:"self"`
	Peer float64 `json:"peer"`
}

// ActivityConfig tunes activity point accrual.
type ActivityConfig struct {
	PerHour           float64 `json:"per_hour"`
	ParticipantFactor float64 `json:"participant_factor"`
	StaffFactor       float64 `json:"staff_factor"`
	TargetPoints      float64 `json:"target_points"`
}

// TechConfig tunes the technology sub-score.
type TechConfig struct {
	ExamPoints       float64 `json:"exam_points"`
	MaxScore         float64 `json:"max_score"`
	MaxPassBonus     float64 `json:"max_pass_bonus"`
	ICTPassPct       float64 `json:"ict_pass_pct"`
	ICTPassBonus     float64 `json:"ict_pass_bonus"`
	ITPEPassPct      float64 `json:"itpe_pass_pct"`
	ITPEPassBonus    float64 `json:"itpe_pass_bonus"`
	ITPENearPassPct  float64 `json:"itpe_near_pass_pct"`
	ITPENearBonus    float64 `json:"itpe_near_bonus"`
	TrainingBonus    float64 `json:"training_bonus"`
	MaxTrainingBonus float64 `json:"max_training_bonus"`
}

// Config groups every tunable of the scoring engine.
type Config struct {
	Grades        GradeScale           `json:"grades"`
	Academic      AcademicWeights      `json:"academic"`
	Collaboration CollaborationWeights `json:"collaboration"`
	Activity      ActivityConfig       `json:"activity"`
	Tech          TechConfig           `json:"tech"`
}

// Business defaults. Keep these as the single source for weights used across the service.
const (
	DefaultManualGPAWeight   = 0.4
	DefaultRequirementWeight = 0.6
	DefaultSelfWeight        = 0.2
	DefaultPeerWeight        = 0.8
	DefaultActivityPerHour   = 1.0
	DefaultParticipantFactor = 1.0
	DefaultStaffFactor       = 1.5
	DefaultActivityTarget    = 40.0
)

// DefaultConfig returns the standard scoring configuration.
func DefaultConfig() Config {
	return Config{
		Grades: DefaultGradeScale(),
		Academic: AcademicWeights{
			ManualGPA:   DefaultManualGPAWeight,
			Requirement: DefaultRequirementWeight,
		},
		Collaboration: CollaborationWeights{
			Self: DefaultSelfWeight,
			Peer: DefaultPeerWeight,
		},
		Activity: ActivityConfig{
			PerHour:           DefaultActivityPerHour,
			ParticipantFactor: DefaultParticipantFactor,
			StaffFactor:       DefaultStaffFactor,
			TargetPoints:      DefaultActivityTarget,
		},
		Tech: DefaultTechConfig(),
	}
}

// DefaultTechConfig returns the exam/bonus table for the technology sub-score.
func DefaultTechConfig() TechConfig {
	return TechConfig{
		ExamPoints:       19,
		MaxScore:         20,
		MaxPassBonus:     1,
		ICTPassPct:       50,
		ICTPassBonus:     0.5,
		ITPEPassPct:      60,
		ITPEPassBonus:    0.5,
		ITPENearPassPct:  55,
		ITPENearBonus:    0.25,
		TrainingBonus:    0.1,
		MaxTrainingBonus: 0.5,
	}
}

// Normalize fills zero-valued sections with defaults so partially specified
// configuration (e.g. only weights overridden) stays usable.
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if len(c.Grades.Points) == 0 {
		c.Grades = def.Grades
	}
	if c.Academic.ManualGPA <= 0 && c.Academic.Requirement <= 0 {
		c.Academic = def.Academic
	}
	if c.Collaboration.Self <= 0 && c.Collaboration.Peer <= 0 {
		c.Collaboration = def.Collaboration
	}
	if c.Activity.PerHour <= 0 {
		c.Activity.PerHour = def.Activity.PerHour
	}
	if c.Activity.ParticipantFactor <= 0 {
		c.Activity.ParticipantFactor = def.Activity.ParticipantFactor
	}
	if c.Activity.StaffFactor <= 0 {
		c.Activity.StaffFactor = def.Activity.StaffFactor
	}
	if c.Activity.TargetPoints <= 0 {
		c.Activity.TargetPoints = def.Activity.TargetPoints
	}
	if c.Tech.MaxScore <= 0 {
		c.Tech = def.Tech
	}
	return c
}
