package dto

import "time"

// LanguageResultRequest records a CEPT, ICT or ITPE result. CEPT requires a
// level; ICT and ITPE require a 0-100 score.
type LanguageResultRequest struct {
	Framework    string    `json:"framework" validate:"required,oneof=CEPT ICT ITPE"`
	Level        *string   `json:"level" validate:"required_if=Framework CEPT,omitempty,oneof=A1 A2 B1 B2 C1 C2"`
	Score        *float64  `json:"score" validate:"required_unless=Framework CEPT,omitempty,gte=0,lte=100"`
	TakenAt      time.Time `json:"taken_at" validate:"required"`
	AttachmentID *string   `json:"attachment_id" validate:"omitempty,uuid"`
}

// TrainingRequest records a completed technology training.
type TrainingRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Provider    string    `json:"provider" validate:"omitempty,max=200"`
	Hours       float64   `json:"hours" validate:"gte=0,lte=1000"`
	CompletedAt time.Time `json:"completed_at" validate:"required"`
	YearLevel   int       `json:"year_level" validate:"required,min=1,max=8"`
	Semester    int       `json:"semester" validate:"required,min=1,max=3"`
}

// ActivityRequest records a social or communication activity.
type ActivityRequest struct {
	Category   string    `json:"category" validate:"required,max=64"`
	Title      string    `json:"title" validate:"required,max=200"`
	Role       string    `json:"role" validate:"required,oneof=participant staff"`
	Hours      float64   `json:"hours" validate:"gt=0,lte=500"`
	YearLevel  int       `json:"year_level" validate:"required,min=1,max=8"`
	Semester   int       `json:"semester" validate:"required,min=1,max=3"`
	OccurredAt time.Time `json:"occurred_at" validate:"required"`
}

// PeerEvaluationRequest rates a classmate, or oneself when RateeID is the caller.
type PeerEvaluationRequest struct {
	RateeID        string  `json:"ratee_id" validate:"required,uuid"`
	YearLevel      int     `json:"year_level" validate:"required,min=1,max=8"`
	Semester       int     `json:"semester" validate:"required,min=1,max=3"`
	Communication  float64 `json:"communication" validate:"gte=1,lte=5"`
	Teamwork       float64 `json:"teamwork" validate:"gte=1,lte=5"`
	Responsibility float64 `json:"responsibility" validate:"gte=1,lte=5"`
	Cooperation    float64 `json:"cooperation" validate:"gte=1,lte=5"`
	Adaptability   float64 `json:"adaptability" validate:"gte=1,lte=5"`
	Comment        *string `json:"comment" validate:"omitempty,max=1000"`
}
