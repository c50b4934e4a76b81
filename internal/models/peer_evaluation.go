package models

import "time"

// PeerEvaluation is one rater's 1-5 scores for a ratee. Rater equal to ratee
// marks a self-evaluation.
type PeerEvaluation struct {
	ID             string    `db:"id" json:"id"`
	RaterID        string    `db:"rater_id" json:"rater_id"`
	RateeID        string    `db:"ratee_id" json:"ratee_id"`
	YearLevel      int       `db:"year_level" json:"year_level"`
	Semester       int       `db:"semester" json:"semester"`
	Communication  float64   `db:"communication" json:"communication"`
	Teamwork       float64   `db:"teamwork" json:"teamwork"`
	Responsibility float64   `db:"responsibility" json:"responsibility"`
	Cooperation    float64   `db:"cooperation" json:"cooperation"`
	Adaptability   float64   `db:"adaptability" json:"adaptability"`
	Comment        *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// PeerSummary aggregates evaluations of one ratee without exposing raters.
type PeerSummary struct {
	RateeID       string  `json:"ratee_id"`
	YearLevel     int     `json:"year_level"`
	Semester      int     `json:"semester"`
	PeerCount     int     `json:"peer_count"`
	PeerAverage   float64 `json:"peer_average"`
	HasSelf       bool    `json:"has_self"`
	SelfAverage   float64 `json:"self_average"`
	Collaboration float64 `json:"collaboration"`
}
