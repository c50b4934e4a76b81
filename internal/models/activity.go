package models

import "time"

// Activity is a social or communication activity with logged hours.
type Activity struct {
	ID         string    `db:"id" json:"id"`
	AccountID  string    `db:"account_id" json:"account_id"`
	Category   string    `db:"category" json:"category"`
	Title      string    `db:"title" json:"title"`
	Role       string    `db:"role" json:"role"`
	Hours      float64   `db:"hours" json:"hours"`
	YearLevel  int       `db:"year_level" json:"year_level"`
	Semester   int       `db:"semester" json:"semester"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// RecordFilter narrows per-student record listings such as trainings and activities.
type RecordFilter struct {
	AccountID string
	YearLevel *int
	Semester  *int
}
