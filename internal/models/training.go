package models

import "time"

// Training is a completed technology course or workshop.
type Training struct {
	ID          string    `db:"id" json:"id"`
	AccountID   string    `db:"account_id" json:"account_id"`
	Title       string    `db:"title" json:"title"`
	Provider    string    `db:"provider" json:"provider"`
	Hours       float64   `db:"hours" json:"hours"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
	YearLevel   int       `db:"year_level" json:"year_level"`
	Semester    int       `db:"semester" json:"semester"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
