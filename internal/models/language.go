package models

import "time"

// LanguageResult is a certification outcome (CEPT, ICT or ITPE).
type LanguageResult struct {
	ID           string    `db:"id" json:"id"`
	AccountID    string    `db:"account_id" json:"account_id"`
	Framework    string    `db:"framework" json:"framework"`
	Level        *string   `db:"level" json:"level,omitempty"`
	Score        *float64  `db:"score" json:"score,omitempty"`
	TakenAt      time.Time `db:"taken_at" json:"taken_at"`
	AttachmentID *string   `db:"attachment_id" json:"attachment_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
