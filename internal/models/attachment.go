package models

import "time"

// AttachmentKind classifies an uploaded certificate.
type AttachmentKind string

const (
	AttachmentKindCertificate AttachmentKind = "CERTIFICATE"
	AttachmentKindTranscript  AttachmentKind = "TRANSCRIPT"
	AttachmentKindEvidence    AttachmentKind = "EVIDENCE"
)

// Attachment is a stored evidence file owned by an account.
type Attachment struct {
	ID           string         `db:"id" json:"id"`
	AccountID    string         `db:"account_id" json:"account_id"`
	Kind         AttachmentKind `db:"kind" json:"kind"`
	OriginalName string         `db:"original_name" json:"original_name"`
	FilePath     string         `db:"file_path" json:"-"`
	MimeType     string         `db:"mime_type" json:"mime_type"`
	SizeBytes    int64          `db:"size_bytes" json:"size_bytes"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	DeletedAt    *time.Time     `db:"deleted_at" json:"deleted_at,omitempty"`
}

// SignedURL is a time-limited download link.
type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
