package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
)

const attachmentColumns = `id, account_id, kind, original_name, file_path, mime_type, size_bytes, created_at, deleted_at`

// AttachmentRepository persists certificate metadata. File bytes live in storage.
type AttachmentRepository struct {
	db *sqlx.DB
}

// NewAttachmentRepository constructs the repository.
func NewAttachmentRepository(db *sqlx.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create inserts attachment metadata.
func (r *AttachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	if attachment.ID == "" {
		attachment.ID = uuid.NewString()
	}
	if attachment.CreatedAt.IsZero() {
		attachment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attachments (` + attachmentColumns + `) VALUES (:id, :account_id, :kind, :original_name, :file_path, :mime_type, :size_bytes, :created_at, :deleted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attachment); err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}
	return nil
}

// FindByID returns a live attachment.
func (r *AttachmentRepository) FindByID(ctx context.Context, id string) (*models.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE id = $1 AND deleted_at IS NULL`
	var attachment models.Attachment
	if err := r.db.GetContext(ctx, &attachment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find attachment: %w", err)
	}
	return &attachment, nil
}

// ListByAccount returns live attachments owned by an account.
func (r *AttachmentRepository) ListByAccount(ctx context.Context, accountID string) ([]models.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE account_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`
	var attachments []models.Attachment
	if err := r.db.SelectContext(ctx, &attachments, query, accountID); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return attachments, nil
}

// ListDeletedBefore returns up to limit attachments soft-deleted before cutoff, oldest first.
func (r *AttachmentRepository) ListDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE deleted_at IS NOT NULL AND deleted_at < $1 ORDER BY deleted_at ASC LIMIT $2`
	var attachments []models.Attachment
	if err := r.db.SelectContext(ctx, &attachments, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list deleted attachments: %w", err)
	}
	return attachments, nil
}

// Purge removes a soft-deleted attachment row permanently.
func (r *AttachmentRepository) Purge(ctx context.Context, id string) error {
	const query = `DELETE FROM attachments WHERE id = $1 AND deleted_at IS NOT NULL`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("purge attachment: %w", err)
	}
	return nil
}

// SoftDelete marks an attachment deleted.
func (r *AttachmentRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE attachments SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}
