package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/storage"
)

const (
	sniffBytes = 3072
	purgeBatch = 200
)

type attachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	FindByID(ctx context.Context, id string) (*models.Attachment, error)
	ListByAccount(ctx context.Context, accountID string) ([]models.Attachment, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	ListDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Attachment, error)
	Purge(ctx context.Context, id string) error
}

// AttachmentConfig bounds what uploads are accepted.
type AttachmentConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
	BasePath         string
	// PurgeRetention is how long soft-deleted rows are kept before PurgeDeleted removes them.
	PurgeRetention time.Duration
}

// AttachmentUpload carries one uploaded file.
type AttachmentUpload struct {
	Kind     models.AttachmentKind
	Filename string
	Content  io.Reader
}

// AttachmentService stores certificate files and issues signed download links.
type AttachmentService struct {
	repo    attachmentRepository
	storage *storage.LocalStorage
	signer  *storage.SignedURLSigner
	audit   auditWriter
	cfg     AttachmentConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewAttachmentService wires the attachment workflow.
func NewAttachmentService(repo attachmentRepository, store *storage.LocalStorage, signer *storage.SignedURLSigner, audit auditWriter, cfg AttachmentConfig, logger *zap.Logger) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 5 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"application/pdf", "image/png", "image/jpeg"}
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/api/attachments"
	}
	cfg.BasePath = strings.TrimRight(cfg.BasePath, "/")
	if cfg.PurgeRetention <= 0 {
		cfg.PurgeRetention = 30 * 24 * time.Hour
	}
	return &AttachmentService{
		repo:    repo,
		storage: store,
		signer:  signer,
		audit:   audit,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Upload validates the file type and size, then stores it for the account.
func (s *AttachmentService) Upload(ctx context.Context, accountID string, upload AttachmentUpload, meta models.RequestMeta) (*models.Attachment, error) {
	kind := models.AttachmentKind(strings.ToUpper(strings.TrimSpace(string(upload.Kind))))
	if kind == "" {
		kind = models.AttachmentKindCertificate
	}
	switch kind {
	case models.AttachmentKindCertificate, models.AttachmentKindTranscript, models.AttachmentKindEvidence:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "kind must be CERTIFICATE, TRANSCRIPT or EVIDENCE")
	}
	if upload.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}

	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(upload.Content, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, internalError(err, "failed to read upload")
	}
	head = head[:n]
	if n == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}
	detected := mimetype.Detect(head)
	if !s.allowed(detected) {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFileType, fmt.Sprintf("file type %s is not allowed", detected.String()))
	}

	id := uuid.NewString()
	relPath := path.Join(accountID, id+detected.Extension())
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), upload.Content), s.cfg.MaxFileSizeBytes+1)
	written, err := s.storage.SaveStream(relPath, body)
	if err != nil {
		return nil, internalError(err, "failed to store attachment")
	}
	if written > s.cfg.MaxFileSizeBytes {
		_ = s.storage.Delete(relPath)
		return nil, appErrors.Clone(appErrors.ErrFileTooLarge, fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxFileSizeBytes))
	}

	attachment := &models.Attachment{
		ID:           id,
		AccountID:    accountID,
		Kind:         kind,
		OriginalName: cleanOriginalName(upload.Filename),
		FilePath:     relPath,
		MimeType:     strings.SplitN(detected.String(), ";", 2)[0],
		SizeBytes:    written,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, attachment); err != nil {
		_ = s.storage.Delete(relPath)
		s.logger.Error("persist attachment failed", zap.String("account_id", accountID), zap.Error(err))
		return nil, internalError(err, "failed to save attachment")
	}
	recordAudit(ctx, s.audit, s.logger, meta, models.AuditActionAttachmentAdd, "attachments", attachment.ID, nil,
		map[string]interface{}{"kind": attachment.Kind, "size_bytes": attachment.SizeBytes, "mime_type": attachment.MimeType})
	return attachment, nil
}

func (s *AttachmentService) allowed(detected *mimetype.MIME) bool {
	for _, candidate := range s.cfg.AllowedMIMEs {
		if detected.Is(candidate) {
			return true
		}
	}
	return false
}

// List returns the account's live attachments.
func (s *AttachmentService) List(ctx context.Context, accountID string) ([]models.Attachment, error) {
	rows, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, internalError(err, "failed to list attachments")
	}
	return rows, nil
}

func (s *AttachmentService) owned(ctx context.Context, id, ownerID string) (*models.Attachment, error) {
	attachment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "attachment not found", "failed to load attachment")
	}
	if ownerID != "" && attachment.AccountID != ownerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "attachment belongs to another account")
	}
	return attachment, nil
}

// SignedURL issues a time-limited download link. An empty ownerID skips the owner check.
func (s *AttachmentService) SignedURL(ctx context.Context, id, ownerID string) (*models.SignedURL, error) {
	attachment, err := s.owned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(attachment.ID, attachment.FilePath)
	if err != nil {
		return nil, internalError(err, "failed to sign download link")
	}
	return &models.SignedURL{
		URL:       fmt.Sprintf("%s/%s/download?token=%s", s.cfg.BasePath, attachment.ID, url.QueryEscape(token)),
		ExpiresAt: expiresAt,
	}, nil
}

// Open resolves a signed token to the stored file.
func (s *AttachmentService) Open(ctx context.Context, token string) (*models.Attachment, *os.File, error) {
	id, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download link")
	}
	attachment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return nil, nil, internalError(err, "failed to load attachment")
	}
	if attachment.FilePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download link")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, nil, internalError(err, "failed to open attachment")
	}
	return attachment, file, nil
}

// Delete soft-deletes the attachment and removes its bytes.
func (s *AttachmentService) Delete(ctx context.Context, id, ownerID string, meta models.RequestMeta) error {
	attachment, err := s.owned(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return internalError(err, "failed to delete attachment")
	}
	if err := s.storage.Delete(attachment.FilePath); err != nil {
		s.logger.Warn("remove attachment file failed", zap.String("attachment_id", id), zap.Error(err))
	}
	recordAudit(ctx, s.audit, s.logger, meta, models.AuditActionAttachmentDrop, "attachments", id,
		map[string]interface{}{"original_name": attachment.OriginalName}, nil)
	return nil
}

// PurgeDeleted removes the files and rows of attachments soft-deleted before
// the retention window. A row whose file cannot be removed is kept for the next run.
func (s *AttachmentService) PurgeDeleted(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.cfg.PurgeRetention)
	rows, err := s.repo.ListDeletedBefore(ctx, cutoff, purgeBatch)
	if err != nil {
		return 0, internalError(err, "failed to list deleted attachments")
	}
	purged := 0
	for _, attachment := range rows {
		if err := s.storage.Delete(attachment.FilePath); err != nil {
			s.logger.Warn("purge attachment file failed", zap.String("attachment_id", attachment.ID), zap.Error(err))
			continue
		}
		if err := s.repo.Purge(ctx, attachment.ID); err != nil {
			return purged, internalError(err, "failed to purge attachment")
		}
		purged++
	}
	if purged > 0 {
		s.logger.Info("purged deleted attachments", zap.Int("count", purged), zap.Time("cutoff", cutoff))
	}
	return purged, nil
}

// RunPurge calls PurgeDeleted every interval until ctx is cancelled.
func (s *AttachmentService) RunPurge(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PurgeDeleted(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("attachment purge failed", zap.Error(err))
			}
		}
	}
}

func cleanOriginalName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	if len(name) > 255 {
		name = name[:255]
	}
	return name
}
