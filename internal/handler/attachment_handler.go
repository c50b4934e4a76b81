package handler

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/service"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/response"
)

type attachmentService interface {
	Upload(ctx context.Context, accountID string, upload service.AttachmentUpload, meta models.RequestMeta) (*models.Attachment, error)
	List(ctx context.Context, accountID string) ([]models.Attachment, error)
	SignedURL(ctx context.Context, id, ownerID string) (*models.SignedURL, error)
	Open(ctx context.Context, token string) (*models.Attachment, *os.File, error)
	Delete(ctx context.Context, id, ownerID string, meta models.RequestMeta) error
}

// AttachmentHandler handles certificate uploads and signed downloads.
type AttachmentHandler struct {
	service attachmentService
	maxSize int64
}

// NewAttachmentHandler constructs the handler. maxSize bounds the multipart body.
func NewAttachmentHandler(svc attachmentService, maxSize int64) *AttachmentHandler {
	return &AttachmentHandler{service: svc, maxSize: maxSize}
}

// Upload godoc
// @Summary Upload a certificate
// @Tags Attachments
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF, PNG or JPEG"
// @Param kind formData string false "CERTIFICATE, TRANSCRIPT or EVIDENCE"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	accountID, err := writeSubject(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.maxSize > 0 {
		// leave room for multipart framing
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+1<<20)
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot read file"))
		return
	}
	defer file.Close() //nolint:errcheck

	attachment, err := h.service.Upload(c.Request.Context(), accountID, service.AttachmentUpload{
		Kind:     models.AttachmentKind(c.PostForm("kind")),
		Filename: header.Filename,
		Content:  file,
	}, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attachment)
}

// List godoc
// @Summary List uploaded certificates
// @Tags Attachments
// @Produce json
// @Param accountId query string false "Account (teachers and admins only)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attachments [get]
func (h *AttachmentHandler) List(c *gin.Context) {
	accountID, err := readSubject(c, "accountId")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// SignedURL godoc
// @Summary Issue a signed download link
// @Tags Attachments
// @Produce json
// @Param id path string true "Attachment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /attachments/{id}/url [get]
func (h *AttachmentHandler) SignedURL(c *gin.Context) {
	claims := claimsFromContext(c)
	owner := ownerScope(claims)
	if claims != nil && claims.Role == models.RoleTeacher {
		owner = ""
	}
	link, err := h.service.SignedURL(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Download godoc
// @Summary Download an attachment with a signed token
// @Tags Attachments
// @Produce application/octet-stream
// @Param id path string true "Attachment ID"
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /attachments/{id}/download [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	attachment, file, err := h.service.Open(c.Request.Context(), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck
	if id := c.Param("id"); id != "" && id != attachment.ID {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "token does not match attachment"))
		return
	}
	response.Stream(c, attachment.OriginalName, attachment.MimeType, attachment.SizeBytes, file)
}

// Delete godoc
// @Summary Delete an attachment
// @Tags Attachments
// @Param id path string true "Attachment ID"
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /attachments/{id} [delete]
func (h *AttachmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), ownerScope(claimsFromContext(c)), requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
