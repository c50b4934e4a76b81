package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/dto"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/service"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/response"
)

type announcementService interface {
	List(ctx context.Context, viewer service.AnnouncementViewer, page, pageSize int) ([]models.Announcement, *models.Pagination, error)
	Create(ctx context.Context, req dto.CreateAnnouncementRequest, meta models.RequestMeta) (*models.Announcement, error)
	Delete(ctx context.Context, id, actorID string, actorRole models.UserRole) error
}

type profileLookup interface {
	Get(ctx context.Context, id string) (*models.Account, error)
}

// AnnouncementHandler serves the announcement feed.
type AnnouncementHandler struct {
	service  announcementService
	profiles profileLookup
}

// NewAnnouncementHandler constructs the handler.
func NewAnnouncementHandler(svc announcementService, profiles profileLookup) *AnnouncementHandler {
	return &AnnouncementHandler{service: svc, profiles: profiles}
}

// List godoc
// @Summary Announcements visible to the caller
// @Tags Announcements
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	viewer := service.AnnouncementViewer{Role: claims.Role}
	if claims.Role == models.RoleStudent {
		account, err := h.profiles.Get(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if account.Major != nil {
			viewer.Major = *account.Major
		}
		viewer.YearLevel = account.YearLevel
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, pagination, err := h.service.List(c.Request.Context(), viewer, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Create godoc
// @Summary Publish an announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param payload body dto.CreateAnnouncementRequest true "Announcement"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /announcements [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req dto.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	ann, err := h.service.Create(c.Request.Context(), req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ann)
}

// Delete godoc
// @Summary Delete an announcement
// @Tags Announcements
// @Param id path string true "Announcement ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
