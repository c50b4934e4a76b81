package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/dto"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/response"
)

type peerService interface {
	Submit(ctx context.Context, raterID string, req dto.PeerEvaluationRequest) (*models.PeerEvaluation, error)
	Summary(ctx context.Context, rateeID string, period models.Period) (*models.PeerSummary, error)
}

// PeerHandler accepts peer and self evaluations.
type PeerHandler struct {
	service peerService
}

// NewPeerHandler constructs the handler.
func NewPeerHandler(svc peerService) *PeerHandler {
	return &PeerHandler{service: svc}
}

// Submit godoc
// @Summary Submit a peer or self evaluation
// @Description The caller is the rater. Submitting again for the same ratee and period replaces the previous ratings.
// @Tags Peer Evaluation
// @Accept json
// @Produce json
// @Param payload body dto.PeerEvaluationRequest true "Ratings"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /peer-evaluations [post]
func (h *PeerHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.PeerEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	eval, err := h.service.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, eval, nil)
}

// Summary godoc
// @Summary Aggregated evaluations of a student
// @Tags Peer Evaluation
// @Produce json
// @Param rateeId query string false "Ratee (teachers and admins only)"
// @Param year query int true "Year level"
// @Param sem query int true "Semester"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /peer-evaluations [get]
func (h *PeerHandler) Summary(c *gin.Context) {
	rateeID, err := readSubject(c, "rateeId")
	if err != nil {
		response.Error(c, err)
		return
	}
	period, err := bindPeriod(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), rateeID, period)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
