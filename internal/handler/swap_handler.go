package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/ta-proctor-api/internal/dto"
	"github.com/campusops/ta-proctor-api/internal/models"
	appErrors "github.com/campusops/ta-proctor-api/pkg/errors"
	"github.com/campusops/ta-proctor-api/pkg/response"
)

type swapService interface {
	Create(ctx context.Context, req dto.CreateSwapRequest) (*models.SwapRequest, error)
	Accept(ctx context.Context, swapID string, req dto.ActorRequest) (*models.SwapOutcome, error)
	Reject(ctx context.Context, swapID string, req dto.RejectSwapRequest) (*models.SwapRequest, error)
	Cancel(ctx context.Context, swapID string, req dto.ActorRequest) (*models.SwapRequest, error)
	ListIncoming(ctx context.Context, taID string) ([]models.SwapRequestDetail, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.SwapRequest, error)
}

// SwapHandler exposes the swap request workflow.
type SwapHandler struct {
	service swapService
}

// NewSwapHandler builds a new handler.
func NewSwapHandler(service swapService) *SwapHandler {
	return &SwapHandler{service: service}
}

// Create godoc
// @Summary Open a swap request for an assignment
// @Tags Swaps
// @Accept json
// @Produce json
// @Param payload body dto.CreateSwapRequest true "Swap payload"
// @Success 201 {object} response.Envelope
// @Router /swaps [post]
func (h *SwapHandler) Create(c *gin.Context) {
	var req dto.CreateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid swap payload"))
		return
	}
	swap, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, swap)
}

// Accept godoc
// @Summary Accept a pending swap request
// @Tags Swaps
// @Accept json
// @Produce json
// @Param id path string true "Swap request ID"
// @Param payload body dto.ActorRequest true "Accepting TA"
// @Success 200 {object} response.Envelope
// @Router /swaps/{id}/accept [post]
func (h *SwapHandler) Accept(c *gin.Context) {
	var req dto.ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid accept payload"))
		return
	}
	outcome, err := h.service.Accept(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}

// Reject godoc
// @Summary Reject a pending swap request
// @Tags Swaps
// @Accept json
// @Produce json
// @Param id path string true "Swap request ID"
// @Param payload body dto.RejectSwapRequest true "Rejection payload"
// @Success 200 {object} response.Envelope
// @Router /swaps/{id}/reject [post]
func (h *SwapHandler) Reject(c *gin.Context) {
	var req dto.RejectSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reject payload"))
		return
	}
	swap, err := h.service.Reject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, swap, nil)
}

// Cancel godoc
// @Summary Cancel a pending swap request
// @Tags Swaps
// @Accept json
// @Produce json
// @Param id path string true "Swap request ID"
// @Param payload body dto.ActorRequest true "Requesting TA"
// @Success 200 {object} response.Envelope
// @Router /swaps/{id}/cancel [post]
func (h *SwapHandler) Cancel(c *gin.Context) {
	var req dto.ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cancel payload"))
		return
	}
	swap, err := h.service.Cancel(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, swap, nil)
}

// ListIncoming godoc
// @Summary List pending swap requests addressed to a TA
// @Tags Swaps
// @Produce json
// @Param taId path string true "TA ID"
// @Success 200 {object} response.Envelope
// @Router /tas/{taId}/swaps/incoming [get]
func (h *SwapHandler) ListIncoming(c *gin.Context) {
	swaps, err := h.service.ListIncoming(c.Request.Context(), c.Param("taId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, swaps, nil)
}

// ListByAssignment godoc
// @Summary List the swap history of an assignment
// @Tags Swaps
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/swaps [get]
func (h *SwapHandler) ListByAssignment(c *gin.Context) {
	swaps, err := h.service.ListByAssignment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, swaps, nil)
}
