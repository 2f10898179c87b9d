package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusops/ta-proctor-api/internal/dto"
	"github.com/campusops/ta-proctor-api/internal/models"
	appErrors "github.com/campusops/ta-proctor-api/pkg/errors"
	"github.com/campusops/ta-proctor-api/pkg/response"
)

type assignmentService interface {
	AutoAssign(ctx context.Context, examID string, pool []string) ([]*models.Assignment, error)
	ManualAssign(ctx context.Context, examID string, req dto.ManualAssignRequest) ([]*models.Assignment, error)
	Confirm(ctx context.Context, assignmentID, taID string) (*models.Assignment, error)
	Decline(ctx context.Context, assignmentID string, req dto.DeclineRequest) (*models.Assignment, error)
	ListByExam(ctx context.Context, examID string) ([]models.AssignmentDetail, error)
	ListByTA(ctx context.Context, taID string, activeOnly bool) ([]models.AssignmentDetail, error)
}

// AssignmentHandler exposes proctoring assignment endpoints.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler builds a new handler.
func NewAssignmentHandler(service assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

// AutoAssign godoc
// @Summary Auto-assign proctors to an exam
// @Tags Assignments
// @Accept json
// @Produce json
// @Param examId path string true "Exam ID"
// @Param payload body dto.AutoAssignRequest false "Optional candidate pool"
// @Success 201 {object} response.Envelope
// @Router /exams/{examId}/assignments/auto [post]
func (h *AssignmentHandler) AutoAssign(c *gin.Context) {
	examID := c.Param("examId")
	var req dto.AutoAssignRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid auto-assign payload"))
			return
		}
	}
	assignments, err := h.service.AutoAssign(c.Request.Context(), examID, req.Pool)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignments)
}

// ManualAssign godoc
// @Summary Manually assign named TAs to an exam
// @Tags Assignments
// @Accept json
// @Produce json
// @Param examId path string true "Exam ID"
// @Param payload body dto.ManualAssignRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /exams/{examId}/assignments [post]
func (h *AssignmentHandler) ManualAssign(c *gin.Context) {
	examID := c.Param("examId")
	var req dto.ManualAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid manual assignment payload"))
		return
	}
	assignments, err := h.service.ManualAssign(c.Request.Context(), examID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignments)
}

// ListByExam godoc
// @Summary List the proctor roster of an exam
// @Tags Assignments
// @Produce json
// @Param examId path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{examId}/assignments [get]
func (h *AssignmentHandler) ListByExam(c *gin.Context) {
	roster, err := h.service.ListByExam(c.Request.Context(), c.Param("examId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Confirm godoc
// @Summary Confirm an assigned duty
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.ActorRequest true "Acting TA"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/confirm [post]
func (h *AssignmentHandler) Confirm(c *gin.Context) {
	var req dto.ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid confirm payload"))
		return
	}
	assignment, err := h.service.Confirm(c.Request.Context(), c.Param("id"), req.TAID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Decline godoc
// @Summary Decline an assigned duty
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.DeclineRequest true "Decline payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/decline [post]
func (h *AssignmentHandler) Decline(c *gin.Context) {
	var req dto.DeclineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decline payload"))
		return
	}
	assignment, err := h.service.Decline(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// ListByTA godoc
// @Summary List a TA's proctoring duties
// @Tags TAs
// @Produce json
// @Param taId path string true "TA ID"
// @Param active query bool false "Only ASSIGNED/CONFIRMED duties"
// @Success 200 {object} response.Envelope
// @Router /tas/{taId}/assignments [get]
func (h *AssignmentHandler) ListByTA(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))
	duties, err := h.service.ListByTA(c.Request.Context(), c.Param("taId"), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, duties, nil)
}
