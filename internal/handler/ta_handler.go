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

type taService interface {
	Get(ctx context.Context, taID string) (*models.TA, error)
	List(ctx context.Context, departmentID string) ([]models.TA, error)
	CheckAvailability(ctx context.Context, taID, examID string) (*dto.AvailabilityResult, error)
}

type workloadService interface {
	Credit(ctx context.Context, taID string) (*dto.WorkloadResult, error)
	Report(ctx context.Context) ([]models.WorkloadEntry, error)
}

// TAHandler exposes TA lookups, workload views and availability checks.
type TAHandler struct {
	tas      taService
	workload workloadService
}

// NewTAHandler builds a new handler.
func NewTAHandler(tas taService, workload workloadService) *TAHandler {
	return &TAHandler{tas: tas, workload: workload}
}

// List godoc
// @Summary List active TAs
// @Tags TAs
// @Produce json
// @Param departmentId query string false "Department filter"
// @Success 200 {object} response.Envelope
// @Router /tas [get]
func (h *TAHandler) List(c *gin.Context) {
	tas, err := h.tas.List(c.Request.Context(), c.Query("departmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tas, nil)
}

// Get godoc
// @Summary Get one TA
// @Tags TAs
// @Produce json
// @Param taId path string true "TA ID"
// @Success 200 {object} response.Envelope
// @Router /tas/{taId} [get]
func (h *TAHandler) Get(c *gin.Context) {
	ta, err := h.tas.Get(c.Request.Context(), c.Param("taId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ta, nil)
}

// Workload godoc
// @Summary Get a TA's workload credit and obligation target
// @Tags Workload
// @Produce json
// @Param taId path string true "TA ID"
// @Success 200 {object} response.Envelope
// @Router /tas/{taId}/workload [get]
func (h *TAHandler) Workload(c *gin.Context) {
	result, err := h.workload.Credit(c.Request.Context(), c.Param("taId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// WorkloadReport godoc
// @Summary List every active TA's workload, ascending by credit
// @Tags Workload
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /workload/report [get]
func (h *TAHandler) WorkloadReport(c *gin.Context) {
	rows, err := h.workload.Report(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Availability godoc
// @Summary Check whether a TA can take an exam duty
// @Tags TAs
// @Produce json
// @Param taId path string true "TA ID"
// @Param examId query string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /tas/{taId}/availability [get]
func (h *TAHandler) Availability(c *gin.Context) {
	examID := c.Query("examId")
	if examID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "examId query parameter is required"))
		return
	}
	result, err := h.tas.CheckAvailability(c.Request.Context(), c.Param("taId"), examID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
