package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusops/ta-proctor-api/internal/service"
	"github.com/campusops/ta-proctor-api/pkg/response"
)

type exportService interface {
	ExamRoster(ctx context.Context, examID string, format service.ExportFormat) (*service.ExportResult, error)
	WorkloadReport(ctx context.Context, format service.ExportFormat) (*service.ExportResult, error)
}

// ExportHandler serves roster and workload downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler builds a new handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// ExamRoster godoc
// @Summary Download an exam's proctor roster
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param examId path string true "Exam ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /exams/{examId}/assignments/export [get]
func (h *ExportHandler) ExamRoster(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.service.ExamRoster(c.Request.Context(), c.Param("examId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	deliver(c, result)
}

// WorkloadReport godoc
// @Summary Download the workload report
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /workload/report/export [get]
func (h *ExportHandler) WorkloadReport(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.service.WorkloadReport(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	deliver(c, result)
}

func deliver(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
