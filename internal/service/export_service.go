package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/campusops/ta-proctor-api/pkg/errors"
	"github.com/campusops/ta-proctor-api/pkg/export"
)

// ExportFormat selects the output encoding.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered bytes plus delivery metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders exam rosters and the workload report as downloadable
// files.
type ExportService struct {
	assignments *AssignmentService
	workload    *WorkloadService
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	enabled     bool
	logger      *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(assignments *AssignmentService, workload *WorkloadService, enabled bool, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		assignments: assignments,
		workload:    workload,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		enabled:     enabled,
		logger:      logger,
	}
}

// Enabled reports whether exports are turned on.
func (s *ExportService) Enabled() bool { return s.enabled }

// ExamRoster renders the proctor roster of one exam.
func (s *ExportService) ExamRoster(ctx context.Context, examID string, format ExportFormat) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "exports are disabled")
	}
	roster, err := s.assignments.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"TA", "Status", "Mode", "Swap Depth", "Start", "End", "Rooms"},
		Rows:    make([]map[string]string, 0, len(roster)),
	}
	for _, row := range roster {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"TA":         row.TAName,
			"Status":     string(row.Status),
			"Mode":       string(row.Mode),
			"Swap Depth": strconv.Itoa(row.SwapDepth),
			"Start":      row.ExamStart.Format(time.RFC3339),
			"End":        row.ExamEnd.Format(time.RFC3339),
			"Rooms":      row.Rooms,
		})
	}

	title := "Proctor Roster"
	if len(roster) > 0 {
		title = fmt.Sprintf("Proctor Roster %s %s", roster[0].CourseCode, roster[0].Section)
	}
	return s.render(dataset, format, "exam-roster-"+examID, title)
}

// WorkloadReport renders the term-wide workload ledger.
func (s *ExportService) WorkloadReport(ctx context.Context, format ExportFormat) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "exports are disabled")
	}
	rows, err := s.workload.Report(ctx)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"TA", "Department", "Employment", "Credit", "Target", "Utilization"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"TA":          row.FullName,
			"Department":  row.DepartmentID,
			"Employment":  string(row.Employment),
			"Credit":      strconv.FormatFloat(row.Credit, 'f', 2, 64),
			"Target":      strconv.FormatFloat(row.Target, 'f', 2, 64),
			"Utilization": strconv.FormatFloat(row.Utilization, 'f', 2, 64),
		})
	}
	return s.render(dataset, format, "workload-report", "Proctoring Workload Report")
}

func (s *ExportService) render(dataset export.Dataset, format ExportFormat, basename, title string) (*ExportResult, error) {
	switch format {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: basename + ".csv"}, nil
	case FormatPDF:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: basename + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
