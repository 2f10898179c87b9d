package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/ta-proctor-api/internal/dto"
	"github.com/campusops/ta-proctor-api/internal/models"
)

type taServiceStub struct {
	ta     *models.TA
	tas    []models.TA
	result *dto.AvailabilityResult
	err    error
}

func (s *taServiceStub) Get(ctx context.Context, taID string) (*models.TA, error) {
	return s.ta, s.err
}

func (s *taServiceStub) List(ctx context.Context, departmentID string) ([]models.TA, error) {
	return s.tas, s.err
}

func (s *taServiceStub) CheckAvailability(ctx context.Context, taID, examID string) (*dto.AvailabilityResult, error) {
	return s.result, s.err
}

type workloadServiceStub struct {
	credit *dto.WorkloadResult
	rows   []models.WorkloadEntry
	err    error
}

func (s *workloadServiceStub) Credit(ctx context.Context, taID string) (*dto.WorkloadResult, error) {
	return s.credit, s.err
}

func (s *workloadServiceStub) Report(ctx context.Context) ([]models.WorkloadEntry, error) {
	return s.rows, s.err
}

func newTARouter(tas *taServiceStub, workload *workloadServiceStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTAHandler(tas, workload)
	r := gin.New()
	r.GET("/tas", h.List)
	r.GET("/tas/:taId", h.Get)
	r.GET("/tas/:taId/workload", h.Workload)
	r.GET("/tas/:taId/availability", h.Availability)
	r.GET("/workload/report", h.WorkloadReport)
	return r
}

func TestTAHandlerWorkload(t *testing.T) {
	router := newTARouter(&taServiceStub{}, &workloadServiceStub{
		credit: &dto.WorkloadResult{TAID: "ta-a", Credit: 2, Target: 4, Utilization: 0.5},
	})

	resp := perform(router, http.MethodGet, "/tas/ta-a/workload", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"utilization":0.5`)
}

func TestTAHandlerAvailabilityRequiresExam(t *testing.T) {
	router := newTARouter(&taServiceStub{}, &workloadServiceStub{})

	resp := perform(router, http.MethodGet, "/tas/ta-a/availability", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTAHandlerAvailability(t *testing.T) {
	router := newTARouter(&taServiceStub{
		result: &dto.AvailabilityResult{TAID: "ta-a", ExamID: "exam-1", Available: false, Reasons: []string{"APPROVED_LEAVE"}},
	}, &workloadServiceStub{})

	resp := perform(router, http.MethodGet, "/tas/ta-a/availability?examId=exam-1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "APPROVED_LEAVE")
}

func TestTAHandlerWorkloadReport(t *testing.T) {
	router := newTARouter(&taServiceStub{}, &workloadServiceStub{
		rows: []models.WorkloadEntry{{TAID: "ta-a", FullName: "Alice", Credit: 1, Target: 4}},
	})

	resp := perform(router, http.MethodGet, "/workload/report", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Alice")
}
