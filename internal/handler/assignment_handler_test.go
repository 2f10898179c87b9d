package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/ta-proctor-api/internal/dto"
	"github.com/campusops/ta-proctor-api/internal/models"
	appErrors "github.com/campusops/ta-proctor-api/pkg/errors"
)

type assignmentServiceStub struct {
	assignments []*models.Assignment
	roster      []models.AssignmentDetail
	err         error

	autoExam   string
	autoPool   []string
	manualReq  *dto.ManualAssignRequest
	confirmed  string
	declinedID string
}

func (s *assignmentServiceStub) AutoAssign(ctx context.Context, examID string, pool []string) ([]*models.Assignment, error) {
	s.autoExam = examID
	s.autoPool = pool
	return s.assignments, s.err
}

func (s *assignmentServiceStub) ManualAssign(ctx context.Context, examID string, req dto.ManualAssignRequest) ([]*models.Assignment, error) {
	s.manualReq = &req
	return s.assignments, s.err
}

func (s *assignmentServiceStub) Confirm(ctx context.Context, assignmentID, taID string) (*models.Assignment, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.confirmed = assignmentID
	return &models.Assignment{ID: assignmentID, TAID: taID, Status: models.AssignmentConfirmed}, nil
}

func (s *assignmentServiceStub) Decline(ctx context.Context, assignmentID string, req dto.DeclineRequest) (*models.Assignment, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.declinedID = assignmentID
	return &models.Assignment{ID: assignmentID, TAID: req.TAID, Status: models.AssignmentDeclined}, nil
}

func (s *assignmentServiceStub) ListByExam(ctx context.Context, examID string) ([]models.AssignmentDetail, error) {
	return s.roster, s.err
}

func (s *assignmentServiceStub) ListByTA(ctx context.Context, taID string, activeOnly bool) ([]models.AssignmentDetail, error) {
	return s.roster, s.err
}

func newAssignmentRouter(stub *assignmentServiceStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAssignmentHandler(stub)
	r := gin.New()
	r.POST("/exams/:examId/assignments/auto", h.AutoAssign)
	r.POST("/exams/:examId/assignments", h.ManualAssign)
	r.GET("/exams/:examId/assignments", h.ListByExam)
	r.POST("/assignments/:id/confirm", h.Confirm)
	r.POST("/assignments/:id/decline", h.Decline)
	r.GET("/tas/:taId/assignments", h.ListByTA)
	return r
}

func perform(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAssignmentHandlerAutoAssign(t *testing.T) {
	stub := &assignmentServiceStub{assignments: []*models.Assignment{
		{ID: "as-1", TAID: "ta-a", Status: models.AssignmentAssigned, Mode: models.ModeAuto},
	}}
	router := newAssignmentRouter(stub)

	resp := perform(router, http.MethodPost, "/exams/exam-1/assignments/auto", dto.AutoAssignRequest{Pool: []string{"ta-a"}})
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "exam-1", stub.autoExam)
	assert.Equal(t, []string{"ta-a"}, stub.autoPool)
	assert.Contains(t, resp.Body.String(), `"ta-a"`)
}

func TestAssignmentHandlerAutoAssignEmptyBody(t *testing.T) {
	stub := &assignmentServiceStub{}
	router := newAssignmentRouter(stub)

	resp := perform(router, http.MethodPost, "/exams/exam-1/assignments/auto", nil)
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Empty(t, stub.autoPool)
}

func TestAssignmentHandlerAutoAssignErrorMapped(t *testing.T) {
	stub := &assignmentServiceStub{err: appErrors.Clone(appErrors.ErrInsufficientCandidates, "")}
	router := newAssignmentRouter(stub)

	resp := perform(router, http.MethodPost, "/exams/exam-1/assignments/auto", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Contains(t, resp.Body.String(), "INSUFFICIENT_CANDIDATES")
}

func TestAssignmentHandlerManualAssign(t *testing.T) {
	stub := &assignmentServiceStub{assignments: []*models.Assignment{
		{ID: "as-1", TAID: "ta-a", Mode: models.ModeManual},
	}}
	router := newAssignmentRouter(stub)

	resp := perform(router, http.MethodPost, "/exams/exam-1/assignments", dto.ManualAssignRequest{
		TAIDs: []string{"ta-a"}, ActorID: "staff-1",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	require.NotNil(t, stub.manualReq)
	assert.Equal(t, "staff-1", stub.manualReq.ActorID)
}

func TestAssignmentHandlerManualAssignBadJSON(t *testing.T) {
	router := newAssignmentRouter(&assignmentServiceStub{})

	req, _ := http.NewRequest(http.MethodPost, "/exams/exam-1/assignments", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentHandlerConfirmAndDecline(t *testing.T) {
	stub := &assignmentServiceStub{}
	router := newAssignmentRouter(stub)

	resp := perform(router, http.MethodPost, "/assignments/as-1/confirm", dto.ActorRequest{TAID: "ta-a"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "as-1", stub.confirmed)

	resp = perform(router, http.MethodPost, "/assignments/as-1/decline", dto.DeclineRequest{TAID: "ta-a", Reason: "travel"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "as-1", stub.declinedID)
}

func TestAssignmentHandlerConfirmInvalidTransition(t *testing.T) {
	stub := &assignmentServiceStub{err: appErrors.Clone(appErrors.ErrInvalidTransition, "already confirmed")}
	router := newAssignmentRouter(stub)

	resp := perform(router, http.MethodPost, "/assignments/as-1/confirm", dto.ActorRequest{TAID: "ta-a"})
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "INVALID_TRANSITION")
}

func TestAssignmentHandlerListByExam(t *testing.T) {
	stub := &assignmentServiceStub{roster: []models.AssignmentDetail{
		{Assignment: models.Assignment{ID: "as-1"}, TAName: "Alice"},
	}}
	router := newAssignmentRouter(stub)

	resp := perform(router, http.MethodGet, "/exams/exam-1/assignments", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Alice")
}
