package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusops/ta-proctor-api/internal/dto"
	"github.com/campusops/ta-proctor-api/internal/models"
	"github.com/campusops/ta-proctor-api/internal/repository"
	appErrors "github.com/campusops/ta-proctor-api/pkg/errors"
)

type examReaderStub struct {
	exams map[string]*models.Exam
	err   error
}

func (s examReaderStub) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	if s.err != nil {
		return nil, s.err
	}
	if exam, ok := s.exams[id]; ok {
		return exam, nil
	}
	return nil, sql.ErrNoRows
}

type taStoreStub struct {
	tas map[string]*models.TA
	err error
}

func (s *taStoreStub) FindByID(ctx context.Context, id string) (*models.TA, error) {
	if s.err != nil {
		return nil, s.err
	}
	if ta, ok := s.tas[id]; ok {
		return ta, nil
	}
	return nil, sql.ErrNoRows
}

func (s *taStoreStub) ListByIDs(ctx context.Context, ids []string) ([]models.TA, error) {
	if s.err != nil {
		return nil, s.err
	}
	var result []models.TA
	for _, id := range ids {
		if ta, ok := s.tas[id]; ok {
			result = append(result, *ta)
		}
	}
	return result, nil
}

func (s *taStoreStub) ListActive(ctx context.Context, departmentID string) ([]models.TA, error) {
	if s.err != nil {
		return nil, s.err
	}
	var result []models.TA
	for _, ta := range s.tas {
		if !ta.Active {
			continue
		}
		if departmentID != "" && ta.DepartmentID != departmentID {
			continue
		}
		result = append(result, *ta)
	}
	return result, nil
}

func (s *taStoreStub) WorkloadRows(ctx context.Context) ([]models.WorkloadEntry, error) {
	var rows []models.WorkloadEntry
	for _, ta := range s.tas {
		rows = append(rows, models.WorkloadEntry{
			TAID:       ta.ID,
			FullName:   ta.FullName,
			Employment: ta.Employment,
			Credit:     ta.WorkloadCredit,
		})
	}
	return rows, nil
}

type assignmentStoreStub struct {
	assignments map[string]*models.Assignment
	created     []*models.Assignment
	createdWith float64
	createErr   error
	statusErr   error
	declineErr  error
	hasActive   bool
}

func (s *assignmentStoreStub) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if assignment, ok := s.assignments[id]; ok {
		clone := *assignment
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *assignmentStoreStub) ListByExam(ctx context.Context, examID string) ([]models.AssignmentDetail, error) {
	var result []models.AssignmentDetail
	for _, assignment := range s.assignments {
		if assignment.ExamID == examID {
			result = append(result, models.AssignmentDetail{Assignment: *assignment})
		}
	}
	return result, nil
}

func (s *assignmentStoreStub) ListByTA(ctx context.Context, taID string, activeOnly bool) ([]models.AssignmentDetail, error) {
	var result []models.AssignmentDetail
	for _, assignment := range s.assignments {
		if assignment.TAID != taID {
			continue
		}
		if activeOnly && !assignment.Status.Active() {
			continue
		}
		result = append(result, models.AssignmentDetail{Assignment: *assignment})
	}
	return result, nil
}

func (s *assignmentStoreStub) HasActiveForExam(ctx context.Context, examID, taID string) (bool, error) {
	return s.hasActive, nil
}

func (s *assignmentStoreStub) CreateBatch(ctx context.Context, exam *models.Exam, assignments []*models.Assignment, creditWeight float64) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, assignments...)
	s.createdWith = creditWeight
	return nil
}

func (s *assignmentStoreStub) UpdateStatus(ctx context.Context, id string, from []models.AssignmentStatus, to models.AssignmentStatus) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	assignment, ok := s.assignments[id]
	if !ok {
		return sql.ErrNoRows
	}
	for _, status := range from {
		if assignment.Status == status {
			assignment.Status = to
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *assignmentStoreStub) DeclineWithCredit(ctx context.Context, id, taID string, creditWeight float64) error {
	if s.declineErr != nil {
		return s.declineErr
	}
	assignment, ok := s.assignments[id]
	if !ok || assignment.TAID != taID || assignment.Status != models.AssignmentAssigned {
		return sql.ErrNoRows
	}
	assignment.Status = models.AssignmentDeclined
	return nil
}

type courseTAStub struct {
	ids map[string]struct{}
}

func (s courseTAStub) CourseTAIDs(ctx context.Context, courseID string) (map[string]struct{}, error) {
	if s.ids == nil {
		return map[string]struct{}{}, nil
	}
	return s.ids, nil
}

type availabilityStub struct {
	reasons map[string][]ConflictReason
	err     error
}

func (s availabilityStub) Reasons(ctx context.Context, ta *models.TA, exam *models.Exam) ([]ConflictReason, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.reasons[ta.ID], nil
}

type emitterStub struct {
	events []models.NotificationEvent
}

func (s *emitterStub) Emit(ctx context.Context, event models.NotificationEvent) {
	s.events = append(s.events, event)
}

func testExam(required int) *models.Exam {
	start := time.Now().Add(48 * time.Hour).UTC()
	return &models.Exam{
		ID:               "exam-1",
		CourseID:         "course-1",
		CourseCode:       "CS101",
		Section:          "A",
		DepartmentID:     "dept-cs",
		StartAt:          start,
		EndAt:            start.Add(2 * time.Hour),
		RequiredProctors: required,
		CreditWeight:     1,
	}
}

func newTestWorkload(tas *taStoreStub) *WorkloadService {
	cache := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	return NewWorkloadService(tas, cache, 4, zap.NewNop())
}

func TestAutoAssignPicksLowestCredit(t *testing.T) {
	tas := &taStoreStub{tas: map[string]*models.TA{
		"ta-a": {ID: "ta-a", DepartmentID: "dept-cs", WorkloadCredit: 3, Active: true},
		"ta-b": {ID: "ta-b", DepartmentID: "dept-cs", WorkloadCredit: 1, Active: true},
		"ta-c": {ID: "ta-c", DepartmentID: "dept-cs", WorkloadCredit: 2, Active: true},
	}}
	store := &assignmentStoreStub{assignments: map[string]*models.Assignment{}}
	emitter := &emitterStub{}

	svc := NewAssignmentService(
		examReaderStub{exams: map[string]*models.Exam{"exam-1": testExam(2)}},
		tas, store, courseTAStub{}, availabilityStub{}, newTestWorkload(tas),
		emitter, nil, 1, nil, zap.NewNop())

	assignments, err := svc.AutoAssign(context.Background(), "exam-1", nil)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, "ta-b", assignments[0].TAID)
	assert.Equal(t, "ta-c", assignments[1].TAID)
	assert.Equal(t, models.ModeAuto, assignments[0].Mode)
	require.Len(t, emitter.events, 2)
	assert.Equal(t, models.NotifyAssignmentCreated, emitter.events[0].Type)
}

func TestAutoAssignTieBreaksByCourseTAThenID(t *testing.T) {
	tas := &taStoreStub{tas: map[string]*models.TA{
		"ta-a": {ID: "ta-a", DepartmentID: "dept-cs", WorkloadCredit: 2, Active: true},
		"ta-b": {ID: "ta-b", DepartmentID: "dept-cs", WorkloadCredit: 2, Active: true},
	}}
	store := &assignmentStoreStub{assignments: map[string]*models.Assignment{}}

	svc := NewAssignmentService(
		examReaderStub{exams: map[string]*models.Exam{"exam-1": testExam(1)}},
		tas, store, courseTAStub{ids: map[string]struct{}{"ta-b": {}}},
		availabilityStub{}, newTestWorkload(tas), &emitterStub{}, nil, 1, nil, zap.NewNop())

	assignments, err := svc.AutoAssign(context.Background(), "exam-1", nil)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "ta-b", assignments[0].TAID)
}

func TestAutoAssignDeprioritizesOwnDepartment(t *testing.T) {
	tas := &taStoreStub{tas: map[string]*models.TA{
		"ta-local":  {ID: "ta-local", DepartmentID: "dept-cs", WorkloadCredit: 0, Active: true},
		"ta-remote": {ID: "ta-remote", DepartmentID: "dept-ee", WorkloadCredit: 5, Active: true},
	}}
	exam := testExam(1)
	exam.CrossDepartment = true
	store := &assignmentStoreStub{assignments: map[string]*models.Assignment{}}

	svc := NewAssignmentService(
		examReaderStub{exams: map[string]*models.Exam{"exam-1": exam}},
		tas, store, courseTAStub{},
		availabilityStub{reasons: map[string][]ConflictReason{
			"ta-local": {ReasonDepartmentDeprioritized},
		}},
		newTestWorkload(tas), &emitterStub{}, nil, 1, nil, zap.NewNop())

	assignments, err := svc.AutoAssign(context.Background(), "exam-1", nil)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "ta-remote", assignments[0].TAID)
}

func TestAutoAssignZeroRequiredIsEmptySuccess(t *testing.T) {
	tas := &taStoreStub{tas: map[string]*models.TA{}}
	store := &assignmentStoreStub{assignments: map[string]*models.Assignment{}}

	svc := NewAssignmentService(
		examReaderStub{exams: map[string]*models.Exam{"exam-1": testExam(0)}},
		tas, store, courseTAStub{}, availabilityStub{}, newTestWorkload(tas),
		&emitterStub{}, nil, 1, nil, zap.NewNop())

	assignments, err := svc.AutoAssign(context.Background(), "exam-1", nil)
	require.NoError(t, err)
	assert.Empty(t, assignments)
	assert.Empty(t, store.created)
}

func TestAutoAssignInsufficientCandidates(t *testing.T) {
	tas := &taStoreStub{tas: map[string]*models.TA{
		"ta-a": {ID: "ta-a", DepartmentID: "dept-cs", Active: true},
		"ta-b": {ID: "ta-b", DepartmentID: "dept-cs", Active: true},
	}}
	store := &assignmentStoreStub{assignments: map[string]*models.Assignment{}}

	svc := NewAssignmentService(
		examReaderStub{exams: map[string]*models.Exam{"exam-1": testExam(2)}},
		tas, store, courseTAStub{},
		availabilityStub{reasons: map[string][]ConflictReason{
			"ta-b": {ReasonApprovedLeave},
		}},
		newTestWorkload(tas), &emitterStub{}, nil, 1, nil, zap.NewNop())

	_, err := svc.AutoAssign(context.Background(), "exam-1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInsufficientCandidates.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.created)
}

func TestAutoAssignExamFullMapsToConflict(t *testing.T) {
	tas := &taStoreStub{tas: map[string]*models.TA{
		"ta-a": {ID: "ta-a", DepartmentID: "dept-cs", Active: true},
	}}
	store := &assignmentStoreStub{
		assignments: map[string]*models.Assignment{},
		createErr:   repository.ErrExamFull,
	}

	svc := NewAssignmentService(
		examReaderStub{exams: map[string]*models.Exam{"exam-1": testExam(1)}},
		tas, store, courseTAStub{}, availabilityStub{}, newTestWorkload(tas),
		&emitterStub{}, nil, 1, nil, zap.NewNop())

	_, err := svc.AutoAssign(context.Background(), "exam-1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestManualAssignRejectsDuplicateTAs(t *testing.T) {
	tas := &taStoreStub{tas: map[string]*models.TA{
		"ta-a": {ID: "ta-a", Active: true},
	}}
	store := &assignmentStoreStub{assignments: map[string]*models.Assignment{}}

	svc := NewAssignmentService(
		examReaderStub{exams: map[string]*models.Exam{"exam-1": testExam(2)}},
		tas, store, courseTAStub{}, availabilityStub{}, newTestWorkload(tas),
		&emitterStub{}, nil, 1, nil, zap.NewNop())

	_, err := svc.ManualAssign(context.Background(), "exam-1", dto.ManualAssignRequest{
		TAIDs: []string{"ta-a", "ta-a"}, ActorID: "staff-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateTA.Code, appErrors.FromError(err).Code)
}

func TestManualAssignBlocksUnavailableWithoutForce(t *testing.T) {
	tas := &taStoreStub{tas: map[string]*models.TA{
		"ta-a": {ID: "ta-a", Active: true},
	}}
	store := &assignmentStoreStub{assignments: map[string]*models.Assignment{}}
	availability := availabilityStub{reasons: map[string][]ConflictReason{
		"ta-a": {ReasonScheduleConflict},
	}}

	svc := NewAssignmentService(
		examReaderStub{exams: map[string]*models.Exam{"exam-1": testExam(1)}},
		tas, store, courseTAStub{}, availability, newTestWorkload(tas),
		&emitterStub{}, nil, 1, nil, zap.NewNop())

	_, err := svc.ManualAssign(context.Background(), "exam-1", dto.ManualAssignRequest{
		TAIDs: []string{"ta-a"}, ActorID: "staff-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	assignments, err := svc.ManualAssign(context.Background(), "exam-1", dto.ManualAssignRequest{
		TAIDs: []string{"ta-a"}, Force: true, ActorID: "staff-1",
	})
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, models.ModeManual, assignments[0].Mode)
}

func TestManualAssignRejectsExistingSlotHolder(t *testing.T) {
	tas := &taStoreStub{tas: map[string]*models.TA{
		"ta-a": {ID: "ta-a", Active: true},
	}}
	store := &assignmentStoreStub{assignments: map[string]*models.Assignment{}, hasActive: true}

	svc := NewAssignmentService(
		examReaderStub{exams: map[string]*models.Exam{"exam-1": testExam(2)}},
		tas, store, courseTAStub{}, availabilityStub{}, newTestWorkload(tas),
		&emitterStub{}, nil, 1, nil, zap.NewNop())

	_, err := svc.ManualAssign(context.Background(), "exam-1", dto.ManualAssignRequest{
		TAIDs: []string{"ta-a"}, ActorID: "staff-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestConfirmTransitions(t *testing.T) {
	store := &assignmentStoreStub{assignments: map[string]*models.Assignment{
		"as-1": {ID: "as-1", ExamID: "exam-1", TAID: "ta-a", Status: models.AssignmentAssigned},
	}}
	emitter := &emitterStub{}
	tas := &taStoreStub{tas: map[string]*models.TA{}}

	svc := NewAssignmentService(
		examReaderStub{exams: map[string]*models.Exam{"exam-1": testExam(1)}},
		tas, store, courseTAStub{}, availabilityStub{}, newTestWorkload(tas),
		emitter, nil, 1, nil, zap.NewNop())

	assignment, err := svc.Confirm(context.Background(), "as-1", "ta-a")
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentConfirmed, assignment.Status)
	require.Len(t, emitter.events, 1)
	assert.Equal(t, models.NotifyAssignmentConfirmed, emitter.events[0].Type)

	// Confirming twice hits the status guard.
	_, err = svc.Confirm(context.Background(), "as-1", "ta-a")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestConfirmRejectsWrongTA(t *testing.T) {
	store := &assignmentStoreStub{assignments: map[string]*models.Assignment{
		"as-1": {ID: "as-1", TAID: "ta-a", Status: models.AssignmentAssigned},
	}}
	tas := &taStoreStub{tas: map[string]*models.TA{}}

	svc := NewAssignmentService(
		examReaderStub{}, tas, store, courseTAStub{}, availabilityStub{},
		newTestWorkload(tas), &emitterStub{}, nil, 1, nil, zap.NewNop())

	_, err := svc.Confirm(context.Background(), "as-1", "ta-b")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestDeclineReversesAndEmits(t *testing.T) {
	store := &assignmentStoreStub{assignments: map[string]*models.Assignment{
		"as-1": {ID: "as-1", ExamID: "exam-1", TAID: "ta-a", Status: models.AssignmentAssigned},
	}}
	emitter := &emitterStub{}
	tas := &taStoreStub{tas: map[string]*models.TA{}}

	svc := NewAssignmentService(
		examReaderStub{}, tas, store, courseTAStub{}, availabilityStub{},
		newTestWorkload(tas), emitter, nil, 1, nil, zap.NewNop())

	assignment, err := svc.Decline(context.Background(), "as-1", dto.DeclineRequest{TAID: "ta-a", Reason: "travel"})
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentDeclined, assignment.Status)
	require.Len(t, emitter.events, 1)
	assert.Equal(t, models.NotifyAssignmentDeclined, emitter.events[0].Type)

	_, err = svc.Decline(context.Background(), "as-1", dto.DeclineRequest{TAID: "ta-a"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestDeclineConfirmedIsInvalid(t *testing.T) {
	store := &assignmentStoreStub{assignments: map[string]*models.Assignment{
		"as-1": {ID: "as-1", TAID: "ta-a", Status: models.AssignmentConfirmed},
	}}
	tas := &taStoreStub{tas: map[string]*models.TA{}}

	svc := NewAssignmentService(
		examReaderStub{}, tas, store, courseTAStub{}, availabilityStub{},
		newTestWorkload(tas), &emitterStub{}, nil, 1, nil, zap.NewNop())

	_, err := svc.Decline(context.Background(), "as-1", dto.DeclineRequest{TAID: "ta-a"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestAutoAssignUsesExplicitPool(t *testing.T) {
	tas := &taStoreStub{tas: map[string]*models.TA{
		"ta-a": {ID: "ta-a", DepartmentID: "dept-cs", WorkloadCredit: 0, Active: true},
		"ta-b": {ID: "ta-b", DepartmentID: "dept-cs", WorkloadCredit: 5, Active: true},
	}}
	store := &assignmentStoreStub{assignments: map[string]*models.Assignment{}}

	svc := NewAssignmentService(
		examReaderStub{exams: map[string]*models.Exam{"exam-1": testExam(1)}},
		tas, store, courseTAStub{}, availabilityStub{}, newTestWorkload(tas),
		&emitterStub{}, nil, 1, nil, zap.NewNop())

	assignments, err := svc.AutoAssign(context.Background(), "exam-1", []string{"ta-b"})
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "ta-b", assignments[0].TAID)
}
