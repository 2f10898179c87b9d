package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/ta-proctor-api/internal/dto"
	"github.com/campusops/ta-proctor-api/internal/models"
	"github.com/campusops/ta-proctor-api/internal/repository"
	appErrors "github.com/campusops/ta-proctor-api/pkg/errors"
)

type examReader interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
}

type candidateReader interface {
	FindByID(ctx context.Context, id string) (*models.TA, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.TA, error)
	ListActive(ctx context.Context, departmentID string) ([]models.TA, error)
}

type assignmentStore interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	ListByExam(ctx context.Context, examID string) ([]models.AssignmentDetail, error)
	ListByTA(ctx context.Context, taID string, activeOnly bool) ([]models.AssignmentDetail, error)
	HasActiveForExam(ctx context.Context, examID, taID string) (bool, error)
	CreateBatch(ctx context.Context, exam *models.Exam, assignments []*models.Assignment, creditWeight float64) error
	UpdateStatus(ctx context.Context, id string, from []models.AssignmentStatus, to models.AssignmentStatus) error
	DeclineWithCredit(ctx context.Context, id, taID string, creditWeight float64) error
}

type courseTAReader interface {
	CourseTAIDs(ctx context.Context, courseID string) (map[string]struct{}, error)
}

type availabilityResolver interface {
	Reasons(ctx context.Context, ta *models.TA, exam *models.Exam) ([]ConflictReason, error)
}

// AssignmentService owns assignment creation and the assignment state
// machine outside of swaps.
type AssignmentService struct {
	exams        examReader
	tas          candidateReader
	assignments  assignmentStore
	courseTAs    courseTAReader
	availability availabilityResolver
	workload     *WorkloadService
	emitter      Emitter
	metrics      *MetricsService
	creditWeight float64
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewAssignmentService creates a service instance.
func NewAssignmentService(
	exams examReader,
	tas candidateReader,
	assignments assignmentStore,
	courseTAs courseTAReader,
	availability availabilityResolver,
	workload *WorkloadService,
	emitter Emitter,
	metrics *MetricsService,
	creditWeight float64,
	validate *validator.Validate,
	logger *zap.Logger,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if creditWeight <= 0 {
		creditWeight = 1
	}
	return &AssignmentService{
		exams:        exams,
		tas:          tas,
		assignments:  assignments,
		courseTAs:    courseTAs,
		availability: availability,
		workload:     workload,
		emitter:      emitter,
		metrics:      metrics,
		creditWeight: creditWeight,
		validator:    validate,
		logger:       logger,
	}
}

type rankedCandidate struct {
	ta            models.TA
	deprioritized bool
	courseTA      bool
}

// AutoAssign selects the least-loaded available TAs for the exam and creates
// one ASSIGNED slot per selection. The whole batch commits or nothing does.
func (s *AssignmentService) AutoAssign(ctx context.Context, examID string, pool []string) ([]*models.Assignment, error) {
	exam, err := s.findExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.RequiredProctors == 0 {
		return []*models.Assignment{}, nil
	}

	candidates, err := s.loadPool(ctx, exam, pool)
	if err != nil {
		return nil, err
	}

	eligible := make([]rankedCandidate, 0, len(candidates))
	for i := range candidates {
		ta := candidates[i]
		if !ta.Active {
			continue
		}
		reasons, err := s.availability.Reasons(ctx, &ta, exam)
		if err != nil {
			return nil, err
		}
		blocked := false
		deprioritized := false
		for _, reason := range reasons {
			if reason.Blocking() {
				blocked = true
				break
			}
			deprioritized = true
		}
		if blocked {
			continue
		}
		eligible = append(eligible, rankedCandidate{ta: ta, deprioritized: deprioritized})
	}

	if len(eligible) < exam.RequiredProctors {
		return nil, appErrors.Clone(appErrors.ErrInsufficientCandidates,
			fmt.Sprintf("need %d proctors, only %d candidates available", exam.RequiredProctors, len(eligible)))
	}

	courseTAs, err := s.courseTAs.CourseTAIDs(ctx, exam.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course tas")
	}
	for i := range eligible {
		_, eligible[i].courseTA = courseTAs[eligible[i].ta.ID]
	}

	rankCandidates(eligible)

	selected := eligible[:exam.RequiredProctors]
	assignments := make([]*models.Assignment, 0, len(selected))
	for _, candidate := range selected {
		assignments = append(assignments, &models.Assignment{
			TAID:   candidate.ta.ID,
			Status: models.AssignmentAssigned,
			Mode:   models.ModeAuto,
		})
	}

	if err := s.commitBatch(ctx, exam, assignments); err != nil {
		return nil, err
	}
	s.metrics.RecordAssignments(string(models.ModeAuto), len(assignments))
	for _, assignment := range assignments {
		s.emitter.Emit(ctx, models.NotificationEvent{
			Type:         models.NotifyAssignmentCreated,
			Recipients:   []string{assignment.TAID},
			ExamID:       exam.ID,
			AssignmentID: assignment.ID,
			Message:      fmt.Sprintf("You have been assigned to proctor %s section %s", exam.CourseCode, exam.Section),
		})
	}
	return assignments, nil
}

// ManualAssign creates slots for explicitly named TAs. Availability checks
// still apply unless force is set; a forced override is always attributed to
// the acting staff member in the log.
func (s *AssignmentService) ManualAssign(ctx context.Context, examID string, req dto.ManualAssignRequest) ([]*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid manual assignment payload")
	}

	seen := make(map[string]struct{}, len(req.TAIDs))
	for _, id := range req.TAIDs {
		if _, dup := seen[id]; dup {
			return nil, appErrors.Clone(appErrors.ErrDuplicateTA, fmt.Sprintf("ta %s listed more than once", id))
		}
		seen[id] = struct{}{}
	}

	exam, err := s.findExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	tas, err := s.tas.ListByIDs(ctx, req.TAIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tas")
	}
	if len(tas) != len(req.TAIDs) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "one or more tas not found")
	}

	for i := range tas {
		ta := tas[i]
		exists, err := s.assignments.HasActiveForExam(ctx, exam.ID, ta.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing assignment")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("ta %s already holds a slot on this exam", ta.ID))
		}
		if req.Force {
			continue
		}
		reasons, err := s.availability.Reasons(ctx, &ta, exam)
		if err != nil {
			return nil, err
		}
		for _, reason := range reasons {
			if reason.Blocking() {
				return nil, appErrors.Clone(appErrors.ErrConflict,
					fmt.Sprintf("ta %s unavailable: %s", ta.ID, reason))
			}
		}
	}

	if req.Force {
		s.logger.Warn("availability checks bypassed for manual assignment",
			zap.String("exam_id", exam.ID),
			zap.Strings("ta_ids", req.TAIDs),
			zap.String("actor_id", req.ActorID))
	}

	assignments := make([]*models.Assignment, 0, len(req.TAIDs))
	for _, id := range req.TAIDs {
		assignments = append(assignments, &models.Assignment{
			TAID:   id,
			Status: models.AssignmentAssigned,
			Mode:   models.ModeManual,
		})
	}

	if err := s.commitBatch(ctx, exam, assignments); err != nil {
		return nil, err
	}
	s.metrics.RecordAssignments(string(models.ModeManual), len(assignments))
	for _, assignment := range assignments {
		s.emitter.Emit(ctx, models.NotificationEvent{
			Type:         models.NotifyAssignmentCreated,
			Recipients:   []string{assignment.TAID},
			ExamID:       exam.ID,
			AssignmentID: assignment.ID,
			Message:      fmt.Sprintf("You have been assigned to proctor %s section %s", exam.CourseCode, exam.Section),
		})
	}
	return assignments, nil
}

// Confirm moves an ASSIGNED slot to CONFIRMED. Only the assignee may confirm.
func (s *AssignmentService) Confirm(ctx context.Context, assignmentID, taID string) (*models.Assignment, error) {
	assignment, err := s.findAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.TAID != taID {
		return nil, appErrors.Clone(appErrors.ErrConflict, "assignment belongs to another ta")
	}
	if err := s.assignments.UpdateStatus(ctx, assignmentID, []models.AssignmentStatus{models.AssignmentAssigned}, models.AssignmentConfirmed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
				fmt.Sprintf("cannot confirm assignment in status %s", assignment.Status))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm assignment")
	}
	assignment.Status = models.AssignmentConfirmed
	s.emitter.Emit(ctx, models.NotificationEvent{
		Type:         models.NotifyAssignmentConfirmed,
		Recipients:   []string{taID},
		ExamID:       assignment.ExamID,
		AssignmentID: assignment.ID,
	})
	return assignment, nil
}

// Decline lets the assignee refuse an ASSIGNED slot. The workload credit is
// reversed in the same transaction.
func (s *AssignmentService) Decline(ctx context.Context, assignmentID string, req dto.DeclineRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decline payload")
	}
	assignment, err := s.findAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.TAID != req.TAID {
		return nil, appErrors.Clone(appErrors.ErrConflict, "assignment belongs to another ta")
	}
	weight := s.creditWeight
	if err := s.assignments.DeclineWithCredit(ctx, assignmentID, req.TAID, weight); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
				fmt.Sprintf("cannot decline assignment in status %s", assignment.Status))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decline assignment")
	}
	assignment.Status = models.AssignmentDeclined
	s.workload.InvalidateReport(ctx)
	s.metrics.RecordDecline()
	s.emitter.Emit(ctx, models.NotificationEvent{
		Type:         models.NotifyAssignmentDeclined,
		Recipients:   []string{req.TAID},
		ExamID:       assignment.ExamID,
		AssignmentID: assignment.ID,
		Message:      req.Reason,
	})
	return assignment, nil
}

// ListByExam returns the exam roster.
func (s *AssignmentService) ListByExam(ctx context.Context, examID string) ([]models.AssignmentDetail, error) {
	if _, err := s.findExam(ctx, examID); err != nil {
		return nil, err
	}
	roster, err := s.assignments.ListByExam(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roster")
	}
	return roster, nil
}

// ListByTA returns a TA's duties.
func (s *AssignmentService) ListByTA(ctx context.Context, taID string, activeOnly bool) ([]models.AssignmentDetail, error) {
	if _, err := s.tas.FindByID(ctx, taID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ta not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ta")
	}
	duties, err := s.assignments.ListByTA(ctx, taID, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ta duties")
	}
	return duties, nil
}

func (s *AssignmentService) findExam(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.exams.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

func (s *AssignmentService) findAssignment(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// loadPool resolves the candidate set: the explicit pool when given,
// otherwise every active TA in scope. Cross-department exams widen the
// default scope to all departments.
func (s *AssignmentService) loadPool(ctx context.Context, exam *models.Exam, pool []string) ([]models.TA, error) {
	if len(pool) > 0 {
		tas, err := s.tas.ListByIDs(ctx, pool)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate pool")
		}
		return tas, nil
	}
	departmentID := exam.DepartmentID
	if exam.CrossDepartment {
		departmentID = ""
	}
	tas, err := s.tas.ListActive(ctx, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate pool")
	}
	return tas, nil
}

func (s *AssignmentService) commitBatch(ctx context.Context, exam *models.Exam, assignments []*models.Assignment) error {
	weight := exam.CreditWeight
	if weight <= 0 {
		weight = s.creditWeight
	}
	if err := s.assignments.CreateBatch(ctx, exam, assignments, weight); err != nil {
		if errors.Is(err, repository.ErrExamFull) {
			return appErrors.Clone(appErrors.ErrConflict, "exam proctor slots already filled")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignments")
	}
	s.workload.InvalidateReport(ctx)
	return nil
}

// rankCandidates orders eligible candidates: non-deprioritized first, then
// ascending workload credit, then course TAs of the exam's course, then TA
// id for full determinism.
func rankCandidates(candidates []rankedCandidate) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.deprioritized != b.deprioritized {
			return !a.deprioritized
		}
		if a.ta.WorkloadCredit != b.ta.WorkloadCredit {
			return a.ta.WorkloadCredit < b.ta.WorkloadCredit
		}
		if a.courseTA != b.courseTA {
			return a.courseTA
		}
		return a.ta.ID < b.ta.ID
	})
}
