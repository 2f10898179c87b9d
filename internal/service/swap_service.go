package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusops/ta-proctor-api/internal/dto"
	"github.com/campusops/ta-proctor-api/internal/models"
	"github.com/campusops/ta-proctor-api/internal/repository"
	appErrors "github.com/campusops/ta-proctor-api/pkg/errors"
)

type swapStore interface {
	Create(ctx context.Context, swap *models.SwapRequest) error
	FindByID(ctx context.Context, id string) (*models.SwapRequest, error)
	HasPending(ctx context.Context, assignmentID string) (bool, error)
	ListIncoming(ctx context.Context, taID string) ([]models.SwapRequestDetail, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]models.SwapRequest, error)
	Resolve(ctx context.Context, id string, status models.SwapStatus, resolvedBy string, rejectionReason *string) error
	Accept(ctx context.Context, params repository.AcceptSwapParams) (*models.Assignment, error)
}

// SwapService drives the swap request state machine: PENDING, then exactly
// one of ACCEPTED, REJECTED or CANCELLED.
type SwapService struct {
	swaps        swapStore
	assignments  assignmentStore
	exams        examReader
	tas          candidateReader
	availability availabilityResolver
	workload     *WorkloadService
	emitter      Emitter
	metrics      *MetricsService
	cutoff       time.Duration
	maxDepth     int
	creditWeight float64
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewSwapService creates a service instance.
func NewSwapService(
	swaps swapStore,
	assignments assignmentStore,
	exams examReader,
	tas candidateReader,
	availability availabilityResolver,
	workload *WorkloadService,
	emitter Emitter,
	metrics *MetricsService,
	cutoff time.Duration,
	maxDepth int,
	creditWeight float64,
	validate *validator.Validate,
	logger *zap.Logger,
) *SwapService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxDepth <= 0 {
		maxDepth = 3
	}
	if creditWeight <= 0 {
		creditWeight = 1
	}
	return &SwapService{
		swaps:        swaps,
		assignments:  assignments,
		exams:        exams,
		tas:          tas,
		availability: availability,
		workload:     workload,
		emitter:      emitter,
		metrics:      metrics,
		cutoff:       cutoff,
		maxDepth:     maxDepth,
		creditWeight: creditWeight,
		validator:    validate,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a swap request for an active assignment held by the requester.
func (s *SwapService) Create(ctx context.Context, req dto.CreateSwapRequest) (*models.SwapRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid swap request payload")
	}

	assignment, exam, err := s.loadDuty(ctx, req.AssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.TAID != req.TAID {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only the current holder may request a swap")
	}
	if !assignment.Status.Active() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot swap assignment in status %s", assignment.Status))
	}
	if err := s.checkCutoff(exam, appErrors.ErrSwapCutoff); err != nil {
		return nil, err
	}
	if assignment.SwapDepth >= s.maxDepth {
		return nil, appErrors.Clone(appErrors.ErrSwapLimitReached,
			fmt.Sprintf("assignment already swapped %d times", assignment.SwapDepth))
	}
	pending, err := s.swaps.HasPending(ctx, assignment.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending swaps")
	}
	if pending {
		return nil, appErrors.Clone(appErrors.ErrDuplicatePendingSwap, "assignment already has a pending swap request")
	}

	swap := &models.SwapRequest{
		AssignmentID:  assignment.ID,
		RequesterTAID: req.TAID,
		Reason:        req.Reason,
	}
	recipients := []string{}
	if req.TargetTAID != "" {
		if req.TargetTAID == req.TAID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "cannot target yourself")
		}
		target, err := s.tas.FindByID(ctx, req.TargetTAID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "target ta not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target ta")
		}
		if !target.Active {
			return nil, appErrors.Clone(appErrors.ErrConflict, "target ta is inactive")
		}
		swap.TargetTAID = &target.ID
		recipients = append(recipients, target.ID)
	}

	if err := s.swaps.Create(ctx, swap); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create swap request")
	}
	s.emitter.Emit(ctx, models.NotificationEvent{
		Type:         models.NotifySwapRequested,
		Recipients:   recipients,
		ExamID:       exam.ID,
		AssignmentID: assignment.ID,
		SwapID:       swap.ID,
		Message:      fmt.Sprintf("Swap requested for %s section %s: %s", exam.CourseCode, exam.Section, req.Reason),
	})
	return swap, nil
}

// Accept resolves a pending swap in favour of the accepting TA. The actor
// must be the addressed target, or any TA for open requests. Cutoff and
// availability are re-validated at accept time because the world may have
// moved since the request was created.
func (s *SwapService) Accept(ctx context.Context, swapID string, req dto.ActorRequest) (*models.SwapOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid accept payload")
	}

	swap, err := s.findSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.Status != models.SwapPending {
		return nil, appErrors.Clone(appErrors.ErrAlreadyResolved,
			fmt.Sprintf("swap request already %s", swap.Status))
	}
	if swap.TargetTAID != nil && *swap.TargetTAID != req.TAID {
		return nil, appErrors.Clone(appErrors.ErrConflict, "swap request addressed to another ta")
	}
	if swap.RequesterTAID == req.TAID {
		return nil, appErrors.Clone(appErrors.ErrConflict, "requester cannot accept their own swap")
	}

	assignment, exam, err := s.loadDuty(ctx, swap.AssignmentID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCutoff(exam, appErrors.ErrStaleSwapRequest); err != nil {
		return nil, err
	}

	acceptor, err := s.tas.FindByID(ctx, req.TAID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ta not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ta")
	}
	if !acceptor.Active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "inactive ta cannot accept a swap")
	}
	reasons, err := s.availability.Reasons(ctx, acceptor, exam)
	if err != nil {
		return nil, err
	}
	for _, reason := range reasons {
		if reason.Blocking() {
			return nil, appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("accepting ta unavailable: %s", reason))
		}
	}

	weight := exam.CreditWeight
	if weight <= 0 {
		weight = s.creditWeight
	}
	created, err := s.swaps.Accept(ctx, repository.AcceptSwapParams{
		SwapID:       swap.ID,
		OriginalID:   assignment.ID,
		ExamID:       exam.ID,
		FromTAID:     assignment.TAID,
		ToTAID:       req.TAID,
		SwapDepth:    assignment.SwapDepth,
		CreditWeight: weight,
		ResolvedBy:   req.TAID,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSwapResolved):
			return nil, appErrors.Clone(appErrors.ErrAlreadyResolved, "swap request was resolved concurrently")
		case errors.Is(err, repository.ErrAssignmentNotSwappable):
			return nil, appErrors.Clone(appErrors.ErrConflict, "assignment is no longer swappable")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to accept swap")
		}
	}

	now := s.now()
	swap.Status = models.SwapAccepted
	swap.ResolvedBy = &req.TAID
	swap.ResolvedAt = &now
	assignment.Status = models.AssignmentSwapped

	s.workload.InvalidateReport(ctx)
	s.metrics.RecordSwapOutcome(string(models.SwapAccepted))
	s.emitter.Emit(ctx, models.NotificationEvent{
		Type:         models.NotifySwapAccepted,
		Recipients:   []string{swap.RequesterTAID, req.TAID},
		ExamID:       exam.ID,
		AssignmentID: created.ID,
		SwapID:       swap.ID,
		Message:      fmt.Sprintf("Proctoring duty for %s section %s transferred", exam.CourseCode, exam.Section),
	})
	return &models.SwapOutcome{Request: swap, Original: assignment, Created: created}, nil
}

// Reject resolves a pending swap against the requester. Only the addressed
// target may reject, and a reason is mandatory.
func (s *SwapService) Reject(ctx context.Context, swapID string, req dto.RejectSwapRequest) (*models.SwapRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reject payload")
	}

	swap, err := s.findSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.Status != models.SwapPending {
		return nil, appErrors.Clone(appErrors.ErrAlreadyResolved,
			fmt.Sprintf("swap request already %s", swap.Status))
	}
	if swap.TargetTAID != nil && *swap.TargetTAID != req.TAID {
		return nil, appErrors.Clone(appErrors.ErrConflict, "swap request addressed to another ta")
	}

	reason := req.Reason
	if err := s.swaps.Resolve(ctx, swap.ID, models.SwapRejected, req.TAID, &reason); err != nil {
		if errors.Is(err, repository.ErrSwapResolved) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyResolved, "swap request was resolved concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject swap")
	}

	now := s.now()
	swap.Status = models.SwapRejected
	swap.ResolvedBy = &req.TAID
	swap.ResolvedAt = &now
	swap.RejectionReason = &reason

	s.metrics.RecordSwapOutcome(string(models.SwapRejected))
	s.emitter.Emit(ctx, models.NotificationEvent{
		Type:       models.NotifySwapRejected,
		Recipients: []string{swap.RequesterTAID},
		SwapID:     swap.ID,
		Message:    reason,
	})
	return swap, nil
}

// Cancel withdraws a pending swap. Only the requester may cancel.
func (s *SwapService) Cancel(ctx context.Context, swapID string, req dto.ActorRequest) (*models.SwapRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cancel payload")
	}

	swap, err := s.findSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.Status != models.SwapPending {
		return nil, appErrors.Clone(appErrors.ErrAlreadyResolved,
			fmt.Sprintf("swap request already %s", swap.Status))
	}
	if swap.RequesterTAID != req.TAID {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only the requester may cancel")
	}

	if err := s.swaps.Resolve(ctx, swap.ID, models.SwapCancelled, req.TAID, nil); err != nil {
		if errors.Is(err, repository.ErrSwapResolved) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyResolved, "swap request was resolved concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel swap")
	}

	now := s.now()
	swap.Status = models.SwapCancelled
	swap.ResolvedBy = &req.TAID
	swap.ResolvedAt = &now

	s.metrics.RecordSwapOutcome(string(models.SwapCancelled))
	recipients := []string{}
	if swap.TargetTAID != nil {
		recipients = append(recipients, *swap.TargetTAID)
	}
	s.emitter.Emit(ctx, models.NotificationEvent{
		Type:       models.NotifySwapCancelled,
		Recipients: recipients,
		SwapID:     swap.ID,
	})
	return swap, nil
}

// ListIncoming returns pending swaps addressed to the TA.
func (s *SwapService) ListIncoming(ctx context.Context, taID string) ([]models.SwapRequestDetail, error) {
	swaps, err := s.swaps.ListIncoming(ctx, taID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list incoming swaps")
	}
	return swaps, nil
}

// ListByAssignment returns the swap history of an assignment.
func (s *SwapService) ListByAssignment(ctx context.Context, assignmentID string) ([]models.SwapRequest, error) {
	swaps, err := s.swaps.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignment swaps")
	}
	return swaps, nil
}

func (s *SwapService) findSwap(ctx context.Context, id string) (*models.SwapRequest, error) {
	swap, err := s.swaps.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "swap request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load swap request")
	}
	return swap, nil
}

func (s *SwapService) loadDuty(ctx context.Context, assignmentID string) (*models.Assignment, *models.Exam, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	exam, err := s.exams.FindByID(ctx, assignment.ExamID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return assignment, exam, nil
}

func (s *SwapService) checkCutoff(exam *models.Exam, cutoffErr *appErrors.Error) error {
	remaining := exam.StartAt.Sub(s.now())
	if remaining < s.cutoff {
		return appErrors.Clone(cutoffErr,
			fmt.Sprintf("exam starts in %s, inside the %s swap cutoff", remaining.Round(time.Minute), s.cutoff))
	}
	return nil
}
