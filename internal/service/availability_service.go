package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campusops/ta-proctor-api/internal/models"
	"github.com/campusops/ta-proctor-api/internal/repository"
	appErrors "github.com/campusops/ta-proctor-api/pkg/errors"
)

// ConflictReason explains why a TA cannot (or should not) take a duty.
type ConflictReason string

const (
	// ReasonScheduleConflict: a weekly schedule entry overlaps the exam window.
	ReasonScheduleConflict ConflictReason = "SCHEDULE_CONFLICT"
	// ReasonApprovedLeave: an approved leave range covers the exam date.
	ReasonApprovedLeave ConflictReason = "APPROVED_LEAVE"
	// ReasonOverlappingDuty: another live duty overlaps, including the
	// minimum rest gap between consecutive duties.
	ReasonOverlappingDuty ConflictReason = "OVERLAPPING_DUTY"
	// ReasonDepartmentDeprioritized: the exam is cross-department and the
	// TA belongs to the owning department. Advisory only — auto-assignment
	// ranks such TAs last instead of excluding them.
	ReasonDepartmentDeprioritized ConflictReason = "DEPARTMENT_DEPRIORITIZED"
)

// Blocking reports whether the reason rules the TA out entirely.
func (r ConflictReason) Blocking() bool {
	return r != ReasonDepartmentDeprioritized
}

type weeklyScheduleReader interface {
	ListByTA(ctx context.Context, taID string) ([]models.WeeklyScheduleEntry, error)
}

type leaveReader interface {
	ListApprovedCovering(ctx context.Context, taID string, day time.Time) ([]models.LeaveRequest, error)
}

type dutyReader interface {
	ListActiveDuties(ctx context.Context, taID string) ([]repository.ActiveDuty, error)
}

// AvailabilityService decides whether a TA is free for an exam window. The
// result is a pure function of the stored schedule, leave, and assignment
// state.
type AvailabilityService struct {
	schedules weeklyScheduleReader
	leaves    leaveReader
	duties    dutyReader

	minDutyGap              time.Duration
	preferOutsideDepartment bool
	logger                  *zap.Logger
}

// NewAvailabilityService constructs the resolver.
func NewAvailabilityService(schedules weeklyScheduleReader, leaves leaveReader, duties dutyReader, minDutyGap time.Duration, preferOutsideDepartment bool, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		schedules:               schedules,
		leaves:                  leaves,
		duties:                  duties,
		minDutyGap:              minDutyGap,
		preferOutsideDepartment: preferOutsideDepartment,
		logger:                  logger,
	}
}

// Reasons returns every conflict between the TA and the exam window. An
// empty slice means fully available.
func (s *AvailabilityService) Reasons(ctx context.Context, ta *models.TA, exam *models.Exam) ([]ConflictReason, error) {
	var reasons []ConflictReason

	entries, err := s.schedules.ListByTA(ctx, ta.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly schedule")
	}
	for _, entry := range entries {
		overlaps, err := entry.OverlapsWindow(exam.StartAt, exam.EndAt)
		if err != nil {
			s.logger.Warn("skipping malformed schedule entry",
				zap.String("entry_id", entry.ID),
				zap.String("ta_id", ta.ID),
				zap.Error(err))
			continue
		}
		if overlaps {
			reasons = append(reasons, ReasonScheduleConflict)
			break
		}
	}

	leaves, err := s.leaves.ListApprovedCovering(ctx, ta.ID, exam.StartAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave requests")
	}
	if len(leaves) > 0 {
		reasons = append(reasons, ReasonApprovedLeave)
	}

	duties, err := s.duties.ListActiveDuties(ctx, ta.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active duties")
	}
	for _, duty := range duties {
		if duty.ExamID == exam.ID {
			reasons = append(reasons, ReasonOverlappingDuty)
			break
		}
		if exam.Overlaps(duty.StartAt, duty.EndAt, s.minDutyGap) {
			reasons = append(reasons, ReasonOverlappingDuty)
			break
		}
	}

	if s.preferOutsideDepartment && exam.CrossDepartment && ta.DepartmentID == exam.DepartmentID {
		reasons = append(reasons, ReasonDepartmentDeprioritized)
	}

	return reasons, nil
}

// IsAvailable reports whether no blocking conflict exists.
func (s *AvailabilityService) IsAvailable(ctx context.Context, ta *models.TA, exam *models.Exam) (bool, error) {
	reasons, err := s.Reasons(ctx, ta, exam)
	if err != nil {
		return false, err
	}
	for _, reason := range reasons {
		if reason.Blocking() {
			return false, nil
		}
	}
	return true, nil
}
