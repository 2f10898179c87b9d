package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/campusops/ta-proctor-api/internal/dto"
	"github.com/campusops/ta-proctor-api/internal/models"
	appErrors "github.com/campusops/ta-proctor-api/pkg/errors"
)

// TAService is the read surface for TA records and ad-hoc availability
// checks. TA records themselves are managed by the staff module.
type TAService struct {
	tas          candidateReader
	exams        examReader
	availability availabilityResolver
	logger       *zap.Logger
}

// NewTAService constructs the service.
func NewTAService(tas candidateReader, exams examReader, availability availabilityResolver, logger *zap.Logger) *TAService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TAService{tas: tas, exams: exams, availability: availability, logger: logger}
}

// Get loads one TA.
func (s *TAService) Get(ctx context.Context, taID string) (*models.TA, error) {
	ta, err := s.tas.FindByID(ctx, taID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ta not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ta")
	}
	return ta, nil
}

// List returns active TAs, optionally scoped to a department.
func (s *TAService) List(ctx context.Context, departmentID string) ([]models.TA, error) {
	tas, err := s.tas.ListActive(ctx, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tas")
	}
	return tas, nil
}

// CheckAvailability resolves every conflict between a TA and an exam window.
func (s *TAService) CheckAvailability(ctx context.Context, taID, examID string) (*dto.AvailabilityResult, error) {
	ta, err := s.Get(ctx, taID)
	if err != nil {
		return nil, err
	}
	exam, err := s.exams.FindByID(ctx, examID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}

	reasons, err := s.availability.Reasons(ctx, ta, exam)
	if err != nil {
		return nil, err
	}
	result := &dto.AvailabilityResult{
		TAID:      ta.ID,
		ExamID:    exam.ID,
		Available: true,
	}
	for _, reason := range reasons {
		result.Reasons = append(result.Reasons, string(reason))
		if reason.Blocking() {
			result.Available = false
		}
	}
	return result, nil
}
