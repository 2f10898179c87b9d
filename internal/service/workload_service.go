package service

import (
	"context"
	"database/sql"
	"sort"

	"go.uber.org/zap"

	"github.com/campusops/ta-proctor-api/internal/dto"
	"github.com/campusops/ta-proctor-api/internal/models"
	appErrors "github.com/campusops/ta-proctor-api/pkg/errors"
)

type taReader interface {
	FindByID(ctx context.Context, id string) (*models.TA, error)
	WorkloadRows(ctx context.Context) ([]models.WorkloadEntry, error)
}

const workloadCacheKey = "workload:report"

// WorkloadService is the read surface of the workload ledger. Credit
// mutations happen only inside repository transactions that commit an
// assignment change, so no dangling credit can exist.
type WorkloadService struct {
	tas            taReader
	cache          *CacheService
	partTimeTarget float64
	logger         *zap.Logger
}

// NewWorkloadService constructs the service.
func NewWorkloadService(tas taReader, cache *CacheService, partTimeTarget float64, logger *zap.Logger) *WorkloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if partTimeTarget <= 0 {
		partTimeTarget = 4
	}
	return &WorkloadService{tas: tas, cache: cache, partTimeTarget: partTimeTarget, logger: logger}
}

// Credit returns the workload view for one TA.
func (s *WorkloadService) Credit(ctx context.Context, taID string) (*dto.WorkloadResult, error) {
	ta, err := s.tas.FindByID(ctx, taID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ta not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ta")
	}
	target := ta.ObligationTarget(s.partTimeTarget)
	result := &dto.WorkloadResult{
		TAID:   ta.ID,
		Credit: ta.WorkloadCredit,
		Target: target,
	}
	if target > 0 {
		result.Utilization = ta.WorkloadCredit / target
	}
	return result, nil
}

// Report lists every active TA with credit and obligation target, ascending
// by credit. The result is cached until the next committed credit mutation.
func (s *WorkloadService) Report(ctx context.Context) ([]models.WorkloadEntry, error) {
	var cached []models.WorkloadEntry
	if hit, _ := s.cache.Get(ctx, workloadCacheKey, &cached); hit {
		return cached, nil
	}

	rows, err := s.tas.WorkloadRows(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build workload report")
	}
	for i := range rows {
		target := s.partTimeTarget
		if rows[i].Employment == models.EmploymentFullTime {
			target = s.partTimeTarget * 2
		}
		rows[i].Target = target
		if target > 0 {
			rows[i].Utilization = rows[i].Credit / target
		}
	}

	s.cache.Set(ctx, workloadCacheKey, rows)
	return rows, nil
}

// InvalidateReport drops the cached report after a credit mutation commits.
func (s *WorkloadService) InvalidateReport(ctx context.Context) {
	s.cache.Invalidate(ctx, workloadCacheKey)
}

// Rank orders candidates ascending by workload credit, ties broken by TA id
// for determinism.
func Rank(tas []models.TA) []models.TA {
	ranked := make([]models.TA, len(tas))
	copy(ranked, tas)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].WorkloadCredit != ranked[j].WorkloadCredit {
			return ranked[i].WorkloadCredit < ranked[j].WorkloadCredit
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}
