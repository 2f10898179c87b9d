package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campusops/ta-proctor-api/internal/models"
)

type elapsedLister interface {
	ListElapsedActive(ctx context.Context, now time.Time) ([]models.Assignment, error)
	Complete(ctx context.Context, id string) error
}

// CompletionSweep periodically marks elapsed duties COMPLETED. Each row is
// finalised independently, so one bad row never blocks the rest, and the
// conditional update makes re-running a no-op.
type CompletionSweep struct {
	assignments elapsedLister
	emitter     Emitter
	metrics     *MetricsService
	interval    time.Duration
	logger      *zap.Logger
	now         func() time.Time

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewCompletionSweep creates the sweep worker.
func NewCompletionSweep(
	assignments elapsedLister,
	emitter Emitter,
	metrics *MetricsService,
	interval time.Duration,
	logger *zap.Logger,
) *CompletionSweep {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CompletionSweep{
		assignments: assignments,
		emitter:     emitter,
		metrics:     metrics,
		interval:    interval,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		stop:        make(chan struct{}),
	}
}

// Start launches the ticker loop. An initial pass runs immediately so
// restarts catch up on duties that elapsed while the service was down.
func (s *CompletionSweep) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("completion sweep started", zap.Duration("interval", s.interval))

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce()
		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stop:
				s.logger.Info("completion sweep stopped")
				return
			}
		}
	}()
}

// Stop shuts the loop down and waits for an in-flight pass to finish.
func (s *CompletionSweep) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func (s *CompletionSweep) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()
	completed, skipped := s.Sweep(ctx)
	if completed > 0 || skipped > 0 {
		s.logger.Info("completion sweep pass finished",
			zap.Int("completed", completed),
			zap.Int("skipped", skipped))
	}
}

// Sweep performs one pass and returns how many duties were completed and how
// many were skipped. Exposed so a pass can be run on demand.
func (s *CompletionSweep) Sweep(ctx context.Context) (completed, skipped int) {
	now := s.now()
	elapsed, err := s.assignments.ListElapsedActive(ctx, now)
	if err != nil {
		s.logger.Error("failed to list elapsed assignments", zap.Error(err))
		return 0, 0
	}

	for _, assignment := range elapsed {
		if err := s.assignments.Complete(ctx, assignment.ID); err != nil {
			// Already completed or swapped away between list and update.
			skipped++
			if !errors.Is(err, sql.ErrNoRows) {
				s.logger.Warn("failed to complete assignment, will retry next pass",
					zap.String("assignment_id", assignment.ID),
					zap.Error(err))
			}
			continue
		}
		completed++
		s.emitter.Emit(ctx, models.NotificationEvent{
			Type:         models.NotifyAssignmentCompleted,
			Recipients:   []string{assignment.TAID},
			ExamID:       assignment.ExamID,
			AssignmentID: assignment.ID,
		})
	}
	s.metrics.RecordSweep(completed, skipped)
	return completed, skipped
}
