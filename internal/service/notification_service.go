package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusops/ta-proctor-api/internal/models"
	"github.com/campusops/ta-proctor-api/pkg/jobs"
)

// Emitter publishes engine events for the notification module. Emission is
// fire-and-forget: a failed enqueue is logged, never surfaced to the caller.
type Emitter interface {
	Emit(ctx context.Context, event models.NotificationEvent)
}

// NotificationService dispatches events through a background worker queue.
// Delivery (email, push, in-app) is the notification module's concern; the
// handler here only records the structured event.
type NotificationService struct {
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NotificationQueueName identifies the dispatch queue in logs.
const NotificationQueueName = "notifications"

// NewNotificationService builds the emitter and its queue. Start the
// returned service before emitting.
func NewNotificationService(cfg jobs.QueueConfig, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue(NotificationQueueName, s.handle, cfg)
	return s
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Emit enqueues the event for dispatch.
func (s *NotificationService) Emit(ctx context.Context, event models.NotificationEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := s.queue.Enqueue(jobs.Job{ID: event.ID, Type: string(event.Type), Payload: event}); err != nil {
		s.logger.Warn("failed to enqueue notification",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.NotificationEvent)
	if !ok {
		s.logger.Warn("dropping malformed notification job", zap.String("job_id", job.ID))
		return nil
	}
	s.metrics.RecordNotification(string(event.Type))
	s.logger.Info("notification_event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.Strings("recipients", event.Recipients),
		zap.String("exam_id", event.ExamID),
		zap.String("assignment_id", event.AssignmentID),
		zap.String("swap_id", event.SwapID),
		zap.Time("occurred_at", event.OccurredAt))
	return nil
}
