package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
)

// JobTypeTimetablePublished identifies publication jobs on the queue.
const JobTypeTimetablePublished = "timetable.published"

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type eventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// TimetablePublishedEvent is delivered to downstream consumers after a successful sync.
type TimetablePublishedEvent struct {
	EventID      string                 `json:"event_id"`
	Type         string                 `json:"type"`
	OccurredAt   time.Time              `json:"occurred_at"`
	SessionCount int                    `json:"session_count"`
	Timetable    models.TimetableDetail `json:"timetable"`
}

// NotificationService enqueues publication events without blocking the request.
type NotificationService struct {
	queue  jobDispatcher
	logger *zap.Logger
}

// NewNotificationService constructs the dispatcher front.
func NewNotificationService(queue jobDispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{queue: queue, logger: logger}
}

// NotifyPublished enqueues a timetable.published event.
func (s *NotificationService) NotifyPublished(ctx context.Context, timetable *models.TimetableDetail, sessionCount int) error {
	if timetable == nil {
		return fmt.Errorf("notify published: timetable is nil")
	}
	event := TimetablePublishedEvent{
		EventID:      uuid.NewString(),
		Type:         JobTypeTimetablePublished,
		OccurredAt:   time.Now().UTC(),
		SessionCount: sessionCount,
		Timetable:    *timetable,
	}
	if err := s.queue.Enqueue(jobs.Job{ID: event.EventID, Type: JobTypeTimetablePublished, Payload: event}); err != nil {
		return fmt.Errorf("enqueue publication: %w", err)
	}
	s.logger.Debug("publication enqueued", zap.String("event_id", event.EventID), zap.Int64("timetable_id", timetable.ID))
	return nil
}

// PublicationWorker delivers queued publication events to the message channel.
type PublicationWorker struct {
	publisher eventPublisher
	channel   string
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewPublicationWorker constructs a worker. A nil publisher only logs events.
func NewPublicationWorker(publisher eventPublisher, channel string, metrics *MetricsService, logger *zap.Logger) *PublicationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublicationWorker{publisher: publisher, channel: channel, metrics: metrics, logger: logger}
}

// Handle processes a queue job.
func (w *PublicationWorker) Handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(TimetablePublishedEvent)
	if !ok {
		w.metrics.RecordPublication("dropped")
		w.logger.Sugar().Errorw("unexpected publication payload", "job_id", job.ID, "type", job.Type)
		return nil
	}

	fields := []zap.Field{
		zap.String("event_id", event.EventID),
		zap.Int64("timetable_id", event.Timetable.ID),
		zap.String("promotion", event.Timetable.Promotion.Name),
		zap.Int("week", event.Timetable.Week.WeekID),
		zap.Int("sessions", event.SessionCount),
	}
	if w.publisher == nil {
		w.metrics.RecordPublication("logged")
		w.logger.Info("timetable published", fields...)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		w.metrics.RecordPublication("dropped")
		w.logger.Error("failed to encode publication", append(fields, zap.Error(err))...)
		return nil
	}
	if err := w.publisher.Publish(ctx, w.channel, payload); err != nil {
		w.metrics.RecordPublication("failed")
		return err
	}
	w.metrics.RecordPublication("delivered")
	w.logger.Info("timetable published", append(fields, zap.String("channel", w.channel))...)
	return nil
}
