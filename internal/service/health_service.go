package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/iyhunko/apm-demo-service/internal/metrics"
	"github.com/iyhunko/apm-demo-service/internal/model"
	"github.com/iyhunko/apm-demo-service/internal/repository"
)

// HealthEventPublisher delivers health check results to subscribers.
type HealthEventPublisher interface {
	PublishHealthEvent(ctx context.Context, event *model.HealthEvent) error
}

type HealthService struct {
	repo      repository.HealthRepository
	publisher HealthEventPublisher
}

// NewHealthService creates a HealthService. publisher may be nil.
func NewHealthService(repo repository.HealthRepository, publisher HealthEventPublisher) *HealthService {
	return &HealthService{
		repo:      repo,
		publisher: publisher,
	}
}

// CheckDatabase runs the liveness query, timing connection plus query,
// and records the outcome in the db_up and latency gauges. A failed check
// is reported in the returned event. An error is returned only when ctx
// ended during the check; nothing is recorded or published then, since the
// failure says nothing about the database.
func (hs *HealthService) CheckDatabase(ctx context.Context) (*model.HealthEvent, error) {
	start := time.Now()
	err := hs.repo.SelectOne(ctx)
	duration := time.Since(start)

	if err != nil && ctx.Err() != nil {
		return nil, fmt.Errorf("health check abandoned: %w", ctx.Err())
	}

	event := &model.HealthEvent{DBUp: err == nil}
	event.InitMeta()

	if err != nil {
		event.Error = err.Error()
		slog.Error("DB health check failed", slog.Any("err", err))
	} else {
		event.LatencySeconds = duration.Seconds()
	}
	metrics.RecordDBHealth(event.DBUp, event.LatencySeconds)

	if hs.publisher != nil {
		if err := hs.publisher.PublishHealthEvent(ctx, event); err != nil {
			// Log error but don't fail the check
			metrics.HealthEventsPublished.WithLabelValues("error").Inc()
			slog.Error("Failed to send health event", slog.Any("err", err), slog.String("event_id", event.ID.String()))
		} else {
			metrics.HealthEventsPublished.WithLabelValues("ok").Inc()
		}
	}

	return event, nil
}
