package service

import (
	"context"
	"log/slog"
	"time"
)

// HealthProber re-runs the database health check on a fixed interval so the
// gauges stay current between scrapes.
type HealthProber struct {
	health   *HealthService
	interval time.Duration
}

// NewHealthProber creates a new HealthProber
func NewHealthProber(health *HealthService, interval time.Duration) *HealthProber {
	return &HealthProber{
		health:   health,
		interval: interval,
	}
}

// Start probes once immediately, then every interval until ctx is done.
func (p *HealthProber) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.Info("Health prober started", slog.Duration("interval", p.interval))
	p.probe(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Health prober stopped")
			return
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

func (p *HealthProber) probe(ctx context.Context) {
	event, err := p.health.CheckDatabase(ctx)
	if err != nil {
		slog.Debug("Health probe interrupted", slog.Any("err", err))
		return
	}
	slog.Debug("Health probe finished",
		slog.Bool("db_up", event.DBUp),
		slog.Float64("latency_seconds", event.LatencySeconds))
}
