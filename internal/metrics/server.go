package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iyhunko/apm-demo-service/internal/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer returns the dedicated /metrics listener, or nil when
// METRICS_SERVER_PORT is unset and metrics are only served by the main router.
func NewServer(conf *config.Config) *http.Server {
	if conf.MetricsServer.Port == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              ":" + conf.MetricsServer.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// StartMetricsServer runs srv in a goroutine until Shutdown.
func StartMetricsServer(srv *http.Server) {
	go func() {
		slog.Info("Metrics server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", slog.Any("err", err))
		}
	}()
}

// Shutdown stops srv if it was started.
func Shutdown(ctx context.Context, srv *http.Server) error {
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
