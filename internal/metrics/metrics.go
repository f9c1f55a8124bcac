package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AppInfo is always 1; the version label identifies the running build.
	AppInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "app_info",
		Help: "Application info",
	}, []string{"version"})

	// DBUp reports whether the last health check reached the database: 1 = yes, 0 = no.
	DBUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_up",
		Help: "Is the DB reachable? 1 = yes, 0 = no",
	})

	// DBSampleQueryDuration holds the latency of the last successful health check.
	// It keeps its previous value when a check fails.
	DBSampleQueryDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_sample_query_duration_seconds",
		Help: "Latency of a simple DB health-check query in seconds",
	})

	// HTTPRequestsTotal counts handled requests by route template and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "The total number of HTTP requests handled",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration observes request latency by route template.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})

	// ProductsServed counts catalog rows returned by product endpoints.
	ProductsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_served_total",
		Help: "The total number of product rows returned to clients",
	})

	// HealthEventsPublished counts health events sent to the queue by outcome.
	HealthEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "health_events_published_total",
		Help: "Health check events sent to the notification queue",
	}, []string{"result"})
)

// SetAppInfo exports the running version.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version).Set(1)
}

// RecordDBHealth updates the health gauges from one check.
func RecordDBHealth(up bool, latencySeconds float64) {
	if !up {
		DBUp.Set(0)
		return
	}
	DBUp.Set(1)
	DBSampleQueryDuration.Set(latencySeconds)
}
