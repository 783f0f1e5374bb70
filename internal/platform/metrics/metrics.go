package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry served at /metrics.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	RoutePlans = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_plans_total", Help: "Route plans computed by city and festival mode."},
		[]string{"city", "festival"},
	)
	FleetProvisioned = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fleet_provisioned_total", Help: "Default fleets provisioned by city."},
		[]string{"city"},
	)
	FillLevelUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fill_level_updates_total", Help: "Fill level writes by city and source."},
		[]string{"city", "source"},
	)
	FillLevelHistoryFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fill_level_history_failures_total", Help: "Fill level readings that could not be recorded."},
	)
	AssistantRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "assistant_requests_total", Help: "Assistant requests by mode and outcome."},
		[]string{"mode", "status"},
	)
	AssistantContextUnavailable = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "assistant_context_unavailable_total", Help: "Assistant prompts built from the zero fallback context."},
	)
)

var regOnce sync.Once

// RegisterDefault registers every collector on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(
			HTTPRequests,
			HTTPDuration,
			RoutePlans,
			FleetProvisioned,
			FillLevelUpdates,
			FillLevelHistoryFailures,
			AssistantRequests,
			AssistantContextUnavailable,
		)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
