package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds the catalog client's Prometheus metrics.
// All methods are safe on a nil receiver so metrics stay optional for callers.
type MetricsManager struct {
	Registry              *prometheus.Registry
	CatalogRequestsTotal  *prometheus.CounterVec   // by op and outcome
	CatalogRequestLatency *prometheus.HistogramVec // by op
	FallbackSubstitutions *prometheus.CounterVec   // by view
	MarkSoldTotal         *prometheus.CounterVec   // by result
}

// NewMetricsManager initializes and registers the metrics on a private registry.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()
	namespace := sanitizeNamespace(serviceName)

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_requests_total",
		Help:      "Total number of catalog service requests by operation and outcome.",
	}, []string{"op", "outcome"})

	requestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "catalog_request_latency_seconds",
		Help:      "Latency of catalog service requests by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	fallbackSubstitutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fallback_substitutions_total",
		Help:      "Number of times a view fell back to the static catalog.",
	}, []string{"view"})

	markSoldTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mark_sold_total",
		Help:      "Mark-as-sold attempts by result.",
	}, []string{"result"})

	registry.MustRegister(
		requestsTotal,
		requestLatency,
		fallbackSubstitutions,
		markSoldTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:              registry,
		CatalogRequestsTotal:  requestsTotal,
		CatalogRequestLatency: requestLatency,
		FallbackSubstitutions: fallbackSubstitutions,
		MarkSoldTotal:         markSoldTotal,
	}
}

// ObserveRequest records one finished catalog request.
func (m *MetricsManager) ObserveRequest(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CatalogRequestsTotal.WithLabelValues(op, outcome).Inc()
	m.CatalogRequestLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// FallbackUsed records a fallback substitution for view.
func (m *MetricsManager) FallbackUsed(view string) {
	if m == nil {
		return
	}
	m.FallbackSubstitutions.WithLabelValues(view).Inc()
}

// MarkSold records the result of a mark-as-sold attempt.
func (m *MetricsManager) MarkSold(result string) {
	if m == nil {
		return
	}
	m.MarkSoldTotal.WithLabelValues(result).Inc()
}

// NewMetricsServer returns an HTTP server exposing /metrics and /healthz on port.
// The caller owns ListenAndServe and Shutdown.
func NewMetricsServer(port string, registry *prometheus.Registry) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func sanitizeNamespace(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
