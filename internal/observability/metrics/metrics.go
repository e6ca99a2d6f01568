package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels applied to every metric.
type Config struct {
	ServiceName string
	Environment string
}

func constLabels(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "ledgerscope"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}

// ImportMetrics captures ingestion health signals.
type ImportMetrics struct {
	recordsNormalized *prometheus.CounterVec
	importWarnings    *prometheus.CounterVec
	importDuration    *prometheus.HistogramVec
	mergeDropped      prometheus.Counter
}

// NewImportMetrics registers ingestion counters on the given registerer.
func NewImportMetrics(registerer prometheus.Registerer, cfg Config) *ImportMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)

	recordsNormalized := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "ledgerscope_import_records_total",
		Help:        "Records normalized from source documents by kind and detected shape.",
		ConstLabels: labels,
	}, []string{"kind", "shape"})
	importWarnings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "ledgerscope_import_warnings_total",
		Help:        "Normalization warnings by severity.",
		ConstLabels: labels,
	}, []string{"severity"})
	importDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "ledgerscope_import_duration_seconds",
		Help:        "Document normalization latency by kind.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: labels,
	}, []string{"kind"})
	mergeDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "ledgerscope_merge_duplicates_dropped_total",
		Help:        "Duplicate vouchers dropped during dataset merges.",
		ConstLabels: labels,
	})

	registerer.MustRegister(
		recordsNormalized,
		importWarnings,
		importDuration,
		mergeDropped,
	)

	return &ImportMetrics{
		recordsNormalized: recordsNormalized,
		importWarnings:    importWarnings,
		importDuration:    importDuration,
		mergeDropped:      mergeDropped,
	}
}

// RecordNormalized adds normalized record counts for a kind and shape.
func (m *ImportMetrics) RecordNormalized(kind, shape string, records int) {
	if m == nil || m.recordsNormalized == nil || records <= 0 {
		return
	}
	m.recordsNormalized.WithLabelValues(kind, shape).Add(float64(records))
}

// RecordWarning increments the warning counter for a severity.
func (m *ImportMetrics) RecordWarning(severity string) {
	if m == nil || m.importWarnings == nil {
		return
	}
	m.importWarnings.WithLabelValues(severity).Inc()
}

// ObserveImportDuration records normalization latency for a kind.
func (m *ImportMetrics) ObserveImportDuration(kind string, duration time.Duration) {
	if m == nil || m.importDuration == nil {
		return
	}
	m.importDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// AddMergeDropped adds duplicate vouchers dropped during a merge.
func (m *ImportMetrics) AddMergeDropped(count int) {
	if m == nil || m.mergeDropped == nil || count <= 0 {
		return
	}
	m.mergeDropped.Add(float64(count))
}

// HTTPMetrics captures request-level health signals.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers HTTP counters on the given registerer.
func NewHTTPMetrics(registerer prometheus.Registerer, cfg Config) *HTTPMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "ledgerscope_http_requests_total",
		Help:        "HTTP requests by route, method and status class.",
		ConstLabels: labels,
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "ledgerscope_http_request_duration_seconds",
		Help:        "HTTP request latency by route.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: labels,
	}, []string{"route", "method"})

	registerer.MustRegister(requests, duration)

	return &HTTPMetrics{
		requests: requests,
		duration: duration,
	}
}

// ObserveRequest records a completed request.
func (m *HTTPMetrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if m.requests != nil {
		m.requests.WithLabelValues(route, method, statusClass(status)).Inc()
	}
	if m.duration != nil {
		m.duration.WithLabelValues(route, method).Observe(duration.Seconds())
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
