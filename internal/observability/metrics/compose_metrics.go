package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ComposeMetrics instruments the thread composition pipeline.
type ComposeMetrics struct {
	composeRequests    *prometheus.CounterVec
	composeDuration    *prometheus.HistogramVec
	generationDuration prometheus.Histogram
	cacheLookups       *prometheus.CounterVec
	quotaDecisions     *prometheus.CounterVec
	threadSegments     prometheus.Histogram
}

var (
	composeMetricsOnce sync.Once
	composeMetrics     *ComposeMetrics
)

func Compose() *ComposeMetrics {
	return ComposeWithConfig(Config{})
}

func ComposeWithConfig(cfg Config) *ComposeMetrics {
	composeMetricsOnce.Do(func() {
		composeMetrics = newComposeMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return composeMetrics
}

func ResetComposeMetricsForTest() {
	composeMetricsOnce = sync.Once{}
	composeMetrics = nil
}

func newComposeMetrics(registerer prometheus.Registerer, cfg Config) *ComposeMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "threadly"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	composeRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "threadly_compose_requests_total",
			Help:        "Total compose requests by terminal outcome.",
			ConstLabels: constLabels,
		},
		[]string{"outcome"}, // success | cache_hit | quota_exceeded | generation_failed | validation_failed | invalid_input
	)

	composeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "threadly_compose_duration_seconds",
			Help:        "Wall time of the full compose pipeline.",
			Buckets:     []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 15, 30, 60},
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)

	generationDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "threadly_generation_duration_seconds",
			Help:        "Wall time of the external generation call.",
			Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60},
			ConstLabels: constLabels,
		},
	)

	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "threadly_cache_lookups_total",
			Help:        "Result cache lookups by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // hit | miss
	)

	quotaDecisions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "threadly_quota_decisions_total",
			Help:        "Quota guard decisions by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // allowed | bypassed | denied_daily | denied_monthly | store_error
	)

	threadSegments := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "threadly_thread_segments",
			Help:        "Segment count of successfully produced threads.",
			Buckets:     []float64{1, 2, 3, 5, 8, 13, 21, 34, 55},
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(
		composeRequests,
		composeDuration,
		generationDuration,
		cacheLookups,
		quotaDecisions,
		threadSegments,
	)

	return &ComposeMetrics{
		composeRequests:    composeRequests,
		composeDuration:    composeDuration,
		generationDuration: generationDuration,
		cacheLookups:       cacheLookups,
		quotaDecisions:     quotaDecisions,
		threadSegments:     threadSegments,
	}
}

func (m *ComposeMetrics) ObserveCompose(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.composeRequests.WithLabelValues(outcome).Inc()
	m.composeDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *ComposeMetrics) ObserveGeneration(duration time.Duration) {
	if m == nil {
		return
	}
	m.generationDuration.Observe(duration.Seconds())
}

func (m *ComposeMetrics) IncCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *ComposeMetrics) IncQuotaDecision(result string) {
	if m == nil {
		return
	}
	m.quotaDecisions.WithLabelValues(result).Inc()
}

func (m *ComposeMetrics) ObserveThreadSegments(count int) {
	if m == nil {
		return
	}
	m.threadSegments.Observe(float64(count))
}
