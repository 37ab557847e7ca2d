package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "processlog"

// Run outcomes recorded in the runs_total counter.
const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// Metrics holds the pipeline's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	runs              *prometheus.CounterVec
	runDuration       *prometheus.HistogramVec
	rows              *prometheus.CounterVec
	droppedTimestamps prometheus.Counter
	cacheLookups      *prometheus.CounterVec
	cacheEntries      prometheus.Gauge
}

// NewMetrics registers the pipeline collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by layer and outcome.",
		}, []string{"layer", "outcome"}),
		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of successful pipeline runs, load included.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}, []string{"layer"}),
		rows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_total",
			Help:      "Rows emitted per artifact kind.",
		}, []string{"artifact"}),
		droppedTimestamps: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dropped_timestamps_total",
			Help:      "Event cells dropped because the timestamp did not parse.",
		}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_lookups_total",
			Help:      "Load cache lookups by result.",
		}, []string{"result"}),
		cacheEntries: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "cache_entries",
			Help:      "Tables currently held by the load cache.",
		}),
	}
}

func (m *Metrics) observeRun(layer Layer, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(layer), outcome).Inc()
	if outcome == outcomeSuccess {
		m.runDuration.WithLabelValues(string(layer)).Observe(d.Seconds())
	}
}

func (m *Metrics) observeResult(res *Result) {
	if m == nil {
		return
	}
	for _, a := range res.Artifacts {
		m.rows.WithLabelValues(string(a.Kind)).Add(float64(a.Table.Len()))
	}
	m.droppedTimestamps.Add(float64(res.Stats.DroppedTimestamps))
}

func (m *Metrics) observeCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) setCacheEntries(n int) {
	if m == nil {
		return
	}
	m.cacheEntries.Set(float64(n))
}
