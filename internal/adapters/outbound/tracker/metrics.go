package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/openkraft/archlens/internal/domain"
)

// Metrics counts checkpoints and times runs on a private Prometheus registry.
type Metrics struct {
	registry    *prometheus.Registry
	checkpoints *prometheus.CounterVec
	duration    *prometheus.HistogramVec

	mu      sync.Mutex
	started map[string]time.Time
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		checkpoints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "archlens",
			Name:      "checkpoints_total",
			Help:      "Pipeline checkpoints by step and outcome.",
		}, []string{"step", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "archlens",
			Name:      "run_duration_seconds",
			Help:      "Wall time of pipeline runs by final state.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"state"}),
		started: make(map[string]time.Time),
	}
	m.registry.MustRegister(m.checkpoints, m.duration)
	return m
}

func (m *Metrics) Track(_ context.Context, cp domain.Checkpoint) error {
	m.checkpoints.WithLabelValues(cp.Step, string(cp.Outcome)).Inc()

	ts := cp.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	start, seen := m.started[cp.RunID]
	if !seen {
		m.started[cp.RunID] = ts
		start = ts
	}
	if cp.Step == domain.StateCompleted.String() || cp.Step == domain.StateFailed.String() {
		m.duration.WithLabelValues(cp.Step).Observe(ts.Sub(start).Seconds())
		delete(m.started, cp.RunID)
	}
	return nil
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile dumps the current metrics in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
