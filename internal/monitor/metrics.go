package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
)

// Ensure MetricsMonitor implements the interface.
var _ driven.ActivityMonitor = (*MetricsMonitor)(nil)

// MetricsMonitor records load attempts and discovered references as
// Prometheus metrics in its own registry.
type MetricsMonitor struct {
	registry *prometheus.Registry

	loadsTotal      *prometheus.CounterVec
	loadDuration    prometheus.Histogram
	referencesTotal prometheus.Counter
	maxDepth        prometheus.Gauge

	mu      sync.Mutex
	started map[*domain.ReferenceNode]time.Time
	deepest int
	now     func() time.Time
}

// NewMetricsMonitor creates a monitor with a fresh registry.
func NewMetricsMonitor() *MetricsMonitor {
	m := &MetricsMonitor{
		registry: prometheus.NewRegistry(),
		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepref_loads_total",
				Help: "Total number of load attempts by resulting status",
			},
			[]string{"status"},
		),
		loadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stepref_load_duration_seconds",
				Help:    "Duration of load attempts in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		referencesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stepref_references_identified_total",
				Help: "Total number of external references discovered",
			},
		),
		maxDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stepref_reference_depth_max",
				Help: "Deepest reference node seen",
			},
		),
		started: make(map[*domain.ReferenceNode]time.Time),
		now:     time.Now,
	}
	m.registry.MustRegister(m.loadsTotal, m.loadDuration, m.referencesTotal, m.maxDepth)
	return m
}

// Registry returns the registry holding the metrics.
func (m *MetricsMonitor) Registry() *prometheus.Registry {
	return m.registry
}

// StartedLoading records the start time of the attempt.
func (m *MetricsMonitor) StartedLoading(n *domain.ReferenceNode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started[n] = m.now()
}

// CompletedLoading counts the attempt by outcome and observes its duration.
func (m *MetricsMonitor) CompletedLoading(n *domain.ReferenceNode) {
	m.loadsTotal.WithLabelValues(n.Status().Kind().String()).Inc()

	m.mu.Lock()
	start, ok := m.started[n]
	delete(m.started, n)
	now := m.now()
	m.mu.Unlock()

	if ok {
		m.loadDuration.Observe(now.Sub(start).Seconds())
	}
}

// Identified counts discovered children.
func (m *MetricsMonitor) Identified(children []*domain.ReferenceNode, _ *domain.ReferenceNode) {
	m.referencesTotal.Add(float64(len(children)))
	for _, c := range children {
		m.observeDepth(c.Depth)
	}
}

func (m *MetricsMonitor) observeDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if depth > m.deepest {
		m.deepest = depth
		m.maxDepth.Set(float64(depth))
	}
}

// WriteTextfile writes the metrics in the text exposition format, for
// collection by a node exporter textfile collector.
func (m *MetricsMonitor) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
