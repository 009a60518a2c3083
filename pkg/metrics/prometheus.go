package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds the Prometheus metrics of a generation run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         *prometheus.Registry

	// Dataset shape
	recordsGenerated *prometheus.CounterVec
	weeksSimulated   prometheus.Gauge
	weeklyThroughput *prometheus.GaugeVec
	teamThroughput   prometheus.Gauge
	duplicateRecords prometheus.Counter

	// Run health
	runsTotal     prometheus.Counter
	stageDuration *prometheus.HistogramVec
	sinkWrites    *prometheus.CounterVec
	sinkErrors    *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level helpers

// Custom registry to avoid default Go process metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry behind globalManager

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager registered on its own registry unless
// one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "annosim",
		subsystem:        "generator",
		histogramBuckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000},
		enabled:          true,
		customLabels:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.recordsGenerated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_generated_total",
		Help:        "Performance records generated, by role (core or new_hire)",
		ConstLabels: labels,
	}, []string{"role"})

	m.weeksSimulated = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "weeks_simulated",
		Help:        "Number of weeks covered by the last run",
		ConstLabels: labels,
	})

	m.weeklyThroughput = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "team_weekly_throughput",
		Help:        "Team throughput per simulated week",
		ConstLabels: labels,
	}, []string{"week"})

	m.teamThroughput = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "team_cumulative_throughput",
		Help:        "Cumulative team throughput at the final week",
		ConstLabels: labels,
	})

	m.duplicateRecords = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duplicate_records_total",
		Help:        "Records that repeated a (week, person) slot",
		ConstLabels: labels,
	})

	m.runsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Generation runs started",
		ConstLabels: labels,
	})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_milliseconds",
		Help:        "Duration of each run stage in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"stage"})

	m.sinkWrites = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sink_writes_total",
		Help:        "Tables written, by sink",
		ConstLabels: labels,
	}, []string{"sink"})

	m.sinkErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sink_errors_total",
		Help:        "Failed table writes, by sink",
		ConstLabels: labels,
	}, []string{"sink"})
}

// RecordRecords adds n generated records for role.
func (m *Manager) RecordRecords(role string, n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.recordsGenerated.WithLabelValues(role).Add(float64(n))
}

// UpdateWeeksSimulated sets the number of weeks in the last run.
func (m *Manager) UpdateWeeksSimulated(weeks int) {
	if m.enabled {
		m.weeksSimulated.Set(float64(weeks))
	}
}

// UpdateWeeklyThroughput sets the team throughput of week.
func (m *Manager) UpdateWeeklyThroughput(week, throughput int) {
	if m.enabled {
		m.weeklyThroughput.WithLabelValues(strconv.Itoa(week)).Set(float64(throughput))
	}
}

// UpdateTeamThroughput sets the final cumulative throughput.
func (m *Manager) UpdateTeamThroughput(total int) {
	if m.enabled {
		m.teamThroughput.Set(float64(total))
	}
}

// RecordDuplicateRecord increments the duplicate slot counter.
func (m *Manager) RecordDuplicateRecord() {
	if m.enabled {
		m.duplicateRecords.Inc()
	}
}

// RecordRun increments the run counter.
func (m *Manager) RecordRun() {
	if m.enabled {
		m.runsTotal.Inc()
	}
}

// RecordStageDuration records how long stage took in milliseconds.
func (m *Manager) RecordStageDuration(stage string, ms float64) {
	if m.enabled {
		m.stageDuration.WithLabelValues(stage).Observe(ms)
	}
}

// RecordSinkWrite counts a table written by sink.
func (m *Manager) RecordSinkWrite(sink string) {
	if m.enabled {
		m.sinkWrites.WithLabelValues(sink).Inc()
	}
}

// RecordSinkError counts a failed write by sink.
func (m *Manager) RecordSinkError(sink string) {
	if m.enabled {
		m.sinkErrors.WithLabelValues(sink).Inc()
	}
}

// Registry returns the registry the manager's metrics live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the manager's metrics in the text exposition format,
// suitable for the node_exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteTextfile, path, err)
	}
	return nil
}

// Default returns the process-wide manager.
func Default() *Manager {
	return globalManager
}

// GetRegistry returns the custom Prometheus registry used by the default manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
