package logger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const metricsNamespace = "triathlon_updates"

// Metrics tracks run metrics in a private Prometheus registry.
// All operations are thread-safe.
//
// Counters track incrementing values (e.g., pages fetched).
// Gauges track point-in-time values (e.g., races on the index).
// Timings track durations as histograms.
type Metrics struct {
	registry *prometheus.Registry
	counters *prometheus.CounterVec
	gauges   *prometheus.GaugeVec
	timings  *prometheus.HistogramVec
}

var defaultMetrics *Metrics

func init() {
	defaultMetrics = NewMetrics()
}

// NewMetrics creates a new metrics tracker with its own registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		counters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_total",
			Help:      "Count of run events by name.",
		}, []string{"name"}),
		gauges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "gauge",
			Help:      "Point-in-time values by name.",
		}, []string{"name"}),
		timings: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "duration_seconds",
			Help:      "Durations of timed operations by name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"name"}),
	}

	m.registry.MustRegister(m.counters, m.gauges, m.timings)
	return m
}

// IncrCounter increments a counter by 1
func (m *Metrics) IncrCounter(name string) {
	m.counters.WithLabelValues(name).Inc()
}

// SetGauge sets a gauge to the specified value, overwriting any previous value
func (m *Metrics) SetGauge(name string, value float64) {
	m.gauges.WithLabelValues(name).Set(value)
}

// RecordTiming records a duration measurement
func (m *Metrics) RecordTiming(name string, duration time.Duration) {
	m.timings.WithLabelValues(name).Observe(duration.Seconds())
}

// WriteTextfile writes the registry in Prometheus text format to path
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// GetSnapshot returns a snapshot of all metrics as a map containing:
//   - "counters": map of counter names to values
//   - "gauges": map of gauge names to values
//   - "timings": map of timing names to statistics (count, total, average)
func (m *Metrics) GetSnapshot() map[string]interface{} {
	counters := make(map[string]int64)
	gauges := make(map[string]float64)
	timings := make(map[string]map[string]interface{})

	families, err := m.registry.Gather()
	if err != nil {
		Error("Gathering metrics failed", nil, err)
	}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			name := metricName(metric)

			switch family.GetType() {
			case dto.MetricType_COUNTER:
				counters[name] = int64(metric.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				gauges[name] = metric.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				histogram := metric.GetHistogram()
				count := histogram.GetSampleCount()
				if count == 0 {
					continue
				}
				total := time.Duration(histogram.GetSampleSum() * float64(time.Second)).Round(time.Microsecond)
				timings[name] = map[string]interface{}{
					"count":   int(count),
					"total":   total.String(),
					"average": (total / time.Duration(count)).Round(time.Microsecond).String(),
				}
			}
		}
	}

	return map[string]interface{}{
		"counters": counters,
		"gauges":   gauges,
		"timings":  timings,
	}
}

// metricName returns the value of the "name" label
func metricName(metric *dto.Metric) string {
	for _, label := range metric.GetLabel() {
		if label.GetName() == "name" {
			return label.GetValue()
		}
	}
	return ""
}

// Package-level metrics functions using the default metrics tracker

// DefaultMetrics returns the package-level metrics tracker
func DefaultMetrics() *Metrics {
	return defaultMetrics
}

// IncrCounter increments a counter on the default metrics tracker.
func IncrCounter(name string) {
	defaultMetrics.IncrCounter(name)
}

// SetGauge sets a gauge on the default metrics tracker.
func SetGauge(name string, value float64) {
	defaultMetrics.SetGauge(name, value)
}

// RecordTiming records a timing on the default metrics tracker.
func RecordTiming(name string, duration time.Duration) {
	defaultMetrics.RecordTiming(name, duration)
}

// GetMetricsSnapshot returns a snapshot of all metrics from the default tracker.
func GetMetricsSnapshot() map[string]interface{} {
	return defaultMetrics.GetSnapshot()
}
