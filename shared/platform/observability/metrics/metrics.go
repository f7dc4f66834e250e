package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Metrics defines the interface for metrics collection.
type Metrics interface {
	IncrementCounter(name string, labels map[string]string)
	RecordValue(name string, value float64, labels map[string]string)
	RecordDuration(name string, duration time.Duration, labels map[string]string)
	SetGauge(name string, value float64, labels map[string]string)
}

// InMemoryMetrics implements Metrics with in-memory storage. Suitable for
// development and tests; a production deployment would export to Prometheus
// or StatsD instead.
type InMemoryMetrics struct {
	serviceName string
	counters    map[string]*Counter
	gauges      map[string]*Gauge
	histograms  map[string]*Histogram
	mu          sync.RWMutex
}

// Counter represents a monotonically increasing metric.
type Counter struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels"`
	Value  int64             `json:"value"`
}

// Gauge represents a point-in-time metric value.
type Gauge struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels"`
	Value  float64           `json:"value"`
}

// Histogram represents an aggregated distribution metric.
type Histogram struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels"`
	Count  int64             `json:"count"`
	Sum    float64           `json:"sum"`
}

// NewMetrics creates a new metrics instance.
func NewMetrics(serviceName string) (Metrics, error) {
	return &InMemoryMetrics{
		serviceName: serviceName,
		counters:    make(map[string]*Counter),
		gauges:      make(map[string]*Gauge),
		histograms:  make(map[string]*Histogram),
	}, nil
}

// IncrementCounter increments a counter metric.
func (m *InMemoryMetrics) IncrementCounter(name string, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.metricKey(name, labels)
	if counter, exists := m.counters[key]; exists {
		counter.Value++
		return
	}
	m.counters[key] = &Counter{
		Name:   name,
		Labels: copyLabels(labels),
		Value:  1,
	}
}

// RecordValue records a value into a histogram metric.
func (m *InMemoryMetrics) RecordValue(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.metricKey(name, labels)
	if histogram, exists := m.histograms[key]; exists {
		histogram.Count++
		histogram.Sum += value
		return
	}
	m.histograms[key] = &Histogram{
		Name:   name,
		Labels: copyLabels(labels),
		Count:  1,
		Sum:    value,
	}
}

// RecordDuration records a duration into a histogram metric.
func (m *InMemoryMetrics) RecordDuration(name string, duration time.Duration, labels map[string]string) {
	m.RecordValue(name, duration.Seconds(), labels)
}

// SetGauge sets a gauge metric value.
func (m *InMemoryMetrics) SetGauge(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gauges[m.metricKey(name, labels)] = &Gauge{
		Name:   name,
		Labels: copyLabels(labels),
		Value:  value,
	}
}

// GetMetrics returns a snapshot of all collected metrics.
func (m *InMemoryMetrics) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make([]Counter, 0, len(m.counters))
	for _, c := range m.counters {
		counters = append(counters, *c)
	}
	gauges := make([]Gauge, 0, len(m.gauges))
	for _, g := range m.gauges {
		gauges = append(gauges, *g)
	}
	histograms := make([]Histogram, 0, len(m.histograms))
	for _, h := range m.histograms {
		histograms = append(histograms, *h)
	}

	return map[string]interface{}{
		"service":    m.serviceName,
		"counters":   counters,
		"gauges":     gauges,
		"histograms": histograms,
	}
}

func (m *InMemoryMetrics) metricKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(name)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("{%s=%s}", k, labels[k]))
	}
	return sb.String()
}

func copyLabels(labels map[string]string) map[string]string {
	copied := make(map[string]string, len(labels))
	for k, v := range labels {
		copied[k] = v
	}
	return copied
}

// NoOpMetrics is a metrics implementation that does nothing (useful for testing).
type NoOpMetrics struct{}

// NewNoOpMetrics creates a no-op metrics instance.
func NewNoOpMetrics() Metrics {
	return &NoOpMetrics{}
}

func (n *NoOpMetrics) IncrementCounter(name string, labels map[string]string)                  {}
func (n *NoOpMetrics) RecordValue(name string, value float64, labels map[string]string)        {}
func (n *NoOpMetrics) RecordDuration(name string, d time.Duration, labels map[string]string)   {}
func (n *NoOpMetrics) SetGauge(name string, value float64, labels map[string]string)           {}
