// metrics.go - Metrics collection for proof construction and verification
package main

import (
	"sort"
	"strings"
	"sync"
	"time"

	"notecrypto/internal/proof"
)

// MetricType represents the type of metric
type MetricType string

const (
	Counter   MetricType = "counter"
	Gauge     MetricType = "gauge"
	Histogram MetricType = "histogram"
)

// histogramWindow bounds the samples kept per histogram.
const histogramWindow = 1000

// Metric represents a single metric
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// MetricsCollector manages metrics collection
type MetricsCollector struct {
	mu         sync.RWMutex
	metrics    map[string]*Metric
	counters   map[string]int64
	gauges     map[string]float64
	histograms map[string][]float64
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics:    make(map[string]*Metric),
		counters:   make(map[string]int64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

// IncrementCounter increments a counter metric
func (mc *MetricsCollector) IncrementCounter(name string, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := makeKey(name, labels)
	mc.counters[key]++
	mc.updateMetric(key, name, Counter, float64(mc.counters[key]), labels)
}

// SetGauge sets a gauge metric value
func (mc *MetricsCollector) SetGauge(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := makeKey(name, labels)
	mc.gauges[key] = value
	mc.updateMetric(key, name, Gauge, value, labels)
}

// RecordHistogram records a value in a histogram
func (mc *MetricsCollector) RecordHistogram(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := makeKey(name, labels)
	values := append(mc.histograms[key], value)
	if len(values) > histogramWindow {
		values = values[len(values)-histogramWindow:]
	}
	mc.histograms[key] = values
	mc.updateMetric(key, name, Histogram, value, labels)
}

// GetMetric retrieves a metric by name and labels
func (mc *MetricsCollector) GetMetric(name string, labels map[string]string) *Metric {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return mc.metrics[makeKey(name, labels)]
}

// GetMetricsSummary returns a summary of all metrics
func (mc *MetricsCollector) GetMetricsSummary() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	counters := make(map[string]int64, len(mc.counters))
	for key, v := range mc.counters {
		counters[key] = v
	}
	gauges := make(map[string]float64, len(mc.gauges))
	for key, v := range mc.gauges {
		gauges[key] = v
	}
	histograms := make(map[string]map[string]float64, len(mc.histograms))
	for key, values := range mc.histograms {
		if len(values) == 0 {
			continue
		}
		h := map[string]float64{"count": float64(len(values)), "min": values[0], "max": values[0]}
		var sum float64
		for _, v := range values {
			h["min"] = min(h["min"], v)
			h["max"] = max(h["max"], v)
			sum += v
		}
		h["sum"] = sum
		h["avg"] = sum / h["count"]
		histograms[key] = h
	}

	return map[string]interface{}{
		"counters":   counters,
		"gauges":     gauges,
		"histograms": histograms,
	}
}

// makeKey creates a unique key for a metric name and labels. Labels are
// sorted so the key does not depend on map order.
func makeKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteString("_" + k + "_" + labels[k])
	}
	return b.String()
}

func (mc *MetricsCollector) updateMetric(key, name string, metricType MetricType, value float64, labels map[string]string) {
	mc.metrics[key] = &Metric{
		Name:      name,
		Type:      metricType,
		Value:     value,
		Labels:    labels,
		Timestamp: time.Now(),
	}
}

// Predefined metric names
const (
	MetricProofCount        = "proof_count"
	MetricProofTime         = "proof_construction_time"
	MetricVerificationCount = "verification_count"
	MetricVerificationTime  = "verification_time"
	MetricRejectionCount    = "rejection_count"
	MetricProofRows         = "proof_rows"
	MetricRecoveryTime      = "value_recovery_time"
	MetricErrorCount        = "error_count"
)

// RecordProof records a constructed proof.
func (mc *MetricsCollector) RecordProof(p *proof.Proof, duration time.Duration) {
	labels := map[string]string{"type": p.Type.String()}
	mc.IncrementCounter(MetricProofCount, labels)
	mc.RecordHistogram(MetricProofTime, duration.Seconds(), labels)
	mc.SetGauge(MetricProofRows, float64(len(p.Data)), labels)
}

// RecordVerification records a verification and every reason it failed.
func (mc *MetricsCollector) RecordVerification(p *proof.Proof, res *proof.Result, duration time.Duration) {
	outcome := "valid"
	if !res.Valid() {
		outcome = "rejected"
	}
	mc.IncrementCounter(MetricVerificationCount, map[string]string{"type": p.Type.String(), "outcome": outcome})
	mc.RecordHistogram(MetricVerificationTime, duration.Seconds(), nil)
	for _, k := range res.Errors {
		mc.IncrementCounter(MetricRejectionCount, map[string]string{"kind": k.String()})
	}
}

// RecordRecovery records how long a value recovery search took.
func (mc *MetricsCollector) RecordRecovery(duration time.Duration) {
	mc.RecordHistogram(MetricRecoveryTime, duration.Seconds(), nil)
}

// RecordError counts a failed command.
func (mc *MetricsCollector) RecordError(errorType string) {
	mc.IncrementCounter(MetricErrorCount, map[string]string{"type": errorType})
}
