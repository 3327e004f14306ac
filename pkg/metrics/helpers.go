// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IMPORTANT: All functions in this file accept a prometheus.Registerer parameter.
// NEVER use global prometheus.DefaultRegisterer or prometheus.DefaultGatherer.
//
// This ensures metrics can be garbage collected when the registry is discarded,
// which is critical for applications that reinitialize on configuration changes.

// NewCounter creates and registers a counter metric.
//
// A counter is a cumulative metric that represents a single monotonically
// increasing value. Use counters for values that only increase, such as
// the number of requests served, tasks completed, or errors.
//
// Parameters:
//   - registry: The Prometheus registry to register with (use prometheus.NewRegistry())
//   - name: Metric name (e.g., "synapse_compiler_namespaces_processed_total")
//   - help: Human-readable description of the metric
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	processed := metrics.NewCounter(registry, "synapse_compiler_namespaces_processed_total", "Namespaces compiled")
//	processed.Inc()
func NewCounter(registry prometheus.Registerer, name, help string) prometheus.Counter {
	return promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: name,
		Help: help,
	})
}

// NewHistogram creates and registers a histogram metric with default buckets.
//
// A histogram samples observations (e.g., request durations or response sizes)
// and counts them in configurable buckets. Use histograms for measuring
// distributions of values.
//
// Default buckets: [.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10]
//
// Parameters:
//   - registry: The Prometheus registry to register with
//   - name: Metric name (e.g., "synapse_compile_duration_seconds")
//   - help: Human-readable description of the metric
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	duration := metrics.NewHistogram(registry, "synapse_compile_duration_seconds", "Compile pass duration")
//	duration.Observe(0.5)
func NewHistogram(registry prometheus.Registerer, name, help string) prometheus.Histogram {
	return promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Name:    name,
		Help:    help,
		Buckets: prometheus.DefBuckets,
	})
}

// NewHistogramWithBuckets creates and registers a histogram with custom buckets.
//
// Use this when default buckets don't match your use case. For duration metrics,
// consider using DurationBuckets() as a starting point.
//
// Parameters:
//   - registry: The Prometheus registry to register with
//   - name: Metric name
//   - help: Human-readable description
//   - buckets: Bucket boundaries (e.g., []float64{0.1, 0.5, 1.0, 5.0})
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	duration := metrics.NewHistogramWithBuckets(
//	    registry,
//	    "synapse_mapsync_reconcile_duration_seconds",
//	    "Identity map reconciliation pass duration",
//	    metrics.DurationBuckets(),
//	)
//	duration.Observe(0.25)
func NewHistogramWithBuckets(registry prometheus.Registerer, name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Name:    name,
		Help:    help,
		Buckets: buckets,
	})
}

// NewGauge creates and registers a gauge metric.
//
// A gauge is a metric that represents a single numerical value that can
// arbitrarily go up and down. Use gauges for values that can increase or
// decrease, such as temperature, memory usage, or number of concurrent requests.
//
// Parameters:
//   - registry: The Prometheus registry to register with
//   - name: Metric name (e.g., "synapse_watcher_inventory_size")
//   - help: Human-readable description of the metric
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	inventorySize := metrics.NewGauge(registry, "synapse_watcher_inventory_size", "Entries in the current inventory snapshot")
//	inventorySize.Set(42)
func NewGauge(registry prometheus.Registerer, name, help string) prometheus.Gauge {
	return promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	})
}

// NewGaugeVec creates and registers a gauge vector with labels.
//
// A gauge vector is a collection of gauges with the same name but different
// label dimensions. Use gauge vectors when you need to track the same metric
// across different categories.
//
// Parameters:
//   - registry: The Prometheus registry to register with
//   - name: Metric name
//   - help: Human-readable description
//   - labels: Label names (e.g., []string{"method", "status"})
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	sourceSize := metrics.NewGaugeVec(
//	    registry,
//	    "synapse_inventory_source_entries",
//	    "Entries contributed per inventory source",
//	    []string{"source"},
//	)
//	sourceSize.WithLabelValues("docker").Set(10)
//	sourceSize.WithLabelValues("zookeeper").Set(50)
func NewGaugeVec(registry prometheus.Registerer, name, help string, labels []string) *prometheus.GaugeVec {
	return promauto.With(registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

// NewCounterVec creates and registers a counter vector with labels.
//
// A counter vector is a collection of counters with the same name but different
// label dimensions. Use counter vectors when you need to track the same counter
// across different categories.
//
// Parameters:
//   - registry: The Prometheus registry to register with
//   - name: Metric name
//   - help: Human-readable description
//   - labels: Label names (e.g., []string{"method", "status"})
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	opsByKind := metrics.NewCounterVec(
//	    registry,
//	    "synapse_mapsync_ops_total",
//	    "Identity map reconciliation operations, by kind",
//	    []string{"kind"},
//	)
//	opsByKind.WithLabelValues("add").Inc()
//	opsByKind.WithLabelValues("del").Inc()
func NewCounterVec(registry prometheus.Registerer, name, help string, labels []string) *prometheus.CounterVec {
	return promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

// DurationBuckets returns histogram buckets suitable for duration metrics in seconds.
//
// The buckets cover a range from 10ms to 10s, which is appropriate for most
// API and processing durations.
//
// Buckets: [0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0]
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	latency := metrics.NewHistogramWithBuckets(
//	    registry,
//	    "synapse_compile_duration_seconds",
//	    "Compile pass duration in seconds",
//	    metrics.DurationBuckets(),
//	)
func DurationBuckets() []float64 {
	return []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0}
}
