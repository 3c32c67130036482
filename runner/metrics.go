// Copyright 2026 The GeoTester Authors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the run counters on a registry of their own, so several
// runs in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry
	cases    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the run metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		cases: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "geotester_cases_total",
			Help: "Test cases run, by status.",
		}, []string{"status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geotester_case_duration_seconds",
			Help:    "Time spent querying and verifying one test case.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		}, []string{"status"}),
	}
}

func (m *Metrics) observe(o *Outcome) {
	status := strings.ReplaceAll(o.Status.String(), " ", "_")
	m.cases.WithLabelValues(status).Inc()
	m.duration.WithLabelValues(status).Observe(o.Duration.Seconds())
}

// Registry exposes the registry, e.g. for a push gateway.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteFile writes the metrics in the node exporter textfile format.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}

	return nil
}
