// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package metrics counts what a run processed and exports the counters in
// the Prometheus textfile format for node_exporter's textfile collector.
package metrics

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"grimm.is/voxdoc/internal/errors"
)

// File results.
const (
	ResultParsed  = "parsed"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

// Metrics holds the counters of one run.
type Metrics struct {
	registry *prometheus.Registry

	Files       *prometheus.CounterVec
	Statements  *prometheus.CounterVec
	Entities    *prometheus.GaugeVec
	Diagnostics *prometheus.CounterVec
	Duration    prometheus.Gauge
	LastRun     prometheus.Gauge
}

// New creates counters in a fresh registry so runs never share state.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voxdoc_files_total",
			Help: "Total number of source files processed, by dialect and result",
		}, []string{"dialect", "result"}),

		Statements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voxdoc_statements_total",
			Help: "Total number of statements recognized, by kind",
		}, []string{"kind"}),

		Entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "voxdoc_entities",
			Help: "Number of documented entities, by group",
		}, []string{"group"}),

		Diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voxdoc_diagnostics_total",
			Help: "Total number of diagnostics reported, by severity and kind",
		}, []string{"severity", "kind"}),

		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voxdoc_run_duration_seconds",
			Help: "Wall time of the last run",
		}),

		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voxdoc_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}

	m.registry.MustRegister(m.Files, m.Statements, m.Entities, m.Diagnostics, m.Duration, m.LastRun)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to path, creating parent directories.
func (m *Metrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.At(errors.Wrap(err, errors.KindIO, "failed to create metrics directory"), path, 0)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.At(errors.Wrap(err, errors.KindIO, "failed to write metrics textfile"), path, 0)
	}
	return nil
}
