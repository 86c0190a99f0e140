// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package metrics provides Prometheus instrumentation for bundle imports.
//
// Every [Recorder] owns a private registry, so a short-lived CLI run can dump
// exactly what it did to a textfile for the node exporter, and tests can
// assert on fresh counters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all importer metrics.
	Namespace = "x509_bundle_importer"

	// Label names
	LabelStatus   = "status"
	LabelOutcome  = "outcome"
	LabelStrategy = "strategy"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Certificate outcomes
	OutcomeUser           = "user"
	OutcomeCA             = "ca"
	OutcomeSkippedPresent = "skipped_present"
	OutcomeSkippedUsage   = "skipped_usage"

	// Leaf selection strategies
	StrategySingle     = "single"
	StrategyKeyMatch   = "key_match"
	StrategyStructural = "structural"
)

// Recorder collects importer metrics. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	importsTotal      *prometheus.CounterVec
	importDuration    prometheus.Histogram
	certificatesTotal *prometheus.CounterVec
	leafSelections    *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		importsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "imports_total",
				Help:      "Total number of package imports by status",
			},
			[]string{LabelStatus},
		),
		importDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "import_duration_seconds",
				Help:      "Duration of package imports in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to 2s
			},
		),
		certificatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "certificates_total",
				Help:      "Total number of bundle certificates processed by outcome",
			},
			[]string{LabelOutcome},
		),
		leafSelections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "leaf_selections_total",
				Help:      "Total number of leaf selections by strategy",
			},
			[]string{LabelStrategy},
		),
	}
}

// Registry returns the registry holding the recorder's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordImport counts one package import and observes its duration.
func (r *Recorder) RecordImport(err error, elapsed time.Duration) {
	if r == nil {
		return
	}

	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	r.importsTotal.WithLabelValues(status).Inc()
	r.importDuration.Observe(elapsed.Seconds())
}

// RecordCertificate counts one certificate with the given outcome.
func (r *Recorder) RecordCertificate(outcome string) {
	if r == nil {
		return
	}
	r.certificatesTotal.WithLabelValues(outcome).Inc()
}

// RecordLeafSelection counts one leaf selection with the given strategy.
func (r *Recorder) RecordLeafSelection(strategy string) {
	if r == nil {
		return
	}
	r.leafSelections.WithLabelValues(strategy).Inc()
}

// WriteTextfile writes the current metrics in the Prometheus text format to
// path, atomically, for collection by the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
