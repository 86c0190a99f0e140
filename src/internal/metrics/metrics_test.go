// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package metrics_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-cert-bundle-importer/src/internal/metrics"
)

func TestRecorder(t *testing.T) {
	r := metrics.New()

	r.RecordImport(nil, 5*time.Millisecond)
	r.RecordImport(errors.New("boom"), time.Millisecond)
	r.RecordImport(nil, 2*time.Millisecond)

	r.RecordCertificate(metrics.OutcomeCA)
	r.RecordCertificate(metrics.OutcomeCA)
	r.RecordCertificate(metrics.OutcomeUser)
	r.RecordCertificate(metrics.OutcomeSkippedPresent)

	r.RecordLeafSelection(metrics.StrategyKeyMatch)

	count, err := testutil.GatherAndCount(r.Registry(), "x509_bundle_importer_imports_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per status")

	tests := []struct {
		name   string
		metric string
		labels []string
		want   float64
	}{
		{name: "Imports Success", metric: "imports", labels: []string{metrics.StatusSuccess}, want: 2},
		{name: "Imports Error", metric: "imports", labels: []string{metrics.StatusError}, want: 1},
		{name: "CA Certificates", metric: "certificates", labels: []string{metrics.OutcomeCA}, want: 2},
		{name: "User Certificates", metric: "certificates", labels: []string{metrics.OutcomeUser}, want: 1},
		{name: "Skipped Usage", metric: "certificates", labels: []string{metrics.OutcomeSkippedUsage}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valueOf(t, r, tt.metric, tt.labels...))
		})
	}
}

// valueOf reads one counter through the text exposition, since the vectors are unexported.
func valueOf(t *testing.T, r *metrics.Recorder, metric string, labels ...string) float64 {
	t.Helper()

	families, err := r.Registry().Gather()
	require.NoError(t, err)

	name := metrics.Namespace + "_" + metric + "_total"
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if len(m.GetLabel()) == len(labels) && m.GetLabel()[0].GetValue() == labels[0] {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRecorder_Nil(t *testing.T) {
	var r *metrics.Recorder

	assert.NotPanics(t, func() {
		r.RecordImport(nil, time.Second)
		r.RecordCertificate(metrics.OutcomeCA)
		r.RecordLeafSelection(metrics.StrategySingle)
	})
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "never.prom")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := metrics.New()
	r.RecordImport(nil, time.Millisecond)
	r.RecordLeafSelection(metrics.StrategyStructural)

	path := filepath.Join(t.TempDir(), "importer.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `x509_bundle_importer_imports_total{status="success"} 1`)
	assert.Contains(t, string(data), `x509_bundle_importer_leaf_selections_total{strategy="structural"} 1`)
	assert.Contains(t, string(data), "x509_bundle_importer_import_duration_seconds_count 1")
}
