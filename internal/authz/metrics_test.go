// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package authz

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// getCounterValue extracts the value from a Prometheus counter
func getCounterValue(counter prometheus.Counter) float64 {
	var m io_prometheus_client.Metric
	if err := counter.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// getHistogramCount extracts the sample count from a Prometheus histogram
func getHistogramCount(h prometheus.Histogram) uint64 {
	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordDecision(t *testing.T) {
	tests := []struct {
		name     string
		allowed  bool
		err      error
		decision string
	}{
		{"allowed", true, nil, "allow"},
		{"denied", false, nil, "deny"},
		{"error wins over allowed", true, errors.New("policy unavailable"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := AuthzDecisionsTotal.WithLabelValues("write", tt.decision)
			before := getCounterValue(counter)
			samples := getHistogramCount(AuthzDecisionDuration)

			recordDecision("write", tt.allowed, tt.err, 50*time.Microsecond)

			if got := getCounterValue(counter) - before; got != 1 {
				t.Errorf("%s counter delta = %v, want 1", tt.decision, got)
			}
			if got := getHistogramCount(AuthzDecisionDuration) - samples; got != 1 {
				t.Errorf("duration samples delta = %d, want 1", got)
			}
		})
	}
}
