package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func newTestMetrics(t *testing.T) *GatewayMetrics {
	t.Helper()
	return newGatewayMetricsWithRegisterer(prometheus.NewRegistry())
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestNewGatewayMetrics(t *testing.T) {
	m := newTestMetrics(t)

	if m.operations == nil {
		t.Error("operations counter vec should not be nil")
	}
	if m.degradedWrites == nil {
		t.Error("degradedWrites counter vec should not be nil")
	}
	if m.fallbackSwitches == nil {
		t.Error("fallbackSwitches counter should not be nil")
	}
	if m.liveRecoveries == nil {
		t.Error("liveRecoveries counter should not be nil")
	}
	if m.probeResults == nil {
		t.Error("probeResults counter vec should not be nil")
	}
	if m.searchDuration == nil {
		t.Error("searchDuration histogram should not be nil")
	}
	if m.fallbackMode == nil {
		t.Error("fallbackMode gauge should not be nil")
	}
}

func TestGatewayMetrics_ModeTransitions(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordFallbackSwitch()
	if got := counterValue(t, m.fallbackSwitches); got != 1 {
		t.Errorf("fallback switches = %v, want 1", got)
	}
	if got := gaugeValue(t, m.fallbackMode); got != 1 {
		t.Errorf("fallback mode gauge = %v, want 1", got)
	}

	m.RecordLiveRecovery()
	if got := counterValue(t, m.liveRecoveries); got != 1 {
		t.Errorf("live recoveries = %v, want 1", got)
	}
	if got := gaugeValue(t, m.fallbackMode); got != 0 {
		t.Errorf("fallback mode gauge = %v, want 0", got)
	}
}

func TestGatewayMetrics_DegradedWrites(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordDegradedWrite("create_conversation")
	m.RecordDegradedWrite("create_conversation")
	m.RecordDegradedWrite("create_appointment")

	c, err := m.degradedWrites.GetMetricWithLabelValues("create_conversation")
	if err != nil {
		t.Fatalf("get metric: %v", err)
	}
	if got := counterValue(t, c); got != 2 {
		t.Errorf("degraded writes for create_conversation = %v, want 2", got)
	}
}

func TestGatewayMetrics_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newGatewayMetricsWithRegisterer(reg)
	second := newGatewayMetricsWithRegisterer(reg)

	// Повторная регистрация должна переиспользовать существующие коллекторы.
	first.RecordFallbackSwitch()
	second.RecordFallbackSwitch()

	if got := counterValue(t, first.fallbackSwitches); got != 2 {
		t.Errorf("shared counter = %v, want 2", got)
	}
}

func TestGatewayMetrics_RecordHelpers(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordOperation("search_products", "fallback")
	m.RecordProbe(true)
	m.RecordProbe(false)
	m.RecordSearchDuration(15 * time.Millisecond)

	op, err := m.operations.GetMetricWithLabelValues("search_products", "fallback")
	if err != nil {
		t.Fatalf("get metric: %v", err)
	}
	if got := counterValue(t, op); got != 1 {
		t.Errorf("operations = %v, want 1", got)
	}

	success, err := m.probeResults.GetMetricWithLabelValues("success")
	if err != nil {
		t.Fatalf("get metric: %v", err)
	}
	if got := counterValue(t, success); got != 1 {
		t.Errorf("probe successes = %v, want 1", got)
	}
}
