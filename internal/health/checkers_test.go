package health

import (
	"context"
	"errors"
	"testing"
)

type stubReporter struct {
	degraded bool
}

func (r *stubReporter) Degraded() bool { return r.degraded }

func (r *stubReporter) Source() string {
	if r.degraded {
		return "fallback"
	}
	return "live"
}

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(context.Context) error { return p.err }

func TestGatewayChecker_Healthy(t *testing.T) {
	checker := NewGatewayChecker("storage", &stubReporter{})

	check := checker.Check()
	if check.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s", check.Status)
	}
	if check.Message != "serving from live" {
		t.Fatalf("unexpected message: %q", check.Message)
	}
}

func TestGatewayChecker_Degraded(t *testing.T) {
	checker := NewGatewayChecker("storage", &stubReporter{degraded: true})

	check := checker.Check()
	if check.Status != StatusDegraded {
		t.Fatalf("expected degraded, got %s", check.Status)
	}
}

func TestPingChecker_CriticalFailureIsUnhealthy(t *testing.T) {
	checker := NewPingChecker("postgres", &stubPinger{err: errors.New("connection refused")})

	check := checker.Check()
	if check.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", check.Status)
	}
	if check.Message == "" {
		t.Fatal("expected error message")
	}
}

func TestPingChecker_OptionalFailureIsDegraded(t *testing.T) {
	checker := NewOptionalPingChecker("redis", &stubPinger{err: errors.New("connection refused")})

	check := checker.Check()
	if check.Status != StatusDegraded {
		t.Fatalf("expected degraded, got %s", check.Status)
	}
}

func TestPingChecker_Success(t *testing.T) {
	checker := NewPingChecker("postgres", &stubPinger{})

	check := checker.Check()
	if check.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s", check.Status)
	}
}
