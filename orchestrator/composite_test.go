package orchestrator

import (
	"testing"
	"time"
)

func TestCompositeHealthUnknownWithNoData(t *testing.T) {
	o := NewOrchestrator(testConfig())
	_ = o.RegisterService(ServiceDescriptor{Name: "s", StartFn: noopStart, StopFn: noopStop})
	setState(t, o, "s", StateStopped)

	if got := o.GetHealth(); got != CompositeUnknown {
		t.Fatalf("expected Unknown with no health data, got %v", got)
	}
}

func TestCompositeHealthHealthyWhenAllRunningAndLatestGood(t *testing.T) {
	o := NewOrchestrator(testConfig())
	_ = o.RegisterService(ServiceDescriptor{Name: "s", StartFn: noopStart, StopFn: noopStop})
	setState(t, o, "s", StateRunning)

	rt, _ := o.runtime("s")
	rt.mu.Lock()
	rt.recordHealth(true, time.Now())
	rt.mu.Unlock()

	if got := o.GetHealth(); got != CompositeHealthy {
		t.Fatalf("expected Healthy, got %v", got)
	}
}

func TestCompositeHealthDegradedWithOneToTwoFailures(t *testing.T) {
	o := NewOrchestrator(testConfig())
	_ = o.RegisterService(ServiceDescriptor{Name: "s", StartFn: noopStart, StopFn: noopStop})
	setState(t, o, "s", StateDegraded)

	rt, _ := o.runtime("s")
	rt.mu.Lock()
	rt.consecutiveFailures = 2
	rt.recordHealth(false, time.Now())
	rt.mu.Unlock()

	if got := o.GetHealth(); got != CompositeDegraded {
		t.Fatalf("expected Degraded, got %v", got)
	}
}

func TestCompositeHealthUnhealthyWhenAnyServiceFailed(t *testing.T) {
	o := NewOrchestrator(testConfig())
	_ = o.RegisterService(ServiceDescriptor{Name: "a", StartFn: noopStart, StopFn: noopStop})
	_ = o.RegisterService(ServiceDescriptor{Name: "b", StartFn: noopStart, StopFn: noopStop})
	setState(t, o, "a", StateRunning)
	setState(t, o, "b", StateFailed)

	rtA, _ := o.runtime("a")
	rtA.mu.Lock()
	rtA.recordHealth(true, time.Now())
	rtA.mu.Unlock()

	if got := o.GetHealth(); got != CompositeUnhealthy {
		t.Fatalf("expected Unhealthy when any service is Failed, got %v", got)
	}
}

func TestCompositeHealthUnhealthyBeatsDegraded(t *testing.T) {
	o := NewOrchestrator(testConfig())
	_ = o.RegisterService(ServiceDescriptor{Name: "degraded", StartFn: noopStart, StopFn: noopStop})
	_ = o.RegisterService(ServiceDescriptor{Name: "unhealthy", StartFn: noopStart, StopFn: noopStop})
	setState(t, o, "degraded", StateDegraded)
	setState(t, o, "unhealthy", StateUnhealthy)

	rt1, _ := o.runtime("degraded")
	rt1.mu.Lock()
	rt1.consecutiveFailures = 1
	rt1.recordHealth(false, time.Now())
	rt1.mu.Unlock()

	rt2, _ := o.runtime("unhealthy")
	rt2.mu.Lock()
	rt2.consecutiveFailures = 3
	rt2.recordHealth(false, time.Now())
	rt2.mu.Unlock()

	if got := o.GetHealth(); got != CompositeUnhealthy {
		t.Fatalf("expected Unhealthy to take priority over Degraded, got %v", got)
	}
}
