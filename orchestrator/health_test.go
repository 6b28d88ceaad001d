package orchestrator

import (
	"context"
	"errors"
	"testing"
)

func setState(t *testing.T, o *Orchestrator, name string, s ServiceState) {
	t.Helper()
	rt, err := o.runtime(name)
	if err != nil {
		t.Fatalf("unknown service %q: %v", name, err)
	}
	rt.mu.Lock()
	rt.state = s
	rt.mu.Unlock()
}

func TestCheckHealthSkipsServiceWithNoHealthFn(t *testing.T) {
	o := NewOrchestrator(testConfig())
	_ = o.RegisterService(ServiceDescriptor{Name: "s", StartFn: noopStart, StopFn: noopStop})
	setState(t, o, "s", StateRunning)

	o.checkHealth("s")

	info, _ := o.GetService("s")
	if info.State != StateRunning {
		t.Fatalf("service with no HealthFn must never be marked unhealthy, got %v", info.State)
	}
}

func TestCheckHealthDegradesThenRecoversAfterThreshold(t *testing.T) {
	// FailureThreshold is raised so this test stays below the Unhealthy
	// transition (and therefore never triggers an async restart, whose
	// exhaustion/backoff behavior is covered separately in restart_test.go).
	healthy := true
	cfg := testConfig()
	cfg.FailureThreshold = 5
	o := NewOrchestrator(cfg)
	_ = o.RegisterService(ServiceDescriptor{
		Name:    "s",
		StartFn: noopStart,
		StopFn:  noopStop,
		HealthFn: func(context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("down")
		},
	})
	setState(t, o, "s", StateRunning)

	healthy = false
	o.checkHealth("s")
	info, _ := o.GetService("s")
	if info.State != StateDegraded {
		t.Fatalf("expected Degraded after 1 failure, got %v", info.State)
	}

	o.checkHealth("s")
	info, _ = o.GetService("s")
	if info.State != StateDegraded {
		t.Fatalf("expected still Degraded below FailureThreshold, got %v", info.State)
	}

	healthy = true
	o.checkHealth("s")
	info, _ = o.GetService("s")
	if info.State != StateDegraded {
		t.Fatalf("expected still Degraded after only 1 success (RecoveryThreshold=2), got %v", info.State)
	}
	o.checkHealth("s")
	info, _ = o.GetService("s")
	if info.State != StateRunning {
		t.Fatalf("expected Running after 2 consecutive successes, got %v", info.State)
	}
}

func TestCheckHealthTriggersUnhealthyAtFailureThreshold(t *testing.T) {
	o := NewOrchestrator(testConfig()) // default FailureThreshold=3
	_ = o.RegisterService(ServiceDescriptor{
		Name:    "s",
		StartFn: noopStart,
		StopFn:  noopStop,
		HealthFn: func(context.Context) error {
			return errors.New("down")
		},
	})
	setState(t, o, "s", StateRunning)

	o.checkHealth("s")
	o.checkHealth("s")
	o.checkHealth("s")

	info, _ := o.GetService("s")
	if info.State != StateUnhealthy {
		t.Fatalf("expected Unhealthy after FailureThreshold consecutive failures, got %v", info.State)
	}
	if info.ConsecutiveFailures != 3 {
		t.Fatalf("expected 3 recorded consecutive failures, got %d", info.ConsecutiveFailures)
	}
}

func TestUptimeRatioReflectsRingBuffer(t *testing.T) {
	toggle := true
	o := NewOrchestrator(testConfig())
	_ = o.RegisterService(ServiceDescriptor{
		Name:    "s",
		StartFn: noopStart,
		StopFn:  noopStop,
		HealthFn: func(context.Context) error {
			if toggle {
				return nil
			}
			return errors.New("down")
		},
	})
	setState(t, o, "s", StateRunning)

	o.checkHealth("s")
	toggle = false
	o.checkHealth("s")

	info, _ := o.GetService("s")
	if info.UptimeRatio != 0.5 {
		t.Fatalf("expected uptime ratio 0.5 over 2 samples, got %v", info.UptimeRatio)
	}
}
