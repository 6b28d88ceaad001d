package orchestrator

import (
	"context"
	"time"

	"github.com/lightningnetwork/lnd/ticker"
)

// runHealthMonitor ticks every cfg.HealthInterval (default 30s) per service
// and calls its health_fn with a cfg.HealthTimeout (default 5s) timeout
// (§4.8, §5: "one health task per service").
func (o *Orchestrator) runHealthMonitor(name string) {
	defer o.wg.Done()

	t := ticker.New(o.cfg.HealthInterval)
	t.Resume()
	defer t.Stop()

	for {
		select {
		case <-o.quit:
			return
		case <-t.Ticks():
			o.checkHealth(name)
		}
	}
}

func (o *Orchestrator) checkHealth(name string) {
	rt, err := o.runtime(name)
	if err != nil {
		return
	}

	rt.mu.Lock()
	if rt.state != StateRunning && rt.state != StateDegraded && rt.state != StateUnhealthy {
		rt.mu.Unlock()
		return
	}
	healthFn := rt.desc.HealthFn
	rt.mu.Unlock()

	if healthFn == nil {
		// No health_fn declared: nothing to monitor, leave state as-is.
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.HealthTimeout)
	defer cancel()

	healthy := runGuarded(ctx, func(context.Context) error { return healthFn(ctx) }) == nil

	rt.mu.Lock()
	rt.recordHealth(healthy, time.Now())

	var triggerRestart bool
	if healthy {
		rt.consecutiveFailures = 0
		rt.consecutiveSuccess++
		if rt.consecutiveSuccess >= o.cfg.RecoveryThreshold {
			if rt.state == StateDegraded || rt.state == StateUnhealthy {
				rt.state = StateRunning
			}
		}
	} else {
		rt.consecutiveSuccess = 0
		rt.consecutiveFailures++
		switch {
		case rt.consecutiveFailures >= o.cfg.FailureThreshold:
			if rt.state != StateUnhealthy {
				triggerRestart = true
			}
			rt.state = StateUnhealthy
		case rt.consecutiveFailures >= 1:
			if rt.state == StateRunning {
				rt.state = StateDegraded
			}
		}
	}
	rt.mu.Unlock()

	if triggerRestart {
		go o.restart(name)
	}
}

// ForceHealthCheck runs checkHealth for name immediately, bypassing the
// ticker cadence (§6 control surface).
func (o *Orchestrator) ForceHealthCheck(name string) {
	o.checkHealth(name)
}
