package orchestrator

import (
	"context"
	"math"
	"time"
)

// restart implements the exponential-backoff auto-restart policy (§4.8):
// backoff 2^attempt seconds, up to MaxRestartAttempts; on exhaustion the
// service is marked Failed and restarting stops. If the service is
// critical, a composite-health Unhealthy event is emitted for external
// consumers.
func (o *Orchestrator) restart(name string) {
	rt, err := o.runtime(name)
	if err != nil {
		return
	}

	rt.mu.Lock()
	rt.restartAttempts++
	attempt := rt.restartAttempts
	critical := rt.desc.IsCritical
	stopFn := rt.desc.StopFn
	startFn := rt.desc.StartFn
	rt.mu.Unlock()

	if attempt > o.cfg.MaxRestartAttempts {
		rt.mu.Lock()
		rt.state = StateFailed
		rt.mu.Unlock()
		log.Errorf("orchestrator: service %q exhausted %d restart attempts, marking Failed",
			name, o.cfg.MaxRestartAttempts)
		if critical {
			o.emitCompositeUnhealthy(name)
		}
		return
	}

	backoff := time.Duration(math.Pow(o.cfg.BackoffBase, float64(attempt))) * time.Second
	log.Warnf("orchestrator: restarting service %q (attempt %d/%d) after %v backoff",
		name, attempt, o.cfg.MaxRestartAttempts, backoff)

	select {
	case <-time.After(backoff):
	case <-o.quit:
		return
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), o.cfg.ShutdownTimeout)
	_ = runGuarded(stopCtx, stopFn)
	cancel()

	startCtx, cancel2 := context.WithTimeout(context.Background(), o.cfg.StartTimeout)
	err = runGuarded(startCtx, startFn)
	cancel2()

	rt.mu.Lock()
	if err != nil {
		rt.state = StateFailed
	} else {
		rt.state = StateRunning
		rt.restartAttempts = 0
		rt.consecutiveFailures = 0
		rt.consecutiveSuccess = 0
	}
	rt.mu.Unlock()

	if err != nil {
		log.Errorf("orchestrator: restart attempt %d for %q failed: %v", attempt, name, err)
		if critical {
			o.emitCompositeUnhealthy(name)
		}
	}
}

// emitCompositeUnhealthy sends a best-effort notification on
// CompositeUnhealthyEvents, if the caller configured one. Sends never
// block: a full or absent channel simply drops the event, since this is an
// observability signal, not a delivery-guaranteed control path.
func (o *Orchestrator) emitCompositeUnhealthy(serviceName string) {
	if o.compositeUnhealthyEvents == nil {
		return
	}
	select {
	case o.compositeUnhealthyEvents <- serviceName:
	default:
	}
}

// SetCompositeUnhealthyEvents registers a channel that receives the name of
// any critical service that exhausts its restart attempts.
func (o *Orchestrator) SetCompositeUnhealthyEvents(ch chan<- string) {
	o.compositeUnhealthyEvents = ch
}
