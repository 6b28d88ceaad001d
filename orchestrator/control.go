package orchestrator

import (
	"context"

	"github.com/fogcompute/platform/fogerr"
)

// ServiceInfo is the read-only snapshot the control surface exposes.
type ServiceInfo struct {
	Name                string
	State               ServiceState
	IsCritical          bool
	ConsecutiveFailures int
	ConsecutiveSuccess  int
	RestartAttempts     int
	UptimeRatio         float64
}

// ListServices implements the `ListServices` control RPC (§6).
func (o *Orchestrator) ListServices() []ServiceInfo {
	o.mu.RLock()
	names := make([]string, 0, len(o.descs))
	for name := range o.descs {
		names = append(names, name)
	}
	o.mu.RUnlock()

	out := make([]ServiceInfo, 0, len(names))
	for _, name := range names {
		if info, err := o.GetService(name); err == nil {
			out = append(out, info)
		}
	}
	return out
}

// GetService implements the `GetService(name)` control RPC (§6).
func (o *Orchestrator) GetService(name string) (ServiceInfo, error) {
	rt, err := o.runtime(name)
	if err != nil {
		return ServiceInfo{}, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return ServiceInfo{
		Name:                name,
		State:               rt.state,
		IsCritical:          rt.desc.IsCritical,
		ConsecutiveFailures: rt.consecutiveFailures,
		ConsecutiveSuccess:  rt.consecutiveSuccess,
		RestartAttempts:     rt.restartAttempts,
		UptimeRatio:         rt.uptimeRatio(),
	}, nil
}

// GetDependencies implements the `GetDependencies` control RPC (§6).
func (o *Orchestrator) GetDependencies(name string) ([]Dependency, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	desc, ok := o.descs[name]
	if !ok {
		return nil, fogerr.New(fogerr.KindDependencyMissing, "unknown service %q", name)
	}
	return append([]Dependency(nil), desc.Dependencies...), nil
}

// GetHealth implements the `GetHealth` control RPC (§6): the orchestrator's
// composite health rollup (§4.8). See composite.go for the four rules.
func (o *Orchestrator) GetHealth() CompositeHealth {
	return o.compositeHealth()
}

// GetMetrics implements the `GetMetrics` control RPC (§6): a name→uptime
// ratio map, derived from each service's 100-entry health ring buffer.
func (o *Orchestrator) GetMetrics() map[string]float64 {
	infos := o.ListServices()
	out := make(map[string]float64, len(infos))
	for _, info := range infos {
		out[info.Name] = info.UptimeRatio
	}
	return out
}

// RestartService implements the `RestartService(name, force)` control RPC
// (§6). It is idempotent: a restart issued while the service is Starting is
// a no-op (§8). force resets the exponential-backoff attempt counter before
// restarting, so an operator-triggered restart is never blocked by an
// exhausted auto-restart budget.
func (o *Orchestrator) RestartService(ctx context.Context, name string, force bool) error {
	rt, err := o.runtime(name)
	if err != nil {
		return err
	}

	rt.mu.Lock()
	if rt.state == StateStarting {
		rt.mu.Unlock()
		return nil
	}
	if force {
		rt.restartAttempts = 0
	}
	rt.mu.Unlock()

	o.stopOne(ctx, name)
	return o.startOne(ctx, name)
}
