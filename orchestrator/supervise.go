package orchestrator

import "context"

// Start brings every registered service up (StartAll) then launches one
// health-monitor goroutine per service that declares a HealthFn (§5: "one
// health task per service").
func (o *Orchestrator) Start(ctx context.Context) error {
	if err := o.StartAll(ctx); err != nil {
		return err
	}

	o.mu.RLock()
	names := make([]string, 0, len(o.descs))
	for name, desc := range o.descs {
		if desc.HealthFn != nil {
			names = append(names, name)
		}
	}
	o.mu.RUnlock()

	for _, name := range names {
		o.wg.Add(1)
		go o.runHealthMonitor(name)
	}
	return nil
}

// Stop halts all health monitors, then shuts every service down in reverse
// dependency order (§4.8).
func (o *Orchestrator) Stop(ctx context.Context) {
	close(o.quit)
	o.wg.Wait()
	o.StopAll(ctx)
}
