package orchestrator

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/go-errors/errors"
	"golang.org/x/sync/errgroup"

	"github.com/fogcompute/platform/fogerr"
)

// StartAll brings every registered service up in ascending dependency-layer
// order, running services within a layer concurrently (§4.8, §5). A
// required dependency that is neither Running nor Degraded blocks its
// dependent's start; a
// critical service failing to start aborts the whole initialize call and
// triggers reverse-order shutdown of anything already started (§7
// "Dependency errors"). A non-critical service that fails is skipped with a
// warning and does not abort startup.
func (o *Orchestrator) StartAll(ctx context.Context) error {
	batches, err := startupOrder(o.descriptorMap())
	if err != nil {
		return err
	}

	var started []string
	for _, batch := range batches {
		g, gctx := errgroup.WithContext(ctx)
		for _, name := range batch {
			name := name
			g.Go(func() error {
				return o.startOne(gctx, name)
			})
		}
		if err := g.Wait(); err != nil {
			log.Errorf("orchestrator: startup aborted: %v", err)
			toStop := append(append([]string(nil), started...), batch...)
			for i, j := 0, len(toStop)-1; i < j; i, j = i+1, j-1 {
				toStop[i], toStop[j] = toStop[j], toStop[i]
			}
			o.shutdownStarted(context.Background(), toStop)
			return err
		}
		started = append(started, batch...)
	}
	return nil
}

func (o *Orchestrator) startOne(ctx context.Context, name string) error {
	rt, err := o.runtime(name)
	if err != nil {
		return err
	}

	if !o.requiredDepsRunning(name) {
		if rt.desc.IsCritical {
			return fogerr.New(fogerr.KindCriticalStartFailed,
				"critical service %q has a required dependency not yet Running", name)
		}
		log.Warnf("orchestrator: skipping non-critical service %q, "+
			"required dependency not Running", name)
		return nil
	}

	rt.mu.Lock()
	rt.state = StateStarting
	rt.mu.Unlock()

	startCtx, cancel := context.WithTimeout(ctx, o.cfg.StartTimeout)
	defer cancel()

	err = runGuarded(startCtx, rt.desc.StartFn)

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if err != nil {
		rt.state = StateFailed
		if rt.desc.IsCritical {
			return fogerr.New(fogerr.KindCriticalStartFailed,
				"critical service %q failed to start: %v", name, err)
		}
		log.Warnf("orchestrator: non-critical service %q failed to start: %v", name, err)
		return nil
	}
	rt.state = StateRunning
	return nil
}

// requiredDepsRunning reports whether every required dependency of name is
// currently Running or Degraded. Optional dependencies are never a gate.
func (o *Orchestrator) requiredDepsRunning(name string) bool {
	o.mu.RLock()
	desc := o.descs[name]
	o.mu.RUnlock()
	if desc == nil {
		return false
	}

	for _, dep := range desc.Dependencies {
		if dep.Flavor != Required {
			continue
		}
		rt, err := o.runtime(dep.Name)
		if err != nil {
			return false
		}
		rt.mu.Lock()
		state := rt.state
		rt.mu.Unlock()
		if state != StateRunning && state != StateDegraded {
			return false
		}
	}
	return true
}

// runGuarded invokes fn, converting a panic into an error (§8: "service
// whose start_fn panics must be caught and become Failed") with a captured
// stack trace via the teacher's go-errors dependency.
func runGuarded(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			wrapped := goerrors.Wrap(fmt.Errorf("%v", r), 1)
			err = fmt.Errorf("panic: %w\n%s", wrapped, wrapped.Stack())
		}
	}()
	return fn(ctx)
}

// StopAll shuts every Running/Degraded/Unhealthy service down in reverse
// dependency-layer order (§4.8).
func (o *Orchestrator) StopAll(ctx context.Context) {
	batches, err := shutdownOrder(o.descriptorMap())
	if err != nil {
		log.Errorf("orchestrator: shutdown order computation failed: %v", err)
		return
	}
	var names []string
	for _, b := range batches {
		names = append(names, b...)
	}
	o.shutdownStarted(ctx, names)
}

func (o *Orchestrator) shutdownStarted(ctx context.Context, names []string) {
	for _, name := range names {
		o.stopOne(ctx, name)
	}
}

func (o *Orchestrator) stopOne(ctx context.Context, name string) {
	rt, err := o.runtime(name)
	if err != nil {
		return
	}

	rt.mu.Lock()
	if rt.state == StateStopped || rt.state == StateFailed {
		rt.mu.Unlock()
		return
	}
	rt.state = StateStopping
	stopFn := rt.desc.StopFn
	rt.mu.Unlock()

	done := make(chan error, 1)
	stopCtx, cancel := context.WithTimeout(ctx, o.cfg.ShutdownTimeout)
	defer cancel()
	go func() {
		done <- runGuarded(stopCtx, stopFn)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Warnf("orchestrator: stop_fn for %q returned error: %v", name, err)
		}
	case <-time.After(o.cfg.ShutdownTimeout):
		// Go cannot forcibly kill a goroutine; "force-terminate" here means
		// abandoning the stop_fn call and proceeding with shutdown anyway,
		// since the alternative is blocking the whole shutdown sequence on
		// one stuck service.
		log.Warnf("orchestrator: stop_fn for %q timed out, force-terminating", name)
	}

	rt.mu.Lock()
	rt.state = StateStopped
	rt.mu.Unlock()
}
