package orchestrator

import (
	"sync"
	"time"

	"github.com/fogcompute/platform/fogerr"
)

// serviceRuntime is the mutable state the orchestrator tracks per
// registered service, guarded by its own lock (§5: "Service state
// transitions: guarded by a per-service lock").
type serviceRuntime struct {
	mu sync.Mutex

	desc  *ServiceDescriptor
	state ServiceState

	consecutiveFailures int
	consecutiveSuccess  int
	restartAttempts     int

	ring    []healthResult
	ringPos int
}

func newServiceRuntime(desc *ServiceDescriptor) *serviceRuntime {
	return &serviceRuntime{
		desc:  desc,
		state: StateStopped,
		ring:  make([]healthResult, 0, 100),
	}
}

// recordHealth appends to the 100-entry ring buffer (§4.8), overwriting the
// oldest entry once full. Caller holds r.mu.
func (r *serviceRuntime) recordHealth(healthy bool, at time.Time) {
	entry := healthResult{at: at, healthy: healthy}
	if len(r.ring) < 100 {
		r.ring = append(r.ring, entry)
		return
	}
	r.ring[r.ringPos] = entry
	r.ringPos = (r.ringPos + 1) % 100
}

// uptimeRatio computes the fraction of ring-buffer entries that were
// healthy, for the control surface's GetMetrics.
func (r *serviceRuntime) uptimeRatio() float64 {
	if len(r.ring) == 0 {
		return 0
	}
	healthy := 0
	for _, e := range r.ring {
		if e.healthy {
			healthy++
		}
	}
	return float64(healthy) / float64(len(r.ring))
}

// Config holds the orchestrator's tunables (§6).
type Config struct {
	StartTimeout       time.Duration
	HealthInterval     time.Duration
	HealthTimeout      time.Duration
	FailureThreshold   int
	RecoveryThreshold  int
	MaxRestartAttempts int
	BackoffBase        float64
	ShutdownTimeout    time.Duration
}

// DefaultConfig matches the spec's stated defaults (§4.8, §6).
func DefaultConfig() Config {
	return Config{
		StartTimeout:       60 * time.Second,
		HealthInterval:     30 * time.Second,
		HealthTimeout:      5 * time.Second,
		FailureThreshold:   3,
		RecoveryThreshold:  2,
		MaxRestartAttempts: 3,
		BackoffBase:        2.0,
		ShutdownTimeout:    30 * time.Second,
	}
}

// Orchestrator supervises a declared set of internal services through a
// dependency DAG (§4.8).
type Orchestrator struct {
	mu       sync.RWMutex
	descs    map[string]*ServiceDescriptor
	runtimes map[string]*serviceRuntime

	cfg Config

	compositeUnhealthyEvents chan<- string

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewOrchestrator constructs an empty Orchestrator.
func NewOrchestrator(cfg Config) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		descs:    make(map[string]*ServiceDescriptor),
		runtimes: make(map[string]*serviceRuntime),
		quit:     make(chan struct{}),
	}
}

// RegisterService adds desc to the dependency DAG, rejecting registration
// that would create a cycle (§4.8, §8).
func (o *Orchestrator) RegisterService(desc ServiceDescriptor) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	trial := make(map[string]*ServiceDescriptor, len(o.descs)+1)
	for k, v := range o.descs {
		trial[k] = v
	}
	d := desc
	trial[d.Name] = &d

	if _, err := layerOf(trial); err != nil {
		return err
	}

	o.descs[d.Name] = &d
	o.runtimes[d.Name] = newServiceRuntime(&d)
	return nil
}

func (o *Orchestrator) runtime(name string) (*serviceRuntime, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	rt, ok := o.runtimes[name]
	if !ok {
		return nil, fogerr.New(fogerr.KindDependencyMissing, "unknown service %q", name)
	}
	return rt, nil
}

func (o *Orchestrator) descriptorMap() map[string]*ServiceDescriptor {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string]*ServiceDescriptor, len(o.descs))
	for k, v := range o.descs {
		out[k] = v
	}
	return out
}
