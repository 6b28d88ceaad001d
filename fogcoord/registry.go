package fogcoord

import (
	"sync"
	"time"

	"github.com/fogcompute/platform/fogerr"
	"github.com/fogcompute/platform/placement"
)

// trackedNode wraps a registered Node with the per-node lock the spec
// requires for utilization mutation (§5 "Node registry and per-node
// utilization: protected by a per-node lock... the registry map uses a
// readers-writer lock") plus heartbeat bookkeeping.
type trackedNode struct {
	mu sync.Mutex

	node          placement.Node
	lastHeartbeat time.Time
	missedBeats   int
}

// Coordinator is the Fog Coordinator (§4.7): node registry, heartbeat
// reaper, batch placement dispatcher, and task (re)assignment.
type Coordinator struct {
	cfg    Config
	engine *placement.Engine

	registryMu sync.RWMutex
	nodes      map[string]*trackedNode

	tasksMu sync.Mutex
	tasks   map[string]*taskRecord
	pending []placement.Job

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewCoordinator constructs a Coordinator. seed is handed to the Placement
// Engine's PRNG for reproducible batch placement decisions.
func NewCoordinator(cfg Config, seed int64) *Coordinator {
	return &Coordinator{
		cfg:    cfg,
		engine: placement.NewEngine(cfg.Placement, seed),
		nodes:  make(map[string]*trackedNode),
		tasks:  make(map[string]*taskRecord),
		quit:   make(chan struct{}),
	}
}

// RegisterNode inserts node into the registry with initial health Healthy
// (§4.7).
func (c *Coordinator) RegisterNode(node placement.Node) {
	node.HealthStatus = placement.HealthHealthy

	c.registryMu.Lock()
	defer c.registryMu.Unlock()
	c.nodes[node.ID] = &trackedNode{node: node, lastHeartbeat: time.Now()}
}

// DeregisterNode removes a node from the registry (§3: "destroyed on
// deregistration").
func (c *Coordinator) DeregisterNode(nodeID string) {
	c.registryMu.Lock()
	defer c.registryMu.Unlock()
	delete(c.nodes, nodeID)
}

// Node returns a snapshot copy of the registered node, if present.
func (c *Coordinator) Node(nodeID string) (placement.Node, bool) {
	c.registryMu.RLock()
	tn, ok := c.nodes[nodeID]
	c.registryMu.RUnlock()
	if !ok {
		return placement.Node{}, false
	}
	tn.mu.Lock()
	defer tn.mu.Unlock()
	return tn.node, true
}

// Nodes returns a snapshot of every registered node.
func (c *Coordinator) Nodes() []placement.Node {
	c.registryMu.RLock()
	defer c.registryMu.RUnlock()

	out := make([]placement.Node, 0, len(c.nodes))
	for _, tn := range c.nodes {
		tn.mu.Lock()
		out = append(out, tn.node)
		tn.mu.Unlock()
	}
	return out
}

// Heartbeat updates a node's reported utilization/battery/thermal state and
// resets its health to Healthy — an explicit recovery per §3's "monotone
// within a failure episode ... until explicit recovery" (§4.7).
func (c *Coordinator) Heartbeat(nodeID string, utilization placement.ResourceVector,
	batteryLevel *float64, isCharging bool, thermal placement.ThermalState) error {

	c.registryMu.RLock()
	tn, ok := c.nodes[nodeID]
	c.registryMu.RUnlock()
	if !ok {
		return fogerr.New(fogerr.KindDependencyMissing, "unknown node %q", nodeID)
	}

	tn.mu.Lock()
	defer tn.mu.Unlock()
	tn.node.UtilizationVector = utilization
	tn.node.BatteryLevel = batteryLevel
	tn.node.IsCharging = isCharging
	tn.node.ThermalState = thermal
	tn.node.NetworkPresent = true
	tn.node.HealthStatus = placement.HealthHealthy
	tn.lastHeartbeat = time.Now()
	tn.missedBeats = 0
	return nil
}
