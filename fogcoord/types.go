package fogcoord

import (
	"time"

	"github.com/fogcompute/platform/placement"
)

// RoutingStrategy selects how the coordinator narrows the node candidate set
// handed to the Placement Engine, or — for RoundRobin/LeastLoaded — bypasses
// the engine entirely for a cheap, deterministic, non-optimizing assignment
// (§4.7).
type RoutingStrategy string

const (
	RoutingRoundRobin   RoutingStrategy = "RoundRobin"
	RoutingLeastLoaded  RoutingStrategy = "LeastLoaded"
	RoutingAffinity     RoutingStrategy = "Affinity"
	RoutingProximity    RoutingStrategy = "Proximity"
	RoutingPrivacyAware RoutingStrategy = "PrivacyAware"
	RoutingCustom       RoutingStrategy = "Custom"
)

// Config holds the coordinator's tunables (§6).
type Config struct {
	HeartbeatInterval time.Duration // 60s beats
	HeartbeatTimeout  time.Duration // 180s => 3 missed beats
	DispatchCadence   time.Duration // batch dispatch cadence, default 5s
	Routing           RoutingStrategy
	Placement         placement.Config
}

// DefaultConfig matches the spec's stated defaults (§4.7, §6).
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval: 60 * time.Second,
		HeartbeatTimeout:  180 * time.Second,
		DispatchCadence:   5 * time.Second,
		Routing:           RoutingLeastLoaded,
		Placement:         placement.DefaultConfig(),
	}
}

// taskRecord tracks a job's lifecycle after submission — whether it has been
// assigned to a node, and whether that node has started executing it. Only
// not-yet-started tasks are reclaimed on OnNodeUnhealthy (§4.7).
type taskRecord struct {
	job     placement.Job
	nodeID  string
	started bool
}
