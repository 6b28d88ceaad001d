package placement

import "time"

// PriorityClass ranks a Job's urgency. Class S jobs bypass the batch cadence
// entirely and are placed immediately by the Fog Coordinator (§4.7).
type PriorityClass string

const (
	PriorityS PriorityClass = "S"
	PriorityA PriorityClass = "A"
	PriorityB PriorityClass = "B"
)

// ResourceVector is the four-dimensional resource quantity used for both a
// Job's request and a Node's capacity/utilization.
type ResourceVector struct {
	CPU     float64
	Memory  float64
	GPU     float64
	Storage float64
}

// Add returns the component-wise sum of r and other.
func (r ResourceVector) Add(other ResourceVector) ResourceVector {
	return ResourceVector{
		CPU:     r.CPU + other.CPU,
		Memory:  r.Memory + other.Memory,
		GPU:     r.GPU + other.GPU,
		Storage: r.Storage + other.Storage,
	}
}

// FitsWithin reports whether r (a tentative usage total) fits within capacity
// in every dimension.
func (r ResourceVector) FitsWithin(capacity ResourceVector) bool {
	return r.CPU <= capacity.CPU &&
		r.Memory <= capacity.Memory &&
		r.GPU <= capacity.GPU &&
		r.Storage <= capacity.Storage
}

// Magnitude is a scalar proxy for "how much resource" r represents, used by
// the cost objective. It is a simple weighted sum, not a pricing model.
func (r ResourceVector) Magnitude() float64 {
	return r.CPU + r.Memory + r.GPU + r.Storage
}

// Job is an immutable unit of work submitted to the Fog Coordinator and
// handed to the Placement Engine in batches (§3, §4.6).
type Job struct {
	ID                string
	ResourceVector    ResourceVector
	Deadline          time.Time
	PriorityClass     PriorityClass
	TrustFloor        float64
	MarketplaceBidType string
	SubmittedAt       time.Time

	// RequiresProximity and Region gate the Proximity routing strategy and
	// the placement engine's region-mismatch feasibility rule. Region is
	// the empty string for jobs with no regional affinity.
	RequiresProximity bool
	Region            string
}

// HealthStatus is a Node's monotone-within-an-episode health state (§3).
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "Healthy"
	HealthDegraded  HealthStatus = "Degraded"
	HealthUnhealthy HealthStatus = "Unhealthy"
)

// ThermalState describes a device-class Node's thermal envelope.
type ThermalState string

const (
	ThermalNominal  ThermalState = "Nominal"
	ThermalWarm     ThermalState = "Warm"
	ThermalCritical ThermalState = "Critical"
)

// Node is a placement target, mutated in place by the Fog Coordinator on
// heartbeat and on task (re)assignment (§3).
type Node struct {
	ID                 string
	CapacityVector     ResourceVector
	UtilizationVector  ResourceVector
	QueuedTasks        []string
	HealthStatus       HealthStatus
	ThermalState       ThermalState
	Region             string
	TrustScore         float64 // normalized [0,1]
	SupportsOnion      bool
	NetworkPresent     bool

	// BatteryLevel is nil for mains-powered nodes; otherwise a percentage
	// in [0,100]. IsCharging is only meaningful when BatteryLevel != nil.
	BatteryLevel *float64
	IsCharging   bool

	// Price is the marketplace price per unit of resource_vector magnitude
	// this node charges; distinct from the engine's internal Cost
	// objective, which prices resource usage independent of any market.
	Price float64
}

// Available returns the capacity remaining after current utilization.
func (n Node) Available() ResourceVector {
	return ResourceVector{
		CPU:     n.CapacityVector.CPU - n.UtilizationVector.CPU,
		Memory:  n.CapacityVector.Memory - n.UtilizationVector.Memory,
		GPU:     n.CapacityVector.GPU - n.UtilizationVector.GPU,
		Storage: n.CapacityVector.Storage - n.UtilizationVector.Storage,
	}
}

// DeviceEligible reports whether n currently satisfies the device-class
// eligibility policy (§4.7): battery at or above 50% or charging, thermal
// state short of Critical, and a present network path. Violations here
// drain future placements to n but never preempt work already running.
func (n Node) DeviceEligible() bool {
	if !n.NetworkPresent {
		return false
	}
	if n.ThermalState == ThermalCritical {
		return false
	}
	if n.BatteryLevel != nil && *n.BatteryLevel < 50 && !n.IsCharging {
		return false
	}
	return true
}

// ScoreVector is the five-objective evaluation of a single job→node
// assignment, all dimensions oriented so that lower is better (§3): trust is
// carried as its negation so every objective is a minimization target.
type ScoreVector struct {
	Latency      float64
	LoadVariance float64
	NegTrust     float64
	Cost         float64
	Price        float64
}

// Dominates reports whether s Pareto-dominates other: no worse in every
// objective, and strictly better in at least one.
func (s ScoreVector) Dominates(other ScoreVector) bool {
	a := [5]float64{s.Latency, s.LoadVariance, s.NegTrust, s.Cost, s.Price}
	b := [5]float64{other.Latency, other.LoadVariance, other.NegTrust, other.Cost, other.Price}

	strictlyBetter := false
	for i := range a {
		if a[i] > b[i] {
			return false
		}
		if a[i] < b[i] {
			strictlyBetter = true
		}
	}
	return strictlyBetter
}

// Placement is a single job→node decision produced by the Placement Engine
// and consumed by the Fog Coordinator (§3).
type Placement struct {
	JobID       string
	NodeID      string
	ScoreVector ScoreVector
}
