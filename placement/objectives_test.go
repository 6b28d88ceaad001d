package placement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testNode(id string, cpu, mem float64, trust float64) Node {
	return Node{
		ID:                id,
		CapacityVector:    ResourceVector{CPU: cpu, Memory: mem},
		UtilizationVector: ResourceVector{},
		HealthStatus:      HealthHealthy,
		TrustScore:        trust,
		NetworkPresent:    true,
		Price:             1.0,
	}
}

func testJob(id string, cpu, mem float64, trustFloor float64) Job {
	return Job{
		ID:             id,
		ResourceVector: ResourceVector{CPU: cpu, Memory: mem},
		PriorityClass:  PriorityA,
		TrustFloor:     trustFloor,
		SubmittedAt:    time.Unix(0, 0),
	}
}

func TestEvaluateFeasibleAssignment(t *testing.T) {
	jobs := []Job{testJob("j1", 2, 4, 0.5)}
	nodes := []Node{testNode("n1", 8, 16, 0.9)}

	c := evaluate(jobs, nodes, assignment{0})
	require.True(t, c.feasible)
	require.Len(t, c.placements, 1)
	require.Equal(t, "n1", c.placements[0].NodeID)
}

func TestEvaluateRejectsInsufficientCapacity(t *testing.T) {
	jobs := []Job{testJob("j1", 10, 4, 0)}
	nodes := []Node{testNode("n1", 8, 16, 0.9)}

	c := evaluate(jobs, nodes, assignment{0})
	require.False(t, c.feasible)
}

func TestEvaluateRejectsTrustBelowFloor(t *testing.T) {
	jobs := []Job{testJob("j1", 1, 1, 0.8)}
	nodes := []Node{testNode("n1", 8, 16, 0.5)}

	c := evaluate(jobs, nodes, assignment{0})
	require.False(t, c.feasible)
}

func TestEvaluateRejectsRegionMismatchWhenProximityRequired(t *testing.T) {
	job := testJob("j1", 1, 1, 0)
	job.RequiresProximity = true
	job.Region = "eu-west"

	node := testNode("n1", 8, 16, 0.9)
	node.Region = "us-east"

	c := evaluate([]Job{job}, []Node{node}, assignment{0})
	require.False(t, c.feasible)
}

func TestEvaluateRejectsCumulativeCapacityAcrossBatch(t *testing.T) {
	jobs := []Job{
		testJob("j1", 5, 5, 0),
		testJob("j2", 5, 5, 0),
	}
	nodes := []Node{testNode("n1", 8, 16, 0.9)}

	// Both jobs target the same node: individually each fits, together
	// they exceed 8 CPU capacity.
	c := evaluate(jobs, nodes, assignment{0, 0})
	require.False(t, c.feasible)
}

func TestScoreVectorDominates(t *testing.T) {
	better := ScoreVector{Latency: 1, LoadVariance: 1, NegTrust: -1, Cost: 1, Price: 1}
	worse := ScoreVector{Latency: 2, LoadVariance: 1, NegTrust: -1, Cost: 1, Price: 1}
	require.True(t, better.Dominates(worse))
	require.False(t, worse.Dominates(better))

	equal := ScoreVector{Latency: 1, LoadVariance: 1, NegTrust: -1, Cost: 1, Price: 1}
	require.False(t, better.Dominates(equal))
}

func TestNodeDeviceEligible(t *testing.T) {
	n := testNode("n1", 8, 16, 0.9)
	require.True(t, n.DeviceEligible())

	n.NetworkPresent = false
	require.False(t, n.DeviceEligible())

	n.NetworkPresent = true
	n.ThermalState = ThermalCritical
	require.False(t, n.DeviceEligible())

	n.ThermalState = ThermalNominal
	low := 30.0
	n.BatteryLevel = &low
	n.IsCharging = false
	require.False(t, n.DeviceEligible())

	n.IsCharging = true
	require.True(t, n.DeviceEligible())
}
