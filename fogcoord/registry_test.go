package fogcoord

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fogcompute/platform/placement"
)

func testNode(id string, cpu, mem float64) placement.Node {
	return placement.Node{
		ID:             id,
		CapacityVector: placement.ResourceVector{CPU: cpu, Memory: mem},
		TrustScore:     0.8,
		NetworkPresent: true,
	}
}

func testJob(id string, cpu, mem float64, class placement.PriorityClass) placement.Job {
	return placement.Job{
		ID:             id,
		ResourceVector: placement.ResourceVector{CPU: cpu, Memory: mem},
		PriorityClass:  class,
	}
}

func TestRegisterNodeStartsHealthy(t *testing.T) {
	c := NewCoordinator(DefaultConfig(), 1)
	c.RegisterNode(testNode("n1", 8, 16))

	node, ok := c.Node("n1")
	require.True(t, ok)
	require.Equal(t, placement.HealthHealthy, node.HealthStatus)
}

func TestDeregisterNodeRemoves(t *testing.T) {
	c := NewCoordinator(DefaultConfig(), 1)
	c.RegisterNode(testNode("n1", 8, 16))
	c.DeregisterNode("n1")

	_, ok := c.Node("n1")
	require.False(t, ok)
}

func TestHeartbeatResetsHealthAndUpdatesState(t *testing.T) {
	c := NewCoordinator(DefaultConfig(), 1)
	c.RegisterNode(testNode("n1", 8, 16))

	battery := 70.0
	err := c.Heartbeat("n1", placement.ResourceVector{CPU: 2}, &battery, false, placement.ThermalNominal)
	require.NoError(t, err)

	node, _ := c.Node("n1")
	require.Equal(t, placement.HealthHealthy, node.HealthStatus)
	require.Equal(t, 2.0, node.UtilizationVector.CPU)
	require.Equal(t, 70.0, *node.BatteryLevel)
}

func TestHeartbeatUnknownNodeErrors(t *testing.T) {
	c := NewCoordinator(DefaultConfig(), 1)
	err := c.Heartbeat("missing", placement.ResourceVector{}, nil, false, placement.ThermalNominal)
	require.Error(t, err)
}
