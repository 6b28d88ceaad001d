package fogcoord

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fogcompute/platform/placement"
)

func TestAssignTaskUpdatesUtilizationAndQueue(t *testing.T) {
	c := NewCoordinator(DefaultConfig(), 1)
	c.RegisterNode(testNode("n1", 8, 16))

	job := testJob("j1", 2, 4, placement.PriorityA)
	c.tasksMu.Lock()
	c.tasks["j1"] = &taskRecord{job: job}
	c.tasksMu.Unlock()

	err := c.AssignTask(placement.Placement{JobID: "j1", NodeID: "n1"})
	require.NoError(t, err)

	node, _ := c.Node("n1")
	require.Contains(t, node.QueuedTasks, "j1")
	require.Equal(t, 2.0, node.UtilizationVector.CPU)
	require.Equal(t, 4.0, node.UtilizationVector.Memory)
}

func TestAssignTaskRejectsOverCapacity(t *testing.T) {
	c := NewCoordinator(DefaultConfig(), 1)
	c.RegisterNode(testNode("n1", 1, 1))

	job := testJob("j1", 5, 5, placement.PriorityA)
	c.tasksMu.Lock()
	c.tasks["j1"] = &taskRecord{job: job}
	c.tasksMu.Unlock()

	err := c.AssignTask(placement.Placement{JobID: "j1", NodeID: "n1"})
	require.Error(t, err)
}

func TestOnNodeUnhealthyLeavesStartedTasksInPlace(t *testing.T) {
	c := NewCoordinator(DefaultConfig(), 1)
	c.RegisterNode(testNode("n1", 8, 16))

	started := testJob("started", 1, 1, placement.PriorityA)
	notStarted := testJob("queued", 1, 1, placement.PriorityA)

	c.tasksMu.Lock()
	c.tasks["started"] = &taskRecord{job: started}
	c.tasks["queued"] = &taskRecord{job: notStarted}
	c.tasksMu.Unlock()

	require.NoError(t, c.AssignTask(placement.Placement{JobID: "started", NodeID: "n1"}))
	require.NoError(t, c.AssignTask(placement.Placement{JobID: "queued", NodeID: "n1"}))
	c.MarkStarted("started")

	c.OnNodeUnhealthy(context.Background(), "n1")

	node, _ := c.Node("n1")
	require.Contains(t, node.QueuedTasks, "started")
	require.NotContains(t, node.QueuedTasks, "queued")

	c.tasksMu.Lock()
	_, requeued := find(c.pending, "queued")
	c.tasksMu.Unlock()
	require.True(t, requeued)
}
