package fogcoord

import (
	"context"

	"github.com/fogcompute/platform/fogerr"
	"github.com/fogcompute/platform/placement"
)

// AssignTask performs the atomic move from pending to the chosen node's
// queued_tasks, updating that node's projected utilization (§4.7). The
// per-node lock makes this linearizable per node (§5: "AssignTask is
// linearizable per node"), so two concurrent AssignTask calls targeting the
// same node can never together double-book its capacity (§8).
func (c *Coordinator) AssignTask(p placement.Placement) error {
	c.tasksMu.Lock()
	rec, ok := c.tasks[p.JobID]
	c.tasksMu.Unlock()
	if !ok {
		return fogerr.New(fogerr.KindDependencyMissing, "unknown job %q", p.JobID)
	}

	c.registryMu.RLock()
	tn, ok := c.nodes[p.NodeID]
	c.registryMu.RUnlock()
	if !ok {
		return fogerr.New(fogerr.KindDependencyMissing, "unknown node %q", p.NodeID)
	}

	tn.mu.Lock()
	tentative := tn.node.UtilizationVector.Add(rec.job.ResourceVector)
	if !tentative.FitsWithin(tn.node.CapacityVector) {
		tn.mu.Unlock()
		return fogerr.New(fogerr.KindInsufficientCap,
			"node %q has no remaining capacity for job %q", p.NodeID, p.JobID)
	}
	tn.node.UtilizationVector = tentative
	tn.node.QueuedTasks = append(tn.node.QueuedTasks, p.JobID)
	tn.mu.Unlock()

	c.tasksMu.Lock()
	rec.nodeID = p.NodeID
	c.tasksMu.Unlock()
	return nil
}

// MarkStarted records that nodeID has begun executing job jobID, so a later
// OnNodeUnhealthy no longer reclaims it (best-effort for running work,
// §4.7).
func (c *Coordinator) MarkStarted(jobID string) {
	c.tasksMu.Lock()
	defer c.tasksMu.Unlock()
	if rec, ok := c.tasks[jobID]; ok {
		rec.started = true
	}
}

// OnNodeUnhealthy reclaims queued_tasks not yet started on nodeID and
// resubmits them to the pending batch; tasks already started are left in
// place, best-effort, with no rollback (§4.7).
func (c *Coordinator) OnNodeUnhealthy(_ context.Context, nodeID string) {
	c.registryMu.RLock()
	tn, ok := c.nodes[nodeID]
	c.registryMu.RUnlock()
	if !ok {
		return
	}

	tn.mu.Lock()
	queued := tn.node.QueuedTasks
	tn.node.QueuedTasks = nil
	tn.mu.Unlock()

	var reclaimed placement.ResourceVector
	var resubmit []placement.Job

	c.tasksMu.Lock()
	var stillQueued []string
	for _, jobID := range queued {
		rec, ok := c.tasks[jobID]
		if !ok {
			continue
		}
		if rec.started {
			stillQueued = append(stillQueued, jobID)
			continue
		}
		reclaimed = reclaimed.Add(rec.job.ResourceVector)
		resubmit = append(resubmit, rec.job)
		rec.nodeID = ""
	}
	c.pending = append(c.pending, resubmit...)
	c.tasksMu.Unlock()

	tn.mu.Lock()
	tn.node.QueuedTasks = stillQueued
	tn.node.UtilizationVector = placement.ResourceVector{
		CPU:     tn.node.UtilizationVector.CPU - reclaimed.CPU,
		Memory:  tn.node.UtilizationVector.Memory - reclaimed.Memory,
		GPU:     tn.node.UtilizationVector.GPU - reclaimed.GPU,
		Storage: tn.node.UtilizationVector.Storage - reclaimed.Storage,
	}
	tn.mu.Unlock()

	if len(resubmit) > 0 {
		log.Infof("fogcoord: reclaimed %d not-yet-started tasks from unhealthy node %s",
			len(resubmit), nodeID)
	}
}
