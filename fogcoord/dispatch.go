package fogcoord

import (
	"github.com/lightningnetwork/lnd/ticker"

	"github.com/fogcompute/platform/fogerr"
	"github.com/fogcompute/platform/placement"
)

// SubmitTask enqueues job into the pending batch, or dispatches it
// immediately for priority class S (§4.7).
func (c *Coordinator) SubmitTask(job placement.Job) error {
	c.tasksMu.Lock()
	c.tasks[job.ID] = &taskRecord{job: job}
	c.tasksMu.Unlock()

	if job.PriorityClass == placement.PriorityS {
		return c.dispatchBatch([]placement.Job{job})
	}

	c.tasksMu.Lock()
	c.pending = append(c.pending, job)
	c.tasksMu.Unlock()
	return nil
}

// runDispatcher ticks every cfg.DispatchCadence (default 5s) and batch-
// dispatches whatever has accumulated in the pending queue (§4.7, §5: "one
// placement dispatcher").
func (c *Coordinator) runDispatcher() {
	defer c.wg.Done()

	t := ticker.New(c.cfg.DispatchCadence)
	t.Resume()
	defer t.Stop()

	for {
		select {
		case <-c.quit:
			return
		case <-t.Ticks():
			c.drainAndDispatch()
		}
	}
}

func (c *Coordinator) drainAndDispatch() {
	c.tasksMu.Lock()
	batch := c.pending
	c.pending = nil
	c.tasksMu.Unlock()

	if len(batch) == 0 {
		return
	}
	if err := c.dispatchBatch(batch); err != nil {
		log.Warnf("fogcoord: batch dispatch of %d jobs failed: %v", len(batch), err)
	}
}

// dispatchBatch runs the routing-strategy-filtered candidate set through
// either the Placement Engine (NSGA-II) or a direct heuristic, then assigns
// every resulting Placement. Jobs the engine could not place at all are
// requeued into pending so a later batch (or a capacity change) can retry
// them, rather than being silently dropped.
func (c *Coordinator) dispatchBatch(jobs []placement.Job) error {
	nodes := c.Nodes()

	// Candidate filtering is per-job (region/onion constraints vary by
	// job), but the engine evaluates one shared node slice per batch; jobs
	// sharing no common eligible node set are still evaluated together —
	// per-job infeasibility is handled by evaluate()'s own feasibility
	// check, not by pre-splitting the batch.
	candidates := nodes
	if len(jobs) > 0 {
		candidates = c.candidateNodes(jobs[0], nodes)
	}

	var (
		placements []placement.Placement
		err        error
	)
	if strategy, direct := c.usesDirectHeuristic(); direct {
		placements = placement.FallbackPlace(strategy, jobs, candidates)
		if len(placements) == 0 {
			err = fogerr.New(fogerr.KindNoFeasibleNode, "no feasible placement for batch")
		}
	} else {
		placements, err = c.engine.Place(jobs, candidates)
	}

	placed := make(map[string]bool, len(placements))
	for _, p := range placements {
		placed[p.JobID] = true
		if aerr := c.AssignTask(p); aerr != nil {
			log.Warnf("fogcoord: assign job %s to node %s failed: %v",
				p.JobID, p.NodeID, aerr)
			placed[p.JobID] = false
		}
	}

	var unplaced []placement.Job
	for _, j := range jobs {
		if !placed[j.ID] {
			unplaced = append(unplaced, j)
		}
	}
	if len(unplaced) > 0 {
		c.tasksMu.Lock()
		c.pending = append(c.pending, unplaced...)
		c.tasksMu.Unlock()
	}
	return err
}

// Start launches the heartbeat reaper and the batch dispatcher.
func (c *Coordinator) Start() {
	c.wg.Add(2)
	go c.runHeartbeatReaper()
	go c.runDispatcher()
}

// Stop signals both background tasks to exit and waits for them.
func (c *Coordinator) Stop() {
	close(c.quit)
	c.wg.Wait()
}
