package fogcoord

import (
	"context"
	"time"

	"github.com/lightningnetwork/lnd/ticker"
	"golang.org/x/sync/errgroup"

	"github.com/fogcompute/platform/placement"
)

// runHeartbeatReaper ticks every cfg.HeartbeatInterval (default 60s) and
// sweeps the registry, concurrently per node (§5: "one heartbeat reaper"),
// advancing missed-beat counts and the monotone Healthy→Degraded→Unhealthy
// transition (§3, §4.7: "3 missed 60s beats" within heartbeat_timeout).
func (c *Coordinator) runHeartbeatReaper() {
	defer c.wg.Done()

	t := ticker.New(c.cfg.HeartbeatInterval)
	t.Resume()
	defer t.Stop()

	for {
		select {
		case <-c.quit:
			return
		case <-t.Ticks():
			c.sweepHeartbeats()
		}
	}
}

func (c *Coordinator) sweepHeartbeats() {
	c.registryMu.RLock()
	ids := make([]string, 0, len(c.nodes))
	snaps := make([]*trackedNode, 0, len(c.nodes))
	for id, tn := range c.nodes {
		ids = append(ids, id)
		snaps = append(snaps, tn)
	}
	c.registryMu.RUnlock()

	var g errgroup.Group
	for i := range ids {
		tn := snaps[i]
		id := ids[i]
		g.Go(func() error {
			c.checkNode(id, tn)
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Coordinator) checkNode(nodeID string, tn *trackedNode) {
	tn.mu.Lock()
	missedAllowed := int(c.cfg.HeartbeatTimeout / c.cfg.HeartbeatInterval)
	elapsed := time.Since(tn.lastHeartbeat)
	missed := int(elapsed / c.cfg.HeartbeatInterval)
	tn.missedBeats = missed

	var (
		crossedUnhealthy bool
		newStatus        placement.HealthStatus
	)
	switch {
	case missed >= missedAllowed:
		if tn.node.HealthStatus != placement.HealthUnhealthy {
			crossedUnhealthy = true
		}
		newStatus = placement.HealthUnhealthy
	case missed >= 1:
		if tn.node.HealthStatus == placement.HealthHealthy {
			newStatus = placement.HealthDegraded
		} else {
			newStatus = tn.node.HealthStatus
		}
	default:
		newStatus = tn.node.HealthStatus
	}
	tn.node.HealthStatus = newStatus
	tn.mu.Unlock()

	if crossedUnhealthy {
		log.Warnf("fogcoord: node %s missed %d heartbeats, marking Unhealthy",
			nodeID, missed)
		c.OnNodeUnhealthy(context.Background(), nodeID)
	}
}
