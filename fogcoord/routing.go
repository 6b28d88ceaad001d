package fogcoord

import "github.com/fogcompute/platform/placement"

// candidateNodes narrows nodes to the set eligible for new placements under
// the coordinator's configured routing strategy (§4.7): PrivacyAware keeps
// only onion-capable nodes, Proximity keeps only nodes in the job's region.
// Affinity and Custom are pass-through filters — the spec defines no
// affinity tag on Job/Node to filter by, and Custom names an
// operator-defined policy left unspecified, so both resolve to "no extra
// filter, let the Placement Engine's own objectives decide" (documented
// Open Question resolution, see DESIGN.md). Every strategy also drops nodes
// that currently fail the device-class eligibility policy (§4.7) or are not
// Healthy/Degraded.
func (c *Coordinator) candidateNodes(job placement.Job, all []placement.Node) []placement.Node {
	out := make([]placement.Node, 0, len(all))
	for _, n := range all {
		if n.HealthStatus == placement.HealthUnhealthy {
			continue
		}
		if !n.DeviceEligible() {
			continue
		}
		switch c.cfg.Routing {
		case RoutingPrivacyAware:
			if !n.SupportsOnion {
				continue
			}
		case RoutingProximity:
			if job.Region != "" && n.Region != job.Region {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// usesDirectHeuristic reports whether the configured routing strategy
// bypasses NSGA-II for a cheap deterministic assignment (§4.7 Open Question
// resolution, see DESIGN.md): RoundRobin maps to the Placement Engine's
// RoundRobin fallback policy and LeastLoaded to its LoadBalance policy.
func (c *Coordinator) usesDirectHeuristic() (placement.FallbackStrategy, bool) {
	switch c.cfg.Routing {
	case RoutingRoundRobin:
		return placement.RoundRobin, true
	case RoutingLeastLoaded:
		return placement.LoadBalance, true
	default:
		return "", false
	}
}
