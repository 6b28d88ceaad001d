package placement

import "sort"

// FallbackPlace exposes the heuristic ranking policies directly, so a caller
// (the Fog Coordinator's RoundRobin/LeastLoaded routing strategies, §4.7)
// can bypass NSGA-II entirely rather than only reaching a heuristic via
// Engine.Place's internal fallback path.
func FallbackPlace(strategy FallbackStrategy, jobs []Job, nodes []Node) []Placement {
	return fallbackPlace(strategy, jobs, nodes)
}

// fallbackPlace assigns jobs to nodes one at a time using a simple ranking
// heuristic (§4.6 "Fallback"), used when NSGA-II exhausts its generation
// budget without producing a single feasible candidate. Each job is placed
// on the best-ranked node that still has capacity for it after accounting
// for jobs already placed earlier in this same call; a job with no eligible
// node at all is skipped (the caller treats it as NoFeasibleNode).
//
// Grounded on the ranking-by-policy-flag shape of a from-the-pack heuristic
// scheduler (see DESIGN.md), adapted to this module's Job/Node/Placement
// types and feasibility rules.
func fallbackPlace(strategy FallbackStrategy, jobs []Job, nodes []Node) []Placement {
	used := make([]ResourceVector, len(nodes))
	var placements []Placement
	roundRobinCursor := 0

	for _, job := range jobs {
		eligible := eligibleNodeIndices(job, nodes, used)
		if len(eligible) == 0 {
			continue
		}

		var chosen int
		switch strategy {
		case LatencyFirst:
			chosen = bestByLatency(eligible, job, nodes)
		case LoadBalance:
			chosen = bestByLoad(eligible, nodes, used)
		case TrustFirst:
			chosen = bestByTrust(eligible, nodes)
		case CostOptimize:
			chosen = bestByPrice(eligible, nodes)
		case RoundRobin:
			chosen = eligible[roundRobinCursor%len(eligible)]
			roundRobinCursor++
		default:
			chosen = eligible[0]
		}

		node := nodes[chosen]
		used[chosen] = used[chosen].Add(job.ResourceVector)
		placements = append(placements, Placement{
			JobID:  job.ID,
			NodeID: node.ID,
			ScoreVector: ScoreVector{
				Latency:  jobLatency(job, node, len(node.QueuedTasks)),
				NegTrust: -node.TrustScore,
				Cost:     job.ResourceVector.Magnitude() * costCoefficient,
				Price:    job.ResourceVector.Magnitude() * node.Price,
			},
		})
	}
	return placements
}

func eligibleNodeIndices(job Job, nodes []Node, used []ResourceVector) []int {
	var out []int
	for ni, node := range nodes {
		if node.TrustScore < job.TrustFloor {
			continue
		}
		if job.RequiresProximity && job.Region != "" && node.Region != job.Region {
			continue
		}
		if !used[ni].Add(job.ResourceVector).FitsWithin(node.Available()) {
			continue
		}
		out = append(out, ni)
	}
	return out
}

func bestByLatency(eligible []int, job Job, nodes []Node) int {
	best := eligible[0]
	bestLatency := jobLatency(job, nodes[best], len(nodes[best].QueuedTasks))
	for _, ni := range eligible[1:] {
		l := jobLatency(job, nodes[ni], len(nodes[ni].QueuedTasks))
		if l < bestLatency {
			best, bestLatency = ni, l
		}
	}
	return best
}

func bestByLoad(eligible []int, nodes []Node, used []ResourceVector) int {
	ratio := func(ni int) float64 {
		cap := nodes[ni].CapacityVector.Magnitude()
		if cap <= 0 {
			return 1
		}
		return (nodes[ni].UtilizationVector.Magnitude() + used[ni].Magnitude()) / cap
	}
	sorted := append([]int(nil), eligible...)
	sort.Slice(sorted, func(a, b int) bool { return ratio(sorted[a]) < ratio(sorted[b]) })
	return sorted[0]
}

func bestByTrust(eligible []int, nodes []Node) int {
	best := eligible[0]
	for _, ni := range eligible[1:] {
		if nodes[ni].TrustScore > nodes[best].TrustScore {
			best = ni
		}
	}
	return best
}

func bestByPrice(eligible []int, nodes []Node) int {
	best := eligible[0]
	for _, ni := range eligible[1:] {
		if nodes[ni].Price < nodes[best].Price {
			best = ni
		}
	}
	return best
}
