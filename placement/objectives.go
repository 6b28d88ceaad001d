package placement

import "math"

// baseLatencyUnit and costCoefficient are the proxy constants behind the
// latency and cost objectives; the spec leaves the concrete cost/latency
// models unspecified (§4.6 Open Question), so these are simple, documented
// linear proxies rather than a network or billing model.
const (
	baseLatencyUnit  = 10.0 // ms, charged once per job placed on a node
	queueLatencyUnit = 5.0  // ms, charged per already-queued task on the node
	regionMismatchLatencyPenalty = 50.0
	costCoefficient  = 1.0
)

// assignment maps each job (by index into the batch) to a node index in the
// candidate node slice, or -1 if unassigned.
type assignment []int

// candidate is one member of the NSGA-II population: a full job→node
// assignment for the batch, its aggregate objective vector, per-job
// placements, and feasibility.
type candidate struct {
	genes      assignment
	objective  ScoreVector
	placements []Placement
	feasible   bool

	rank     int
	crowding float64
}

// evaluate scores a candidate assignment against jobs/nodes. Feasibility is
// checked sequentially in job order so that multiple jobs in the same batch
// competing for the same node's capacity are accounted for cumulatively
// (§4.6: "reject infeasible assignments" — insufficient capacity, trust
// below job.trust_floor, region mismatch for proximity-required jobs).
func evaluate(jobs []Job, nodes []Node, genes assignment) candidate {
	c := candidate{genes: genes, feasible: true}

	used := make([]ResourceVector, len(nodes))
	placements := make([]Placement, 0, len(jobs))

	for i, job := range jobs {
		ni := genes[i]
		if ni < 0 || ni >= len(nodes) {
			c.feasible = false
			continue
		}
		node := nodes[ni]

		if node.TrustScore < job.TrustFloor {
			c.feasible = false
			continue
		}
		if job.RequiresProximity && job.Region != "" && node.Region != job.Region {
			c.feasible = false
			continue
		}

		tentative := used[ni].Add(job.ResourceVector)
		if !tentative.FitsWithin(node.Available()) {
			c.feasible = false
			continue
		}
		used[ni] = tentative

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

	if !c.feasible {
		return c
	}

	loadVariance := utilizationVariance(nodes, used)
	for i := range placements {
		placements[i].ScoreVector.LoadVariance = loadVariance
	}
	c.placements = placements
	c.objective = aggregateObjective(placements, loadVariance)
	return c
}

func jobLatency(job Job, node Node, queueDepth int) float64 {
	l := baseLatencyUnit + float64(queueDepth)*queueLatencyUnit
	if job.Region != "" && node.Region != "" && job.Region != node.Region {
		l += regionMismatchLatencyPenalty
	}
	return l
}

// utilizationVariance computes the population variance, across all nodes, of
// (existing utilization + tentative usage) relative to capacity magnitude —
// the dispersion the load_variance objective penalizes.
func utilizationVariance(nodes []Node, used []ResourceVector) float64 {
	if len(nodes) == 0 {
		return 0
	}
	ratios := make([]float64, len(nodes))
	var sum float64
	for i, n := range nodes {
		cap := n.CapacityVector.Magnitude()
		if cap <= 0 {
			ratios[i] = 1
		} else {
			ratios[i] = (n.UtilizationVector.Magnitude() + used[i].Magnitude()) / cap
		}
		sum += ratios[i]
	}
	mean := sum / float64(len(nodes))

	var variance float64
	for _, r := range ratios {
		d := r - mean
		variance += d * d
	}
	return variance / float64(len(nodes))
}

func aggregateObjective(placements []Placement, loadVariance float64) ScoreVector {
	if len(placements) == 0 {
		return ScoreVector{}
	}
	var agg ScoreVector
	for _, p := range placements {
		agg.Latency += p.ScoreVector.Latency
		agg.NegTrust += p.ScoreVector.NegTrust
		agg.Cost += p.ScoreVector.Cost
		agg.Price += p.ScoreVector.Price
	}
	n := float64(len(placements))
	agg.Latency /= n
	agg.NegTrust /= n
	agg.Cost /= n
	agg.Price /= n
	agg.LoadVariance = loadVariance
	return agg
}

// worstPossible returns a sentinel objective vector no feasible candidate
// could ever dominate, used to push infeasible candidates to the bottom of
// every front without special-casing them throughout non-dominated sort.
func worstPossible() ScoreVector {
	return ScoreVector{
		Latency:      math.Inf(1),
		LoadVariance: math.Inf(1),
		NegTrust:     math.Inf(1),
		Cost:         math.Inf(1),
		Price:        math.Inf(1),
	}
}

func (c candidate) effectiveObjective() ScoreVector {
	if !c.feasible {
		return worstPossible()
	}
	return c.objective
}
