package placement

import "math/rand"

// feasibleNodesFor precomputes, for each job, which node indices pass the
// per-job feasibility checks in isolation (trust floor, proximity/region).
// Capacity is necessarily cumulative across a whole candidate, so it is not
// checked here — only evaluate() can see the rest of the batch.
func feasibleNodesFor(jobs []Job, nodes []Node) [][]int {
	out := make([][]int, len(jobs))
	for i, job := range jobs {
		var feasible []int
		for ni, node := range nodes {
			if node.TrustScore < job.TrustFloor {
				continue
			}
			if job.RequiresProximity && job.Region != "" && node.Region != job.Region {
				continue
			}
			feasible = append(feasible, ni)
		}
		out[i] = feasible
	}
	return out
}

// randomGenes builds a random assignment, preferring per-job-feasible nodes
// when any exist so the initial population isn't dominated by trivially
// infeasible candidates; falls back to -1 (unassigned) when a job has no
// feasible node at all.
func randomGenes(jobs []Job, nodes []Node, feasible [][]int, rng *rand.Rand) assignment {
	genes := make(assignment, len(jobs))
	for i := range jobs {
		choices := feasible[i]
		if len(choices) == 0 {
			genes[i] = -1
			continue
		}
		genes[i] = choices[rng.Intn(len(choices))]
	}
	return genes
}

// tournamentSelect implements tournament selection (§4.6): draw size members
// (3 by default) at random with replacement, return the one with the best (rank, then
// crowding distance) — standard NSGA-II binary-comparison order.
func tournamentSelect(pop []candidate, size int, rng *rand.Rand) candidate {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < size; i++ {
		challenger := pop[rng.Intn(len(pop))]
		if betterThan(challenger, best) {
			best = challenger
		}
	}
	return best
}

func betterThan(a, b candidate) bool {
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	return a.crowding > b.crowding
}

// crossover performs uniform crossover at crossoverRate: each gene is
// independently inherited from a or b with equal probability when crossover
// fires, otherwise the child is a copy of a.
func crossover(a, b assignment, rate float64, rng *rand.Rand) assignment {
	child := make(assignment, len(a))
	copy(child, a)
	if rng.Float64() >= rate {
		return child
	}
	for i := range child {
		if rng.Intn(2) == 0 {
			child[i] = b[i]
		}
	}
	return child
}

// mutate re-rolls each gene independently at mutationRate, choosing among
// that job's per-job-feasible nodes (or leaving it unassigned if none).
func mutate(genes assignment, feasible [][]int, rate float64, rng *rand.Rand) {
	for i := range genes {
		if rng.Float64() >= rate {
			continue
		}
		choices := feasible[i]
		if len(choices) == 0 {
			genes[i] = -1
			continue
		}
		genes[i] = choices[rng.Intn(len(choices))]
	}
}
