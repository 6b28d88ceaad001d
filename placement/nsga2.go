package placement

import (
	"math"
	"sort"
)

// nonDominatedSort partitions pop into Pareto fronts (§4.6: "non-dominated
// sort into Pareto fronts"), indices into pop grouped front-by-front, best
// first. Infeasible candidates carry the sentinel worst objective (see
// worstPossible) so they naturally sink to the last front(s) without a
// separate code path.
func nonDominatedSort(pop []candidate) [][]int {
	n := len(pop)
	dominatedBy := make([][]int, n)
	dominationCount := make([]int, n)
	objectives := make([]ScoreVector, n)
	for i := range pop {
		objectives[i] = pop[i].effectiveObjective()
	}

	var fronts [][]int
	first := []int{}
	for p := 0; p < n; p++ {
		for q := 0; q < n; q++ {
			if p == q {
				continue
			}
			switch {
			case objectives[p].Dominates(objectives[q]):
				dominatedBy[p] = append(dominatedBy[p], q)
			case objectives[q].Dominates(objectives[p]):
				dominationCount[p]++
			}
		}
		if dominationCount[p] == 0 {
			first = append(first, p)
		}
	}
	fronts = append(fronts, first)

	for i := 0; len(fronts[i]) > 0; i++ {
		var next []int
		for _, p := range fronts[i] {
			for _, q := range dominatedBy[p] {
				dominationCount[q]--
				if dominationCount[q] == 0 {
					next = append(next, q)
				}
			}
		}
		if len(next) == 0 {
			break
		}
		fronts = append(fronts, next)
	}
	return fronts
}

// crowdingDistances computes, within a single front, each member's crowding
// distance (§4.6: "crowding distance within a front for diversity") — the
// sum, over each of the 5 objectives, of the normalized gap between its
// neighbors when the front is sorted by that objective. Boundary members get
// infinite distance so they are always preferred (spread preservation).
func crowdingDistances(pop []candidate, front []int) map[int]float64 {
	dist := make(map[int]float64, len(front))
	for _, i := range front {
		dist[i] = 0
	}
	if len(front) <= 2 {
		for _, i := range front {
			dist[i] = math.Inf(1)
		}
		return dist
	}

	extract := func(s ScoreVector, dim int) float64 {
		switch dim {
		case 0:
			return s.Latency
		case 1:
			return s.LoadVariance
		case 2:
			return s.NegTrust
		case 3:
			return s.Cost
		default:
			return s.Price
		}
	}

	ordered := make([]int, len(front))
	copy(ordered, front)

	for dim := 0; dim < 5; dim++ {
		sort.Slice(ordered, func(a, b int) bool {
			return extract(pop[ordered[a]].effectiveObjective(), dim) <
				extract(pop[ordered[b]].effectiveObjective(), dim)
		})

		lo := extract(pop[ordered[0]].effectiveObjective(), dim)
		hi := extract(pop[ordered[len(ordered)-1]].effectiveObjective(), dim)
		span := hi - lo

		dist[ordered[0]] = math.Inf(1)
		dist[ordered[len(ordered)-1]] = math.Inf(1)

		if span <= 0 {
			continue
		}
		for k := 1; k < len(ordered)-1; k++ {
			prev := extract(pop[ordered[k-1]].effectiveObjective(), dim)
			next := extract(pop[ordered[k+1]].effectiveObjective(), dim)
			dist[ordered[k]] += (next - prev) / span
		}
	}
	return dist
}
