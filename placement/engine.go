package placement

import (
	"math"
	"math/rand"

	"github.com/fogcompute/platform/fogerr"
)

// Engine runs the NSGA-II placement algorithm for a batch of jobs against
// the current node set (§4.6).
type Engine struct {
	cfg Config
	rng *rand.Rand
}

// NewEngine constructs an Engine with the given config and a seeded PRNG —
// seeded explicitly so a run is reproducible given the same seed, jobs, and
// nodes (spec's determinism requirement; no pack dependency offers a
// seedable PRNG beyond stdlib math/rand, see DESIGN.md).
func NewEngine(cfg Config, seed int64) *Engine {
	return &Engine{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// Place evaluates the NSGA-II run to termination (max generations, or a
// stable best hypervolume proxy for ConvergenceWindow generations) and
// returns one Placement per job. If no feasible candidate is ever produced,
// it falls back to the configured heuristic (§4.6 "Fallback"); if even the
// fallback cannot place a job, that job is simply absent from the result —
// the caller (Fog Coordinator) treats a missing job as NoFeasibleNode.
func (e *Engine) Place(jobs []Job, nodes []Node) ([]Placement, error) {
	if len(jobs) == 0 {
		return nil, nil
	}
	if len(nodes) == 0 {
		return nil, fogerr.New(fogerr.KindNoFeasibleNode, "no nodes registered")
	}

	feasible := feasibleNodesFor(jobs, nodes)
	pop := e.initialPopulation(jobs, nodes, feasible)

	var bestHypervolume float64 = math.Inf(1)
	stableFor := 0

	for gen := 0; gen < e.cfg.MaxGenerations; gen++ {
		assignRanksAndCrowding(pop)
		pop = e.nextGeneration(jobs, nodes, feasible, pop)

		if e.cfg.ConvergenceWindow > 0 {
			assignRanksAndCrowding(pop)
			hv := frontHypervolumeProxy(pop)
			if hv >= bestHypervolume-1e-9 {
				stableFor++
			} else {
				stableFor = 0
				bestHypervolume = hv
			}
			if stableFor >= e.cfg.ConvergenceWindow {
				break
			}
		}
	}

	assignRanksAndCrowding(pop)
	best := bestFeasible(pop)
	if best == nil {
		log.Warnf("placement: no feasible NSGA-II candidate for %d jobs, "+
			"falling back to %s", len(jobs), e.cfg.FallbackStrategy)
		placements := fallbackPlace(e.cfg.FallbackStrategy, jobs, nodes)
		if len(placements) == 0 {
			return nil, fogerr.New(fogerr.KindNoFeasibleNode,
				"no feasible placement for any job in batch")
		}
		return placements, nil
	}
	return best.placements, nil
}

func (e *Engine) initialPopulation(jobs []Job, nodes []Node, feasible [][]int) []candidate {
	pop := make([]candidate, e.cfg.Population)
	for i := range pop {
		genes := randomGenes(jobs, nodes, feasible, e.rng)
		pop[i] = evaluate(jobs, nodes, genes)
	}
	return pop
}

func (e *Engine) nextGeneration(jobs []Job, nodes []Node, feasible [][]int, pop []candidate) []candidate {
	children := make([]candidate, 0, e.cfg.Population)
	for len(children) < e.cfg.Population {
		parentA := tournamentSelect(pop, e.cfg.TournamentSize, e.rng)
		parentB := tournamentSelect(pop, e.cfg.TournamentSize, e.rng)
		genes := crossover(parentA.genes, parentB.genes, e.cfg.CrossoverRate, e.rng)
		mutate(genes, feasible, e.cfg.MutationRate, e.rng)
		children = append(children, evaluate(jobs, nodes, genes))
	}

	// Elitism: merge parents + children, then keep the best Population
	// members front-by-front, using crowding distance to break ties at the
	// boundary front (§4.6 "Elitism: best fronts carry to next generation").
	merged := append(append([]candidate{}, pop...), children...)
	mergedFronts := nonDominatedSort(merged)

	next := make([]candidate, 0, e.cfg.Population)
	for rank, front := range mergedFronts {
		if len(next)+len(front) <= e.cfg.Population {
			for _, idx := range front {
				merged[idx].rank = rank
				next = append(next, merged[idx])
			}
			continue
		}
		dist := crowdingDistances(merged, front)
		remaining := e.cfg.Population - len(next)
		sorted := append([]int(nil), front...)
		sortByCrowdingDesc(sorted, dist)
		for _, idx := range sorted[:remaining] {
			next = append(next, merged[idx])
		}
		break
	}
	return next
}

func sortByCrowdingDesc(indices []int, dist map[int]float64) {
	for i := 1; i < len(indices); i++ {
		for j := i; j > 0 && dist[indices[j]] > dist[indices[j-1]]; j-- {
			indices[j], indices[j-1] = indices[j-1], indices[j]
		}
	}
}

func assignRanksAndCrowding(pop []candidate) {
	fronts := nonDominatedSort(pop)
	for rank, front := range fronts {
		dist := crowdingDistances(pop, front)
		for _, idx := range front {
			pop[idx].rank = rank
			pop[idx].crowding = dist[idx]
		}
	}
}

// bestFeasible returns a pointer to the front-0 feasible candidate closest
// to the ideal point (component-wise minimum across the feasible front) —
// a knee-point selection resolving the spec's silence on how to pick one
// solution out of a Pareto front (§4.6 Open Question).
func bestFeasible(pop []candidate) *candidate {
	var feasibleIdx []int
	for i, c := range pop {
		if c.feasible && c.rank == 0 {
			feasibleIdx = append(feasibleIdx, i)
		}
	}
	if len(feasibleIdx) == 0 {
		return nil
	}

	ideal := ScoreVector{
		Latency:      math.Inf(1),
		LoadVariance: math.Inf(1),
		NegTrust:     math.Inf(1),
		Cost:         math.Inf(1),
		Price:        math.Inf(1),
	}
	for _, i := range feasibleIdx {
		o := pop[i].objective
		ideal.Latency = math.Min(ideal.Latency, o.Latency)
		ideal.LoadVariance = math.Min(ideal.LoadVariance, o.LoadVariance)
		ideal.NegTrust = math.Min(ideal.NegTrust, o.NegTrust)
		ideal.Cost = math.Min(ideal.Cost, o.Cost)
		ideal.Price = math.Min(ideal.Price, o.Price)
	}

	bestIdx := feasibleIdx[0]
	bestDist := distanceTo(pop[bestIdx].objective, ideal)
	for _, i := range feasibleIdx[1:] {
		d := distanceTo(pop[i].objective, ideal)
		if d < bestDist {
			bestIdx, bestDist = i, d
		}
	}
	return &pop[bestIdx]
}

func distanceTo(s, ideal ScoreVector) float64 {
	d := s.Latency - ideal.Latency
	sum := d * d
	d = s.LoadVariance - ideal.LoadVariance
	sum += d * d
	d = s.NegTrust - ideal.NegTrust
	sum += d * d
	d = s.Cost - ideal.Cost
	sum += d * d
	d = s.Price - ideal.Price
	sum += d * d
	return math.Sqrt(sum)
}

// frontHypervolumeProxy is a cheap convergence signal: the sum, over the
// front-0 members, of their five objective values (members with infinite
// latency are left out). It is
// not a true hypervolume indicator (that needs a dedicated geometry
// algorithm this codebase has no grounding for) but it is monotone enough to
// detect a stalled search for the ConvergenceWindow early-stop rule.
func frontHypervolumeProxy(pop []candidate) float64 {
	var sum float64
	for _, c := range pop {
		if c.rank != 0 {
			continue
		}
		o := c.effectiveObjective()
		if math.IsInf(o.Latency, 1) {
			continue
		}
		sum += o.Latency + o.LoadVariance + o.NegTrust + o.Cost + o.Price
	}
	return sum
}
