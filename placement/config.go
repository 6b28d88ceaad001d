package placement

// FallbackStrategy names a heuristic ranking policy used when NSGA-II
// produces no feasible candidate within the generation budget (§4.6, §6).
type FallbackStrategy string

const (
	LatencyFirst FallbackStrategy = "LatencyFirst"
	LoadBalance  FallbackStrategy = "LoadBalance"
	TrustFirst   FallbackStrategy = "TrustFirst"
	CostOptimize FallbackStrategy = "CostOptimize"
	RoundRobin   FallbackStrategy = "RoundRobin"
)

// Config holds the NSGA-II run parameters, all independently overridable via
// the `placement.*` config options (§6).
type Config struct {
	Population       int
	MaxGenerations   int
	TournamentSize   int
	CrossoverRate    float64
	MutationRate     float64
	FallbackStrategy FallbackStrategy

	// ConvergenceWindow generations of an unchanged best hypervolume proxy
	// ends the run early (§4.6 "OR convergence"). 0 disables early stop.
	ConvergenceWindow int
}

// DefaultConfig matches the spec's stated defaults (§4.6, §6).
func DefaultConfig() Config {
	return Config{
		Population:       64,
		MaxGenerations:    100,
		TournamentSize:    3,
		CrossoverRate:     0.8,
		MutationRate:      0.1,
		FallbackStrategy:  RoundRobin,
		ConvergenceWindow: 10,
	}
}
