package placement

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func scoredCandidate(o ScoreVector) candidate {
	return candidate{feasible: true, objective: o}
}

func TestNonDominatedSortSeparatesFronts(t *testing.T) {
	pop := []candidate{
		scoredCandidate(ScoreVector{Latency: 1, LoadVariance: 1, NegTrust: 1, Cost: 1, Price: 1}), // dominates all below
		scoredCandidate(ScoreVector{Latency: 2, LoadVariance: 2, NegTrust: 2, Cost: 2, Price: 2}),
		scoredCandidate(ScoreVector{Latency: 3, LoadVariance: 3, NegTrust: 3, Cost: 3, Price: 3}),
	}

	fronts := nonDominatedSort(pop)
	require.Len(t, fronts, 3)
	require.Equal(t, []int{0}, fronts[0])
	require.Equal(t, []int{1}, fronts[1])
	require.Equal(t, []int{2}, fronts[2])
}

func TestNonDominatedSortKeepsMutuallyNonDominatedInSameFront(t *testing.T) {
	pop := []candidate{
		scoredCandidate(ScoreVector{Latency: 1, LoadVariance: 5, NegTrust: 1, Cost: 1, Price: 1}),
		scoredCandidate(ScoreVector{Latency: 5, LoadVariance: 1, NegTrust: 1, Cost: 1, Price: 1}),
	}

	fronts := nonDominatedSort(pop)
	require.Len(t, fronts, 1)
	require.ElementsMatch(t, []int{0, 1}, fronts[0])
}

func TestNonDominatedSortPushesInfeasibleToLastFront(t *testing.T) {
	pop := []candidate{
		scoredCandidate(ScoreVector{Latency: 1, LoadVariance: 1, NegTrust: 1, Cost: 1, Price: 1}),
		{feasible: false},
	}

	fronts := nonDominatedSort(pop)
	last := fronts[len(fronts)-1]
	require.Contains(t, last, 1)
}

func TestCrowdingDistanceBoundaryMembersAreInfinite(t *testing.T) {
	pop := []candidate{
		scoredCandidate(ScoreVector{Latency: 1, LoadVariance: 1, NegTrust: 1, Cost: 1, Price: 1}),
		scoredCandidate(ScoreVector{Latency: 2, LoadVariance: 2, NegTrust: 1, Cost: 1, Price: 1}),
		scoredCandidate(ScoreVector{Latency: 3, LoadVariance: 3, NegTrust: 1, Cost: 1, Price: 1}),
	}
	front := []int{0, 1, 2}

	dist := crowdingDistances(pop, front)
	require.True(t, dist[0] > 1e300)
	require.True(t, dist[2] > 1e300)
	require.Less(t, dist[1], dist[0])
}
