package delay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUniform01Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		u := uniform01()
		require.Greater(t, u, 0.0)
		require.Less(t, u, 1.0)
	}
}

func TestComputeDelayRespectsClamp(t *testing.T) {
	cfg := PoissonConfig{
		MeanDelay:      10 * time.Millisecond,
		MinDelay:       50 * time.Millisecond,
		MaxDelay:       60 * time.Millisecond,
		JitterFraction: 0, // isolate the clamp from jitter for this check
	}

	for i := 0; i < 200; i++ {
		d := computeDelay(cfg, 0, 1.0)
		require.GreaterOrEqual(t, d, cfg.MinDelay)
		// circuit_multiplier is 1.0 here and jitter is disabled, so the
		// clamped value should not exceed MaxDelay.
		require.LessOrEqual(t, d, cfg.MaxDelay)
	}
}

func TestComputeDelayCircuitMultiplierScales(t *testing.T) {
	cfg := PoissonConfig{
		MeanDelay:      100 * time.Millisecond,
		MinDelay:       100 * time.Millisecond,
		MaxDelay:       100 * time.Millisecond,
		JitterFraction: 0,
	}

	// With Min == Max, d1 is pinned, so d2 = d1 * multiplier exactly.
	base := computeDelay(cfg, 0, 1.0)
	scaled := computeDelay(cfg, 0, 2.0)

	require.Equal(t, base*2, scaled)
}

func TestComputeDelayHigherLoadShortensExpectedDelay(t *testing.T) {
	cfg := PoissonConfig{
		MeanDelay:      50 * time.Millisecond,
		MinDelay:       0,
		MaxDelay:       time.Hour,
		JitterFraction: 0,
	}

	var lowLoadTotal, highLoadTotal time.Duration
	const n = 2000
	for i := 0; i < n; i++ {
		lowLoadTotal += computeDelay(cfg, 0, 1.0)
		highLoadTotal += computeDelay(cfg, 0.9, 1.0)
	}

	// Higher load increases λ_eff, which shortens the expected delay.
	require.Less(t, highLoadTotal, lowLoadTotal)
}
