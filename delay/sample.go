package delay

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	"time"
)

// uniform01 draws a cryptographically-strong uniform sample in (0,1), as
// required by spec §4.3 ("the generator MUST use a cryptographically-strong
// PRNG"). It never returns exactly 0 so that -ln(U) stays finite.
func uniform01() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is
		// broken, which is not a condition this package can recover
		// from; a zero-value fallback would silently cheapen the
		// property spec §4.3 requires.
		panic("delay: crypto/rand unavailable: " + err.Error())
	}

	// Use the top 53 bits so the result is exactly representable as a
	// float64 mantissa, then rescale to the open interval (0,1).
	n := binary.BigEndian.Uint64(buf[:]) >> 11
	u := float64(n) / float64(1<<53)
	if u <= 0 {
		u = math.SmallestNonzeroFloat64
	}
	return u
}

// clamp restricts d to [min, max].
func clamp(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}

// computeDelay implements the §4.3 delay formula:
//
//	λ_eff = (1 / mean_delay) × (1 − 0.5·load_factor)
//	d0    = -ln(U) / λ_eff
//	d1    = clamp(d0, min_delay, max_delay)
//	d2    = d1 × circuit_multiplier
//	d3    = d2 × (1 + (2·V − 1)·jitter_fraction)
//
// loadFactor is expected in [0,1]; circuitMultiplier in [0.1,10].
func computeDelay(cfg PoissonConfig, loadFactor, circuitMultiplier float64) time.Duration {
	lambdaEff := (1.0 / cfg.MeanDelay.Seconds()) * (1 - 0.5*loadFactor)
	if lambdaEff <= 0 {
		lambdaEff = 1.0 / cfg.MeanDelay.Seconds()
	}

	u := uniform01()
	d0 := -math.Log(u) / lambdaEff

	d1 := clamp(time.Duration(d0*float64(time.Second)), cfg.MinDelay, cfg.MaxDelay)

	d2 := time.Duration(float64(d1) * circuitMultiplier)

	v := uniform01()
	jitterScale := 1 + (2*v-1)*cfg.JitterFraction
	d3 := time.Duration(float64(d2) * jitterScale)

	if d3 < 0 {
		d3 = 0
	}
	return d3
}
