package delay

import "time"

// PoissonConfig parameterizes the per-packet delay computation (spec §4.3).
type PoissonConfig struct {
	// MeanDelay is the target mean holding delay at zero load.
	MeanDelay time.Duration

	// MinDelay and MaxDelay clamp the raw exponential sample so a heavy
	// tail draw cannot stall a circuit indefinitely.
	MinDelay time.Duration
	MaxDelay time.Duration

	// JitterFraction is applied as a symmetric multiplicative jitter
	// around the clamped, circuit-scaled delay, in [0,1).
	JitterFraction float64
}

// DefaultPoissonConfig returns the package defaults used when a daemon does
// not override them in its config file.
func DefaultPoissonConfig() PoissonConfig {
	return PoissonConfig{
		MeanDelay:      200 * time.Millisecond,
		MinDelay:       10 * time.Millisecond,
		MaxDelay:       2 * time.Second,
		JitterFraction: 0.1,
	}
}

// CoverMode selects the cover traffic generation strategy.
type CoverMode int

const (
	// CoverOff disables cover traffic generation entirely.
	CoverOff CoverMode = iota

	// CoverConstantRate emits dummy packets at a fixed target rate.
	CoverConstantRate

	// CoverAdaptive shapes cover traffic to track a moving average of
	// real-packet inter-arrival times.
	CoverAdaptive

	// CoverBurst emits short bursts to mask message-end boundaries. Off
	// by default per spec §4.3.
	CoverBurst
)

// CoverConfig parameterizes the cover traffic generator.
type CoverConfig struct {
	Mode CoverMode

	// RateHz is the target emission rate for CoverConstantRate.
	RateHz float64

	// TargetVariance bounds how far CoverAdaptive's shaped rate may
	// drift from the tracked real-traffic distribution.
	TargetVariance float64

	// BurstSize and BurstInterval parameterize CoverBurst.
	BurstSize     int
	BurstInterval time.Duration
}
