// Package config loads the fog-compute platform's single YAML config file
// into typed structs, pre-populated with the defaults named in spec §6, and
// converts them into the typed Config values each subsystem package expects.
package config

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fogcompute/platform/fogerr"
)

// Config is the root of the single recognized-options document (§6).
type Config struct {
	// Poisson delay bounds (§4.3).
	MeanDelay      Duration `yaml:"mean_delay"`
	MinDelay       Duration `yaml:"min_delay"`
	MaxDelay       Duration `yaml:"max_delay"`
	JitterFraction float64  `yaml:"jitter_fraction"`

	// Cover traffic policy (§4.3).
	CoverMode CoverModeName `yaml:"cover_mode"`
	CoverRate float64       `yaml:"cover_rate"`

	// Egress batching (§4.5).
	BatchSize     int `yaml:"batch_size"`
	BatchTimeoutMS int `yaml:"batch_timeout_ms"`

	// Sphinx protocol constants (§4.1, §4.2). MaxHops mirrors the
	// sphinx.MaxHops compile-time constant for documentation purposes; the
	// protocol constant itself is never runtime-configurable, so a value
	// here that disagrees with sphinx.MaxHops is a validation error rather
	// than an override.
	MaxHops             int `yaml:"max_hops"`
	ReplayWindowSeconds int `yaml:"replay_window_seconds"`

	// Lottery eligibility (§4.4). Relays is the static, out-of-band-
	// configured peer set a mixnode seeds its Reputation Store, Relay
	// Registry, and Sphinx Directory from at startup (spec §1 non-goal:
	// "the mixnet itself does not define how peers discover one
	// another" — this is the simplest such out-of-band mechanism).
	ReputationFloor int              `yaml:"reputation_floor"`
	Relays          []RelayPeerConfig `yaml:"relays"`

	Placement PlacementOptions `yaml:"placement"`

	// Fog Coordinator heartbeats (§4.7).
	HeartbeatInterval Duration `yaml:"heartbeat_interval"`
	HeartbeatTimeout  Duration `yaml:"heartbeat_timeout"`

	Service ServiceOptions `yaml:"service"`
}

// CoverModeName is the YAML-facing string form of delay.CoverMode.
type CoverModeName string

const (
	CoverModeConstantRate CoverModeName = "ConstantRate"
	CoverModeAdaptive     CoverModeName = "Adaptive"
	CoverModeBurst        CoverModeName = "Burst"
	CoverModeOff          CoverModeName = "Off"
)

// RelayPeerConfig describes one statically-known relay: its Sphinx routing
// identity plus its initial stake for the Relay Lottery's cost-of-forgery
// weighting (spec §3, §4.4).
type RelayPeerConfig struct {
	Address string `yaml:"address"`
	NodeID  string `yaml:"node_id"` // hex-encoded sphinx.NodeID (16 bytes)
	PubKey  string `yaml:"pub_key"` // hex-encoded secp256k1 public key
	Stake   uint64 `yaml:"stake"`
}

// PlacementOptions mirrors the `placement.*` recognized options (§6).
type PlacementOptions struct {
	Population       int    `yaml:"population"`
	MaxGenerations   int    `yaml:"max_generations"`
	FallbackStrategy string `yaml:"fallback_strategy"`
}

// ServiceOptions mirrors the `service.*` recognized options (§6).
type ServiceOptions struct {
	MaxRestartAttempts int      `yaml:"max_restart_attempts"`
	BackoffBase        float64  `yaml:"backoff_base"`
	ShutdownTimeout    Duration `yaml:"shutdown_timeout"`
	HealthInterval     Duration `yaml:"health_interval"`
}

// Defaults returns the config populated with every default named in §6.
func Defaults() Config {
	return Config{
		MeanDelay:      Duration(200_000_000),  // 200ms
		MinDelay:       Duration(10_000_000),   // 10ms
		MaxDelay:       Duration(2_000_000_000), // 2s
		JitterFraction: 0.1,

		CoverMode: CoverModeOff,
		CoverRate: 10,

		BatchSize:      128,
		BatchTimeoutMS: 10,

		MaxHops:             5,
		ReplayWindowSeconds: 3600,

		ReputationFloor: 0,

		Placement: PlacementOptions{
			Population:       64,
			MaxGenerations:   100,
			FallbackStrategy: "RoundRobin",
		},

		HeartbeatInterval: Duration(60_000_000_000),  // 60s
		HeartbeatTimeout:  Duration(180_000_000_000), // 180s

		Service: ServiceOptions{
			MaxRestartAttempts: 3,
			BackoffBase:        2.0,
			ShutdownTimeout:    Duration(30_000_000_000), // 30s
			HealthInterval:     Duration(30_000_000_000), // 30s
		},
	}
}

// Load reads and parses path, merging file values over Defaults(). A
// missing, unreadable, or malformed config file is treated as the §7
// "persistence corruption on load" fatal case: the caller should refuse to
// start rather than run with a silently-partial config.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fogerr.New(fogerr.KindPersistenceCorrupt,
			"reading config %q: %v", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fogerr.New(fogerr.KindPersistenceCorrupt,
			"parsing config %q: %v", path, err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every recognized option's stated range (§6) and returns a
// single error describing all violations found.
func Validate(cfg *Config) error {
	var errs []string
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if cfg.MinDelay.Duration() > cfg.MaxDelay.Duration() {
		add("min_delay (%s) must not exceed max_delay (%s)",
			cfg.MinDelay.Duration(), cfg.MaxDelay.Duration())
	}
	if cfg.JitterFraction < 0 || cfg.JitterFraction > 0.5 {
		add("jitter_fraction must be in [0, 0.5], got %v", cfg.JitterFraction)
	}
	switch cfg.CoverMode {
	case CoverModeConstantRate, CoverModeAdaptive, CoverModeBurst, CoverModeOff:
	default:
		add("cover_mode %q is not one of ConstantRate|Adaptive|Burst|Off", cfg.CoverMode)
	}
	if cfg.CoverMode == CoverModeConstantRate && cfg.CoverRate <= 0 {
		add("cover_rate must be > 0 when cover_mode is ConstantRate")
	}
	if cfg.BatchSize < 1 {
		add("batch_size must be >= 1, got %d", cfg.BatchSize)
	}
	if cfg.BatchTimeoutMS < 1 {
		add("batch_timeout_ms must be >= 1, got %d", cfg.BatchTimeoutMS)
	}
	if cfg.MaxHops != 5 {
		add("max_hops is a Sphinx protocol constant fixed at 5, got %d", cfg.MaxHops)
	}
	if cfg.ReplayWindowSeconds < 1 {
		add("replay_window_seconds must be >= 1, got %d", cfg.ReplayWindowSeconds)
	}
	if cfg.ReputationFloor < 0 || cfg.ReputationFloor > 200 {
		add("reputation_floor must be in [0, 200], got %d", cfg.ReputationFloor)
	}
	if cfg.Placement.Population < 1 {
		add("placement.population must be >= 1, got %d", cfg.Placement.Population)
	}
	if cfg.Placement.MaxGenerations < 1 {
		add("placement.max_generations must be >= 1, got %d", cfg.Placement.MaxGenerations)
	}
	switch cfg.Placement.FallbackStrategy {
	case "LatencyFirst", "LoadBalance", "TrustFirst", "CostOptimize", "RoundRobin":
	default:
		add("placement.fallback_strategy %q is not a recognized strategy", cfg.Placement.FallbackStrategy)
	}
	if cfg.HeartbeatTimeout.Duration() <= cfg.HeartbeatInterval.Duration() {
		add("heartbeat_timeout (%s) must exceed heartbeat_interval (%s)",
			cfg.HeartbeatTimeout.Duration(), cfg.HeartbeatInterval.Duration())
	}
	if cfg.Service.MaxRestartAttempts < 0 {
		add("service.max_restart_attempts must be >= 0, got %d", cfg.Service.MaxRestartAttempts)
	}
	if cfg.Service.BackoffBase <= 1.0 {
		add("service.backoff_base must be > 1.0, got %v", cfg.Service.BackoffBase)
	}
	if cfg.Service.ShutdownTimeout.Duration() <= 0 {
		add("service.shutdown_timeout must be > 0")
	}
	if cfg.Service.HealthInterval.Duration() <= 0 {
		add("service.health_interval must be > 0")
	}
	for i, peer := range cfg.Relays {
		if peer.Address == "" {
			add("relays[%d].address must not be empty", i)
		}
		if id, err := hex.DecodeString(peer.NodeID); err != nil || len(id) != 16 {
			add("relays[%d].node_id must be 16 bytes of hex, got %q", i, peer.NodeID)
		}
		if key, err := hex.DecodeString(peer.PubKey); err != nil || (len(key) != 33 && len(key) != 65) {
			add("relays[%d].pub_key must be a 33- or 65-byte hex-encoded secp256k1 key, got %q", i, peer.PubKey)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	msg := errs[0]
	for _, e := range errs[1:] {
		msg += "; " + e
	}
	return fogerr.New(fogerr.KindPersistenceCorrupt, "config validation: %s", msg)
}
