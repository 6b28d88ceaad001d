package config

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/fogcompute/platform/delay"
	"github.com/fogcompute/platform/fogcoord"
	"github.com/fogcompute/platform/lottery"
	"github.com/fogcompute/platform/mixnode"
	"github.com/fogcompute/platform/orchestrator"
	"github.com/fogcompute/platform/placement"
	"github.com/fogcompute/platform/sphinx"
)

// DelayPoissonConfig converts the Poisson bound options into delay's typed
// config (§4.3).
func (c *Config) DelayPoissonConfig() delay.PoissonConfig {
	return delay.PoissonConfig{
		MeanDelay:      c.MeanDelay.Duration(),
		MinDelay:       c.MinDelay.Duration(),
		MaxDelay:       c.MaxDelay.Duration(),
		JitterFraction: c.JitterFraction,
	}
}

// DelayCoverConfig converts the cover-traffic options into delay's typed
// config.
func (c *Config) DelayCoverConfig() delay.CoverConfig {
	var mode delay.CoverMode
	switch c.CoverMode {
	case CoverModeConstantRate:
		mode = delay.CoverConstantRate
	case CoverModeAdaptive:
		mode = delay.CoverAdaptive
	case CoverModeBurst:
		mode = delay.CoverBurst
	default:
		mode = delay.CoverOff
	}
	return delay.CoverConfig{
		Mode:   mode,
		RateHz: c.CoverRate,
	}
}

// BatchTimeout returns the egress batching timeout as a time.Duration.
func (c *Config) BatchTimeout() time.Duration {
	return time.Duration(c.BatchTimeoutMS) * time.Millisecond
}

// ReplayWindow returns the Sphinx replay cache eviction window.
func (c *Config) ReplayWindow() time.Duration {
	return time.Duration(c.ReplayWindowSeconds) * time.Second
}

// PlacementConfig converts the `placement.*` options into placement's typed
// config, carrying over every field DefaultConfig doesn't expose via YAML
// (TournamentSize, CrossoverRate, MutationRate, ConvergenceWindow keep their
// package defaults, since §6 only names population/max_generations/
// fallback_strategy as recognized options).
func (c *Config) PlacementConfig() placement.Config {
	cfg := placement.DefaultConfig()
	cfg.Population = c.Placement.Population
	cfg.MaxGenerations = c.Placement.MaxGenerations
	cfg.FallbackStrategy = placement.FallbackStrategy(c.Placement.FallbackStrategy)
	return cfg
}

// FogCoordConfig converts the heartbeat and placement options into
// fogcoord's typed config.
func (c *Config) FogCoordConfig() fogcoord.Config {
	cfg := fogcoord.DefaultConfig()
	cfg.HeartbeatInterval = c.HeartbeatInterval.Duration()
	cfg.HeartbeatTimeout = c.HeartbeatTimeout.Duration()
	cfg.Placement = c.PlacementConfig()
	return cfg
}

// OrchestratorConfig converts the `service.*` options into orchestrator's
// typed config.
func (c *Config) OrchestratorConfig() orchestrator.Config {
	cfg := orchestrator.DefaultConfig()
	cfg.MaxRestartAttempts = c.Service.MaxRestartAttempts
	cfg.BackoffBase = c.Service.BackoffBase
	cfg.ShutdownTimeout = c.Service.ShutdownTimeout.Duration()
	cfg.HealthInterval = c.Service.HealthInterval.Duration()
	return cfg
}

// SeedRelays registers every statically-configured relay (§6 `relays`) into
// the Reputation Store (at the base score, per spec §3), the Relay
// Registry, and the Sphinx Directory, so a freshly started mixnode has a
// usable peer set for both real routing and lottery-drawn cover traffic
// without any peer-discovery protocol (out of scope per spec §1).
// Validate must have already confirmed every NodeID/PubKey decodes cleanly;
// SeedRelays re-reports a decode failure as an error rather than panicking
// so a caller that skipped Validate still fails safely.
func (c *Config) SeedRelays(
	store *lottery.Store,
	registry *mixnode.RelayRegistry,
	directory *mixnode.Directory,
	now time.Time,
) error {

	for _, peer := range c.Relays {
		idBytes, err := hex.DecodeString(peer.NodeID)
		if err != nil || len(idBytes) != 16 {
			return fmt.Errorf("relay %q: invalid node_id: %w", peer.Address, err)
		}
		var nodeID sphinx.NodeID
		copy(nodeID[:], idBytes)

		keyBytes, err := hex.DecodeString(peer.PubKey)
		if err != nil {
			return fmt.Errorf("relay %q: invalid pub_key: %w", peer.Address, err)
		}
		pubKey, err := btcec.ParsePubKey(keyBytes)
		if err != nil {
			return fmt.Errorf("relay %q: parsing pub_key: %w", peer.Address, err)
		}

		store.Register(lottery.NewNodeReputation(peer.Address, peer.Stake, now))
		registry.Register(mixnode.RelayInfo{
			NodeID:  nodeID,
			PubKey:  pubKey,
			Address: peer.Address,
		})
		directory.Register(nodeID, peer.Address)
	}
	return nil
}
