package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fogcompute/platform/fogerr"
	"github.com/fogcompute/platform/lottery"
	"github.com/fogcompute/platform/mixnode"
)

// testRelayPubKey is the secp256k1 generator point, a valid compressed
// public key usable wherever a test fixture needs one that parses cleanly.
const testRelayPubKey = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

// testRelayNodeID is 16 bytes of arbitrary hex, matching sphinx.NodeID's
// fixed length.
const testRelayNodeID = "00112233445566778899aabbccddeeff"

func TestDefaultsPassValidation(t *testing.T) {
	cfg := Defaults()
	if err := Validate(&cfg); err != nil {
		t.Fatalf("defaults must validate cleanly: %v", err)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := `
mean_delay: 500ms
jitter_fraction: 0.2
placement:
  population: 32
  fallback_strategy: LatencyFirst
service:
  max_restart_attempts: 5
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MeanDelay.Duration() != 500*time.Millisecond {
		t.Fatalf("expected overridden mean_delay, got %v", cfg.MeanDelay.Duration())
	}
	if cfg.JitterFraction != 0.2 {
		t.Fatalf("expected overridden jitter_fraction, got %v", cfg.JitterFraction)
	}
	if cfg.Placement.Population != 32 || cfg.Placement.FallbackStrategy != "LatencyFirst" {
		t.Fatalf("expected overridden placement options, got %+v", cfg.Placement)
	}
	if cfg.Service.MaxRestartAttempts != 5 {
		t.Fatalf("expected overridden service.max_restart_attempts, got %d", cfg.Service.MaxRestartAttempts)
	}
	// Untouched defaults must survive the merge.
	if cfg.BatchSize != 128 {
		t.Fatalf("expected default batch_size to survive merge, got %d", cfg.BatchSize)
	}
}

func TestLoadMissingFileIsPersistenceCorrupt(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if !fogerr.Of(err, fogerr.KindPersistenceCorrupt) {
		t.Fatalf("expected KindPersistenceCorrupt, got %v", err)
	}
}

func TestLoadMalformedYAMLIsPersistenceCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("not: [valid: yaml"), 0o600); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}

	_, err := Load(path)
	if !fogerr.Of(err, fogerr.KindPersistenceCorrupt) {
		t.Fatalf("expected KindPersistenceCorrupt, got %v", err)
	}
}

func TestValidateRejectsOutOfRangeJitter(t *testing.T) {
	cfg := Defaults()
	cfg.JitterFraction = 0.9
	if err := Validate(&cfg); err == nil {
		t.Fatal("expected validation error for jitter_fraction > 0.5")
	}
}

func TestValidateRejectsUnknownFallbackStrategy(t *testing.T) {
	cfg := Defaults()
	cfg.Placement.FallbackStrategy = "NotARealStrategy"
	if err := Validate(&cfg); err == nil {
		t.Fatal("expected validation error for unrecognized fallback_strategy")
	}
}

func TestValidateRejectsHeartbeatTimeoutNotExceedingInterval(t *testing.T) {
	cfg := Defaults()
	cfg.HeartbeatTimeout = cfg.HeartbeatInterval
	if err := Validate(&cfg); err == nil {
		t.Fatal("expected validation error when heartbeat_timeout does not exceed heartbeat_interval")
	}
}

func TestPlacementConfigConversionPreservesPackageDefaultsForUnexposedFields(t *testing.T) {
	cfg := Defaults()
	cfg.Placement.Population = 10
	pc := cfg.PlacementConfig()
	if pc.Population != 10 {
		t.Fatalf("expected overridden population, got %d", pc.Population)
	}
	if pc.TournamentSize == 0 {
		t.Fatal("expected package-default TournamentSize to survive conversion")
	}
}

func TestValidateAcceptsWellFormedRelay(t *testing.T) {
	cfg := Defaults()
	cfg.Relays = []RelayPeerConfig{{
		Address: "10.0.0.1:9736",
		NodeID:  testRelayNodeID,
		PubKey:  testRelayPubKey,
		Stake:   100,
	}}
	if err := Validate(&cfg); err != nil {
		t.Fatalf("expected well-formed relay to validate, got %v", err)
	}
}

func TestValidateRejectsRelayWithBadNodeID(t *testing.T) {
	cfg := Defaults()
	cfg.Relays = []RelayPeerConfig{{
		Address: "10.0.0.1:9736",
		NodeID:  "not-hex",
		PubKey:  testRelayPubKey,
		Stake:   100,
	}}
	if err := Validate(&cfg); err == nil {
		t.Fatal("expected validation error for malformed node_id")
	}
}

func TestValidateRejectsRelayWithBadPubKey(t *testing.T) {
	cfg := Defaults()
	cfg.Relays = []RelayPeerConfig{{
		Address: "10.0.0.1:9736",
		NodeID:  testRelayNodeID,
		PubKey:  "deadbeef",
		Stake:   100,
	}}
	if err := Validate(&cfg); err == nil {
		t.Fatal("expected validation error for malformed pub_key")
	}
}

func TestValidateRejectsRelayWithEmptyAddress(t *testing.T) {
	cfg := Defaults()
	cfg.Relays = []RelayPeerConfig{{
		Address: "",
		NodeID:  testRelayNodeID,
		PubKey:  testRelayPubKey,
		Stake:   100,
	}}
	if err := Validate(&cfg); err == nil {
		t.Fatal("expected validation error for empty relay address")
	}
}

func TestSeedRelaysPopulatesStoreRegistryAndDirectory(t *testing.T) {
	cfg := Defaults()
	cfg.Relays = []RelayPeerConfig{{
		Address: "10.0.0.1:9736",
		NodeID:  testRelayNodeID,
		PubKey:  testRelayPubKey,
		Stake:   250,
	}}
	if err := Validate(&cfg); err != nil {
		t.Fatalf("fixture must validate: %v", err)
	}

	store := lottery.NewStore()
	registry := mixnode.NewRelayRegistry()
	directory := mixnode.NewDirectory()

	if err := cfg.SeedRelays(store, registry, directory, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := registry.Lookup("10.0.0.1:9736"); !ok {
		t.Fatal("expected relay to be registered in the RelayRegistry")
	}
	if rep, ok := store.Get("10.0.0.1:9736", time.Now()); !ok || rep.Stake != 250 {
		t.Fatalf("expected relay registered in the reputation store with stake 250, got %+v (ok=%v)", rep, ok)
	}
}

func TestSeedRelaysRejectsBadNodeIDAtCallTime(t *testing.T) {
	cfg := Defaults()
	cfg.Relays = []RelayPeerConfig{{
		Address: "10.0.0.1:9736",
		NodeID:  "bad",
		PubKey:  testRelayPubKey,
		Stake:   1,
	}}

	store := lottery.NewStore()
	registry := mixnode.NewRelayRegistry()
	directory := mixnode.NewDirectory()

	if err := cfg.SeedRelays(store, registry, directory, time.Now()); err == nil {
		t.Fatal("expected error for malformed node_id even without a prior Validate call")
	}
}
