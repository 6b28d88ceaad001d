// Command mixnoded runs one mixnode hop: the Sphinx replay cache, the Delay
// Scheduler (with optional cover traffic), and the ingress/egress pipeline
// of spec §4.5, supervised by the Service Orchestrator (§4.8).
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fogcompute/platform/config"
	"github.com/fogcompute/platform/delay"
	"github.com/fogcompute/platform/logctx"
	"github.com/fogcompute/platform/lottery"
	"github.com/fogcompute/platform/mixnode"
	"github.com/fogcompute/platform/orchestrator"
	"github.com/fogcompute/platform/sphinx"
)

// reputationDecayInterval is how often the Reputation Store's background
// DecayScheduler sweeps every relay (spec §4.4's decay-per-day model);
// not a recognized §6 option, so it is fixed rather than configurable.
const reputationDecayInterval = 24 * time.Hour

type options struct {
	ConfigPath string `short:"c" long:"config" description:"path to mixnoded's YAML config file" default:"/etc/fogcompute/mixnoded.yaml"`
	ListenAddr string `short:"l" long:"listen" description:"carrier listen address" default:"0.0.0.0:9736"`
	MetricsAddr string `long:"metrics" description:"Prometheus metrics listen address" default:"127.0.0.1:9737"`
	Workers    int    `long:"workers" description:"number of frame-processing workers" default:"4"`
	LogLevel   string `long:"loglevel" description:"btclog level for every subsystem (trace|debug|info|warn|error|critical|off)" default:"info"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mixnoded:", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		return err
	}

	backend := logctx.NewStdoutBackend()
	logctx.InitLoggers(backend, logctx.ParseLevel(opts.LogLevel))
	logger := backend.Logger("MXND", logctx.ParseLevel(opts.LogLevel))

	cfg := config.Defaults()
	if _, err := os.Stat(opts.ConfigPath); err == nil {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = *loaded
	}

	privKey, err := sphinx.GeneratePrivateKey()
	if err != nil {
		return fmt.Errorf("generating node key: %w", err)
	}

	cache := sphinx.NewReplayCache(cfg.ReplayWindow())
	directory := mixnode.NewDirectory()

	// Reputation Store, Relay Registry, and Relay Lottery are process-wide
	// singletons of this mixnode (spec §7: "Reputation store is a single
	// process-scope instance"), seeded from the statically-configured peer
	// set — peer discovery itself is out of scope (spec §1) — so both real
	// routing (via directory) and lottery-drawn cover traffic (via the
	// registry) have a usable peer set from startup.
	repStore := lottery.NewStore()
	relays := mixnode.NewRelayRegistry()
	vrfKey, err := lottery.GenerateVRFKeyPair()
	if err != nil {
		return fmt.Errorf("generating lottery VRF key: %w", err)
	}
	if err := cfg.SeedRelays(repStore, relays, directory, time.Now()); err != nil {
		return fmt.Errorf("seeding relays: %w", err)
	}
	mixLottery := lottery.NewLottery(repStore, vrfKey, cfg.ReputationFloor)
	decay := lottery.NewDecayScheduler(repStore, reputationDecayInterval)

	dialer := mixnode.DialerFunc(func(dest string) (net.Conn, error) {
		return net.Dial("tcp", dest)
	})
	egress := mixnode.NewBatchingEgress(dialer, cfg.BatchSize, cfg.BatchTimeout())
	scheduler := delay.NewScheduler(cfg.DelayPoissonConfig(), egress)
	node := mixnode.NewNode(privKey.D, cache, scheduler, directory, nil)

	ingress := mixnode.NewIngress(cfg.BatchSize * 4)

	var cover *delay.CoverGenerator
	if cfg.DelayCoverConfig().Mode != delay.CoverOff {
		factory := mixnode.NewCoverPacketFactory(mixLottery, relays, cfg.MaxHops)
		cover = delay.NewCoverGenerator(cfg.DelayCoverConfig(), scheduler, factory.Make)
	}

	pipeline := mixnode.NewPipeline(ingress, node, egress, scheduler, cover, opts.Workers)

	orch := orchestrator.NewOrchestrator(cfg.OrchestratorConfig())
	listener, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %q: %w", opts.ListenAddr, err)
	}

	err = orch.RegisterService(orchestrator.ServiceDescriptor{
		Name:       "mixnode-pipeline",
		IsCritical: true,
		StartFn: func(context.Context) error {
			pipeline.ListenAndServe(listener)
			return nil
		},
		StopFn: func(context.Context) error {
			pipeline.Stop()
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("registering mixnode-pipeline service: %w", err)
	}

	err = orch.RegisterService(orchestrator.ServiceDescriptor{
		Name:       "reputation-decay",
		IsCritical: false,
		StartFn: func(context.Context) error {
			decay.Start()
			return nil
		},
		StopFn: func(context.Context) error {
			decay.Stop()
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("registering reputation-decay service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := orch.Start(ctx); err != nil {
		return fmt.Errorf("starting services: %w", err)
	}

	metricsSrv := &http.Server{Addr: opts.MetricsAddr, Handler: promhttp.Handler()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("metrics server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	orch.Stop(ctx)
	_ = metricsSrv.Close()
	return nil
}
