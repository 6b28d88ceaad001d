// Command fogcoordd runs the Fog Coordinator (§4.7): the node registry,
// heartbeat reaper, and batch placement dispatcher (under the default
// LeastLoaded routing, placement uses the LoadBalance heuristic rather than
// NSGA-II), exposed over
// httpapi's JSON-over-HTTP control surface and supervised by the Service
// Orchestrator (§4.8).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/fogcompute/platform/config"
	"github.com/fogcompute/platform/fogcoord"
	"github.com/fogcompute/platform/httpapi"
	"github.com/fogcompute/platform/logctx"
	"github.com/fogcompute/platform/orchestrator"
)

type options struct {
	ConfigPath string `short:"c" long:"config" description:"path to fogcoordd's YAML config file" default:"/etc/fogcompute/fogcoordd.yaml"`
	ListenAddr string `short:"l" long:"listen" description:"httpapi control-surface listen address" default:"127.0.0.1:9738"`
	Seed       int64  `long:"seed" description:"placement engine PRNG seed" default:"0"`
	LogLevel   string `long:"loglevel" description:"btclog level for every subsystem (trace|debug|info|warn|error|critical|off)" default:"info"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fogcoordd:", err)
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
	logger := backend.Logger("FGCD", logctx.ParseLevel(opts.LogLevel))

	cfg := config.Defaults()
	if _, err := os.Stat(opts.ConfigPath); err == nil {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = *loaded
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	coord := fogcoord.NewCoordinator(cfg.FogCoordConfig(), seed)

	orch := orchestrator.NewOrchestrator(cfg.OrchestratorConfig())
	err := orch.RegisterService(orchestrator.ServiceDescriptor{
		Name:       "fog-coordinator",
		IsCritical: true,
		StartFn: func(context.Context) error {
			coord.Start()
			return nil
		},
		StopFn: func(context.Context) error {
			coord.Stop()
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("registering fog-coordinator service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := orch.Start(ctx); err != nil {
		return fmt.Errorf("starting services: %w", err)
	}

	apiSrv := &http.Server{Addr: opts.ListenAddr, Handler: httpapi.NewServer(orch, coord)}
	go func() {
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("control-surface server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	orch.Stop(ctx)
	_ = apiSrv.Close()
	return nil
}
