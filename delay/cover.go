package delay

import (
	"context"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/ticker"
	"golang.org/x/time/rate"
)

// PacketFactory produces one fresh cover packet on demand. The mixnode
// pipeline supplies this so that cover packets are real Sphinx-wrapped
// packets indistinguishable from traffic on the wire (spec §4.3: "Cover
// packets traverse the same wrap/release path as real packets").
type PacketFactory func() (packet []byte, circuitID uint64, dest string)

// CoverGenerator emits dummy packets into a Scheduler according to a
// CoverConfig (spec §4.3).
type CoverGenerator struct {
	cfg       CoverConfig
	scheduler *Scheduler
	factory   PacketFactory

	quit chan struct{}
	wg   sync.WaitGroup

	mu          sync.Mutex
	haveSample  bool
	emaInterval time.Duration
}

// NewCoverGenerator constructs a generator. Start must be called to begin
// emitting, unless cfg.Mode is CoverOff.
func NewCoverGenerator(cfg CoverConfig, scheduler *Scheduler, factory PacketFactory) *CoverGenerator {
	return &CoverGenerator{
		cfg:       cfg,
		scheduler: scheduler,
		factory:   factory,
		quit:      make(chan struct{}),
	}
}

// ObserveRealPacket records the inter-arrival time of a real packet, used by
// CoverAdaptive to shape cover emission to match real traffic within the
// configured variance.
func (g *CoverGenerator) ObserveRealPacket(interval time.Duration) {
	const alpha = 0.1 // exponential moving average smoothing factor

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.haveSample {
		g.emaInterval = interval
		g.haveSample = true
		return
	}
	g.emaInterval = time.Duration(
		alpha*float64(interval) + (1-alpha)*float64(g.emaInterval))
}

func (g *CoverGenerator) targetInterval() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.haveSample && g.emaInterval > 0 {
		return g.emaInterval
	}
	return time.Second
}

// Start launches the cover traffic goroutine, unless disabled.
func (g *CoverGenerator) Start() {
	if g.cfg.Mode == CoverOff {
		return
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		switch g.cfg.Mode {
		case CoverConstantRate:
			g.runConstantRate()
		case CoverAdaptive:
			g.runAdaptive()
		case CoverBurst:
			g.runBurst()
		}
	}()
}

// Stop halts cover emission.
func (g *CoverGenerator) Stop() {
	close(g.quit)
	g.wg.Wait()
}

func (g *CoverGenerator) emit() {
	packet, circuitID, dest := g.factory()
	if len(packet) == 0 || dest == "" {
		// The factory could not build a path (e.g. too few eligible
		// relays); skip this tick rather than enqueuing garbage.
		return
	}
	g.scheduler.Enqueue(packet, circuitID, dest)
	coverPacketsEmitted.Inc()
}

func (g *CoverGenerator) runConstantRate() {
	if g.cfg.RateHz <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-g.quit
		cancel()
	}()

	limiter := rate.NewLimiter(rate.Limit(g.cfg.RateHz), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		g.emit()
	}
}

func (g *CoverGenerator) runAdaptive() {
	for {
		interval := g.targetInterval()
		jittered := jitterWithinVariance(interval, g.cfg.TargetVariance)

		select {
		case <-time.After(jittered):
			g.emit()
		case <-g.quit:
			return
		}
	}
}

func (g *CoverGenerator) runBurst() {
	if g.cfg.BurstInterval <= 0 {
		return
	}

	t := ticker.New(g.cfg.BurstInterval)
	t.Resume()
	defer t.Stop()

	for {
		select {
		case <-t.Ticks():
			for i := 0; i < g.cfg.BurstSize; i++ {
				g.emit()
			}
		case <-g.quit:
			return
		}
	}
}

// jitterWithinVariance returns d scaled by a uniform factor in
// [1-variance, 1+variance] (a variance of 0.2 gives a ±20% band).
func jitterWithinVariance(d time.Duration, variance float64) time.Duration {
	if variance <= 0 {
		return d
	}
	v := uniform01()
	scale := 1 + (2*v-1)*variance
	return time.Duration(float64(d) * scale)
}
