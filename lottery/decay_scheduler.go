package lottery

import (
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/ticker"
)

// DecayScheduler periodically calls Store.DecayAll in the background, so
// reputation scores stay current even for relays that are not read between
// lottery draws (spec §4.4 mentions decay may be applied "on an explicit
// DecayAll"; this is the background driver for that call, following the
// same ticker-driven goroutine shape as healthcheck.Observation.monitor).
type DecayScheduler struct {
	store  *Store
	ticker ticker.Ticker

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewDecayScheduler creates a scheduler that calls store.DecayAll every
// interval once Start is called.
func NewDecayScheduler(store *Store, interval time.Duration) *DecayScheduler {
	return &DecayScheduler{
		store:  store,
		ticker: ticker.New(interval),
		quit:   make(chan struct{}),
	}
}

// Start launches the background decay goroutine.
func (d *DecayScheduler) Start() {
	d.ticker.Resume()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.ticker.Stop()

		for {
			select {
			case <-d.ticker.Ticks():
				d.store.DecayAll(time.Now())

			case <-d.quit:
				return
			}
		}
	}()
}

// Stop halts the background decay goroutine.
func (d *DecayScheduler) Stop() {
	close(d.quit)
	d.wg.Wait()
}
