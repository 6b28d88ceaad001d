package delay

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"
)

// Transmitter delivers a released packet onto the carrier. Implementations
// are provided by the mixnode pipeline (spec §4.5).
type Transmitter interface {
	Transmit(dest string, packet []byte) error
}

const (
	minCircuitMultiplier = 0.1
	maxCircuitMultiplier = 10.0
)

// Scheduler holds packets for a computed delay before releasing them to a
// Transmitter (spec §4.3). Producers call Enqueue concurrently; a single
// releaser goroutine drains the queue in release-time order.
type Scheduler struct {
	cfg         PoissonConfig
	transmitter Transmitter

	mu                 sync.Mutex
	queue              pendingQueue
	circuitMultipliers map[uint64]float64
	loadFactor         float64

	// seqCounter assigns each enqueued packet a monotonic ingress-order
	// number, used by pendingQueue.Less to break ReleaseTime ties
	// (mirrors mixnode/cover_factory.go's circuitCounter pattern).
	seqCounter uint64

	wake chan struct{}
	quit chan struct{}
	wg   sync.WaitGroup
}

// NewScheduler constructs a Scheduler. Start must be called to begin
// releasing packets.
func NewScheduler(cfg PoissonConfig, transmitter Transmitter) *Scheduler {
	return &Scheduler{
		cfg:                cfg,
		transmitter:        transmitter,
		circuitMultipliers: make(map[uint64]float64),
		wake:               make(chan struct{}, 1),
		quit:               make(chan struct{}),
	}
}

// SetLoadFactor updates the load factor used in the λ_eff computation. It is
// safe to call concurrently with Enqueue.
func (s *Scheduler) SetLoadFactor(lf float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadFactor = lf
}

// SetCircuitMultiplier overrides the delay multiplier for a circuit. m is
// clamped to [0.1, 10] per spec §4.3.
func (s *Scheduler) SetCircuitMultiplier(circuitID uint64, m float64) {
	if m < minCircuitMultiplier {
		m = minCircuitMultiplier
	}
	if m > maxCircuitMultiplier {
		m = maxCircuitMultiplier
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.circuitMultipliers[circuitID] = m
}

func (s *Scheduler) circuitMultiplier(circuitID uint64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.circuitMultipliers[circuitID]; ok {
		return m
	}
	return 1.0
}

// Enqueue computes a release time for packet and adds it to the priority
// queue. dest is the address the releaser should transmit to.
func (s *Scheduler) Enqueue(packet []byte, circuitID uint64, dest string) {
	s.mu.Lock()
	loadFactor := s.loadFactor
	s.mu.Unlock()

	d := computeDelay(s.cfg, loadFactor, s.circuitMultiplier(circuitID))
	s.enqueueAt(packet, circuitID, dest, time.Now().Add(d))
}

func (s *Scheduler) enqueueAt(packet []byte, circuitID uint64, dest string, releaseTime time.Time) {
	pp := &PendingPacket{
		Packet:      packet,
		CircuitID:   circuitID,
		Dest:        dest,
		ReleaseTime: releaseTime,
		seq:         atomic.AddUint64(&s.seqCounter, 1),
	}

	s.mu.Lock()
	heap.Push(&s.queue, pp)
	headChanged := s.queue[0] == pp
	s.mu.Unlock()

	if headChanged {
		s.signalWake()
	}
}

func (s *Scheduler) signalWake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Start launches the releaser goroutine.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.releaseLoop()
}

// Stop flushes all pending packets immediately and stops the releaser.
// Matches spec §4.3: "the whole scheduler can be drained (flush-all-now) on
// shutdown".
func (s *Scheduler) Stop() {
	s.Flush()
	close(s.quit)
	s.wg.Wait()
}

// Flush releases every pending packet immediately, bypassing their computed
// release_time.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	var due []*PendingPacket
	for s.queue.Len() > 0 {
		due = append(due, heap.Pop(&s.queue).(*PendingPacket))
	}
	s.mu.Unlock()

	for _, pp := range due {
		s.transmit(pp)
	}
}

func (s *Scheduler) releaseLoop() {
	defer s.wg.Done()

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	timerActive := false

	for {
		s.mu.Lock()
		var nextDeadline time.Time
		hasNext := s.queue.Len() > 0
		if hasNext {
			nextDeadline = s.queue[0].ReleaseTime
		}
		s.mu.Unlock()

		if timerActive && !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timerActive = false

		if hasNext {
			d := time.Until(nextDeadline)
			if d < 0 {
				d = 0
			}
			timer.Reset(d)
			timerActive = true
		}

		select {
		case <-s.quit:
			return

		case <-s.wake:
			continue

		case <-timer.C:
			timerActive = false
			s.releaseDue()
		}
	}
}

// releaseDue pops and transmits every packet whose release_time has
// arrived.
func (s *Scheduler) releaseDue() {
	now := time.Now()

	for {
		s.mu.Lock()
		if s.queue.Len() == 0 || s.queue[0].ReleaseTime.After(now) {
			s.mu.Unlock()
			return
		}
		pp := heap.Pop(&s.queue).(*PendingPacket)
		s.mu.Unlock()

		s.transmit(pp)
	}
}

func (s *Scheduler) transmit(pp *PendingPacket) {
	packetsReleased.Inc()

	if err := s.transmitter.Transmit(pp.Dest, pp.Packet); err != nil {
		transmitErrors.Inc()
		log.Warnf("delay: transmit to %s failed: %v", pp.Dest, err)
	}
}
