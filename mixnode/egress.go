package mixnode

import (
	"bytes"
	"net"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/queue"
)

// Dialer opens a carrier connection to a destination address. Kept as an
// interface so tests can substitute an in-memory carrier (spec §1
// non-goal: the mixnet does not define TLS/QUIC specifics).
type Dialer interface {
	Dial(dest string) (net.Conn, error)
}

// DialerFunc adapts a function to a Dialer.
type DialerFunc func(dest string) (net.Conn, error)

func (f DialerFunc) Dial(dest string) (net.Conn, error) { return f(dest) }

type egressItem struct {
	dest   string
	packet []byte
}

// BatchingEgress implements delay.Transmitter, collecting released packets
// and flushing them to the carrier in batches (spec §4.5: "egress collects
// up to B packets (default 128) or waits up to T ms (default 10),
// whichever first, then performs a single carrier write"). Packets to the
// same destination accumulated in one flush are written in a single
// conn.Write call.
type BatchingEgress struct {
	dialer       Dialer
	batchSize    int
	batchTimeout time.Duration

	q *queue.ConcurrentQueue

	mu    sync.Mutex
	conns map[string]net.Conn

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewBatchingEgress constructs a batching egress writer. Start must be
// called before any Transmit call is serviced.
func NewBatchingEgress(dialer Dialer, batchSize int, batchTimeout time.Duration) *BatchingEgress {
	q := queue.NewConcurrentQueue(batchSize * 4)
	q.Start()

	return &BatchingEgress{
		dialer:       dialer,
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
		q:            q,
		conns:        make(map[string]net.Conn),
		quit:         make(chan struct{}),
	}
}

// Transmit enqueues packet for dest; it satisfies delay.Transmitter.
func (e *BatchingEgress) Transmit(dest string, packet []byte) error {
	select {
	case e.q.ChanIn() <- egressItem{dest: dest, packet: packet}:
		return nil
	case <-e.quit:
		return nil
	}
}

// Start launches the batching goroutine.
func (e *BatchingEgress) Start() {
	e.wg.Add(1)
	go e.run()
}

func (e *BatchingEgress) run() {
	defer e.wg.Done()

	batch := make([]egressItem, 0, e.batchSize)

	timer := time.NewTimer(e.batchTimeout)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		e.writeBatch(batch)
		batch = batch[:0]
	}

	resetTimer := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(e.batchTimeout)
	}

	for {
		select {
		case v, ok := <-e.q.ChanOut():
			if !ok {
				flush()
				return
			}
			batch = append(batch, v.(egressItem))
			if len(batch) >= e.batchSize {
				flush()
				resetTimer()
			}

		case <-timer.C:
			flush()
			timer.Reset(e.batchTimeout)

		case <-e.quit:
			flush()
			return
		}
	}
}

func (e *BatchingEgress) writeBatch(batch []egressItem) {
	order := make([]string, 0, len(batch))
	byDest := make(map[string][][]byte)

	for _, it := range batch {
		if _, ok := byDest[it.dest]; !ok {
			order = append(order, it.dest)
		}
		byDest[it.dest] = append(byDest[it.dest], it.packet)
	}

	for _, dest := range order {
		packets := byDest[dest]

		conn, err := e.connFor(dest)
		if err != nil {
			egressTransmitErrors.Inc()
			continue
		}

		var buf bytes.Buffer
		for _, pkt := range packets {
			if err := WriteFrame(&buf, pkt); err != nil {
				egressTransmitErrors.Inc()
				continue
			}
		}

		if _, err := conn.Write(buf.Bytes()); err != nil {
			egressTransmitErrors.Inc()
			e.dropConn(dest)
			continue
		}
		framesForwarded.Add(float64(len(packets)))
	}
}

func (e *BatchingEgress) connFor(dest string) (net.Conn, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.conns[dest]; ok {
		return c, nil
	}

	c, err := e.dialer.Dial(dest)
	if err != nil {
		return nil, err
	}
	e.conns[dest] = c
	return c, nil
}

func (e *BatchingEgress) dropConn(dest string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c, ok := e.conns[dest]; ok {
		c.Close()
		delete(e.conns, dest)
	}
}

// Stop flushes, halts the batching goroutine, and closes all egress
// connections.
func (e *BatchingEgress) Stop() {
	close(e.quit)
	e.wg.Wait()
	e.q.Stop()

	e.mu.Lock()
	for dest, c := range e.conns {
		c.Close()
		delete(e.conns, dest)
	}
	e.mu.Unlock()
}
