package delay

import (
	"container/heap"
	"time"
)

// PendingPacket is an item held by the scheduler awaiting release (spec
// §4.3).
type PendingPacket struct {
	// Packet is the opaque wire-encoded Sphinx packet to release.
	Packet []byte

	// CircuitID identifies the circuit this packet belongs to, used for
	// the per-circuit delay multiplier and for Adaptive cover shaping.
	CircuitID uint64

	// ReleaseTime is when the releaser should transmit this packet.
	ReleaseTime time.Time

	// Dest is the address or node identifier to transmit to.
	Dest string

	// seq is a monotonic ingress-order counter assigned at Enqueue time,
	// used only to break ReleaseTime ties (spec.md:199: "equal
	// release_times break ties by ingress order").
	seq uint64

	// index is maintained by container/heap; not meaningful to callers.
	index int
}

// pendingQueue is a min-heap of *PendingPacket ordered by ReleaseTime,
// giving the releaser O(log n) insert and O(1) access to the earliest
// deadline (spec §4.3: "a priority queue keyed by release_time"), with
// FIFO-by-seq as a tiebreaker on equal ReleaseTime.
type pendingQueue []*PendingPacket

func (q pendingQueue) Len() int { return len(q) }

func (q pendingQueue) Less(i, j int) bool {
	if !q[i].ReleaseTime.Equal(q[j].ReleaseTime) {
		return q[i].ReleaseTime.Before(q[j].ReleaseTime)
	}
	return q[i].seq < q[j].seq
}

func (q pendingQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *pendingQueue) Push(x interface{}) {
	p := x.(*PendingPacket)
	p.index = len(*q)
	*q = append(*q, p)
}

func (q *pendingQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

var (
	_ heap.Interface = (*pendingQueue)(nil)
)
