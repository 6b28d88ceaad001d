package mixnode

import (
	"math/big"

	"github.com/fogcompute/platform/delay"
	"github.com/fogcompute/platform/fogerr"
	"github.com/fogcompute/platform/sphinx"
)

// DeliverFunc is invoked when a packet reaches its final hop at this node.
type DeliverFunc func(plaintext []byte)

// Node glues the Sphinx engine, Delay Scheduler, and egress Directory into
// a functioning mixnode hop (spec §4.5). This Sphinx construction is
// always fully source-routed -- every hop's NodeID is baked into the onion
// at Wrap time -- so RelayLottery is not consulted on the per-packet
// forward path; it is only used when constructing new cover-traffic paths
// (see CoverPacketFactory), matching spec §4.5 step 3's "lottery is used
// only for loose-source routing and cover traffic."
type Node struct {
	privKey   *big.Int
	cache     *sphinx.ReplayCache
	scheduler *delay.Scheduler
	directory *Directory
	onDeliver DeliverFunc
}

// NewNode constructs a Node. onDeliver may be nil if this node never
// terminates circuits for this caller.
func NewNode(privKey *big.Int, cache *sphinx.ReplayCache, scheduler *delay.Scheduler,
	directory *Directory, onDeliver DeliverFunc) *Node {

	return &Node{
		privKey:   privKey,
		cache:     cache,
		scheduler: scheduler,
		directory: directory,
		onDeliver: onDeliver,
	}
}

// HandleFrame implements the per-packet flow of spec §4.5 steps 1-4 for one
// decoded carrier frame.
func (n *Node) HandleFrame(raw []byte) {
	pkt, err := sphinx.Decode(raw)
	if err != nil {
		framesDropped.WithLabelValues("malformed").Inc()
		return
	}

	circuitID := deriveCircuitID(pkt)

	res := sphinx.ProcessHop(pkt, n.privKey, n.cache)

	switch res.Outcome {
	case sphinx.OutcomeReject:
		n.countReject(res.Err)

	case sphinx.OutcomeDeliver:
		framesDelivered.Inc()
		if n.onDeliver != nil {
			n.onDeliver(res.Plaintext)
		}

	case sphinx.OutcomeForward:
		dest, ok := n.directory.Lookup(res.NextHop)
		if !ok {
			framesDropped.WithLabelValues("no_route").Inc()
			return
		}
		n.scheduler.Enqueue(res.NextPacket.Encode(), circuitID, dest)
	}
}

func (n *Node) countReject(err *fogerr.Error) {
	if err == nil {
		framesDropped.WithLabelValues("malformed").Inc()
		return
	}

	switch err.Kind {
	case fogerr.KindBadMAC:
		framesDropped.WithLabelValues("bad_mac").Inc()
	case fogerr.KindReplay:
		framesDropped.WithLabelValues("replay").Inc()
	default:
		framesDropped.WithLabelValues("malformed").Inc()
	}
}
