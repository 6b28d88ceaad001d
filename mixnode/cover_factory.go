package mixnode

import (
	"crypto/rand"
	"sync/atomic"
	"time"

	"github.com/fogcompute/platform/lottery"
	"github.com/fogcompute/platform/sphinx"
)

const coverPayloadCapacity = sphinx.PayloadCapacity

// CoverPacketFactory builds fresh Sphinx-wrapped cover packets, choosing
// each hop of the path via the Relay Lottery (spec §4.5 step 3, §4.3:
// "Cover packets traverse the same wrap/release path as real packets and
// are indistinguishable on the wire"). It implements delay.PacketFactory's
// signature via Make.
type CoverPacketFactory struct {
	lottery *lottery.Lottery
	relays  *RelayRegistry
	hops    int

	circuitCounter uint64
}

// NewCoverPacketFactory constructs a factory that builds hops-length cover
// paths drawn from l, resolved against relays.
func NewCoverPacketFactory(l *lottery.Lottery, relays *RelayRegistry, hops int) *CoverPacketFactory {
	return &CoverPacketFactory{lottery: l, relays: relays, hops: hops}
}

// Make builds one cover packet, its synthetic circuit_id, and the address
// of its first hop. It returns a nil packet if no path could be drawn
// (e.g. too few eligible relays); callers should skip emission in that
// case.
func (f *CoverPacketFactory) Make() ([]byte, uint64, string) {
	circuitID := atomic.AddUint64(&f.circuitCounter, 1)
	now := time.Now()

	path := make([]sphinx.Hop, 0, f.hops)
	var firstAddr string

	for i := 0; i < f.hops; i++ {
		res, err := f.lottery.Select(now, lottery.SelectionInput{
			CircuitID: circuitID,
			HopIndex:  i,
		})
		if err != nil {
			return nil, 0, ""
		}

		info, ok := f.relays.Lookup(res.Address)
		if !ok {
			return nil, 0, ""
		}

		path = append(path, sphinx.Hop{PubKey: info.PubKey, NodeID: info.NodeID})
		if i == 0 {
			firstAddr = info.Address
		}
	}

	payload := make([]byte, coverPayloadCapacity)
	if _, err := rand.Read(payload); err != nil {
		return nil, 0, ""
	}

	pkt, err := sphinx.Wrap(payload, path)
	if err != nil {
		return nil, 0, ""
	}

	return pkt.Encode(), circuitID, firstAddr
}
