package sphinx

import (
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
)

// Hop describes one step of a path passed to Wrap: the public key the
// sender encrypts to, and the NodeID used to populate that hop's outgoing
// routing-info slot so the PREVIOUS hop can forward to it. The final hop's
// NodeID is never used (it Delivers instead of forwarding) but is kept for
// symmetry with the path type callers already have on hand.
type Hop struct {
	PubKey *btcec.PublicKey
	NodeID NodeID
}

// hopState carries the per-hop material computed while walking the path
// forward during Wrap, and reused when building routing info backward.
type hopState struct {
	ephemeralAtHop [EphemeralKeySize]byte
	sharedSecret   [32]byte
}

// Wrap constructs a new SphinxPacket carrying payload through path. Path
// length must be in [1, MaxHops]. Fails with ErrInvalidPath if any hop key
// is malformed, or ErrTooManyHops if the path is too long.
func Wrap(payload []byte, path []Hop) (*Packet, error) {
	k := len(path)
	if k == 0 {
		return nil, ErrInvalidPath("path must have at least one hop")
	}
	if k > MaxHops {
		return nil, ErrTooManyHops(k)
	}
	for i, h := range path {
		if h.PubKey == nil {
			return nil, ErrInvalidPath("hop key is nil")
		}
		_ = i
	}

	payloadBuf, err := encodePayloadWithLength(payload)
	if err != nil {
		return nil, ErrInvalidPath(err.Error())
	}

	x0, err := GeneratePrivateKey()
	if err != nil {
		return nil, err
	}

	states := make([]hopState, k)
	curX := new(big.Int).Set(x0.D)
	curAlpha := x0.PublicKey()

	for i := 0; i < k; i++ {
		var st hopState
		copy(st.ephemeralAtHop[:], curAlpha.SerializeCompressed())

		st.sharedSecret = deriveSharedSecret(path[i].PubKey, curX)
		states[i] = st

		b := blindingFactor(st.ephemeralAtHop[:], st.sharedSecret)
		curX = new(big.Int).Mod(new(big.Int).Mul(curX, b), btcec.S256().N)
		curAlpha = scalarMul(curAlpha, b)
	}

	routingInfo := buildRoutingInfo(states, path)

	// Onion-encrypt the payload, innermost (last hop) layer first.
	layer := payloadBuf[:]
	for i := k - 1; i >= 0; i-- {
		layer = streamXOR(states[i].sharedSecret, "pi", layer, PayloadSize)
	}

	pkt := &Packet{}
	copy(pkt.Header.EphemeralKey[:], states[0].ephemeralAtHop[:])
	copy(pkt.Header.RoutingInfo[:], routingInfo)
	pkt.Header.MAC = computeMAC(states[0].sharedSecret, pkt.Header.EphemeralKey[:], routingInfo)
	copy(pkt.Payload[:], layer)

	return pkt, nil
}

// buildRoutingInfo constructs the routing-info blob that hop 0 receives, by
// walking the path backward and peeling outward, matching the layered
// construction ProcessHop expects to unwind one slot per hop (see the
// sizing invariant documented on RoutingInfoSize).
func buildRoutingInfo(states []hopState, path []Hop) []byte {
	k := len(states)
	buf := make([]byte, RoutingInfoSize)

	// filler is the tail that hops 0..k-2 shift into the routing info; the
	// final hop's buffer must end with it for every MAC to match what each
	// hop actually receives.
	var filler []byte
	for i := 0; i < k-1; i++ {
		filler = append(filler, make([]byte, PerHopSlotSize)...)
		stream := streamXOR(states[i].sharedSecret, "rho", nil, RoutingInfoSize+PerHopSlotSize)
		tail := stream[RoutingInfoSize+PerHopSlotSize-len(filler):]
		for j := range filler {
			filler[j] ^= tail[j]
		}
	}

	for i := k - 1; i >= 0; i-- {
		slot := make([]byte, PerHopSlotSize)
		if i == k-1 {
			slot[0] = flagEndOfAth
		} else {
			slot[0] = flagForward
			copy(slot[1:1+16], path[i+1].NodeID[:])
			nextMAC := computeMAC(states[i+1].sharedSecret,
				states[i+1].ephemeralAtHop[:], buf)
			copy(slot[1+16:], nextMAC[:])
		}

		pre := append(append([]byte{}, slot...), buf[:RoutingInfoSize-PerHopSlotSize]...)
		buf = streamXOR(states[i].sharedSecret, "rho", pre, RoutingInfoSize)
		if i == k-1 {
			copy(buf[RoutingInfoSize-len(filler):], filler)
		}
	}

	return buf
}
