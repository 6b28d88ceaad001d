package sphinx

import (
	"crypto/hmac"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/fogcompute/platform/fogerr"
)

// Outcome tags the three possible results of ProcessHop.
type Outcome int

const (
	OutcomeForward Outcome = iota
	OutcomeDeliver
	OutcomeReject
)

// Result is the tagged outcome of ProcessHop (spec §4.1).
type Result struct {
	Outcome Outcome

	// Populated when Outcome == OutcomeForward.
	NextHop    NodeID
	NextPacket *Packet

	// Populated when Outcome == OutcomeDeliver.
	Plaintext []byte

	// Populated when Outcome == OutcomeReject.
	Err *fogerr.Error
}

// ProcessHop peels one layer off packet using hopPrivKey, the scalar
// corresponding to the public key this packet was encrypted to for this
// hop. It always performs the full processing cost path (MAC check, replay
// insert, payload decrypt, routing-info peel, blinding) before deciding
// which outcome to return, so that Reject is not distinguishable from
// ForwardTo/Deliver by timing (spec §4.1, §7).
func ProcessHop(packet *Packet, hopPrivKey *big.Int, cache *ReplayCache) Result {
	ephemeralPoint, err := btcec.ParsePubKey(packet.Header.EphemeralKey[:])
	if err != nil {
		// Malformed ephemeral key: still costs a cache insert attempt
		// on the raw bytes so timing stays uniform with the happy path.
		cache.Insert(replayTag(packet.Header.EphemeralKey[:]))
		return Result{Outcome: OutcomeReject, Err: fogerr.New(
			fogerr.KindMalformed, "invalid ephemeral key: %v", err)}
	}

	sharedSecret := deriveSharedSecret(ephemeralPoint, hopPrivKey)

	expectedMAC := computeMAC(sharedSecret, packet.Header.EphemeralKey[:],
		packet.Header.RoutingInfo[:])
	macOK := hmac.Equal(expectedMAC[:], packet.Header.MAC[:])

	tag := replayTag(packet.Header.EphemeralKey[:])
	insertState := cache.Insert(tag)

	decryptedPayload := streamXOR(sharedSecret, "pi", packet.Payload[:], PayloadSize)

	slot, nextRoutingInfo := peelRoutingInfo(packet.Header.RoutingInfo, sharedSecret)

	b := blindingFactor(packet.Header.EphemeralKey[:], sharedSecret)
	nextAlpha := scalarMul(ephemeralPoint, b)
	var nextAlphaBytes [EphemeralKeySize]byte
	copy(nextAlphaBytes[:], nextAlpha.SerializeCompressed())

	switch {
	case !macOK:
		return Result{Outcome: OutcomeReject, Err: ErrBadMAC()}

	case insertState == AlreadyPresent:
		return Result{Outcome: OutcomeReject, Err: ErrReplay()}

	case slot.flag == flagEndOfAth:
		plaintext, perr := decodePayloadLength(decryptedPayload)
		if perr != nil {
			return Result{Outcome: OutcomeReject, Err: fogerr.New(
				fogerr.KindMalformed, "%v", perr)}
		}
		return Result{Outcome: OutcomeDeliver, Plaintext: plaintext}

	default:
		next := &Packet{}
		next.Header.EphemeralKey = nextAlphaBytes
		copy(next.Header.RoutingInfo[:], nextRoutingInfo)
		next.Header.MAC = slot.nextMAC
		copy(next.Payload[:], decryptedPayload)

		return Result{
			Outcome:    OutcomeForward,
			NextHop:    slot.nextHop,
			NextPacket: next,
		}
	}
}

type peeledSlot struct {
	flag    byte
	nextHop NodeID
	nextMAC [MACSize]byte
}

// peelRoutingInfo extracts this hop's slot and computes the routing-info
// buffer the next hop will receive (spec §4.1 step 5).
func peelRoutingInfo(routingInfo [RoutingInfoSize]byte, sharedSecret [32]byte) (peeledSlot, []byte) {
	extended := make([]byte, RoutingInfoSize+PerHopSlotSize)
	copy(extended, routingInfo[:])

	plain := streamXOR(sharedSecret, "rho", extended, RoutingInfoSize+PerHopSlotSize)

	var slot peeledSlot
	slot.flag = plain[0]
	copy(slot.nextHop[:], plain[1:1+16])
	copy(slot.nextMAC[:], plain[1+16:PerHopSlotSize])

	next := plain[PerHopSlotSize : PerHopSlotSize+RoutingInfoSize]
	return slot, next
}
