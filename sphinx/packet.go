// Package sphinx implements the layered-encryption packet format used by the
// mixnet (spec §4.1): fixed-size packets, one peeled layer per hop, a
// replay cache, and a routing-info filler margin sized so that no hop ever
// reads stale filler bytes as its own slot within MaxHops.
package sphinx

import (
	"encoding/binary"
	"fmt"
)

const (
	// EphemeralKeySize is the length of a compressed secp256k1 public key.
	EphemeralKeySize = 33

	// MACSize is the length of the truncated HMAC-SHA256 tag carried at
	// the top of the header and embedded (pre-baked by the sender) in
	// each per-hop routing-info slot for the following hop.
	MACSize = 8

	// PerHopSlotSize is flag(1) + next-hop NodeID(16) + next-hop MAC(8).
	PerHopSlotSize = 25

	// MaxHops is the Sphinx protocol constant bounding path length
	// (spec §3, configurable via §6's max_hops but this is the hard cap
	// the wire format's RoutingInfoSize was sized for).
	MaxHops = 5

	// RoutingInfoSize holds MaxHops slots plus a 10-byte margin:
	// 135 = 5*25 + 10. At the final hop the filler Wrap writes occupies the
	// last (k-1)*PerHopSlotSize bytes (at most 100), so that hop's own slot
	// at the front of the buffer (byte range [0:PerHopSlotSize)) stays intact.
	RoutingInfoSize = 135

	// HeaderSize = EphemeralKeySize + MACSize + RoutingInfoSize.
	HeaderSize = EphemeralKeySize + MACSize + RoutingInfoSize // 176

	// PayloadSize is the fixed onion-encrypted payload size (spec §3/§6).
	PayloadSize = 1024

	// payloadLenPrefix is the size of the big-endian length prefix baked
	// into the innermost payload layer so Deliver can recover the exact
	// plaintext length.
	payloadLenPrefix = 2

	// PayloadCapacity is the maximum plaintext a single packet can carry.
	PayloadCapacity = PayloadSize - payloadLenPrefix

	// PacketSize is the full wire size of a SphinxPacket: 176 + 1024.
	PacketSize = HeaderSize + PayloadSize // 1200
)

// slot flags.
const (
	flagForward  byte = 0x00
	flagEndOfAth byte = 0x01
)

// NodeID identifies a mix hop for routing-info purposes. It is resolved to a
// transport address by the component holding the peer directory (the
// Mixnode Pipeline or the Relay Lottery), never by the Sphinx Engine itself.
type NodeID [16]byte

func (id NodeID) String() string {
	return fmt.Sprintf("%x", id[:])
}

// Header is the fixed-layout, layer-encrypted routing header.
type Header struct {
	EphemeralKey [EphemeralKeySize]byte
	RoutingInfo  [RoutingInfoSize]byte
	MAC          [MACSize]byte
}

// Packet is the fixed-layout SphinxPacket from spec §3: 176-byte header +
// 1024-byte onion-encrypted payload. Immutable once emitted; ProcessHop
// always produces a new Packet rather than mutating its input.
type Packet struct {
	Header  Header
	Payload [PayloadSize]byte
}

// Encode writes the packet in its exact 1200-byte wire form, matching the
// carrier framing in spec §6 (the 4-byte length prefix is added by the
// carrier layer, not here).
func (p *Packet) Encode() []byte {
	buf := make([]byte, PacketSize)
	off := 0
	off += copy(buf[off:], p.Header.EphemeralKey[:])
	off += copy(buf[off:], p.Header.RoutingInfo[:])
	off += copy(buf[off:], p.Header.MAC[:])
	copy(buf[off:], p.Payload[:])
	return buf
}

// Decode parses a packet from its exact 1200-byte wire form. Frames of any
// other length must be dropped by the caller before reaching this function
// (spec §6); Decode itself re-validates the length defensively.
func Decode(buf []byte) (*Packet, error) {
	if len(buf) != PacketSize {
		return nil, fmt.Errorf("sphinx: bad packet length %d, want %d",
			len(buf), PacketSize)
	}

	p := &Packet{}
	off := 0
	off += copy(p.Header.EphemeralKey[:], buf[off:])
	off += copy(p.Header.RoutingInfo[:], buf[off:])
	off += copy(p.Header.MAC[:], buf[off:])
	copy(p.Payload[:], buf[off:])
	return p, nil
}

func encodePayloadWithLength(payload []byte) ([PayloadSize]byte, error) {
	var out [PayloadSize]byte
	if len(payload) > PayloadCapacity {
		return out, fmt.Errorf("sphinx: payload %d exceeds capacity %d",
			len(payload), PayloadCapacity)
	}
	binary.BigEndian.PutUint16(out[:payloadLenPrefix], uint16(len(payload)))
	copy(out[payloadLenPrefix:], payload)
	return out, nil
}

func decodePayloadLength(payload []byte) ([]byte, error) {
	if len(payload) < payloadLenPrefix {
		return nil, fmt.Errorf("sphinx: payload too short to carry length prefix")
	}
	n := binary.BigEndian.Uint16(payload[:payloadLenPrefix])
	if int(n) > len(payload)-payloadLenPrefix {
		return nil, fmt.Errorf("sphinx: corrupt payload length %d", n)
	}
	return payload[payloadLenPrefix : payloadLenPrefix+int(n)], nil
}
