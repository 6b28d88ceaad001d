package mixnode

import (
	"encoding/binary"

	"github.com/fogcompute/platform/sphinx"
)

// deriveCircuitID assigns a circuit_id from the packet's ephemeral key when
// the carrier does not supply one out of band (spec §4.5 step 1: "from
// packet metadata or derived from ephemeral key"). Each Wrap draws a fresh
// ephemeral key, so the ID identifies one wrapped packet at this hop;
// separately wrapped packets over the same path get different IDs.
func deriveCircuitID(pkt *sphinx.Packet) uint64 {
	return binary.BigEndian.Uint64(pkt.Header.EphemeralKey[:8])
}
