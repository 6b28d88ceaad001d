package lottery

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
)

const vrfKeySize = 32

// VRFKeyPair is a deterministic, keyed pseudo-random function used to drive
// the lottery draw (spec §4.4). This is not a public-key VRF: the proof can
// only be recomputed by a holder of the same key, not verified against a
// published public key. No pack example vendors a real VRF library (see
// DESIGN.md), so this is a documented simplification that still satisfies
// the spec's testable properties (determinism given the same input and
// keypair; a retained, recomputable proof).
type VRFKeyPair struct {
	key [vrfKeySize]byte
}

// GenerateVRFKeyPair creates a new random key.
func GenerateVRFKeyPair() (*VRFKeyPair, error) {
	var kp VRFKeyPair
	if _, err := rand.Read(kp.key[:]); err != nil {
		return nil, err
	}
	return &kp, nil
}

// VRFKeyPairFromSeed derives a key deterministically from seed, for
// reproducible tests and audits (spec §4.4: "used for auditing and for
// reproducible testing").
func VRFKeyPairFromSeed(seed []byte) *VRFKeyPair {
	sum := sha256.Sum256(seed)
	var kp VRFKeyPair
	copy(kp.key[:], sum[:])
	return &kp
}

// VRFOutput is one evaluation of the VRF: Proof is the retained,
// publishable tag; Value is the derived uniform sample in [0,1).
type VRFOutput struct {
	Proof [sha256.Size]byte
	Value float64
}

// Evaluate computes the VRF output for input (e.g. circuit_id ‖ hop_index).
func (k *VRFKeyPair) Evaluate(input []byte) VRFOutput {
	mac := hmac.New(sha256.New, k.key[:])
	mac.Write(input)
	tag := mac.Sum(nil)

	var out VRFOutput
	copy(out.Proof[:], tag)

	n := binary.BigEndian.Uint64(tag[:8]) >> 11
	out.Value = float64(n) / float64(1<<53)
	return out
}

// Verify recomputes the VRF for input under this keypair and reports
// whether it matches proof, confirming the draw was not tampered with.
func (k *VRFKeyPair) Verify(input []byte, proof [sha256.Size]byte) bool {
	out := k.Evaluate(input)
	return hmac.Equal(out.Proof[:], proof[:])
}

// vrfInput builds the per-request VRF input: circuit_id ‖ hop_index.
func vrfInput(circuitID uint64, hopIndex int) []byte {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint64(buf[:8], circuitID)
	binary.BigEndian.PutUint32(buf[8:], uint32(hopIndex))
	return buf
}
