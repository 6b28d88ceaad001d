package sphinx

import (
	"crypto/rand"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
)

// PrivateKey is a hop's long-term or ephemeral scalar on secp256k1. We model
// it directly as a scalar rather than reaching into btcec.PrivateKey's
// internal representation, since Sphinx only ever needs scalar multiplication
// and scalar composition (blinding), not ECDSA signing.
type PrivateKey struct {
	D *big.Int
}

// PublicKey returns the corresponding point D*G.
func (k *PrivateKey) PublicKey() *btcec.PublicKey {
	x, y := btcec.S256().ScalarBaseMult(k.D.Bytes())
	return btcec.NewPublicKey(x, y)
}

// GeneratePrivateKey returns a new random scalar in [1, N).
func GeneratePrivateKey() (*PrivateKey, error) {
	n := btcec.S256().N
	for {
		d, err := rand.Int(rand.Reader, n)
		if err != nil {
			return nil, err
		}
		if d.Sign() != 0 {
			return &PrivateKey{D: d}, nil
		}
	}
}

// scalarMul computes a*point on secp256k1.
func scalarMul(point *btcec.PublicKey, a *big.Int) *btcec.PublicKey {
	x, y := btcec.S256().ScalarMult(point.X(), point.Y(), a.Bytes())
	return btcec.NewPublicKey(x, y)
}

// sharedSecretPoint computes scalar*point, the DH shared point, shared by
// both deriveSharedSecret call sites (Wrap's forward simulation and
// ProcessHop's receiver-side derivation). DH is commutative on secp256k1, so
// (x*G derived from the sender's accumulated scalar) times a hop's private
// scalar equals that hop's public key times the sender's accumulated
// scalar.
func sharedSecretPoint(point *btcec.PublicKey, scalar *big.Int) *btcec.PublicKey {
	return scalarMul(point, scalar)
}
