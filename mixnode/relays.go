package mixnode

import (
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/fogcompute/platform/sphinx"
)

// RelayInfo is everything needed to route a cover packet to a relay chosen
// by the lottery: its Sphinx identity and its carrier address.
type RelayInfo struct {
	NodeID  sphinx.NodeID
	PubKey  *btcec.PublicKey
	Address string
}

// RelayRegistry resolves a lottery address (the reputation store's key)
// to the relay's Sphinx routing information.
type RelayRegistry struct {
	mu     sync.RWMutex
	relays map[string]RelayInfo
}

// NewRelayRegistry creates an empty registry.
func NewRelayRegistry() *RelayRegistry {
	return &RelayRegistry{relays: make(map[string]RelayInfo)}
}

// Register associates a lottery address with its Sphinx routing info.
func (r *RelayRegistry) Register(info RelayInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.relays[info.Address] = info
}

// Lookup returns the routing info for a lottery address, if known.
func (r *RelayRegistry) Lookup(address string) (RelayInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.relays[address]
	return info, ok
}
