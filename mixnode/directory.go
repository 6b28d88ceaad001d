package mixnode

import (
	"sync"

	"github.com/fogcompute/platform/sphinx"
)

// Directory resolves a Sphinx NodeID to a carrier address. It is populated
// out of band (e.g. from the Fog Coordinator's node registry); the mixnet
// itself does not define how peers discover one another (spec §1
// non-goals).
type Directory struct {
	mu    sync.RWMutex
	addrs map[sphinx.NodeID]string
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{addrs: make(map[sphinx.NodeID]string)}
}

// Register associates id with a carrier address.
func (d *Directory) Register(id sphinx.NodeID, addr string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addrs[id] = addr
}

// Lookup returns the carrier address for id, if known.
func (d *Directory) Lookup(id sphinx.NodeID) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	addr, ok := d.addrs[id]
	return addr, ok
}
