package lottery

import (
	"sort"
	"sync"
	"time"

	"github.com/fogcompute/platform/fogerr"
)

// Store is the registry of relay reputation records (spec §3
// NodeReputation, §4.4 reputation updates). Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]*NodeReputation
}

// NewStore creates an empty reputation store.
func NewStore() *Store {
	return &Store{nodes: make(map[string]*NodeReputation)}
}

// Register adds or replaces a relay's reputation record.
func (s *Store) Register(rep *NodeReputation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[rep.Address] = rep
}

// Deregister removes a relay from the store (spec §3: "removed on
// deregistration or when reputation_ref falls below a configured floor").
func (s *Store) Deregister(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.nodes, address)
}

// Get returns a copy of the relay's reputation, decayed to now, and
// whether it was found.
func (s *Store) Get(address string, now time.Time) (NodeReputation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.nodes[address]
	if !ok {
		return NodeReputation{}, false
	}
	r.Decay(now)
	return *r, true
}

// Apply records a reputation-affecting action for address.
func (s *Store) Apply(address string, action Action, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.nodes[address]
	if !ok {
		return fogerr.New(fogerr.KindNoFeasibleNode, "unknown relay %q", address)
	}
	r.Decay(now)
	r.Apply(action, now)
	return nil
}

// ApplyCustom records an arbitrary signed point delta for address.
func (s *Store) ApplyCustom(address string, delta int, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.nodes[address]
	if !ok {
		return fogerr.New(fogerr.KindNoFeasibleNode, "unknown relay %q", address)
	}
	r.Decay(now)
	r.ApplyCustom(delta, now)
	return nil
}

// DecayAll applies the lazy decay formula to every relay immediately,
// rather than waiting for the next read (spec §4.4).
func (s *Store) DecayAll(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.nodes {
		r.Decay(now)
	}
}

// Eligible returns every relay at or above floor points, decayed to now and
// sorted by address for deterministic lottery draws.
func (s *Store) Eligible(now time.Time, floor int) []NodeReputation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]NodeReputation, 0, len(s.nodes))
	for _, r := range s.nodes {
		r.Decay(now)
		if r.Points >= floor {
			out = append(out, *r)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Len returns the number of registered relays, regardless of eligibility.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}
