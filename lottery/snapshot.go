package lottery

import (
	"encoding/json"
	"time"

	"github.com/fogcompute/platform/fogerr"
)

const snapshotVersion = 1

// Snapshot is the persisted shape from spec §6: a JSON document
// {version, nodes:[{address, stake, points, last_updated, age_days,
// observed_success_rate}, …]}. Round-trip invariant: Load(Save(s)) == s.
type Snapshot struct {
	Version int            `json:"version"`
	Nodes   []NodeSnapshot `json:"nodes"`
}

// NodeSnapshot is one relay's persisted reputation record.
type NodeSnapshot struct {
	Address             string    `json:"address"`
	Stake               uint64    `json:"stake"`
	Points              int       `json:"points"`
	LastUpdated         time.Time `json:"last_updated"`
	AgeDays             int       `json:"age_days"`
	ObservedSuccessRate float64   `json:"observed_success_rate"`
}

// Save serializes the store to its JSON snapshot form. Decay is not
// applied here; callers that want an up-to-date snapshot should call
// DecayAll first.
func (s *Store) Save() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Version: snapshotVersion}
	for _, r := range s.nodes {
		snap.Nodes = append(snap.Nodes, NodeSnapshot{
			Address:             r.Address,
			Stake:               r.Stake,
			Points:              r.Points,
			LastUpdated:         r.LastUpdated,
			AgeDays:             r.AgeDays,
			ObservedSuccessRate: r.ObservedSuccessRate,
		})
	}

	return json.Marshal(snap)
}

// Load deserializes a JSON snapshot into a fresh Store.
func Load(data []byte) (*Store, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fogerr.New(fogerr.KindPersistenceCorrupt, "%v", err)
	}

	s := NewStore()
	for _, n := range snap.Nodes {
		s.nodes[n.Address] = &NodeReputation{
			Address:             n.Address,
			Stake:               n.Stake,
			Points:              n.Points,
			LastUpdated:         n.LastUpdated.UTC(),
			AgeDays:             n.AgeDays,
			ObservedSuccessRate: n.ObservedSuccessRate,
		}
	}

	return s, nil
}
