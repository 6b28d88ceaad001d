package lottery

import (
	"time"

	"github.com/fogcompute/platform/fogerr"
)

// Lottery selects the next hop from registered relays using a
// VRF-seeded weighted draw (spec §4.4).
type Lottery struct {
	store   *Store
	keyPair *VRFKeyPair
	floor   int
}

// NewLottery constructs a Lottery over store, using keyPair to evaluate the
// VRF and excluding relays below floor points.
func NewLottery(store *Store, keyPair *VRFKeyPair, floor int) *Lottery {
	return &Lottery{store: store, keyPair: keyPair, floor: floor}
}

// SelectionInput identifies one lottery draw.
type SelectionInput struct {
	CircuitID uint64
	HopIndex  int
}

// SelectionResult is the chosen relay and the VRF proof backing the draw,
// retained so the draw can be audited (spec §4.4).
type SelectionResult struct {
	Address string
	Proof   [32]byte
	Weight  float64
}

// Select performs one weighted draw. It is deterministic: the same input
// and keypair over the same store state always choose the same relay.
func (l *Lottery) Select(now time.Time, in SelectionInput) (SelectionResult, error) {
	eligible := l.store.Eligible(now, l.floor)
	if len(eligible) == 0 {
		return SelectionResult{}, fogerr.New(fogerr.KindNoFeasibleNode,
			"no relay at or above reputation floor %d", l.floor)
	}

	weights := make([]float64, len(eligible))
	var total float64
	for i, r := range eligible {
		weights[i] = r.SelectionWeight()
		total += weights[i]
	}
	if total <= 0 {
		return SelectionResult{}, fogerr.New(fogerr.KindNoFeasibleNode,
			"all eligible relays have zero selection weight")
	}

	out := l.keyPair.Evaluate(vrfInput(in.CircuitID, in.HopIndex))
	target := out.Value * total

	var cum float64
	for i, r := range eligible {
		cum += weights[i]
		if target < cum || i == len(eligible)-1 {
			return SelectionResult{
				Address: r.Address,
				Proof:   out.Proof,
				Weight:  weights[i],
			}, nil
		}
	}

	// Unreachable: the loop above always returns on its last iteration.
	return SelectionResult{}, fogerr.New(fogerr.KindNoFeasibleNode, "draw failed")
}
