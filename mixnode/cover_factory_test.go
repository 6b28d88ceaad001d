package mixnode

import (
	"testing"
	"time"

	"github.com/fogcompute/platform/lottery"
	"github.com/fogcompute/platform/sphinx"
	"github.com/stretchr/testify/require"
)

func TestCoverPacketFactoryBuildsValidPacket(t *testing.T) {
	store := lottery.NewStore()
	now := time.Now()

	relays := NewRelayRegistry()
	for i := 0; i < 3; i++ {
		addr := string(rune('a' + i))
		store.Register(lottery.NewNodeReputation(addr, 1, now))

		priv, hop := makeTestHop(t, byte(i+1))
		_ = priv
		relays.Register(RelayInfo{NodeID: hop.NodeID, PubKey: hop.PubKey, Address: addr})
	}

	kp := lottery.VRFKeyPairFromSeed([]byte("cover-seed"))
	l := lottery.NewLottery(store, kp, 0)

	factory := NewCoverPacketFactory(l, relays, 2)

	packet, circuitID, dest := factory.Make()
	require.Len(t, packet, sphinx.PacketSize)
	require.NotZero(t, circuitID)
	require.NotEmpty(t, dest)
}

func TestCoverPacketFactoryNoEligibleRelaysReturnsEmpty(t *testing.T) {
	store := lottery.NewStore()
	kp := lottery.VRFKeyPairFromSeed([]byte("cover-seed"))
	l := lottery.NewLottery(store, kp, 0)

	factory := NewCoverPacketFactory(l, NewRelayRegistry(), 2)

	packet, _, dest := factory.Make()
	require.Nil(t, packet)
	require.Empty(t, dest)
}
