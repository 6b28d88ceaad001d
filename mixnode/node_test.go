package mixnode

import (
	"sync"
	"testing"
	"time"

	"github.com/fogcompute/platform/delay"
	"github.com/fogcompute/platform/sphinx"
	"github.com/stretchr/testify/require"
)

type recordingTransmitter struct {
	mu   sync.Mutex
	dest []string
	pkts [][]byte
}

func (r *recordingTransmitter) Transmit(dest string, packet []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dest = append(r.dest, dest)
	r.pkts = append(r.pkts, packet)
	return nil
}

func (r *recordingTransmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pkts)
}

func noDelayConfig() delay.PoissonConfig {
	return delay.PoissonConfig{
		MeanDelay:      0,
		MinDelay:       0,
		MaxDelay:       0,
		JitterFraction: 0,
	}
}

func makeTestHop(t *testing.T, id byte) (*sphinx.PrivateKey, sphinx.Hop) {
	t.Helper()
	priv, err := sphinx.GeneratePrivateKey()
	require.NoError(t, err)

	var nodeID sphinx.NodeID
	nodeID[0] = id

	return priv, sphinx.Hop{PubKey: priv.PublicKey(), NodeID: nodeID}
}

func TestNodeHandleFrameDeliver(t *testing.T) {
	priv1, hop1 := makeTestHop(t, 1)

	pkt, err := sphinx.Wrap([]byte("payload"), []sphinx.Hop{hop1})
	require.NoError(t, err)

	var delivered []byte
	cache := sphinx.NewReplayCache(time.Hour)
	defer cache.Close()

	tx := &recordingTransmitter{}
	sched := delay.NewScheduler(noDelayConfig(), tx)
	sched.Start()
	defer sched.Stop()

	dir := NewDirectory()

	node := NewNode(priv1.D, cache, sched, dir, func(p []byte) {
		delivered = p
	})

	node.HandleFrame(pkt.Encode())

	require.Equal(t, []byte("payload"), delivered)
	require.Equal(t, 0, tx.count())
}

func TestNodeHandleFrameForward(t *testing.T) {
	priv1, hop1 := makeTestHop(t, 1)
	_, hop2 := makeTestHop(t, 2)

	pkt, err := sphinx.Wrap([]byte("payload"), []sphinx.Hop{hop1, hop2})
	require.NoError(t, err)

	cache := sphinx.NewReplayCache(time.Hour)
	defer cache.Close()

	tx := &recordingTransmitter{}
	sched := delay.NewScheduler(noDelayConfig(), tx)
	sched.Start()
	defer sched.Stop()

	dir := NewDirectory()
	dir.Register(hop2.NodeID, "10.0.0.2:9000")

	node := NewNode(priv1.D, cache, sched, dir, nil)
	node.HandleFrame(pkt.Encode())

	require.Eventually(t, func() bool {
		return tx.count() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestNodeHandleFrameForwardNoRouteDrops(t *testing.T) {
	priv1, hop1 := makeTestHop(t, 1)
	_, hop2 := makeTestHop(t, 2)

	pkt, err := sphinx.Wrap([]byte("payload"), []sphinx.Hop{hop1, hop2})
	require.NoError(t, err)

	cache := sphinx.NewReplayCache(time.Hour)
	defer cache.Close()

	tx := &recordingTransmitter{}
	sched := delay.NewScheduler(noDelayConfig(), tx)
	sched.Start()
	defer sched.Stop()

	// No directory registration for hop2: the node has no route.
	node := NewNode(priv1.D, cache, sched, NewDirectory(), nil)
	node.HandleFrame(pkt.Encode())

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 0, tx.count())
}

func TestNodeHandleFrameMalformedDropped(t *testing.T) {
	cache := sphinx.NewReplayCache(time.Hour)
	defer cache.Close()

	tx := &recordingTransmitter{}
	sched := delay.NewScheduler(noDelayConfig(), tx)
	sched.Start()
	defer sched.Stop()

	node := NewNode(nil, cache, sched, NewDirectory(), nil)

	// Too short to even be a valid frame payload.
	node.HandleFrame([]byte{1, 2, 3})

	require.Equal(t, 0, tx.count())
}
