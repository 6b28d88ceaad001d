package delay

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeTransmitter struct {
	mu  sync.Mutex
	got [][]byte

	failNext bool
}

func (f *fakeTransmitter) Transmit(dest string, packet []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext {
		f.failNext = false
		return errTransmit
	}
	f.got = append(f.got, packet)
	return nil
}

func (f *fakeTransmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

var errTransmit = &transmitErr{}

type transmitErr struct{}

func (*transmitErr) Error() string { return "simulated transmit failure" }

func fixedDelayConfig(d time.Duration) PoissonConfig {
	return PoissonConfig{
		MeanDelay:      d,
		MinDelay:       d,
		MaxDelay:       d,
		JitterFraction: 0,
	}
}

func TestSchedulerReleasesAfterDelay(t *testing.T) {
	tx := &fakeTransmitter{}
	sched := NewScheduler(fixedDelayConfig(30*time.Millisecond), tx)
	sched.Start()
	defer sched.Stop()

	sched.Enqueue([]byte("hello"), 1, "peer-a")

	require.Equal(t, 0, tx.count(), "packet must not release before its delay elapses")

	require.Eventually(t, func() bool {
		return tx.count() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerOrdersMultiplePackets(t *testing.T) {
	tx := &fakeTransmitter{}
	sched := NewScheduler(fixedDelayConfig(0), tx)
	sched.Start()
	defer sched.Stop()

	for i := 0; i < 10; i++ {
		sched.Enqueue([]byte("x"), uint64(i), "peer")
	}

	require.Eventually(t, func() bool {
		return tx.count() == 10
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerFlushOnStop(t *testing.T) {
	tx := &fakeTransmitter{}
	sched := NewScheduler(fixedDelayConfig(time.Hour), tx)
	sched.Start()

	sched.Enqueue([]byte("stuck"), 1, "peer-a")
	require.Equal(t, 0, tx.count())

	// Stop must flush immediately rather than waiting out the delay.
	sched.Stop()
	require.Equal(t, 1, tx.count())
}

func TestSchedulerCircuitMultiplierDelaysRelease(t *testing.T) {
	tx := &fakeTransmitter{}
	sched := NewScheduler(fixedDelayConfig(20*time.Millisecond), tx)
	sched.SetCircuitMultiplier(7, 0.1)
	sched.Start()
	defer sched.Stop()

	sched.Enqueue([]byte("fast"), 7, "peer-a")

	require.Eventually(t, func() bool {
		return tx.count() == 1
	}, time.Second, time.Millisecond)
}

func TestSchedulerTransmitFailureIsNotRecordedAsSent(t *testing.T) {
	tx := &fakeTransmitter{failNext: true}
	sched := NewScheduler(fixedDelayConfig(0), tx)
	sched.Start()
	defer sched.Stop()

	sched.Enqueue([]byte("dropped"), 1, "peer-a")

	// The failed transmit must not be recorded as a success, but the
	// releaser must not get stuck on it either.
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 0, tx.count())
}
