package lottery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s := NewStore()
	r1 := NewNodeReputation("relay-a", 100, now)
	r1.AgeDays = 12
	r1.ObservedSuccessRate = 0.97
	s.Register(r1)

	r2 := NewNodeReputation("relay-b", 200, now)
	r2.Points = 180
	s.Register(r2)

	data, err := s.Save()
	require.NoError(t, err)

	loaded, err := Load(data)
	require.NoError(t, err)

	require.Equal(t, s.Len(), loaded.Len())

	for _, addr := range []string{"relay-a", "relay-b"} {
		orig, ok := s.Get(addr, now)
		require.True(t, ok)

		got, ok := loaded.Get(addr, now)
		require.True(t, ok)

		require.Equal(t, orig.Address, got.Address)
		require.Equal(t, orig.Stake, got.Stake)
		require.Equal(t, orig.Points, got.Points)
		require.True(t, orig.LastUpdated.Equal(got.LastUpdated))
		require.Equal(t, orig.AgeDays, got.AgeDays)
		require.Equal(t, orig.ObservedSuccessRate, got.ObservedSuccessRate)
	}
}

func TestSnapshotVersionField(t *testing.T) {
	s := NewStore()
	data, err := s.Save()
	require.NoError(t, err)
	require.Contains(t, string(data), `"version":1`)
}

func TestLoadRejectsCorruptData(t *testing.T) {
	_, err := Load([]byte("not json"))
	require.Error(t, err)
}
