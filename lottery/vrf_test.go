package lottery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVRFDeterministic(t *testing.T) {
	kp := VRFKeyPairFromSeed([]byte("seed-1"))

	out1 := kp.Evaluate(vrfInput(42, 1))
	out2 := kp.Evaluate(vrfInput(42, 1))

	require.Equal(t, out1.Proof, out2.Proof)
	require.Equal(t, out1.Value, out2.Value)
}

func TestVRFDifferentInputsDiffer(t *testing.T) {
	kp := VRFKeyPairFromSeed([]byte("seed-1"))

	out1 := kp.Evaluate(vrfInput(42, 1))
	out2 := kp.Evaluate(vrfInput(42, 2))

	require.NotEqual(t, out1.Proof, out2.Proof)
}

func TestVRFValueRange(t *testing.T) {
	kp := VRFKeyPairFromSeed([]byte("seed-1"))
	for i := 0; i < 100; i++ {
		out := kp.Evaluate(vrfInput(uint64(i), 0))
		require.GreaterOrEqual(t, out.Value, 0.0)
		require.Less(t, out.Value, 1.0)
	}
}

func TestVRFVerify(t *testing.T) {
	kp := VRFKeyPairFromSeed([]byte("seed-1"))
	input := vrfInput(7, 3)
	out := kp.Evaluate(input)

	require.True(t, kp.Verify(input, out.Proof))

	other := VRFKeyPairFromSeed([]byte("seed-2"))
	require.False(t, other.Verify(input, out.Proof))
}
