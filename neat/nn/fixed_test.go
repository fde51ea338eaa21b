package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedNetworkKnownForward(t *testing.T) {
	n := NewZeroFixedNetwork(2, 2, 1)
	// Flat order: weightsIH (4), biasH (2), weightsHO (2), biasO (1).
	require.NoError(t, n.SetWeights([]float32{1, 0, 0, 1, 0, 0, 1, 1, 0}))

	out := n.Forward([]float32{0.5, -0.3})
	want := math.Tanh(math.Tanh(0.5) + math.Tanh(-0.3))
	require.Len(t, out, 1)
	assert.InDelta(t, want, out[0], 1e-6)
}

func TestFixedNetworkWeightRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, memory := range []bool{false, true} {
		n := NewFixedNetwork(rng, 4, 6, 3)
		if memory {
			n.EnableMemory(rng)
		}
		w := n.Weights()
		require.Len(t, w, n.WeightCount())

		other := NewZeroFixedNetwork(4, 6, 3)
		if memory {
			other.EnableMemory(rng)
		}
		require.NoError(t, other.SetWeights(w))
		assert.Equal(t, w, other.Weights())

		require.NoError(t, n.SetWeights(n.Weights()))
		assert.Equal(t, w, n.Weights())
	}
}

func TestFixedNetworkWeightCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	n := NewFixedNetwork(rng, 3, 4, 2)
	assert.Equal(t, 3*4+4+4*2+2, n.WeightCount())
	n.EnableMemory(rng)
	assert.Equal(t, 3*4+4+4*2+2+4*4, n.WeightCount())
	assert.True(t, n.HasMemory())

	before := n.Weights()
	n.EnableMemory(rng)
	assert.Equal(t, before, n.Weights(), "enabling memory twice is a no-op")
}

func TestFixedNetworkInitialisationRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	n := NewFixedNetwork(rng, 8, 2, 1)
	n.EnableMemory(rng)
	ih := float32(math.Sqrt(8.0 / 8))
	ho := float32(math.Sqrt(8.0 / 2))
	hh := float32(math.Sqrt(2.0 / 2))
	for _, w := range n.weightsIH {
		assert.LessOrEqual(t, abs(w), ih)
	}
	for _, w := range n.weightsHO {
		assert.LessOrEqual(t, abs(w), ho)
	}
	for _, b := range append(append([]float32(nil), n.biasH...), n.biasO...) {
		assert.LessOrEqual(t, abs(b), float32(0.5))
	}
	for _, w := range n.weightsHH {
		assert.LessOrEqual(t, abs(w), hh)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func TestFixedNetworkSetWeightsPolicy(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	n := NewFixedNetwork(rng, 2, 3, 1)
	n.EnableMemory(rng)
	before := n.Weights()

	err := n.SetWeights(make([]float32, 5))
	assert.ErrorIs(t, err, ErrWeightCount)
	assert.Equal(t, before, n.Weights(), "short vectors leave the network unchanged")

	// A feedforward-only vector leaves the context weights alone.
	base := make([]float32, 2*3+3+3*1+1)
	require.NoError(t, n.SetWeights(base))
	after := n.Weights()
	assert.Equal(t, base, after[:len(base)])
	assert.Equal(t, before[len(base):], after[len(base):])

	// Extra values are ignored.
	long := make([]float32, n.WeightCount()+10)
	for i := range long {
		long[i] = 1
	}
	require.NoError(t, n.SetWeights(long))
	assert.Equal(t, long[:n.WeightCount()], n.Weights())
}

func TestFixedNetworkMemory(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	n := NewFixedNetwork(rng, 2, 4, 2)
	stateless := n.Clone()
	n.EnableMemory(rng)

	in := []float32{0.3, -0.7}
	first := append([]float32(nil), n.Forward(in)...)
	second := append([]float32(nil), n.Forward(in)...)
	assert.NotEqual(t, first, second, "context changes the second step")

	n.ResetMemory()
	assert.Equal(t, first, append([]float32(nil), n.Forward(in)...))

	// With zero context the first step matches the feedforward network.
	assert.InDeltaSlice(t, toFloat64(stateless.Forward(in)), toFloat64(first), 1e-6)
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func TestFixedNetworkForwardPadsAndTruncatesInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	n := NewFixedNetwork(rng, 3, 4, 1)
	padded := n.Forward([]float32{0.2, 0.1, 0})[0]
	assert.Equal(t, padded, n.Forward([]float32{0.2, 0.1})[0])
	assert.Equal(t, padded, n.Forward([]float32{0.2, 0.1, 0, 9, 9})[0])
}

func TestFixedNetworkBatchForward(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := NewFixedNetwork(rng, 2, 3, 2)
	n.EnableMemory(rng)
	inputs := [][]float32{{0, 1}, {1, 0}, {0.5, 0.5}}

	batch := n.BatchForward(inputs)
	require.Len(t, batch, 3)
	ff := n.Clone()
	ff.useMemory = false
	for i, in := range inputs {
		assert.Equal(t, ff.Forward(in), batch[i])
	}
	// Batch evaluation leaves the recurrent state untouched.
	assert.Equal(t, make([]float32, 3), n.prevHidden)
}

func TestFixedNetworkClone(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	n := NewFixedNetwork(rng, 2, 2, 1)
	n.EnableMemory(rng)
	n.Forward([]float32{1, 1})

	c := n.Clone()
	assert.Equal(t, n.Weights(), c.Weights())
	assert.Equal(t, make([]float32, 2), c.prevHidden)
	c.Mutate(rng, 1, 1)
	assert.NotEqual(t, n.Weights(), c.Weights())
}

func TestFixedNetworkMutate(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	n := NewFixedNetwork(rng, 3, 3, 3)
	before := n.Weights()
	n.Mutate(rng, 0, 1)
	assert.Equal(t, before, n.Weights())

	n.Mutate(rng, 1, 0.5)
	after := n.Weights()
	for i := range before {
		assert.NotEqual(t, before[i], after[i])
	}
}

func TestFixedNetworkCrossover(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	a := NewZeroFixedNetwork(2, 3, 1)
	b := NewZeroFixedNetwork(2, 3, 1)
	ones := make([]float32, b.WeightCount())
	for i := range ones {
		ones[i] = 1
	}
	require.NoError(t, b.SetWeights(ones))

	for i := 0; i < 50; i++ {
		child, err := a.Crossover(rng, b)
		require.NoError(t, err)
		w := child.Weights()
		// Child is zeros, then a single run of ones, then zeros.
		transitions := 0
		for j := 1; j < len(w); j++ {
			if w[j] != w[j-1] {
				transitions++
			}
		}
		assert.LessOrEqual(t, transitions, 2)
		assert.Zero(t, w[len(w)-1], "the second cut point excludes the last element")
	}
	assert.Equal(t, make([]float32, a.WeightCount()), a.Weights(), "parents are not modified")

	_, err := a.Crossover(rng, NewZeroFixedNetwork(2, 4, 1))
	assert.ErrorIs(t, err, ErrArchitectureMismatch)

	withMemory := NewZeroFixedNetwork(2, 3, 1)
	withMemory.EnableMemory(rng)
	_, err = a.Crossover(rng, withMemory)
	assert.ErrorIs(t, err, ErrArchitectureMismatch)
}
