package flat

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTournamentSelect(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, -1, TournamentSelect(rng, nil, 3))
	assert.Equal(t, 0, TournamentSelect(rng, []float32{5}, 3))

	fitness := []float32{0, 1, 2, 3, 4, 5, 6, 7}
	// A tournament as large as the population picks the best most of the time.
	best := 0
	for i := 0; i < 500; i++ {
		if TournamentSelect(rng, fitness, 100) == 7 {
			best++
		}
	}
	assert.Greater(t, best, 250)

	// Size below two is clamped, so the worst individual rarely wins.
	worst := 0
	for i := 0; i < 1000; i++ {
		idx := TournamentSelect(rng, fitness, 0)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, len(fitness))
		if idx == 0 {
			worst++
		}
	}
	assert.Less(t, worst, 50)
}

func TestBatchTournamentSelect(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	assert.Equal(t, []int{}, BatchTournamentSelect(rng, nil, 4, 2))
	assert.Equal(t, []int{}, BatchTournamentSelect(rng, []float32{1, 2}, 0, 2))

	selected := BatchTournamentSelect(rng, []float32{3, 1, 2}, 10, 2)
	require.Len(t, selected, 10)
	for _, idx := range selected {
		assert.Contains(t, []int{0, 1, 2}, idx)
	}
}

func TestCrossover(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := make([]float32, 10)
	b := []float32{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}

	for i := 0; i < 100; i++ {
		child := Crossover(rng, a, b)
		require.Len(t, child, 10)
		transitions := 0
		for j := 1; j < len(child); j++ {
			if child[j] != child[j-1] {
				transitions++
			}
		}
		assert.LessOrEqual(t, transitions, 2)
		assert.Zero(t, child[len(child)-1])
	}
	assert.Equal(t, make([]float32, 10), a)
	assert.Len(t, b, 12)

	assert.Equal(t, []float32{}, Crossover(rng, nil, b))
}

func TestBatchCrossover(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	children := BatchCrossover(rng, []float32{1, 2, 3}, []float32{4, 5, 6, 7}, 5)
	require.Len(t, children, 5)
	for _, c := range children {
		assert.Len(t, c, 3)
	}
	assert.Equal(t, [][]float32{}, BatchCrossover(rng, nil, []float32{1}, 3))
	assert.Equal(t, [][]float32{}, BatchCrossover(rng, []float32{1}, []float32{1}, 0))
}

func TestMutate(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	w := []float32{1, 2, 3, 4}
	Mutate(rng, w, 0, 1)
	assert.Equal(t, []float32{1, 2, 3, 4}, w)

	Mutate(rng, w, 1, 0.1)
	for i, v := range w {
		assert.NotEqual(t, float32(i+1), v)
		assert.InDelta(t, float64(i+1), float64(v), 1)
	}
}

func TestObjectiveSumsAndBatchUpdate(t *testing.T) {
	sums := ObjectiveSums([][3]float32{{1, 2, 3}, {-1, 0, 0.5}})
	assert.Equal(t, []float32{6, -0.5}, sums)

	BatchUpdate(sums, []int{0, 0, 1, -1, 7}, 1)
	assert.Equal(t, []float32{8, 0.5}, sums)
}

func TestArgsortDescending(t *testing.T) {
	assert.Equal(t, []int{2, 0, 3, 1}, ArgsortDescending([]float32{3, -1, 10, 0}))
	assert.Empty(t, ArgsortDescending(nil))
}

func TestStats(t *testing.T) {
	assert.Equal(t, Summary{}, Stats(nil))
	assert.Equal(t, Summary{Sum: 4, Min: -2, Max: 5}, Stats([]float32{1, -2, 5, 0}))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, Description{}, Describe(nil))

	d := Describe([]float32{3, 1, 2})
	assert.InDelta(t, 2, d.Mean, 1e-12)
	assert.InDelta(t, 1, d.StdDev, 1e-12)
	assert.InDelta(t, 2, d.Median, 1e-12)

	single := Describe([]float32{7})
	assert.Equal(t, Description{Mean: 7, Median: 7}, single)

	even := Describe([]float32{4, 1, 3, 2})
	assert.InDelta(t, 2.5, even.Mean, 1e-12)
	assert.InDelta(t, 2, even.Median, 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3), even.StdDev, 1e-12)
}
