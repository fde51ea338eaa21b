// Package flat provides genetic operators over plain fitness and weight slices, for
// fixed-topology weight evolution without per-individual records.
package flat

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// TournamentSelect samples size indices of fitness uniformly with replacement and returns
// the fittest one sampled. size is clamped to [2, len(fitness)]. It returns -1 for an
// empty slice.
func TournamentSelect(rng *rand.Rand, fitness []float32, size int) int {
	n := len(fitness)
	if n == 0 {
		return -1
	}
	size = min(max(size, 2), n)
	best := rng.Intn(n)
	for i := 1; i < size; i++ {
		if c := rng.Intn(n); fitness[c] > fitness[best] {
			best = c
		}
	}
	return best
}

// BatchTournamentSelect runs count independent tournaments. It returns an empty slice for
// an empty population or a non-positive count.
func BatchTournamentSelect(rng *rand.Rand, fitness []float32, count, size int) []int {
	if len(fitness) == 0 || count <= 0 {
		return []int{}
	}
	selected := make([]int, count)
	for i := range selected {
		selected[i] = TournamentSelect(rng, fitness, size)
	}
	return selected
}

// Crossover performs two-point crossover: the child takes a's values before p1 and from p2
// on, and b's values in [p1, p2), with both cut points drawn uniformly over the shared
// length. The child has length min(len(a), len(b)); the parents are not modified.
func Crossover(rng *rand.Rand, a, b []float32) []float32 {
	n := min(len(a), len(b))
	if n == 0 {
		return []float32{}
	}
	p1, p2 := rng.Intn(n), rng.Intn(n)
	if p1 > p2 {
		p1, p2 = p2, p1
	}
	child := make([]float32, 0, n)
	child = append(child, a[:p1]...)
	child = append(child, b[p1:p2]...)
	child = append(child, a[p2:n]...)
	return child
}

// BatchCrossover produces count children of the same two parents.
func BatchCrossover(rng *rand.Rand, a, b []float32, count int) [][]float32 {
	if min(len(a), len(b)) == 0 || count <= 0 {
		return [][]float32{}
	}
	children := make([][]float32, count)
	for i := range children {
		children[i] = Crossover(rng, a, b)
	}
	return children
}

// Mutate adds N(0, strength) noise in place to each element with probability rate.
func Mutate(rng *rand.Rand, w []float32, rate, strength float64) {
	for i := range w {
		if rng.Float64() < rate {
			w[i] += float32(rng.NormFloat64() * strength)
		}
	}
}

// ObjectiveSums scalarises objective vectors by summing their components.
func ObjectiveSums(objs [][3]float32) []float32 {
	sums := make([]float32, len(objs))
	for i, o := range objs {
		sums[i] = o[0] + o[1] + o[2]
	}
	return sums
}

// BatchUpdate adds delta to fitness at each index. Out-of-range indices are ignored.
func BatchUpdate(fitness []float32, indices []int, delta float32) {
	for _, idx := range indices {
		if idx >= 0 && idx < len(fitness) {
			fitness[idx] += delta
		}
	}
}

// ArgsortDescending returns the indices of values ordered from largest to smallest.
// The order of equal values is unspecified.
func ArgsortDescending(values []float32) []int {
	neg := make([]float64, len(values))
	for i, v := range values {
		neg[i] = -float64(v)
	}
	inds := make([]int, len(values))
	floats.Argsort(neg, inds)
	return inds
}
