// Package pareto implements NSGA-II ranking over three maximised objectives:
// non-dominated sorting, crowding distance and crowded tournament selection.
package pareto

import (
	"math"
	"math/rand"
	"sort"
)

// Objectives holds the three objective values of one individual. Larger is better.
type Objectives [3]float32

// Dominates reports whether a is at least as good as b on every objective and strictly
// better on at least one. Equal vectors and trade-offs do not dominate.
func Dominates(a, b Objectives) bool {
	better := false
	for k := range a {
		if a[k] < b[k] {
			return false
		}
		if a[k] > b[k] {
			better = true
		}
	}
	return better
}

// NonDominatedSort partitions the indices of objs into ranked fronts. Front 0 holds the
// globally non-dominated individuals; every index appears in exactly one front.
func NonDominatedSort(objs []Objectives) [][]int {
	n := len(objs)
	if n == 0 {
		return [][]int{}
	}

	dominationCount := make([]int, n)
	dominatedSet := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if Dominates(objs[i], objs[j]) {
				dominatedSet[i] = append(dominatedSet[i], j)
				dominationCount[j]++
			} else if Dominates(objs[j], objs[i]) {
				dominatedSet[j] = append(dominatedSet[j], i)
				dominationCount[i]++
			}
		}
	}

	var fronts [][]int
	var current []int
	for i, c := range dominationCount {
		if c == 0 {
			current = append(current, i)
		}
	}
	for len(current) > 0 {
		fronts = append(fronts, current)
		var next []int
		for _, i := range current {
			for _, j := range dominatedSet[i] {
				dominationCount[j]--
				if dominationCount[j] == 0 {
					next = append(next, j)
				}
			}
		}
		current = next
	}
	return fronts
}

// BuildRankMap maps every index in [0, n) to the rank of its front. Indices absent from
// all fronts get len(fronts).
func BuildRankMap(fronts [][]int, n int) []int {
	ranks := make([]int, n)
	for i := range ranks {
		ranks[i] = len(fronts)
	}
	for rank, front := range fronts {
		for _, idx := range front {
			if idx >= 0 && idx < n {
				ranks[idx] = rank
			}
		}
	}
	return ranks
}

// CrowdingDistance computes the NSGA-II crowding distance of every member of front.
// Fronts of two or fewer members are all infinitely far apart. Otherwise, per objective,
// the boundary members become infinite and interior members accumulate the normalised
// gap between their neighbours. Objectives with zero range across the front are skipped.
func CrowdingDistance(objs []Objectives, front []int) map[int]float64 {
	distance := make(map[int]float64, len(front))
	if len(front) <= 2 {
		for _, idx := range front {
			distance[idx] = math.Inf(1)
		}
		return distance
	}
	for _, idx := range front {
		distance[idx] = 0
	}

	sorted := append([]int(nil), front...)
	for k := 0; k < len(Objectives{}); k++ {
		sort.SliceStable(sorted, func(a, b int) bool {
			return objs[sorted[a]][k] < objs[sorted[b]][k]
		})
		lo := float64(objs[sorted[0]][k])
		hi := float64(objs[sorted[len(sorted)-1]][k])
		span := hi - lo
		if span == 0 {
			continue
		}
		distance[sorted[0]] = math.Inf(1)
		distance[sorted[len(sorted)-1]] = math.Inf(1)
		for i := 1; i < len(sorted)-1; i++ {
			gap := float64(objs[sorted[i+1]][k]) - float64(objs[sorted[i-1]][k])
			distance[sorted[i]] += gap / span
		}
	}
	return distance
}

// TournamentSelect draws two distinct indices from [0, n) and returns the one with the
// lower rank, then the larger crowding distance, then the first drawn. It returns -1 when
// n is 0 and 0 when n is 1. Indices missing from crowding count as distance 0.
func TournamentSelect(rng *rand.Rand, n int, rankMap []int, crowding map[int]float64) int {
	switch {
	case n <= 0:
		return -1
	case n == 1:
		return 0
	}
	a := rng.Intn(n)
	b := rng.Intn(n)
	for b == a {
		b = rng.Intn(n)
	}

	rankOf := func(i int) int {
		if i < len(rankMap) {
			return rankMap[i]
		}
		return math.MaxInt
	}
	ra, rb := rankOf(a), rankOf(b)
	if ra != rb {
		if rb < ra {
			return b
		}
		return a
	}
	if crowding[b] > crowding[a] {
		return b
	}
	return a
}
