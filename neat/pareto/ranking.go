package pareto

import "math/rand"

// Ranking is the NSGA-II view of a whole population: fronts, the rank of every index and
// the crowding distance of every index within its own front.
type Ranking struct {
	Fronts   [][]int
	Ranks    []int
	Crowding map[int]float64
}

// Rank sorts objs into fronts and computes per-front crowding distances.
func Rank(objs []Objectives) *Ranking {
	fronts := NonDominatedSort(objs)
	r := &Ranking{
		Fronts:   fronts,
		Ranks:    BuildRankMap(fronts, len(objs)),
		Crowding: make(map[int]float64, len(objs)),
	}
	for _, front := range fronts {
		for idx, d := range CrowdingDistance(objs, front) {
			r.Crowding[idx] = d
		}
	}
	return r
}

// Len returns the population size the ranking was built for.
func (r *Ranking) Len() int { return len(r.Ranks) }

// Select runs one crowded binary tournament.
func (r *Ranking) Select(rng *rand.Rand) int {
	return TournamentSelect(rng, r.Len(), r.Ranks, r.Crowding)
}

// SelectN runs k independent tournaments. It returns nil for an empty population.
func (r *Ranking) SelectN(rng *rand.Rand, k int) []int {
	if r.Len() == 0 {
		return nil
	}
	selected := make([]int, k)
	for i := range selected {
		selected[i] = r.Select(rng)
	}
	return selected
}

// Best returns the indices of the first front, or nil for an empty population.
func (r *Ranking) Best() []int {
	if len(r.Fronts) == 0 {
		return nil
	}
	return r.Fronts[0]
}
