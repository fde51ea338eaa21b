package neat

import (
	"sort"
)

// StagnationTracker maintains Species.StagnantGenerations across generations and
// detects species that stopped improving.
type StagnationTracker struct {
	MaxStagnation  int
	SpeciesElitism int             // Number of best species never removed for stagnation
	Best           map[int]float32 // Species id -> best fitness seen so far
}

// NewStagnationTracker creates a stagnation tracker from the population config.
func NewStagnationTracker(config *PopulationConfig) *StagnationTracker {
	return &StagnationTracker{
		MaxStagnation:  config.MaxStagnation,
		SpeciesElitism: config.SpeciesElitism,
		Best:           make(map[int]float32),
	}
}

// Update compares every species' BestFitness with its historical best, resetting or
// incrementing StagnantGenerations, and splits the list into survivors and stagnant
// species. The SpeciesElitism fittest species always survive. Survivors keep their
// relative order.
func (st *StagnationTracker) Update(species []*Species) (survivors, stagnant []*Species) {
	present := make(map[int]bool, len(species))
	for _, s := range species {
		present[s.ID] = true
		prev, seen := st.Best[s.ID]
		if !seen || s.BestFitness > prev {
			st.Best[s.ID] = s.BestFitness
			s.StagnantGenerations = 0
		} else {
			s.StagnantGenerations++
		}
	}
	for id := range st.Best {
		if !present[id] {
			delete(st.Best, id)
		}
	}

	// Sort by fitness (descending) to find the protected elite.
	ranked := append([]*Species(nil), species...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].BestFitness > ranked[j].BestFitness
	})
	protected := make(map[int]bool, st.SpeciesElitism)
	for i := 0; i < st.SpeciesElitism && i < len(ranked); i++ {
		protected[ranked[i].ID] = true
	}

	for _, s := range species {
		if s.StagnantGenerations >= st.MaxStagnation && !protected[s.ID] {
			stagnant = append(stagnant, s)
			delete(st.Best, s.ID)
			continue
		}
		survivors = append(survivors, s)
	}
	return survivors, stagnant
}
