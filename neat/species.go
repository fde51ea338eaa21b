package neat

import (
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// Species represents a group of genetically similar genomes.
// Members and Representative are indices into the population slice the species was built from.
type Species struct {
	ID                   int
	Representative       int   // Best-fitness member, used as the species identity next generation
	Members              []int // Population indices
	BestFitness          float32
	StagnantGenerations  int     // Maintained by the orchestration layer (see StagnationTracker)
	TotalAdjustedFitness float32 // Set by CalculateAdjustedFitness
}

// Size returns the number of members.
func (s *Species) Size() int {
	return len(s.Members)
}

// Speciate partitions the population into species based on compatibility distance.
//
// Each non-empty species from the previous generation draws one of its previous members
// at random as its candidate representative. Genomes are then visited in a random order
// and join the first of those species (in list order) whose representative is closer
// than CompatibilityThreshold; there is no search for the closest species. Genomes
// matching none of them each found a new singleton species, with ids allocated from
// nextSpeciesID in population order. Afterwards every species' representative becomes its
// best-fitness member, and species left without members are dropped.
//
// It returns the surviving species and the next free species id.
func Speciate(rng *rand.Rand, population []*Genome, existing []*Species, config *OperatorConfig, nextSpeciesID int) ([]*Species, int) {
	if len(population) == 0 {
		return []*Species{}, nextSpeciesID
	}
	threshold := float32(config.CompatibilityThreshold)
	coeffs := config.Coefficients()

	speciesList := make([]*Species, 0, len(existing))
	for _, old := range existing {
		candidates := make([]int, 0, len(old.Members))
		for _, m := range old.Members {
			if m >= 0 && m < len(population) {
				candidates = append(candidates, m)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		speciesList = append(speciesList, &Species{
			ID:                  old.ID,
			Representative:      candidates[rng.Intn(len(candidates))],
			StagnantGenerations: old.StagnantGenerations,
		})
	}

	assigned := make([]bool, len(population))
	for _, idx := range rng.Perm(len(population)) {
		genome := population[idx]
		for _, sp := range speciesList {
			if Distance(genome, population[sp.Representative], coeffs) < threshold {
				sp.Members = append(sp.Members, idx)
				assigned[idx] = true
				break
			}
		}
	}

	newID := nextSpeciesID
	for idx, ok := range assigned {
		if ok {
			continue
		}
		speciesList = append(speciesList, &Species{
			ID:             newID,
			Representative: idx,
			Members:        []int{idx},
		})
		newID++
	}

	survivors := speciesList[:0]
	for _, sp := range speciesList {
		if len(sp.Members) == 0 {
			continue
		}
		best := sp.Members[0]
		bestFitness := population[best].Fitness
		for _, m := range sp.Members[1:] {
			if f := population[m].Fitness; f > bestFitness {
				best, bestFitness = m, f
			}
		}
		sp.Representative = best
		sp.BestFitness = bestFitness
		survivors = append(survivors, sp)
	}
	return survivors, newID
}

// CalculateAdjustedFitness applies fitness sharing: every member's AdjustedFitness is its
// fitness divided by the species size. The sum is recorded in TotalAdjustedFitness.
func CalculateAdjustedFitness(s *Species, population []*Genome) {
	size := float32(len(s.Members))
	if size == 0 {
		return
	}
	var total float32
	for _, m := range s.Members {
		if m < 0 || m >= len(population) {
			continue
		}
		g := population[m]
		g.AdjustedFitness = g.Fitness / size
		total += g.AdjustedFitness
	}
	s.TotalAdjustedFitness = total
}

// SpeciesSummary reports per-generation species partitioning diagnostics.
type SpeciesSummary struct {
	Count       int
	MeanSize    float64
	StdevSize   float64
	LargestSize int
}

// SummarizeSpecies computes species count and size statistics.
func SummarizeSpecies(species []*Species) SpeciesSummary {
	summary := SpeciesSummary{Count: len(species)}
	if len(species) == 0 {
		return summary
	}
	sizes := make([]float64, len(species))
	for i, s := range species {
		sizes[i] = float64(len(s.Members))
		summary.LargestSize = max(summary.LargestSize, len(s.Members))
	}
	summary.MeanSize = stat.Mean(sizes, nil)
	if len(sizes) > 1 {
		summary.StdevSize = stat.StdDev(sizes, nil)
	}
	return summary
}
