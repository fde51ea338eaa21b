package neat

import (
	"math"
	"math/rand"
	"sort"
)

// Reproduce creates the next generation from the surviving species.
//
// Fitness sharing is applied to every species, offspring counts are allocated in
// proportion to each species' total adjusted fitness, the Elitism best members of each
// species are copied unchanged and the remaining offspring are produced by Crossover
// between parents drawn from the top SurvivalThreshold fraction, followed by Mutate and
// the structural mutations. Offspring of a species are laid out contiguously and the
// species' Members are rewritten to their indices in the returned population, so the next
// Speciate call draws candidate representatives from the species' own offspring.
func Reproduce(rng *rand.Rand, population []*Genome, species []*Species, config *Config, tracker *InnovationTracker) []*Genome {
	pc := &config.Population
	if len(species) == 0 {
		return []*Genome{}
	}

	totals := make([]float32, len(species))
	previousSizes := make([]int, len(species))
	for i, sp := range species {
		CalculateAdjustedFitness(sp, population)
		totals[i] = sp.TotalAdjustedFitness
		previousSizes[i] = len(sp.Members)
	}
	spawnAmounts := computeSpawnAmounts(rng, totals, previousSizes, pc.PopSize, pc.MinSpeciesSize)

	newPopulation := make([]*Genome, 0, pc.PopSize)
	for i, sp := range species {
		spawn := spawnAmounts[i]
		first := len(newPopulation)

		// Sort old members by fitness (descending) for elitism and parent selection.
		oldMembers := make([]*Genome, 0, len(sp.Members))
		for _, m := range sp.Members {
			oldMembers = append(oldMembers, population[m])
		}
		sort.SliceStable(oldMembers, func(a, b int) bool {
			return oldMembers[a].Fitness > oldMembers[b].Fitness
		})

		// Transfer elites.
		for j := 0; j < pc.Elitism && j < len(oldMembers) && spawn > 0; j++ {
			newPopulation = append(newPopulation, oldMembers[j].Clone())
			spawn--
		}

		if spawn > 0 && len(oldMembers) > 0 {
			survivalCutoff := int(math.Ceil(pc.SurvivalThreshold * float64(len(oldMembers))))
			survivalCutoff = min(max(survivalCutoff, 2), len(oldMembers))
			parents := oldMembers[:survivalCutoff]

			for ; spawn > 0; spawn-- {
				parent1 := parents[rng.Intn(len(parents))]
				parent2 := parents[rng.Intn(len(parents))]
				child := Crossover(rng, parent1, parent2)
				Mutate(rng, child, &config.Operators)
				if rng.Float64() < config.Operators.NodeAddRate {
					MutateAddNode(rng, child, tracker)
				}
				if rng.Float64() < config.Operators.ConnAddRate {
					MutateAddConnection(rng, child, tracker, pc.FeedForward)
				}
				newPopulation = append(newPopulation, child)
			}
		}

		sp.Members = sp.Members[:0]
		for idx := first; idx < len(newPopulation); idx++ {
			sp.Members = append(sp.Members, idx)
		}
	}
	return newPopulation
}

// computeSpawnAmounts calculates the number of offspring each species should produce.
// The result sums to popSize whenever the minimum sizes allow it.
func computeSpawnAmounts(rng *rand.Rand, totals []float32, previousSizes []int, popSize int, minSpeciesSize int) []int {
	spawnAmounts := make([]int, len(totals))
	if len(totals) == 0 {
		return spawnAmounts
	}
	// Never let the minimum alone exceed the population budget.
	minSize := min(minSpeciesSize, popSize/len(totals))

	// Shift totals so the weakest species weighs zero; negative fitness stays meaningful.
	lowest := totals[0]
	for _, t := range totals[1:] {
		lowest = min(lowest, t)
	}
	var sum float64
	for _, t := range totals {
		sum += float64(t - lowest)
	}

	for i, t := range totals {
		var s float64
		if sum > 0 {
			// Proportional spawn based on adjusted fitness
			s = float64(t-lowest) / sum * float64(popSize)
		} else {
			s = float64(popSize) / float64(len(totals))
		}
		s = math.Max(float64(minSize), s)

		// Move halfway from the previous size toward the target to damp oscillation.
		ps := previousSizes[i]
		d := (s - float64(ps)) * 0.5
		c := int(math.Round(d))
		spawn := ps
		if c != 0 {
			spawn += c
		} else if d > 0 {
			spawn++
		} else if d < 0 {
			spawn--
		}
		spawnAmounts[i] = max(minSize, spawn)
	}

	// Normalize spawn amounts to match the target population size.
	totalSpawn := 0
	for _, sa := range spawnAmounts {
		totalSpawn += sa
	}
	if totalSpawn == 0 {
		for i := range spawnAmounts {
			spawnAmounts[i] = max(minSize, 1)
		}
		totalSpawn = len(spawnAmounts) * max(minSize, 1)
	}
	norm := float64(popSize) / float64(totalSpawn)
	currentTotal := 0
	for i, sa := range spawnAmounts {
		spawnAmounts[i] = max(minSize, int(math.Round(float64(sa)*norm)))
		currentTotal += spawnAmounts[i]
	}

	// Add/remove individuals one at a time from randomly ordered species.
	diff := popSize - currentTotal
	for diff != 0 {
		changed := false
		for _, idx := range rng.Perm(len(spawnAmounts)) {
			if diff == 0 {
				break
			}
			if diff > 0 {
				spawnAmounts[idx]++
				diff--
				changed = true
			} else if spawnAmounts[idx] > minSize {
				spawnAmounts[idx]--
				diff++
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return spawnAmounts
}
