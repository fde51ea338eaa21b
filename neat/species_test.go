package neat

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clusteredPopulation returns genomes from two clearly separated innovation families.
func clusteredPopulation(perCluster int) []*Genome {
	var pop []*Genome
	for c := 0; c < 2; c++ {
		for i := 0; i < perCluster; i++ {
			g := NewGenome(2, 1)
			for innov := 1; innov <= 5; innov++ {
				g.Connections = append(g.Connections, conn(c*100+innov, 0, 2, 0.1*float32(i%3)))
			}
			g.Fitness = float32(c*10 + i)
			pop = append(pop, g)
		}
	}
	return pop
}

func partition(species []*Species) [][]int {
	var groups [][]int
	for _, s := range species {
		members := append([]int(nil), s.Members...)
		sort.Ints(members)
		groups = append(groups, members)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}

func TestSpeciateFromScratch(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	config := DefaultConfig().Operators
	pop := clusteredPopulation(4)

	species, next := Speciate(rng, pop, nil, &config, 0)

	// Without previous species every genome founds its own species.
	require.Len(t, species, len(pop))
	assert.Equal(t, len(pop), next)
	for i, s := range species {
		assert.Equal(t, i, s.ID)
		assert.Equal(t, []int{i}, s.Members)
		assert.Equal(t, i, s.Representative)
	}
}

func TestSpeciateAssignsToExistingSpecies(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	config := DefaultConfig().Operators
	pop := clusteredPopulation(5)

	existing := []*Species{
		{ID: 7, Members: []int{0, 1}, StagnantGenerations: 3},
		{ID: 9, Members: []int{5, 6}},
	}
	species, next := Speciate(rng, pop, existing, &config, 10)

	require.Len(t, species, 2)
	assert.Equal(t, 10, next)
	assert.Equal(t, [][]int{{0, 1, 2, 3, 4}, {5, 6, 7, 8, 9}}, partition(species))

	byID := map[int]*Species{}
	for _, s := range species {
		byID[s.ID] = s
	}
	require.Contains(t, byID, 7)
	require.Contains(t, byID, 9)
	assert.Equal(t, 3, byID[7].StagnantGenerations)
	// Representative is the best-fitness member.
	assert.Equal(t, 4, byID[7].Representative)
	assert.Equal(t, 9, byID[9].Representative)
	assert.Equal(t, float32(14), byID[9].BestFitness)
}

func TestSpeciateIsStableOnUnchangedPopulation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	config := DefaultConfig().Operators
	pop := clusteredPopulation(6)

	existing := []*Species{{ID: 0, Members: []int{0}}, {ID: 1, Members: []int{6}}}
	first, next := Speciate(rng, pop, existing, &config, 2)
	second, next2 := Speciate(rng, pop, first, &config, next)

	assert.Equal(t, len(first), len(second))
	assert.Equal(t, partition(first), partition(second))
	assert.Equal(t, next, next2)
}

func TestSpeciateDropsEmptySpeciesAndSkipsStaleMembers(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	config := DefaultConfig().Operators
	pop := clusteredPopulation(2)

	existing := []*Species{
		{ID: 1, Members: []int{}},
		{ID: 2, Members: []int{99}},
		{ID: 3, Members: []int{0}},
	}
	species, next := Speciate(rng, pop, existing, &config, 4)

	ids := []int{}
	for _, s := range species {
		ids = append(ids, s.ID)
	}
	// Species 3 absorbs the first cluster; the second cluster founds new species 4 and 5.
	assert.Equal(t, []int{3, 4, 5}, ids)
	assert.Equal(t, 6, next)
}

func TestSpeciateEmptyPopulation(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	config := DefaultConfig().Operators
	species, next := Speciate(rng, nil, []*Species{{ID: 1, Members: []int{0}}}, &config, 4)
	assert.Empty(t, species)
	assert.NotNil(t, species)
	assert.Equal(t, 4, next)
}

func TestCalculateAdjustedFitness(t *testing.T) {
	pop := []*Genome{{Fitness: 4}, {Fitness: 2}, {Fitness: 6}}
	s := &Species{Members: []int{0, 2}}
	CalculateAdjustedFitness(s, pop)
	assert.Equal(t, float32(2), pop[0].AdjustedFitness)
	assert.Equal(t, float32(3), pop[2].AdjustedFitness)
	assert.Zero(t, pop[1].AdjustedFitness)
	assert.Equal(t, float32(5), s.TotalAdjustedFitness)
}

func TestSummarizeSpecies(t *testing.T) {
	summary := SummarizeSpecies([]*Species{
		{Members: []int{0, 1, 2}},
		{Members: []int{3}},
	})
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 3, summary.LargestSize)
	assert.InDelta(t, 2.0, summary.MeanSize, 1e-9)
	assert.InDelta(t, 1.4142135, summary.StdevSize, 1e-6)

	assert.Equal(t, SpeciesSummary{}, SummarizeSpecies(nil))
}

func TestSummarizeFitness(t *testing.T) {
	s := SummarizeFitness([]*Genome{{Fitness: 1}, {Fitness: 3}})
	assert.InDelta(t, 2.0, s.Mean, 1e-9)
	assert.InDelta(t, 1.4142135, s.Stdev, 1e-6)
	assert.Equal(t, 3.0, s.Max)
	assert.Equal(t, 1.0, s.Min)

	single := SummarizeFitness([]*Genome{{Fitness: 5}})
	assert.Zero(t, single.Stdev)
}
