package neat

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/campoy/unique"
)

// Genome represents an individual organism in the population.
// It consists of NodeGenes and ConnectionGenes; the order of either slice carries no meaning
// for distance, crossover or mutation.
type Genome struct {
	Nodes           []NodeGene
	Connections     []ConnectionGene
	InputCount      int
	OutputCount     int
	Fitness         float32
	AdjustedFitness float32 // Fitness divided by species size, set by CalculateAdjustedFitness
}

// Coefficients weights the excess, disjoint and average weight-difference terms of Distance.
type Coefficients struct {
	Excess   float32
	Disjoint float32
	Weight   float32
}

// normalizeAbove is the genome size beyond which excess/disjoint counts are divided by the size.
const normalizeAbove = 20

// weightLimit bounds connection weights produced by Mutate.
const weightLimit = 2.0

// NewGenome creates a genome with inputCount input nodes (ids 0..inputCount-1) and
// outputCount output nodes (ids following the inputs), no hidden nodes and no connections.
func NewGenome(inputCount, outputCount int) *Genome {
	g := &Genome{
		Nodes:       make([]NodeGene, 0, inputCount+outputCount),
		InputCount:  inputCount,
		OutputCount: outputCount,
	}
	for i := 0; i < inputCount; i++ {
		g.Nodes = append(g.Nodes, NodeGene{ID: i, Kind: InputNode})
	}
	for i := 0; i < outputCount; i++ {
		g.Nodes = append(g.Nodes, NodeGene{ID: inputCount + i, Kind: OutputNode})
	}
	return g
}

// Clone creates a deep copy of the genome.
func (g *Genome) Clone() *Genome {
	c := *g
	c.Nodes = append([]NodeGene(nil), g.Nodes...)
	c.Connections = append([]ConnectionGene(nil), g.Connections...)
	return &c
}

// MaxInnovation returns the highest innovation number in the genome, or 0 when it has no connections.
func (g *Genome) MaxInnovation() int {
	maxInnov := 0
	for _, c := range g.Connections {
		if c.Innovation > maxInnov {
			maxInnov = c.Innovation
		}
	}
	return maxInnov
}

// EnabledCount returns the number of enabled connections.
func (g *Genome) EnabledCount() int {
	n := 0
	for _, c := range g.Connections {
		if c.Enabled {
			n++
		}
	}
	return n
}

// Validate reports duplicate node ids, connections referencing unknown nodes
// and input/output counts that disagree with the node kinds.
func (g *Genome) Validate() error {
	ids := make([]int, len(g.Nodes))
	known := make(map[int]bool, len(g.Nodes))
	inputs, outputs := 0, 0
	for i, n := range g.Nodes {
		ids[i] = n.ID
		known[n.ID] = true
		switch n.Kind {
		case InputNode:
			inputs++
		case OutputNode:
			outputs++
		}
	}
	sort.Ints(ids)
	unique.Slice(&ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) != len(g.Nodes) {
		return fmt.Errorf("genome has %d duplicate node ids", len(g.Nodes)-len(ids))
	}
	if inputs != g.InputCount {
		return fmt.Errorf("genome declares %d inputs but has %d input nodes", g.InputCount, inputs)
	}
	if outputs != g.OutputCount {
		return fmt.Errorf("genome declares %d outputs but has %d output nodes", g.OutputCount, outputs)
	}
	for _, c := range g.Connections {
		if !known[c.From] || !known[c.To] {
			return fmt.Errorf("connection %d references unknown node (%d->%d)", c.Innovation, c.From, c.To)
		}
	}
	return nil
}

// Distance calculates the NEAT compatibility distance between two genomes.
// Genes are aligned by innovation number; unmatched genes beyond the smaller of the
// two genomes' highest innovation numbers are excess, the rest disjoint.
func Distance(a, b *Genome, c Coefficients) float32 {
	if len(a.Connections) == 0 && len(b.Connections) == 0 {
		return 0
	}

	innovA := make(map[int]float32, len(a.Connections))
	innovB := make(map[int]float32, len(b.Connections))
	maxInnovA, maxInnovB := 0, 0
	for _, cg := range a.Connections {
		innovA[cg.Innovation] = cg.Weight
		if cg.Innovation > maxInnovA {
			maxInnovA = cg.Innovation
		}
	}
	for _, cg := range b.Connections {
		innovB[cg.Innovation] = cg.Weight
		if cg.Innovation > maxInnovB {
			maxInnovB = cg.Innovation
		}
	}
	excessAbove := min(maxInnovA, maxInnovB)

	excess, disjoint, matching := 0, 0, 0
	var weightDiff float32
	for innov, wa := range innovA {
		if wb, ok := innovB[innov]; ok {
			matching++
			weightDiff += abs32(wa - wb)
		} else if innov > excessAbove {
			excess++
		} else {
			disjoint++
		}
	}
	for innov := range innovB {
		if _, ok := innovA[innov]; ok {
			continue
		}
		if innov > excessAbove {
			excess++
		} else {
			disjoint++
		}
	}

	var weightAvg float32
	if matching > 0 {
		weightAvg = weightDiff / float32(matching)
	}

	n := float32(max(len(a.Connections), len(b.Connections), 1))
	if n > normalizeAbove {
		return c.Excess*float32(excess)/n + c.Disjoint*float32(disjoint)/n + c.Weight*weightAvg
	}
	return c.Excess*float32(excess) + c.Disjoint*float32(disjoint) + c.Weight*weightAvg
}

// Crossover creates a child genome from two parents.
// The child inherits every connection gene of the fitter parent (ties go to a); genes
// shared with the other parent are taken from either parent with equal probability,
// genes only present in the less fit parent are never inherited.
// Nodes and input/output counts come from the fitter parent and the child's fitness is 0.
func Crossover(rng *rand.Rand, a, b *Genome) *Genome {
	fitter, lessFit := a, b
	if b.Fitness > a.Fitness {
		fitter, lessFit = b, a
	}

	lessByInnov := make(map[int]ConnectionGene, len(lessFit.Connections))
	for _, cg := range lessFit.Connections {
		lessByInnov[cg.Innovation] = cg
	}

	child := &Genome{
		Nodes:       append([]NodeGene(nil), fitter.Nodes...),
		Connections: make([]ConnectionGene, 0, len(fitter.Connections)),
		InputCount:  fitter.InputCount,
		OutputCount: fitter.OutputCount,
	}
	for _, cg := range fitter.Connections {
		if other, ok := lessByInnov[cg.Innovation]; ok && rng.Intn(2) == 1 {
			child.Connections = append(child.Connections, other)
			continue
		}
		child.Connections = append(child.Connections, cg)
	}
	return child
}

// Mutate applies non-structural mutations to the genome in place.
// One draw against MutationRate gates the whole call; weight perturbation/replacement,
// enabling a disabled connection, disabling an enabled connection and deleting a
// connection are then each gated by their own rate. Adding nodes or connections
// needs innovation numbers and is left to MutateAddNode/MutateAddConnection.
func Mutate(rng *rand.Rand, g *Genome, config *OperatorConfig) {
	if rng.Float64() >= config.MutationRate {
		return
	}

	// Weight mutations
	if rng.Float64() < config.WeightMutationRate {
		for i := range g.Connections {
			conn := &g.Connections[i]
			if rng.Float64() < config.WeightReplaceRate {
				conn.Weight = rng.Float32()*2*weightLimit - weightLimit
			} else {
				perturbed := conn.Weight + float32(rng.NormFloat64()*config.WeightMutationStrength)
				conn.Weight = clamp32(perturbed, -weightLimit, weightLimit)
			}
		}
	}

	if len(g.Connections) > 0 {
		if rng.Float64() < config.ConnEnableRate {
			if idx := pickConnection(rng, g.Connections, false); idx >= 0 {
				g.Connections[idx].Enabled = true
			}
		}
		if rng.Float64() < config.ConnDisableRate && len(g.Connections) > 1 {
			if idx := pickConnection(rng, g.Connections, true); idx >= 0 {
				g.Connections[idx].Enabled = false
			}
		}
	}

	if rng.Float64() < config.ConnDeleteRate && len(g.Connections) > 1 {
		idx := rng.Intn(len(g.Connections))
		g.Connections = append(g.Connections[:idx], g.Connections[idx+1:]...)
	}
}

// pickConnection returns the index of a random connection whose Enabled flag equals enabled, or -1.
func pickConnection(rng *rand.Rand, conns []ConnectionGene, enabled bool) int {
	candidates := make([]int, 0, len(conns))
	for i, c := range conns {
		if c.Enabled == enabled {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	return candidates[rng.Intn(len(candidates))]
}
