package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baldhumanity/evocore/neat"
)

func TestDiagnoseAcyclic(t *testing.T) {
	nodes := []neat.NodeGene{
		{ID: 9, Kind: neat.OutputNode},
		{ID: 0, Kind: neat.InputNode},
		{ID: 1, Kind: neat.InputNode},
		{ID: 5, Kind: neat.HiddenNode},
	}
	conns := []neat.ConnectionGene{link(1, 0, 5, 1), link(2, 1, 5, 1), link(3, 5, 9, 1), link(4, 0, 9, 1)}

	topology := Diagnose(nodes, conns)
	assert.True(t, topology.Acyclic)
	assert.Empty(t, topology.Cycles)
	assert.Len(t, topology.Order, 4)

	position := map[int]int{}
	for i, id := range topology.Order {
		position[id] = i
	}
	for _, c := range conns {
		assert.Less(t, position[c.From], position[c.To], "%d must precede %d", c.From, c.To)
	}
}

func TestDiagnoseReportsCycles(t *testing.T) {
	nodes := []neat.NodeGene{
		{ID: 0, Kind: neat.InputNode},
		{ID: 3, Kind: neat.HiddenNode},
		{ID: 4, Kind: neat.HiddenNode},
		{ID: 6, Kind: neat.HiddenNode},
		{ID: 5, Kind: neat.OutputNode},
	}
	disabled := link(9, 5, 0, 1)
	disabled.Enabled = false
	conns := []neat.ConnectionGene{
		link(1, 0, 3, 1),
		link(2, 3, 4, 1),
		link(3, 4, 3, 1),
		link(4, 4, 5, 1),
		link(5, 6, 6, 1), // self-connection
		disabled,
		link(6, 5, 77, 1), // unknown target
	}

	topology := Diagnose(nodes, conns)
	assert.False(t, topology.Acyclic)
	assert.Empty(t, topology.Order)
	assert.Equal(t, [][]int{{3, 4}, {6}}, topology.Cycles)

	// The evaluator agrees that the graph needs the fallback order.
	assert.True(t, Compile(nodes, conns).Cyclic())
}

func TestDiagnoseEmpty(t *testing.T) {
	topology := Diagnose(nil, nil)
	assert.True(t, topology.Acyclic)
	assert.Empty(t, topology.Order)
	assert.Empty(t, topology.Cycles)
}
