package nn

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/baldhumanity/evocore/neat"
)

// Topology describes the enabled connection graph of a set of genes.
type Topology struct {
	Acyclic bool
	// Order is a topological order of node ids, ties broken by listing order.
	// Empty when the graph has a cycle.
	Order []int
	// Cycles lists the strongly connected groups of node ids that contain a cycle,
	// including single nodes with a self-connection. Ids within a group are sorted.
	Cycles [][]int
}

// Diagnose analyses the enabled connections between known nodes. It is intended for
// inspecting genomes, not for the evaluation hot path.
func Diagnose(nodes []neat.NodeGene, conns []neat.ConnectionGene) Topology {
	index := make(map[int]int, len(nodes))
	g := simple.NewDirectedGraph()
	for i, n := range nodes {
		index[n.ID] = i
		g.AddNode(simple.Node(i))
	}

	selfLoop := make(map[int]bool)
	for _, c := range conns {
		if !c.Enabled {
			continue
		}
		from, okFrom := index[c.From]
		to, okTo := index[c.To]
		if !okFrom || !okTo {
			continue
		}
		if from == to {
			selfLoop[from] = true // simple graphs reject self edges
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(to)))
	}

	idOf := func(n graph.Node) int { return nodes[n.ID()].ID }

	var t Topology
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) == 1 && !selfLoop[int(scc[0].ID())] {
			continue
		}
		group := make([]int, len(scc))
		for i, n := range scc {
			group[i] = idOf(n)
		}
		sort.Ints(group)
		t.Cycles = append(t.Cycles, group)
	}
	sort.Slice(t.Cycles, func(i, j int) bool { return t.Cycles[i][0] < t.Cycles[j][0] })

	if len(t.Cycles) > 0 {
		return t
	}
	sorted, err := topo.SortStabilized(g, byIndex)
	if err != nil {
		return t
	}
	t.Acyclic = true
	t.Order = make([]int, len(sorted))
	for i, n := range sorted {
		t.Order[i] = idOf(n)
	}
	return t
}

func byIndex(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}
