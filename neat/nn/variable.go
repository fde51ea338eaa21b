package nn

import (
	"github.com/baldhumanity/evocore/neat"
)

// incoming is one enabled connection feeding a node, by source index.
type incoming struct {
	from   int
	weight float32
}

// VariableNetwork is a runnable phenotype compiled from NEAT genes.
// Nodes live in an index arena in their original listing order; every node computes
// tanh(bias + sum of weighted incoming activations) in a cached evaluation order.
// Activations persist between Forward calls until Reset, so a network built from a cyclic
// genome reads the previous call's values along back edges.
type VariableNetwork struct {
	idToIndex   map[int]int
	ids         []int
	biases      []float32
	isInput     []bool
	inputs      []int // Indices of input nodes, in listing order
	outputs     []int // Indices of output nodes, in listing order
	incoming    [][]incoming
	order       []int
	cyclic      bool
	connections int

	activations []float32
	outBuf      []float32
}

// Compile builds a network from node and connection genes. Disabled connections and
// connections that reference unknown node ids are dropped. The evaluation order comes
// from Kahn's algorithm; if the enabled graph has a cycle the order falls back to all
// inputs, then all hidden nodes, then all outputs, each in listing order.
func Compile(nodes []neat.NodeGene, conns []neat.ConnectionGene) *VariableNetwork {
	net := &VariableNetwork{
		idToIndex:   make(map[int]int, len(nodes)),
		ids:         make([]int, len(nodes)),
		biases:      make([]float32, len(nodes)),
		isInput:     make([]bool, len(nodes)),
		incoming:    make([][]incoming, len(nodes)),
		activations: make([]float32, len(nodes)),
	}
	for i, n := range nodes {
		net.idToIndex[n.ID] = i
		net.ids[i] = n.ID
		net.biases[i] = n.Bias
		switch n.Kind {
		case neat.InputNode:
			net.inputs = append(net.inputs, i)
			net.isInput[i] = true
		case neat.OutputNode:
			net.outputs = append(net.outputs, i)
		}
	}
	net.outBuf = make([]float32, len(net.outputs))

	// Gather enabled connections and the graph for the topological sort.
	inDegree := make([]int, len(nodes))
	graph := make([][]int, len(nodes))
	for _, c := range conns {
		if !c.Enabled {
			continue
		}
		from, okFrom := net.idToIndex[c.From]
		to, okTo := net.idToIndex[c.To]
		if !okFrom || !okTo {
			continue
		}
		net.incoming[to] = append(net.incoming[to], incoming{from: from, weight: c.Weight})
		graph[from] = append(graph[from], to)
		inDegree[to]++
		net.connections++
	}

	// Kahn's algorithm, seeded in index order.
	queue := make([]int, 0, len(nodes))
	for i, d := range inDegree {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	order := make([]int, 0, len(nodes))
	for head := 0; head < len(queue); head++ {
		u := queue[head]
		order = append(order, u)
		for _, v := range graph[u] {
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	if len(order) < len(nodes) {
		net.cyclic = true
		order = order[:0]
		for _, kind := range []neat.NodeKind{neat.InputNode, neat.HiddenNode, neat.OutputNode} {
			for i, n := range nodes {
				if n.Kind == kind {
					order = append(order, i)
				}
			}
		}
	}
	net.order = order
	return net
}

// FromGenome compiles the genome's nodes and connections.
func FromGenome(g *neat.Genome) *VariableNetwork {
	return Compile(g.Nodes, g.Connections)
}

// Forward computes the output activations. Inputs are assigned to input nodes in listing
// order; missing values are zero and extra values are ignored. The returned slice is owned
// by the network and overwritten by the next call.
func (net *VariableNetwork) Forward(inputs []float32) []float32 {
	for i, idx := range net.inputs {
		if i < len(inputs) {
			net.activations[idx] = inputs[i]
		} else {
			net.activations[idx] = 0
		}
	}

	for _, idx := range net.order {
		if net.isInput[idx] {
			continue
		}
		sum := net.biases[idx]
		for _, in := range net.incoming[idx] {
			sum += net.activations[in.from] * in.weight
		}
		net.activations[idx] = tanh32(sum)
	}

	for i, idx := range net.outputs {
		net.outBuf[i] = net.activations[idx]
	}
	return net.outBuf
}

// Reset zeroes all node activations.
func (net *VariableNetwork) Reset() {
	for i := range net.activations {
		net.activations[i] = 0
	}
}

// InputCount returns the number of input nodes.
func (net *VariableNetwork) InputCount() int { return len(net.inputs) }

// OutputCount returns the number of output nodes.
func (net *VariableNetwork) OutputCount() int { return len(net.outputs) }

// NodeCount returns the number of nodes.
func (net *VariableNetwork) NodeCount() int { return len(net.biases) }

// ConnectionCount returns the number of enabled, resolvable connections.
func (net *VariableNetwork) ConnectionCount() int { return net.connections }

// Cyclic reports whether the evaluation order is the type-ordered fallback.
func (net *VariableNetwork) Cyclic() bool { return net.cyclic }

// Order returns the node ids in evaluation order.
func (net *VariableNetwork) Order() []int {
	order := make([]int, len(net.order))
	for i, idx := range net.order {
		order[i] = net.ids[idx]
	}
	return order
}
