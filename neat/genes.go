package neat

import "fmt"

// NodeKind defines the role of a node in the network.
type NodeKind int

const (
	InputNode NodeKind = iota
	HiddenNode
	OutputNode
)

// String returns the lower-case name of the node kind.
func (k NodeKind) String() string {
	switch k {
	case InputNode:
		return "input"
	case HiddenNode:
		return "hidden"
	case OutputNode:
		return "output"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// --------------------------- NodeGene ---------------------------

// NodeGene represents a node (neuron) in the genome.
// Node ids are global and stable across the run, but not necessarily contiguous or ordered.
type NodeGene struct {
	ID   int
	Kind NodeKind
	Bias float32
}

// String returns a string representation of the NodeGene.
func (ng NodeGene) String() string {
	return fmt.Sprintf("NodeGene(ID: %d, Kind: %s, Bias: %.3f)", ng.ID, ng.Kind, ng.Bias)
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionGene represents a connection between two nodes in the genome.
// Two genomes' connections with equal innovation numbers are the same gene,
// regardless of when each genome acquired it.
type ConnectionGene struct {
	Innovation int
	From       int // Source node id
	To         int // Destination node id
	Weight     float32
	Enabled    bool
}

// String returns a string representation of the ConnectionGene.
func (cg ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(Innov: %d, %d->%d, Weight: %.3f, Enabled: %t)",
		cg.Innovation, cg.From, cg.To, cg.Weight, cg.Enabled)
}
