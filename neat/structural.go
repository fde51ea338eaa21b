package neat

import (
	"math/rand"
)

// ConnectionKey identifies a structural connection by its endpoint node ids.
type ConnectionKey struct {
	From int
	To   int
}

// NodeSplit records the genes created the first time a connection was split by MutateAddNode.
type NodeSplit struct {
	NodeID        int
	InInnovation  int // Innovation of the connection from the original source to the new node
	OutInnovation int // Innovation of the connection from the new node to the original target
}

// InnovationTracker allocates globally unique innovation numbers and hidden node ids.
// The same structural mutation always receives the same numbers, so independently grown
// genomes stay alignable. The tracker is owned by the caller and threaded through
// generations explicitly; it is not safe for concurrent use.
type InnovationTracker struct {
	NextInnovation int
	NextNodeID     int
	Connections    map[ConnectionKey]int
	Splits         map[int]NodeSplit // Keyed by the innovation of the split connection
}

// NewInnovationTracker creates a tracker that hands out innovations from nextInnovation
// and hidden node ids from nextNodeID.
func NewInnovationTracker(nextInnovation, nextNodeID int) *InnovationTracker {
	return &InnovationTracker{
		NextInnovation: nextInnovation,
		NextNodeID:     nextNodeID,
		Connections:    make(map[ConnectionKey]int),
		Splits:         make(map[int]NodeSplit),
	}
}

// ConnectionInnovation returns the innovation number for a connection from -> to,
// allocating a new one the first time the pair is seen.
func (t *InnovationTracker) ConnectionInnovation(from, to int) int {
	key := ConnectionKey{From: from, To: to}
	if innov, ok := t.Connections[key]; ok {
		return innov
	}
	innov := t.NextInnovation
	t.NextInnovation++
	t.Connections[key] = innov
	return innov
}

// Split returns the node id and innovations produced by splitting conn.
func (t *InnovationTracker) Split(conn ConnectionGene) NodeSplit {
	if s, ok := t.Splits[conn.Innovation]; ok {
		return s
	}
	nodeID := t.NextNodeID
	t.NextNodeID++
	s := NodeSplit{
		NodeID:        nodeID,
		InInnovation:  t.ConnectionInnovation(conn.From, nodeID),
		OutInnovation: t.ConnectionInnovation(nodeID, conn.To),
	}
	t.Splits[conn.Innovation] = s
	return s
}

// ConnectFully adds an enabled connection from every input node to every output node,
// with weights drawn from a unit Gaussian clamped to the weight range.
func ConnectFully(rng *rand.Rand, g *Genome, tracker *InnovationTracker) {
	for _, in := range g.Nodes {
		if in.Kind != InputNode {
			continue
		}
		for _, out := range g.Nodes {
			if out.Kind != OutputNode {
				continue
			}
			g.Connections = append(g.Connections, ConnectionGene{
				Innovation: tracker.ConnectionInnovation(in.ID, out.ID),
				From:       in.ID,
				To:         out.ID,
				Weight:     randomWeight(rng),
				Enabled:    true,
			})
		}
	}
}

// MutateAddNode splits a random enabled connection: the connection is disabled and replaced
// by source -> new hidden node (weight 1) and new hidden node -> target (original weight).
// It reports whether the genome changed.
func MutateAddNode(rng *rand.Rand, g *Genome, tracker *InnovationTracker) bool {
	idx := pickConnection(rng, g.Connections, true)
	if idx < 0 {
		return false
	}
	conn := g.Connections[idx]
	split := tracker.Split(conn)
	for _, n := range g.Nodes {
		if n.ID == split.NodeID {
			return false // This genome already split the connection once.
		}
	}

	g.Connections[idx].Enabled = false
	g.Nodes = append(g.Nodes, NodeGene{ID: split.NodeID, Kind: HiddenNode})
	g.Connections = append(g.Connections,
		ConnectionGene{Innovation: split.InInnovation, From: conn.From, To: split.NodeID, Weight: 1.0, Enabled: true},
		ConnectionGene{Innovation: split.OutInnovation, From: split.NodeID, To: conn.To, Weight: conn.Weight, Enabled: true},
	)
	return true
}

// MutateAddConnection attempts to add a new connection between two previously unconnected nodes.
// Targets are never input nodes. With feedForward set, connections that would close a cycle
// are rejected. It reports whether a connection was added.
func MutateAddConnection(rng *rand.Rand, g *Genome, tracker *InnovationTracker, feedForward bool) bool {
	targets := make([]int, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.Kind != InputNode {
			targets = append(targets, n.ID)
		}
	}
	if len(g.Nodes) == 0 || len(targets) == 0 {
		return false
	}

	existing := make(map[ConnectionKey]bool, len(g.Connections))
	for _, c := range g.Connections {
		existing[ConnectionKey{From: c.From, To: c.To}] = true
	}

	// Limit attempts to prevent long loops in densely connected genomes.
	const maxAttempts = 20
	for i := 0; i < maxAttempts; i++ {
		from := g.Nodes[rng.Intn(len(g.Nodes))].ID
		to := targets[rng.Intn(len(targets))]
		if existing[ConnectionKey{From: from, To: to}] {
			continue
		}
		if feedForward && createsCycle(g, from, to) {
			continue
		}
		g.Connections = append(g.Connections, ConnectionGene{
			Innovation: tracker.ConnectionInnovation(from, to),
			From:       from,
			To:         to,
			Weight:     randomWeight(rng),
			Enabled:    true,
		})
		return true
	}
	return false
}

// createsCycle reports whether adding inNode -> outNode would close a cycle
// through the genome's enabled connections.
func createsCycle(g *Genome, inNode, outNode int) bool {
	if inNode == outNode {
		return true
	}

	adjacency := make(map[int][]int)
	for _, c := range g.Connections {
		if c.Enabled {
			adjacency[c.From] = append(adjacency[c.From], c.To)
		}
	}

	visited := map[int]bool{outNode: true}
	queue := []int{outNode}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == inNode {
			return true
		}
		for _, next := range adjacency[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

func randomWeight(rng *rand.Rand) float32 {
	return clamp32(float32(rng.NormFloat64()), -weightLimit, weightLimit)
}
