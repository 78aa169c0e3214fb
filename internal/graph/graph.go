// Package graph builds the statement dependency graph from scan events and
// provides transitive reduction over it.
package graph

import (
	"github.com/dgallion1/texgraph/internal/category"
	"github.com/dgallion1/texgraph/internal/texdoc"
)

// EdgeKind distinguishes where a dependency was declared.
type EdgeKind string

const (
	// Dashed edges come from a statement's own \uses: a conceptual
	// prerequisite of stating the result.
	Dashed EdgeKind = "dashed"
	// Solid edges come from a proof's \uses: used in the argument, recorded
	// against the statement the proof establishes.
	Solid EdgeKind = "solid"
)

// Node is one tracked statement. Nodes are created during the single build
// pass and never mutated afterwards.
type Node struct {
	Label          string
	Kind           category.Kind
	Chapter        string // owning chapter title, "" for front matter
	ChapterOrdinal int    // 1-based, 0 for front matter
	Uses           []string
	Loc            texdoc.Location
}

// Edge points from a used label to the statement depending on it.
type Edge struct {
	From string
	To   string
	Kind EdgeKind
}

// Graph is the finished label → node mapping plus the edge list. Node
// iteration order is fixed at build time to document order.
type Graph struct {
	nodes map[string]*Node
	order []string
	Edges []Edge
}

func newGraph() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

func (g *Graph) addNode(n *Node) {
	g.nodes[n.Label] = n
	g.order = append(g.order, n.Label)
}

// Node returns the node for a label, or nil.
func (g *Graph) Node(label string) *Node {
	return g.nodes[label]
}

// Nodes returns all nodes in document order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, label := range g.order {
		out[i] = g.nodes[label]
	}
	return out
}

// Len is the node count.
func (g *Graph) Len() int {
	return len(g.order)
}

// succs builds a pair-level adjacency with edge multiplicity per pair.
func (g *Graph) succs() map[string]map[string]int {
	adj := make(map[string]map[string]int, len(g.order))
	for _, e := range g.Edges {
		m := adj[e.From]
		if m == nil {
			m = make(map[string]int)
			adj[e.From] = m
		}
		m[e.To]++
	}
	return adj
}
