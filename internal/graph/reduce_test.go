package graph

import (
	"reflect"
	"testing"

	"github.com/dgallion1/texgraph/internal/category"
)

func graphOf(labels []string, edges []Edge) *Graph {
	g := newGraph()
	for _, l := range labels {
		g.addNode(&Node{Label: l, Kind: category.Lemma})
	}
	g.Edges = edges
	return g
}

func reachSet(g *Graph) map[[2]string]bool {
	adj := g.succs()
	set := make(map[[2]string]bool)
	for _, from := range g.order {
		for _, to := range g.order {
			if from != to && reachable(adj, from, to) {
				set[[2]string{from, to}] = true
			}
		}
	}
	return set
}

func TestReduce_RemovesShortcutEdge(t *testing.T) {
	g := graphOf([]string{"a", "b", "c"}, []Edge{
		{From: "a", To: "b", Kind: Dashed},
		{From: "b", To: "c", Kind: Solid},
		{From: "a", To: "c", Kind: Dashed},
	})
	r := Reduce(g)
	if len(r.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %+v", r.Edges)
	}
	set := edgeSet(r)
	if !set[(Edge{From: "a", To: "b", Kind: Dashed})] || !set[(Edge{From: "b", To: "c", Kind: Solid})] {
		t.Errorf("wrong surviving edges: %+v", r.Edges)
	}
}

func TestReduce_DiamondKeepsAllSides(t *testing.T) {
	g := graphOf([]string{"a", "b", "c", "d"}, []Edge{
		{From: "a", To: "b", Kind: Dashed},
		{From: "a", To: "c", Kind: Dashed},
		{From: "b", To: "d", Kind: Solid},
		{From: "c", To: "d", Kind: Solid},
		{From: "a", To: "d", Kind: Dashed},
	})
	r := Reduce(g)
	if len(r.Edges) != 4 {
		t.Fatalf("expected the a->d shortcut removed and nothing else, got %+v", r.Edges)
	}
	if edgeSet(r)[(Edge{From: "a", To: "d", Kind: Dashed})] {
		t.Error("a->d should be redundant through either side of the diamond")
	}
}

func TestReduce_PreservesReachability(t *testing.T) {
	g := graphOf([]string{"a", "b", "c", "d", "e"}, []Edge{
		{From: "a", To: "b", Kind: Dashed},
		{From: "b", To: "c", Kind: Dashed},
		{From: "a", To: "c", Kind: Solid},
		{From: "c", To: "d", Kind: Solid},
		{From: "a", To: "d", Kind: Dashed},
		{From: "b", To: "e", Kind: Solid},
		{From: "a", To: "e", Kind: Dashed},
	})
	before := reachSet(g)
	r := Reduce(g)
	if !reflect.DeepEqual(before, reachSet(r)) {
		t.Errorf("reduction changed reachability: %+v vs %+v", before, reachSet(r))
	}
	if len(r.Edges) >= len(g.Edges) {
		t.Errorf("expected at least one edge removed, got %+v", r.Edges)
	}
}

func TestReduce_Idempotent(t *testing.T) {
	g := graphOf([]string{"a", "b", "c", "d"}, []Edge{
		{From: "a", To: "b", Kind: Dashed},
		{From: "b", To: "c", Kind: Solid},
		{From: "a", To: "c", Kind: Dashed},
		{From: "c", To: "d", Kind: Dashed},
	})
	once := Reduce(g)
	twice := Reduce(once)
	if !reflect.DeepEqual(once.Edges, twice.Edges) {
		t.Errorf("reduction is not idempotent: %+v vs %+v", once.Edges, twice.Edges)
	}
}

func TestReduce_ParallelPairIsNotSelfRedundant(t *testing.T) {
	// A statement may depend on the same label via both its own \uses and
	// its proof's. The pair must not erase itself.
	g := graphOf([]string{"a", "b"}, []Edge{
		{From: "a", To: "b", Kind: Dashed},
		{From: "a", To: "b", Kind: Solid},
	})
	r := Reduce(g)
	if len(r.Edges) == 0 {
		t.Fatal("parallel edges erased each other")
	}
}

func TestReduce_CycleEdgesSurvive(t *testing.T) {
	g := graphOf([]string{"a", "b", "c"}, []Edge{
		{From: "a", To: "b", Kind: Dashed},
		{From: "b", To: "c", Kind: Dashed},
		{From: "c", To: "a", Kind: Dashed},
	})
	r := Reduce(g)
	if len(r.Edges) != 3 {
		t.Errorf("a simple cycle has no redundant edges, got %+v", r.Edges)
	}
}

func TestCycles(t *testing.T) {
	g := graphOf([]string{"a", "b", "c", "d"}, []Edge{
		{From: "a", To: "b", Kind: Dashed},
		{From: "b", To: "a", Kind: Solid},
		{From: "c", To: "d", Kind: Dashed},
	})
	got := Cycles(g)
	want := [][]string{{"a", "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCycles_SelfLoopAndAcyclic(t *testing.T) {
	g := graphOf([]string{"a", "b"}, []Edge{
		{From: "a", To: "a", Kind: Dashed},
		{From: "a", To: "b", Kind: Dashed},
	})
	if got := Cycles(g); !reflect.DeepEqual(got, [][]string{{"a"}}) {
		t.Errorf("expected self-loop component, got %v", got)
	}

	acyclic := graphOf([]string{"a", "b"}, []Edge{{From: "a", To: "b", Kind: Dashed}})
	if got := Cycles(acyclic); len(got) != 0 {
		t.Errorf("expected no cycles, got %v", got)
	}
}
