// Package analysis runs one complete dependency analysis: expand the
// project, scan it, build the graph, optionally reduce it, and serialize
// the payloads. A run is synchronous and owns all of its state; only the
// category table is shared, and it is read-only.
package analysis

import (
	"github.com/dgallion1/texgraph/internal/category"
	"github.com/dgallion1/texgraph/internal/expand"
	"github.com/dgallion1/texgraph/internal/graph"
	"github.com/dgallion1/texgraph/internal/scanner"
	"github.com/dgallion1/texgraph/internal/serialize"
)

// Pipeline phases, in order. Reported through Options.OnPhase.
const (
	PhaseExpanding   = "expanding"
	PhaseScanning    = "scanning"
	PhaseBuilding    = "building"
	PhaseReducing    = "reducing"
	PhaseSerializing = "serializing"
)

// Options selects what to analyze and how.
type Options struct {
	// Root is the path of the main .tex file.
	Root string
	// Chapters restricts the scan to chapter ordinals or titles. Empty
	// means the whole document.
	Chapters []string
	// Kinds restricts which canonical categories become nodes. Empty means
	// all eight.
	Kinds []string
	// Reduce applies transitive reduction to the finished graph.
	Reduce bool
	// CategoryFile optionally points at a TOML file overriding the
	// built-in category table.
	CategoryFile string
	// OnPhase, when set, is called as each pipeline phase starts.
	OnPhase func(phase string)
}

// Result is a finished run. Cycles is a warning, not a failure: the graph
// is valid and reduction is well-defined over it.
type Result struct {
	Graph  *graph.Graph
	Cycles [][]string
	DOT    string
	TikZ   string
	Report string
}

// CountsByKind tallies the graph's statements per canonical category.
func (r *Result) CountsByKind() map[category.Kind]int {
	counts := make(map[category.Kind]int)
	for _, n := range r.Graph.Nodes() {
		counts[n.Kind]++
	}
	return counts
}

// Run executes the full pipeline. The first fatal condition aborts the run
// with a structured *texdoc.Error; no partial result escapes.
func Run(opts Options) (*Result, error) {
	table, kinds, err := prepare(opts)
	if err != nil {
		return nil, err
	}
	phase := func(p string) {
		if opts.OnPhase != nil {
			opts.OnPhase(p)
		}
	}

	phase(PhaseExpanding)
	doc, err := expand.Project(opts.Root)
	if err != nil {
		return nil, err
	}

	phase(PhaseScanning)
	events, err := scanner.Scan(doc)
	if err != nil {
		return nil, err
	}

	phase(PhaseBuilding)
	g, err := graph.Build(events, table, graph.BuildOptions{
		Chapters: graph.NewSelection(opts.Chapters),
		Kinds:    kinds,
	})
	if err != nil {
		return nil, err
	}
	cycles := graph.Cycles(g)

	if opts.Reduce {
		phase(PhaseReducing)
		g = graph.Reduce(g)
	}

	phase(PhaseSerializing)
	return &Result{
		Graph:  g,
		Cycles: cycles,
		DOT:    serialize.DOT(g, table),
		TikZ:   serialize.TikZ(g, table),
		Report: serialize.Report(g, cycles),
	}, nil
}

func prepare(opts Options) (*category.Table, map[category.Kind]bool, error) {
	table := category.Default()
	if opts.CategoryFile != "" {
		var err error
		if table, err = category.Load(opts.CategoryFile); err != nil {
			return nil, nil, err
		}
	}
	var kinds map[category.Kind]bool
	for _, name := range opts.Kinds {
		kind, err := category.ParseKind(name)
		if err != nil {
			return nil, nil, err
		}
		if kinds == nil {
			kinds = make(map[category.Kind]bool)
		}
		kinds[kind] = true
	}
	return table, kinds, nil
}
