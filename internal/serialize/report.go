package serialize

import (
	"fmt"
	"strings"

	"github.com/dgallion1/texgraph/internal/category"
	"github.com/dgallion1/texgraph/internal/graph"
)

// Report renders a Markdown summary of a finished run: statement counts per
// category, edge counts per style, and any dependency-cycle warnings. The
// API renders it to HTML; the CLI can write it next to the other artifacts.
func Report(g *graph.Graph, cycles [][]string) string {
	counts := make(map[category.Kind]int)
	for _, n := range g.Nodes() {
		counts[n.Kind]++
	}
	dashed, solid := 0, 0
	for _, e := range g.Edges {
		if e.Kind == graph.Dashed {
			dashed++
		} else {
			solid++
		}
	}

	var sb strings.Builder
	sb.WriteString("# Dependency analysis\n\n")
	fmt.Fprintf(&sb, "%d statements, %d dependencies (%d stated, %d via proofs).\n\n",
		g.Len(), len(g.Edges), dashed, solid)

	sb.WriteString("## Statements by category\n\n")
	sb.WriteString("| Category | Count |\n|---|---|\n")
	for _, kind := range category.Order {
		fmt.Fprintf(&sb, "| %s | %d |\n", kind, counts[kind])
	}
	sb.WriteString("\n")

	if len(cycles) > 0 {
		sb.WriteString("## Dependency cycles\n\n")
		sb.WriteString("These statements depend on each other, directly or transitively:\n\n")
		for _, cycle := range cycles {
			fmt.Fprintf(&sb, "- %s\n", strings.Join(cycle, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
