// Package serialize renders a finished dependency graph into the textual
// payloads consumed by the external rendering side: a Graphviz DOT
// attribute graph and a TikZ drawing. Node order follows the graph's
// build-time order; edge order is the order edges survived reduction.
package serialize

import (
	"fmt"
	"strings"

	"github.com/dgallion1/texgraph/internal/category"
	"github.com/dgallion1/texgraph/internal/graph"
)

// DOT renders the graph as a Graphviz digraph. Each node carries its shape,
// border color and fill color from the category table; each edge carries a
// dashed or solid style.
func DOT(g *graph.Graph, table *category.Table) string {
	var sb strings.Builder
	sb.WriteString("digraph dependencies {\n")
	sb.WriteString("\tbgcolor=transparent;\n")
	sb.WriteString("\tnode [penwidth=1.8, style=filled];\n")
	sb.WriteString("\tedge [arrowhead=vee];\n")

	for _, n := range g.Nodes() {
		st := table.Style(n.Kind)
		fmt.Fprintf(&sb, "\t%s [label=%s, shape=%s, color=%s, fillcolor=%s];\n",
			dotQuote(n.Label), dotQuote(displayName(n.Label)),
			st.Shape, st.BorderColor, st.FillColor)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&sb, "\t%s -> %s [style=%s];\n",
			dotQuote(e.From), dotQuote(e.To), e.Kind)
	}

	sb.WriteString("}\n")
	return sb.String()
}

// displayName is the part of a label after its last prefix separator, so
// "lem:ring-unit" renders as "ring-unit".
func displayName(label string) string {
	if i := strings.LastIndex(label, ":"); i >= 0 {
		return label[i+1:]
	}
	return label
}

func dotQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
