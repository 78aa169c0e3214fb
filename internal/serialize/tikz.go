package serialize

import (
	"fmt"
	"strings"

	"github.com/dgallion1/texgraph/internal/category"
	"github.com/dgallion1/texgraph/internal/graph"
)

const (
	tikzColSpacing   = 3.4
	tikzLayerSpacing = 2.4
)

// TikZ renders the graph as a tikzpicture with concrete coordinates from a
// longest-path layering: a node sits one layer below the deepest statement
// it depends on. The consumer supplies the color definitions (x11names) and
// the shapes.geometric library.
func TikZ(g *graph.Graph, table *category.Table) string {
	layers := layerAssignment(g)

	// Column position is the node's arrival order within its layer.
	cols := make(map[string]int, g.Len())
	perLayer := make(map[int]int)
	maxLayer := 0
	for _, n := range g.Nodes() {
		l := layers[n.Label]
		cols[n.Label] = perLayer[l]
		perLayer[l]++
		if l > maxLayer {
			maxLayer = l
		}
	}

	var sb strings.Builder
	sb.WriteString("\\begin{tikzpicture}[>=stealth, every node/.style={draw, thick, inner sep=4pt}]\n")
	for _, n := range g.Nodes() {
		st := table.Style(n.Kind)
		y := -float64(layers[n.Label]) * tikzLayerSpacing
		if y == 0 {
			y = 0 // negating layer 0 would print as -0.0
		}
		fmt.Fprintf(&sb, "  \\node[%s, draw=%s, fill=%s] (%s) at (%.1f, %.1f) {%s};\n",
			tikzShape(st.Shape), st.BorderColor, st.FillColor,
			tikzID(n.Label),
			float64(cols[n.Label])*tikzColSpacing, y,
			texEscape(displayName(n.Label)))
	}
	for _, e := range g.Edges {
		style := "->"
		if e.Kind == graph.Dashed {
			style = "->, dashed"
		}
		fmt.Fprintf(&sb, "  \\draw[%s] (%s) -- (%s);\n", style, tikzID(e.From), tikzID(e.To))
	}
	sb.WriteString("\\end{tikzpicture}\n")
	return sb.String()
}

// layerAssignment relaxes layer(to) >= layer(from)+1 until stable. The pass
// count is capped at the node count so cyclic graphs terminate with a
// deterministic assignment.
func layerAssignment(g *graph.Graph) map[string]int {
	layers := make(map[string]int, g.Len())
	for i := 0; i < g.Len(); i++ {
		changed := false
		for _, e := range g.Edges {
			if layers[e.To] < layers[e.From]+1 {
				layers[e.To] = layers[e.From] + 1
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return layers
}

func tikzShape(shape string) string {
	switch shape {
	case "box":
		return "rectangle"
	case "doublecircle":
		return "circle, double"
	case "diamond":
		return "diamond, aspect=2"
	default:
		return "ellipse"
	}
}

// tikzID flattens a label into a TikZ-safe node name.
func tikzID(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, label)
}

var texEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`_`, `\_`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`$`, `\$`,
	`{`, `\{`,
	`}`, `\}`,
)

func texEscape(s string) string {
	return texEscaper.Replace(s)
}
