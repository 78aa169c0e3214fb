package graph

import "sort"

// Reduce returns a graph with the minimal edge set that preserves the
// reachability relation. Dashed and solid edges form one relation: an edge
// is redundant when its endpoints stay connected through a path of length
// two or more over the remaining edges, whatever the kinds along that path.
// Retained edges keep their kind. Edges are considered in (source, target,
// kind) order, so the result is reproducible; cycles are legal input.
func Reduce(g *Graph) *Graph {
	out := &Graph{nodes: g.nodes, order: g.order}

	edges := make([]Edge, len(g.Edges))
	copy(edges, g.Edges)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].Kind < edges[j].Kind
	})

	adj := g.succs()
	remove := func(e Edge) {
		if adj[e.From][e.To]--; adj[e.From][e.To] == 0 {
			delete(adj[e.From], e.To)
		}
	}
	restore := func(e Edge) {
		if adj[e.From] == nil {
			adj[e.From] = make(map[string]int)
		}
		adj[e.From][e.To]++
	}

	for _, e := range edges {
		remove(e)
		if !longPath(adj, e.From, e.To) {
			restore(e)
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}

// longPath reports whether to is reachable from from via a path of at least
// two edges: a first hop to some other node, then any walk onward.
func longPath(adj map[string]map[string]int, from, to string) bool {
	for mid := range adj[from] {
		if mid == to {
			continue
		}
		if reachable(adj, mid, to) {
			return true
		}
	}
	return false
}

func reachable(adj map[string]map[string]int, from, to string) bool {
	if from == to {
		return true
	}
	seen := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range adj[cur] {
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// Cycles returns every dependency cycle in the graph: each strongly
// connected component with more than one member, plus self-loops. Member
// labels are sorted and components ordered by first member, so the report
// is stable. Cycles are a modeling anomaly in the source material, not an
// analysis failure; callers surface them as warnings.
func Cycles(g *Graph) [][]string {
	adj := g.succs()

	index := make(map[string]int, g.Len())
	low := make(map[string]int, g.Len())
	onStack := make(map[string]bool, g.Len())
	var stack []string
	next := 0

	var comps [][]string
	var strongconnect func(v string)
	strongconnect = func(v string) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for w := range adj[v] {
			if _, visited := index[w]; !visited {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] && index[w] < low[v] {
				low[v] = index[w]
			}
		}

		if low[v] == index[v] {
			var comp []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			if len(comp) > 1 || adj[comp[0]][comp[0]] > 0 {
				sort.Strings(comp)
				comps = append(comps, comp)
			}
		}
	}

	// Iterate in document order so component discovery is deterministic.
	for _, label := range g.order {
		if _, visited := index[label]; !visited {
			strongconnect(label)
		}
	}

	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}
