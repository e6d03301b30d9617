// Package callgraph implements the CallGraph data structure (§4.8): a
// directed multigraph keyed by fully-qualified method identifier, with
// insertion-order-preserving adjacency and depth-first reachability and
// witness-path queries.
//
// Grounded in the teacher's internal/graph.DependencyGraph — ordered
// adjacency maps behind a small write API plus DFS traversal helpers —
// generalized from module dependency edges to call-graph edges.
package callgraph

import "github.com/1homsi/guardrail/internal/model"

// Graph is the immutable-after-construction call graph.
type Graph struct {
	out map[model.MethodID][]model.MethodCall
	in  map[model.MethodID][]model.MethodCall
	// order preserves the sequence edges were added, for tie-breaking.
	order []model.MethodCall
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		out: make(map[model.MethodID][]model.MethodCall),
		in:  make(map[model.MethodID][]model.MethodCall),
	}
}

// Add appends edge to the outgoing bucket keyed by its caller. When the
// callee is resolved, it's also appended to the incoming bucket keyed by
// the callee. Edges with no caller (top-level scripts, §4.6) are dropped
// without being recorded.
func (g *Graph) Add(edge model.MethodCall) {
	caller := edge.Caller()
	if caller == "" {
		return
	}
	g.out[caller] = append(g.out[caller], edge)
	g.order = append(g.order, edge)
	if callee := edge.Callee(); callee != "" {
		g.in[callee] = append(g.in[callee], edge)
	}
}

// Nodes returns every method identifier that has appeared as a caller or a
// resolved callee, in first-appearance (edge-insertion) order.
func (g *Graph) Nodes() []model.MethodID {
	seen := make(map[model.MethodID]bool)
	var out []model.MethodID
	for _, edge := range g.order {
		if caller := edge.Caller(); caller != "" && !seen[caller] {
			seen[caller] = true
			out = append(out, caller)
		}
		if callee := edge.Callee(); callee != "" && !seen[callee] {
			seen[callee] = true
			out = append(out, callee)
		}
	}
	return out
}

// Outgoing returns the edges leaving id, in insertion order.
func (g *Graph) Outgoing(id model.MethodID) []model.MethodCall { return g.out[id] }

// Incoming returns the edges arriving at id, in insertion order.
func (g *Graph) Incoming(id model.MethodID) []model.MethodCall { return g.in[id] }

// HasPath reports whether to is reachable from from via zero or more
// edges. HasPath(x, x) is true (the trivial path).
func (g *Graph) HasPath(from, to model.MethodID) bool {
	if from == to {
		return true
	}
	visited := make(map[model.MethodID]bool)
	return g.dfsHas(from, to, visited)
}

func (g *Graph) dfsHas(from, to model.MethodID, visited map[model.MethodID]bool) bool {
	if visited[from] {
		return false
	}
	visited[from] = true
	for _, edge := range g.out[from] {
		callee := edge.Callee()
		if callee == "" {
			continue
		}
		if callee == to {
			return true
		}
		if g.dfsHas(callee, to, visited) {
			return true
		}
	}
	return false
}

// FindPath returns the first witness path discovered from from to to, in
// edge-insertion-order DFS, or nil if none exists. A witness is an ordered
// list of edges where the first edge's caller is from, the last edge's
// callee is to, and each consecutive pair shares the intermediate
// identifier. FindPath(x, x) returns an empty, non-nil slice to signal "no
// edges needed"; callers that require a non-empty witness should check
// from != to first.
func (g *Graph) FindPath(from, to model.MethodID) ([]model.MethodCall, bool) {
	if from == to {
		return []model.MethodCall{}, true
	}
	visited := make(map[model.MethodID]bool)
	return g.dfsFind(from, to, visited)
}

func (g *Graph) dfsFind(from, to model.MethodID, visited map[model.MethodID]bool) ([]model.MethodCall, bool) {
	if visited[from] {
		return nil, false
	}
	visited[from] = true
	for _, edge := range g.out[from] {
		callee := edge.Callee()
		if callee == "" {
			continue
		}
		if callee == to {
			return []model.MethodCall{edge}, true
		}
		if rest, ok := g.dfsFind(callee, to, visited); ok {
			return append([]model.MethodCall{edge}, rest...), true
		}
	}
	return nil, false
}
