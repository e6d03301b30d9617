// Package interproc provides a cached bulk-reachability summary over the
// call graph (SPEC_FULL §4.8 DOMAIN STACK): a one-time SCC decomposition
// and fixpoint propagation so that repeated has_path-only queries (every
// completion in a paired obligation) are
// O(1) after an O(V+E) precomputation, instead of a fresh DFS each time.
// The spec's literal DFS find_path/has_path (internal/callgraph) remains
// the source of truth for witness-path reconstruction; this package never
// answers a query that needs an ordered edge list.
//
// Grounded in the teacher's internal/interproc SCC/fixpoint/lattice/
// topological-sort machinery, retargeted from its originally undefined
// ir.CSCallGraph/ir.FunctionSummary types (see internal/ir) to this
// engine's concrete method call graph.
package interproc

import (
	"github.com/1homsi/guardrail/internal/ir"
	"github.com/1homsi/guardrail/internal/model"
)

// ComputeSCCs runs Tarjan's algorithm over g, returning its strongly
// connected components and a lookup from node to component index. Tarjan's
// algorithm emits components such that any cross-component edge points
// from a later-emitted component to an earlier one — sinks first — which
// the fixpoint pass in fixpoint.go relies on.
func ComputeSCCs(g *ir.CSCallGraph) ([]*ir.SCC, map[model.MethodID]int) {
	t := &tarjan{
		g:           g,
		indices:     make(map[model.MethodID]int),
		lowlink:     make(map[model.MethodID]int),
		onStack:     make(map[model.MethodID]bool),
		componentOf: make(map[model.MethodID]int),
	}
	for _, v := range g.Order {
		if _, seen := t.indices[v]; !seen {
			t.strongconnect(v)
		}
	}
	return t.sccs, t.componentOf
}

type tarjan struct {
	g           *ir.CSCallGraph
	index       int
	stack       []model.MethodID
	onStack     map[model.MethodID]bool
	indices     map[model.MethodID]int
	lowlink     map[model.MethodID]int
	sccs        []*ir.SCC
	componentOf map[model.MethodID]int
}

func (t *tarjan) strongconnect(v model.MethodID) {
	t.indices[v] = t.index
	t.lowlink[v] = t.index
	t.index++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	node := t.g.Nodes[v]
	for _, w := range node.Succ {
		if _, seen := t.indices[w]; !seen {
			t.strongconnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.indices[w] < t.lowlink[v] {
				t.lowlink[v] = t.indices[w]
			}
		}
	}

	if t.lowlink[v] != t.indices[v] {
		return
	}
	var members []model.MethodID
	for {
		n := len(t.stack) - 1
		w := t.stack[n]
		t.stack = t.stack[:n]
		t.onStack[w] = false
		members = append(members, w)
		if w == v {
			break
		}
	}
	idx := len(t.sccs)
	t.sccs = append(t.sccs, &ir.SCC{Members: members})
	for _, m := range members {
		t.componentOf[m] = idx
	}
}
