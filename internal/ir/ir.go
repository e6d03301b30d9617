// Package ir defines the lightweight intermediate representation the
// interproc package's SCC/fixpoint reachability cache operates over: a
// deduplicated adjacency view of the call graph, decoupled from
// callgraph.Graph's multi-edge, diagnostics-carrying bookkeeping.
//
// This completes the teacher's internal/ir contract: its interproc package
// referenced CSCallGraph, ContextNode, FunctionSummary, and SCC types that
// internal/ir/ir.go never actually defined. They're defined here,
// retargeted from the teacher's originally context-sensitive IR to this
// engine's concrete method call graph, which is context-insensitive — one
// ContextNode represents a whole method, not one call-string context.
package ir

import "github.com/1homsi/guardrail/internal/model"

// ContextNode is one node in the reachability IR: a method identifier plus
// its deduplicated successor set.
type ContextNode struct {
	ID   model.MethodID
	Succ []model.MethodID
}

// CSCallGraph is a flattened, deduplicated adjacency view suitable for SCC
// decomposition and fixpoint propagation.
type CSCallGraph struct {
	Nodes map[model.MethodID]*ContextNode
	Order []model.MethodID // insertion order of first appearance, for deterministic traversal
}

// New returns an empty CSCallGraph.
func New() *CSCallGraph {
	return &CSCallGraph{Nodes: make(map[model.MethodID]*ContextNode)}
}

func (g *CSCallGraph) ensure(id model.MethodID) *ContextNode {
	if n, ok := g.Nodes[id]; ok {
		return n
	}
	n := &ContextNode{ID: id}
	g.Nodes[id] = n
	g.Order = append(g.Order, id)
	return n
}

// AddEdge records a deduplicated successor edge from -> to, creating both
// endpoints if new.
func (g *CSCallGraph) AddEdge(from, to model.MethodID) {
	fromNode := g.ensure(from)
	g.ensure(to)
	for _, s := range fromNode.Succ {
		if s == to {
			return
		}
	}
	fromNode.Succ = append(fromNode.Succ, to)
}

// FunctionSummary is the fixpoint result for one node: the full set of
// nodes transitively reachable from it (including itself and every other
// member of its strongly connected component).
type FunctionSummary struct {
	Reachable map[model.MethodID]bool
}

// SCC is one strongly connected component, in Tarjan discovery order.
type SCC struct {
	Members []model.MethodID
}
