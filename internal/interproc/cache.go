package interproc

import (
	"github.com/1homsi/guardrail/internal/callgraph"
	"github.com/1homsi/guardrail/internal/ir"
	"github.com/1homsi/guardrail/internal/model"
)

// Cache is a frozen-graph reachability summary: O(1) has-path queries after
// one O(V+E) build. It never reconstructs a witness path — callers that
// need one fall back to callgraph.Graph.FindPath, which is always correct
// and is what this cache is built from, never the other way around.
type Cache struct {
	summaries map[model.MethodID]*ir.FunctionSummary
}

// Build computes a Cache from every edge currently in g. g must not change
// afterwards — per §3's "Lifecycle", the call graph is frozen before rule
// evaluation begins, so this is always true in the pipeline's normal use.
func Build(g *callgraph.Graph) *Cache {
	flat := ir.New()
	for _, id := range g.Nodes() {
		for _, edge := range g.Outgoing(id) {
			callee := edge.Callee()
			if callee == "" {
				continue
			}
			flat.AddEdge(id, callee)
		}
	}
	sccs, _ := ComputeSCCs(flat)
	order := TopologicalOrder(sccs)
	logger.Debug("scc dependency order computed", "components", len(order))
	summaries := ComputeSummaries(flat)
	logger.Debug("built reachability cache", "nodes", len(flat.Nodes))
	return &Cache{summaries: summaries}
}

// HasPath reports whether to is reachable from from, using the
// precomputed summary. Returns false if from was never added to the
// graph (no outgoing edges recorded for it at Build time).
func (c *Cache) HasPath(from, to model.MethodID) bool {
	if from == to {
		return true
	}
	summary, ok := c.summaries[from]
	if !ok {
		return false
	}
	return summary.Reachable[to]
}
