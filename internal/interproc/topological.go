package interproc

import (
	"github.com/1homsi/guardrail/internal/ir"
)

// TopologicalOrder returns the condensation's components in dependency
// order: a component appears before every component it can reach. This is
// the reverse of ComputeSCCs' own (sink-first) output order — useful for
// diagnostics that want to print "what does X ultimately depend on" in a
// natural top-down order.
func TopologicalOrder(sccs []*ir.SCC) []*ir.SCC {
	out := make([]*ir.SCC, len(sccs))
	for i, scc := range sccs {
		out[len(sccs)-1-i] = scc
	}
	return out
}
