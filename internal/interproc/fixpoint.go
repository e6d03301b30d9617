package interproc

import (
	"github.com/1homsi/guardrail/internal/ir"
	"github.com/1homsi/guardrail/internal/model"
)

// ComputeSummaries runs the SCC-condensed fixpoint: every node's summary is
// the full set of nodes reachable from it, including every other member of
// its own component (they mutually reach each other by definition of SCC)
// and everything reachable through edges leaving the component. Because
// ComputeSCCs emits components sink-first, a component's summary can always
// be built from already-finished component summaries in a single pass —
// no worklist iteration is needed.
func ComputeSummaries(g *ir.CSCallGraph) map[model.MethodID]*ir.FunctionSummary {
	sccs, componentOf := ComputeSCCs(g)
	componentReach := make([]map[model.MethodID]bool, len(sccs))

	for i, scc := range sccs {
		reach := make(reachSet, len(scc.Members))
		for _, m := range scc.Members {
			reach[m] = true
		}
		for _, m := range scc.Members {
			node := g.Nodes[m]
			for _, succ := range node.Succ {
				target := componentOf[succ]
				if target == i {
					continue // already unioned in above: succ is a fellow member
				}
				if !leq(componentReach[target], reach) {
					reach = join(reach, componentReach[target])
				}
			}
		}
		componentReach[i] = reach
	}

	out := make(map[model.MethodID]*ir.FunctionSummary, len(g.Nodes))
	for i, scc := range sccs {
		summary := &ir.FunctionSummary{Reachable: componentReach[i]}
		for _, m := range scc.Members {
			out[m] = summary
		}
	}
	return out
}
