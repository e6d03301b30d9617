// Package linker implements the interface linker (Pass 3, §4.7): for every
// interface method the hierarchy recorded, synthesizing an edge to
// the same-name method of every class known to implement that interface.
package linker

import (
	"github.com/1homsi/guardrail/internal/callgraph"
	"github.com/1homsi/guardrail/internal/hierarchy"
	"github.com/1homsi/guardrail/internal/model"
)

// Link walks every (interface, method) pair the hierarchy recorded and
// adds a synthetic, line-0 edge from the interface method to each
// implementor that defines a same-named method. Safe to call more than
// once on the same graph: duplicate synthetic edges are suppressed by the
// (caller, callee, line, static) key per §9's open question (b).
func Link(h *hierarchy.Hierarchy, g *callgraph.Graph) {
	seen := make(map[dedupKey]bool)
	// Mark edges already in the graph (from a prior Link call, or
	// coincidentally identical call-site edges) so re-running this pass is
	// idempotent.
	for _, im := range h.AllInterfaceMethods() {
		ifaceID := model.MethodID(im.Interface + "::" + im.Method)
		for _, e := range g.Outgoing(ifaceID) {
			seen[keyOf(e)] = true
		}
	}

	for _, im := range h.AllInterfaceMethods() {
		for _, impl := range h.FindClassesImplementing(im.Interface) {
			if !h.HasMethodDef(impl, im.Method) {
				continue
			}
			edge := model.MethodCall{
				CallerClass: im.Interface, CallerMethod: im.Method,
				CalleeClass: impl, CalleeMethod: im.Method,
				Line: 0, Static: false,
				ReceiverExpr: "",
			}
			k := keyOf(edge)
			if seen[k] {
				continue
			}
			seen[k] = true
			g.Add(edge)
		}
	}
}

type dedupKey struct {
	caller, callee model.MethodID
	line           int
	static         bool
}

func keyOf(e model.MethodCall) dedupKey {
	return dedupKey{caller: e.Caller(), callee: e.Callee(), line: e.Line, static: e.Static}
}
