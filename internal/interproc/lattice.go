package interproc

import "github.com/1homsi/guardrail/internal/model"

// reachSet is the monotone lattice ComputeSummaries propagates values
// over: sets of method identifiers ordered by inclusion, joined by union.
// Bottom is the empty set; join can only grow a set, which is what
// guarantees the single sink-first pass in fixpoint.go terminates without
// needing to revisit a component.
type reachSet map[model.MethodID]bool

// join returns the least upper bound of a and b: their union. Neither
// input is mutated.
func join(a, b reachSet) reachSet {
	out := make(reachSet, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

// leq reports whether a is a subset of b (a ⊑ b in the lattice order).
func leq(a, b reachSet) bool {
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
