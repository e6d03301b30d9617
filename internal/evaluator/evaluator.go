// Package evaluator implements the rule evaluator (§4.9): for every rule
// and every entry point it applies to, testing required-call reachability
// (any-of semantics) and paired-call obligations against the frozen call
// graph.
package evaluator

import (
	"fmt"

	"github.com/1homsi/guardrail/internal/callgraph"
	"github.com/1homsi/guardrail/internal/interproc"
	"github.com/1homsi/guardrail/internal/model"
)

// Evaluator evaluates rules against a frozen, read-only call graph. cache
// answers the has-path-only queries (obligation completions) in O(1); any
// query that needs a witness path always goes to Graph.FindPath directly.
type Evaluator struct {
	Graph *callgraph.Graph
	cache *interproc.Cache
}

// New returns an Evaluator over graph. graph must not change afterwards —
// New precomputes a bulk reachability cache over it once, up front.
func New(graph *callgraph.Graph) *Evaluator {
	return &Evaluator{Graph: graph, cache: interproc.Build(graph)}
}

// Evaluate runs rule against every entry point in entries that the rule's
// EntrySource selects; selection itself is the caller's job (a collaborator
// concern, §6) — Evaluate takes the already-filtered slice.
func (e *Evaluator) Evaluate(rule model.Rule, entries []model.EntryPoint) model.RuleResult {
	result := model.RuleResult{Rule: rule}
	for _, ep := range entries {
		if len(rule.RequiredCalls) > 0 {
			result.Results = append(result.Results, e.evaluateRequired(rule, ep))
		}
		for _, ob := range rule.Obligations {
			if v, violated := e.evaluateObligation(ep, ob); violated {
				result.Violations = append(result.Violations, v)
			}
		}
	}
	return result
}

// evaluateRequired implements §4.9 step 1: any-of reachability over the
// rule's required calls, in declared order. First hit wins.
func (e *Evaluator) evaluateRequired(rule model.Rule, ep model.EntryPoint) model.AnalysisResult {
	entry := ep.ID()
	for _, target := range rule.RequiredCalls {
		if path, ok := e.Graph.FindPath(entry, target.ID()); ok {
			return model.AnalysisResult{
				EntryPoint: ep, Required: target, Found: true, Witness: path,
			}
		}
	}
	first := model.MethodRef{}
	if len(rule.RequiredCalls) > 0 {
		first = rule.RequiredCalls[0]
	}
	msg := rule.Message
	if msg == "" {
		msg = fmt.Sprintf("%s does not reach %s", entry, first.ID())
	}
	return model.AnalysisResult{
		EntryPoint: ep, Required: first, Found: false, Message: msg,
	}
}

// evaluateObligation implements §4.9 step 2: a trigger unreachable from the
// entry point vacuously satisfies the obligation; otherwise at least one
// completion must be reachable (not necessarily via a witness path — a
// bare has_path suffices).
func (e *Evaluator) evaluateObligation(ep model.EntryPoint, ob model.PairedCallObligation) (model.PairedCallViolation, bool) {
	entry := ep.ID()
	triggerPath, triggered := e.Graph.FindPath(entry, ob.Trigger.ID())
	if !triggered {
		return model.PairedCallViolation{}, false
	}
	for _, completion := range ob.Completions {
		if e.cache.HasPath(entry, completion.ID()) {
			return model.PairedCallViolation{}, false
		}
	}
	return model.PairedCallViolation{EntryPoint: ep, Obligation: ob, Witness: triggerPath}, true
}
