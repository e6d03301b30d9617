// Package model defines the shared entities the pipeline's later stages
// exchange: call-graph edges, entry points, rules and their obligations,
// and the result shapes the evaluator produces.
package model

// MethodID is a fully-qualified method identifier, "<FQCN>::<method>".
type MethodID string

// MethodCall is a call-graph edge. Immutable once emitted by Pass 2 or 3.
type MethodCall struct {
	CallerClass  string // "" for a top-level script caller (never emitted as an edge, see §4.6)
	CallerMethod string
	CalleeClass  string // "" when the receiver/class could not be resolved
	CalleeMethod string
	Line         int // 0 for synthesized interface-linker edges
	Static       bool
	ReceiverExpr string // diagnostic label only, e.g. "$this->repo"
}

// Caller returns the edge's caller identifier, or "" if it has none.
func (c MethodCall) Caller() MethodID {
	if c.CallerClass == "" {
		return ""
	}
	return MethodID(c.CallerClass + "::" + c.CallerMethod)
}

// Callee returns the edge's callee identifier, or "" if unresolved.
func (c MethodCall) Callee() MethodID {
	if c.CalleeClass == "" {
		return ""
	}
	return MethodID(c.CalleeClass + "::" + c.CalleeMethod)
}

// EntryPoint is a single analysis root supplied by a collaborator (§6):
// namespace/glob discovery or a route-manifest reader.
type EntryPoint struct {
	Class       string
	Method      string
	File        string
	Route       string // optional, e.g. "/orders/{id}"
	HTTPMethod  string // optional, e.g. "POST"
	Description string
}

// ID returns the entry point's method identifier.
func (e EntryPoint) ID() MethodID {
	return MethodID(e.Class + "::" + e.Method)
}

// MethodRef names a target method by class and method name, independent of
// any particular entry point — how a Rule names required calls and
// obligation triggers/completions.
type MethodRef struct {
	Class  string
	Method string
}

// ID returns the method identifier this reference names.
func (r MethodRef) ID() MethodID {
	return MethodID(r.Class + "::" + r.Method)
}

// PairedCallObligation requires that if Trigger is reachable from an entry
// point, at least one of Completions is also reachable (any-of semantics).
// Vacuously satisfied when Trigger is unreachable.
type PairedCallObligation struct {
	Trigger     MethodRef
	Completions []MethodRef
	Message     string
}

// Rule binds an entry-point source to required callees and paired-call
// obligations. EntrySource names the entry points this rule applies to;
// callers resolve it against the discovered EntryPoint stream.
type Rule struct {
	Name             string
	EntrySource      string // e.g. a namespace glob or route-manifest tag
	RequiredCalls    []MethodRef
	PathCondition    string // free-form tag, e.g. "auth" — carried through to results for grouping
	Obligations      []PairedCallObligation
	Message          string
}

// AnalysisResult is the outcome of evaluating one rule's required calls
// against one entry point.
type AnalysisResult struct {
	EntryPoint    EntryPoint
	Required      MethodRef // the nominal required call reported on violation
	Found         bool
	Witness       []MethodCall
	Message       string
}

// PairedCallViolation records an obligation whose trigger was reached but
// no completion was, for one entry point.
type PairedCallViolation struct {
	EntryPoint EntryPoint
	Obligation PairedCallObligation
	Witness    []MethodCall // path from the entry point to the trigger
}

// RuleResult is the full per-rule outcome: one AnalysisResult per entry
// point the rule applies to, plus any paired-call violations.
type RuleResult struct {
	Rule       Rule
	Results    []AnalysisResult
	Violations []PairedCallViolation
}

// Violated reports whether this rule produced any required-call miss or
// paired-call violation.
func (r RuleResult) Violated() bool {
	if len(r.Violations) > 0 {
		return true
	}
	for _, res := range r.Results {
		if !res.Found {
			return true
		}
	}
	return false
}
