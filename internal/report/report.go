// Package report renders rule-evaluation results — text, JSON, and SARIF —
// grounded in the teacher's internal/report package (report.go/text.go/
// json.go/sarif.go), adapted from dependency-risk reports to
// RuleResult/AnalysisResult/PairedCallViolation.
package report

import (
	"fmt"

	"github.com/1homsi/guardrail/internal/model"
)

// Summary is the top-level shape every writer in this package consumes:
// every rule's result for one analysis run.
type Summary struct {
	Rules []model.RuleResult
}

// Violated reports whether any rule in the summary produced a violation.
func (s Summary) Violated() bool {
	for _, r := range s.Rules {
		if r.Violated() {
			return true
		}
	}
	return false
}

func edgeLine(e model.MethodCall) string {
	kind := "->"
	if e.Static {
		kind = "::"
	}
	return fmt.Sprintf("%s::%s %s %s::%s (line %d)",
		e.CallerClass, e.CallerMethod, kind, e.CalleeClass, e.CalleeMethod, e.Line)
}

func witnessLines(path []model.MethodCall) []string {
	out := make([]string, len(path))
	for i, e := range path {
		out[i] = edgeLine(e)
	}
	return out
}
