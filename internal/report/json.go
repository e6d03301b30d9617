package report

import (
	"encoding/json"
	"io"

	"github.com/1homsi/guardrail/internal/model"
)

type jsonEdge struct {
	Caller string `json:"caller"`
	Callee string `json:"callee"`
	Line   int    `json:"line"`
	Static bool   `json:"static"`
}

func toJSONEdges(path []model.MethodCall) []jsonEdge {
	out := make([]jsonEdge, len(path))
	for i, e := range path {
		out[i] = jsonEdge{Caller: string(e.Caller()), Callee: string(e.Callee()), Line: e.Line, Static: e.Static}
	}
	return out
}

type jsonResult struct {
	EntryPoint string     `json:"entry_point"`
	Required   string     `json:"required"`
	Found      bool       `json:"found"`
	Witness    []jsonEdge `json:"witness,omitempty"`
	Message    string     `json:"message,omitempty"`
}

type jsonViolation struct {
	EntryPoint  string     `json:"entry_point"`
	Trigger     string     `json:"trigger"`
	Completions []string   `json:"completions"`
	Witness     []jsonEdge `json:"witness"`
}

type jsonRule struct {
	Name       string          `json:"name"`
	Violated   bool            `json:"violated"`
	Results    []jsonResult    `json:"results"`
	Violations []jsonViolation `json:"violations,omitempty"`
}

func toJSONRule(r model.RuleResult) jsonRule {
	out := jsonRule{Name: r.Rule.Name, Violated: r.Violated()}
	for _, res := range r.Results {
		out.Results = append(out.Results, jsonResult{
			EntryPoint: string(res.EntryPoint.ID()), Required: string(res.Required.ID()),
			Found: res.Found, Witness: toJSONEdges(res.Witness), Message: res.Message,
		})
	}
	for _, v := range r.Violations {
		completions := make([]string, len(v.Obligation.Completions))
		for i, c := range v.Obligation.Completions {
			completions[i] = string(c.ID())
		}
		out.Violations = append(out.Violations, jsonViolation{
			EntryPoint: string(v.EntryPoint.ID()), Trigger: string(v.Obligation.Trigger.ID()),
			Completions: completions, Witness: toJSONEdges(v.Witness),
		})
	}
	return out
}

// WriteJSON encodes summary as indented JSON.
func WriteJSON(w io.Writer, summary Summary) error {
	rules := make([]jsonRule, len(summary.Rules))
	for i, r := range summary.Rules {
		rules[i] = toJSONRule(r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rules)
}
