package viz

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/1homsi/guardrail/internal/capability"
	"github.com/1homsi/guardrail/internal/config"
	"github.com/1homsi/guardrail/internal/entrypoints"
	"github.com/1homsi/guardrail/internal/evaluator"
	"github.com/1homsi/guardrail/internal/model"
	"github.com/1homsi/guardrail/internal/pipeline"
	"github.com/1homsi/guardrail/internal/source"
)

//go:embed template.html
var htmlTemplate string

//go:embed template.css
var cssTemplate string

//go:embed template.js
var jsTemplate string

// phpPatterns holds the hazard pattern set embedded for the PHP grammar;
// a load failure means the binary's embedded languages/php.yaml is broken,
// not a user-fixable condition.
var phpPatterns = capability.MustLoadPatterns("php")

type nodeData struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Class        string   `json:"class"`
	Risk         string   `json:"risk"`
	Score        int      `json:"score"`
	Capabilities []string `json:"capabilities,omitempty"`
	UsedBy       int      `json:"usedBy"`
	Uses         int      `json:"uses"`
	Violated     bool     `json:"violated,omitempty"`
}

type edgeData struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Static bool   `json:"static"`
}

// violationData names one rule failure for one entry point: either a
// missed required call or an unsatisfied paired-call obligation.
type violationData struct {
	Rule    string `json:"rule"`
	Entry   string `json:"entry"`
	Message string `json:"message"`
}

type graphData struct {
	Nodes      []nodeData      `json:"nodes"`
	Edges      []edgeData      `json:"edges"`
	Violations []violationData `json:"violations"`
}

func Run(args []string) int {
	fs := flag.NewFlagSet("viz", flag.ExitOnError)
	minRisk := fs.String("min-risk", "low", "minimum risk level to show: low|medium|high|none")
	configPath := fs.String("config", "", "config file (default: search guardrail.yaml, guardrail.config.php, guardrail.php)")
	var ruleFilter stringList
	fs.Var(&ruleFilter, "rule", "restrict to this rule name (repeatable)")
	fs.Parse(args)

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	result, err := pipeline.Run(context.Background(), root, source.Config{}, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "viz:", err)
		return 2
	}

	detector := capability.NewDetector(phpPatterns)

	violatedEntries, violations, err := ruleViolations(result, *configPath, root, ruleFilter)
	if err != nil {
		fmt.Fprintln(os.Stderr, "viz:", err)
		return 2
	}

	minLevel := riskValue(*minRisk)

	included := make(map[string]bool)
	var nodes []nodeData
	for _, id := range result.Graph.Nodes() {
		set := detector.ClassifyEdges(result.Graph.Outgoing(id))
		risk := set.RiskLevel()
		if riskValue(risk) < minLevel {
			continue
		}
		included[string(id)] = true
		nodes = append(nodes, nodeData{
			ID:           string(id),
			Label:        shortLabel(string(id)),
			Class:        classOf(string(id)),
			Risk:         risk,
			Score:        set.Score(),
			Capabilities: capNames(set.List()),
			UsedBy:       len(result.Graph.Incoming(id)),
			Uses:         len(result.Graph.Outgoing(id)),
			Violated:     violatedEntries[string(id)],
		})
	}

	edgeSeen := make(map[string]bool)
	var edges []edgeData
	for id := range included {
		for _, e := range result.Graph.Outgoing(model.MethodID(id)) {
			callee := string(e.Callee())
			if callee == "" || !included[callee] || callee == id {
				continue
			}
			key := id + "→" + callee
			if edgeSeen[key] {
				continue
			}
			edgeSeen[key] = true
			edges = append(edges, edgeData{Source: id, Target: callee, Static: e.Static})
		}
	}

	if nodes == nil {
		nodes = []nodeData{}
	}
	if edges == nil {
		edges = []edgeData{}
	}

	if violations == nil {
		violations = []violationData{}
	}

	dataJSON, err := json.Marshal(graphData{Nodes: nodes, Edges: edges, Violations: violations})
	if err != nil {
		fmt.Fprintln(os.Stderr, "viz: marshal:", err)
		return 2
	}

	out := strings.Replace(htmlTemplate, "__STYLE__", cssTemplate, 1)
	out = strings.Replace(out, "__SCRIPT__", jsTemplate, 1)
	out = strings.Replace(out, "__DATA__", string(dataJSON), 1)
	fmt.Print(out)
	return 0
}

// stringList collects repeated -rule flags, matching check's convention.
type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

// ruleViolations loads the same config check would (explicit path, else
// the standard search order), evaluates every matching rule against a
// wildcard namespace-glob discovery of every declared method, and returns
// the set of violated entry-point node IDs plus the flat violation list
// for the template. A config-free tree (no guardrail.yaml) is not an
// error here — viz has no violations to show, same as check would skip
// evaluation with a clear message; viz degrades to a plain graph instead.
func ruleViolations(result *pipeline.Result, configPath, root string, ruleFilter stringList) (map[string]bool, []violationData, error) {
	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = config.Find(root)
	}
	if cfgPath == "" {
		return nil, nil, nil
	}
	f, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	rules := f.ToRules()
	if len(ruleFilter) > 0 {
		want := make(map[string]bool, len(ruleFilter))
		for _, n := range ruleFilter {
			want[n] = true
		}
		var filtered []model.Rule
		for _, r := range rules {
			if want[r.Name] {
				filtered = append(filtered, r)
			}
		}
		rules = filtered
	}
	if len(rules) == 0 {
		return nil, nil, nil
	}

	glob := entrypoints.NamespaceGlob{Files: result.Files, Pattern: "*"}
	entries, err := glob.Discover()
	if err != nil {
		return nil, nil, err
	}

	eval := evaluator.New(result.Graph)
	violatedEntries := make(map[string]bool)
	var violations []violationData
	for _, rule := range rules {
		res := eval.Evaluate(rule, entries)
		for _, r := range res.Results {
			if r.Found {
				continue
			}
			violatedEntries[string(r.EntryPoint.ID())] = true
			violations = append(violations, violationData{
				Rule: rule.Name, Entry: string(r.EntryPoint.ID()), Message: r.Message,
			})
		}
		for _, v := range res.Violations {
			violatedEntries[string(v.EntryPoint.ID())] = true
			msg := v.Obligation.Message
			if msg == "" {
				msg = fmt.Sprintf("%s reaches %s but no completion is reachable", v.EntryPoint.ID(), v.Obligation.Trigger.ID())
			}
			violations = append(violations, violationData{
				Rule: rule.Name, Entry: string(v.EntryPoint.ID()), Message: msg,
			})
		}
	}
	return violatedEntries, violations, nil
}

func classOf(id string) string {
	if i := strings.LastIndex(id, "::"); i >= 0 {
		return id[:i]
	}
	return id
}

func shortLabel(id string) string {
	parts := strings.Split(classOf(id), "\\")
	if len(parts) == 0 {
		return id
	}
	method := id[strings.LastIndex(id, "::"):]
	return parts[len(parts)-1] + method
}

func capNames(caps []capability.Capability) []string {
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = c.String()
	}
	return out
}

func riskValue(level string) int {
	switch strings.ToLower(level) {
	case "high":
		return 3
	case "medium":
		return 2
	case "low":
		return 1
	default:
		return 0
	}
}
