package check

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/1homsi/guardrail/internal/config"
	"github.com/1homsi/guardrail/internal/entrypoints"
	"github.com/1homsi/guardrail/internal/evaluator"
	"github.com/1homsi/guardrail/internal/model"
	"github.com/1homsi/guardrail/internal/pipeline"
	"github.com/1homsi/guardrail/internal/report"
	"github.com/1homsi/guardrail/internal/source"
)

// stringList collects repeated -rule flags, teacher-style (see the
// teacher's own repeatable-flag handling in cmd/gorisk/scan).
type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

func Run(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "config file (default: search guardrail.yaml, guardrail.config.php, guardrail.php)")
	entryPattern := fs.String("entry", "", "namespace glob selecting entry-point classes, e.g. App\\Controller\\*")
	routesFile := fs.String("routes", "", "YAML route manifest for entry-point discovery")
	jsonOut := fs.Bool("json", false, "JSON output")
	sarifOut := fs.Bool("sarif", false, "SARIF 2.1.0 output")
	memoryLimit := fs.Int("memory-limit", 0, "soft memory budget in MB; advisory only, not enforced")
	verbose := fs.Bool("v", false, "enable verbose debug logging")
	var ruleFilter stringList
	fs.Var(&ruleFilter, "rule", "restrict to this rule name (repeatable)")
	fs.Parse(args)
	_ = memoryLimit // parsed for CLI compatibility; this implementation has no separate memory budget to enforce

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *verbose || os.Getenv("GUARDRAIL_DEBUG") != "" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	result, err := pipeline.Run(context.Background(), root, source.Config{}, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "check:", err)
		return 2
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = config.Find(root)
	}
	var rules []model.Rule
	if cfgPath != "" {
		f, err := config.Load(cfgPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "check:", err)
			return 2
		}
		rules = f.ToRules()
	}
	if len(ruleFilter) > 0 {
		rules = filterRules(rules, ruleFilter)
	}
	if len(rules) == 0 {
		fmt.Fprintln(os.Stderr, "check: no rules loaded (pass --config or add a guardrail.yaml)")
		return 2
	}

	entries, err := discoverEntries(result, *entryPattern, *routesFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "check:", err)
		return 2
	}

	eval := evaluator.New(result.Graph)
	summary := report.Summary{}
	for _, rule := range rules {
		summary.Rules = append(summary.Rules, eval.Evaluate(rule, selectEntries(rule, entries)))
	}

	var writeErr error
	switch {
	case *sarifOut:
		writeErr = report.WriteSARIF(os.Stdout, summary)
	case *jsonOut:
		writeErr = report.WriteJSON(os.Stdout, summary)
	default:
		report.WriteText(os.Stdout, summary)
	}
	if writeErr != nil {
		fmt.Fprintln(os.Stderr, "check: write output:", writeErr)
		return 2
	}

	if summary.Violated() {
		return 1
	}
	return 0
}

func filterRules(rules []model.Rule, names []string) []model.Rule {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []model.Rule
	for _, r := range rules {
		if want[r.Name] {
			out = append(out, r)
		}
	}
	return out
}

// discoverEntries runs the namespace-glob discoverer (always, defaulting to
// "*" — every declared method) and, when routesFile is set, the
// route-manifest discoverer, concatenating both streams.
func discoverEntries(result *pipeline.Result, pattern, routesFile string) ([]model.EntryPoint, error) {
	if pattern == "" {
		pattern = "*"
	}
	glob := entrypoints.NamespaceGlob{Files: result.Files, Pattern: pattern}
	entries, err := glob.Discover()
	if err != nil {
		return nil, err
	}
	if routesFile != "" {
		manifest := entrypoints.RouteManifest{Path: routesFile}
		routed, err := manifest.Discover()
		if err != nil {
			return nil, err
		}
		entries = append(entries, routed...)
	}
	return entries, nil
}

// selectEntries filters entries against rule.EntrySource: empty or "*"
// matches every entry, "route" restricts to route-manifest entries, and
// anything else is treated as a namespace glob over the entry's class.
func selectEntries(rule model.Rule, entries []model.EntryPoint) []model.EntryPoint {
	source := rule.EntrySource
	if source == "" || source == "*" {
		return entries
	}
	if source == "route" {
		var out []model.EntryPoint
		for _, e := range entries {
			if e.Route != "" {
				out = append(out, e)
			}
		}
		return out
	}
	var out []model.EntryPoint
	// Backslash is the namespace separator here, not path.Match's escape.
	pattern := strings.ReplaceAll(source, `\`, `\\`)
	for _, e := range entries {
		if matched, _ := path.Match(pattern, e.Class); matched {
			out = append(out, e)
		}
	}
	return out
}
