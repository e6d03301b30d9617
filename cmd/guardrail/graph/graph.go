package graph

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/1homsi/guardrail/internal/capability"
	"github.com/1homsi/guardrail/internal/pipeline"
	"github.com/1homsi/guardrail/internal/source"
)

type classRow struct {
	Class  string
	Calls  int // outgoing edges from any method on this class
	UsedBy int // incoming edges into any method on this class
	Risk   string
	Score  int
}

// phpPatterns holds the hazard pattern set embedded for the PHP grammar;
// a load failure means the binary's embedded languages/php.yaml is broken,
// not a user-fixable condition.
var phpPatterns = capability.MustLoadPatterns("php")

func Run(args []string) int {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "JSON output")
	format := fs.String("format", "text", "output format: text|dot")
	minRisk := fs.String("min-risk", "low", "minimum risk level to show: low|medium|high|none")
	fs.Parse(args)

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	result, err := pipeline.Run(context.Background(), root, source.Config{}, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "graph:", err)
		return 2
	}

	detector := capability.NewDetector(phpPatterns)

	if strings.EqualFold(*format, "dot") {
		return writeDOT(result, detector)
	}

	classOf := func(id string) string {
		if i := strings.LastIndex(id, "::"); i >= 0 {
			return id[:i]
		}
		return id
	}

	calls := make(map[string]int)
	usedBy := make(map[string]int)
	caps := make(map[string]*capability.CapabilitySet)

	for _, id := range result.Graph.Nodes() {
		cls := classOf(string(id))
		if _, ok := caps[cls]; !ok {
			caps[cls] = capability.NewSet()
		}
		out := result.Graph.Outgoing(id)
		calls[cls] += len(out)
		usedBy[cls] += len(result.Graph.Incoming(id))
		caps[cls].Merge(detector.ClassifyEdges(out))
	}

	var rows []classRow
	for cls := range calls {
		set := caps[cls]
		rows = append(rows, classRow{
			Class: cls, Calls: calls[cls], UsedBy: usedBy[cls],
			Risk: set.RiskLevel(), Score: set.Score(),
		})
	}

	minLevel := riskValue(*minRisk)
	var filtered []classRow
	for _, r := range rows {
		if riskValue(r.Risk) >= minLevel {
			filtered = append(filtered, r)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Score != filtered[j].Score {
			return filtered[i].Score > filtered[j].Score
		}
		return filtered[i].Class < filtered[j].Class
	})

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(filtered)
		return 0
	}

	const (
		red    = "\033[31m"
		yellow = "\033[33m"
		green  = "\033[32m"
		bold   = "\033[1m"
		reset  = "\033[0m"
	)
	colorForRisk := func(risk string) string {
		switch risk {
		case "HIGH":
			return red
		case "MEDIUM":
			return yellow
		case "LOW":
			return green
		default:
			return reset
		}
	}

	fmt.Printf("%s%-55s  %6s  %6s  %6s  %-6s%s\n", bold, "CLASS", "CALLS", "USEDBY", "SCORE", "RISK", reset)
	fmt.Println(strings.Repeat("─", 90))
	for _, r := range filtered {
		col := colorForRisk(r.Risk)
		fmt.Printf("%-55s  %6d  %6d  %6d  %s%-6s%s\n", r.Class, r.Calls, r.UsedBy, r.Score, col, r.Risk, reset)
	}
	if len(filtered) == 0 {
		fmt.Println("no classes matching filter")
	}
	return 0
}

// writeDOT dumps the frozen method-level call graph as Graphviz DOT,
// annotating each edge with its hazard capability (if any) for inspection
// in a renderer rather than this command's own text table.
func writeDOT(result *pipeline.Result, detector *capability.Detector) int {
	fmt.Println("digraph callgraph {")
	fmt.Println(`  rankdir="LR";`)
	for _, id := range result.Graph.Nodes() {
		for _, e := range result.Graph.Outgoing(id) {
			attrs := ""
			if cap, _, ok := detector.Classify(e); ok {
				attrs = fmt.Sprintf(" [label=%q,color=red,fontcolor=red]", cap.String())
			}
			fmt.Printf("  %q -> %q%s;\n", string(e.Caller()), string(e.Callee()), attrs)
		}
	}
	fmt.Println("}")
	return 0
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
