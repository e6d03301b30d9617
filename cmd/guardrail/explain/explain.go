package explain

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/1homsi/guardrail/internal/capability"
	"github.com/1homsi/guardrail/internal/model"
	"github.com/1homsi/guardrail/internal/pipeline"
	"github.com/1homsi/guardrail/internal/source"
)

// phpPatterns holds the hazard pattern set embedded for the PHP grammar;
// a load failure means the binary's embedded languages/php.yaml is broken,
// not a user-fixable condition.
var phpPatterns = capability.MustLoadPatterns("php")

// Run prints the witness path from one entry method to one target method
// (or explains why no such path exists), annotated with the hazard
// evidence (call-site and import-statement) found along the way.
// Exits 0 whether or not a path exists; exits 2 on a usage error or when
// the pipeline fails.
func Run(args []string) int {
	fs := flag.NewFlagSet("explain", flag.ExitOnError)
	path := fs.String("path", ".", "root directory to analyze")
	jsonOut := fs.Bool("json", false, "JSON output")
	fs.Parse(args)

	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: guardrail explain [-path dir] <Entry::method> <Target::method>")
		return 2
	}
	entry := model.MethodID(fs.Arg(0))
	target := model.MethodID(fs.Arg(1))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	result, err := pipeline.Run(context.Background(), *path, source.Config{}, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "explain:", err)
		return 2
	}

	detector := capability.NewDetector(phpPatterns)

	witness, found := result.Graph.FindPath(entry, target)
	hazards := hazardsAlong(detector, result, witness)

	if *jsonOut {
		return printJSON(entry, target, found, witness, hazards)
	}
	return printText(entry, target, found, witness, hazards, knownNode(result, entry), knownNode(result, target))
}

// knownNode reports whether id appeared anywhere in the graph, to
// distinguish "unreachable" from "never seen" in the no-path explanation.
func knownNode(result *pipeline.Result, id model.MethodID) bool {
	for _, n := range result.Graph.Nodes() {
		if n == id {
			return true
		}
	}
	return false
}

// hazardsAlong folds call-site evidence from every edge on the witness and
// import-statement evidence from every file declaring a class the witness
// passes through into one CapabilitySet.
func hazardsAlong(detector *capability.Detector, result *pipeline.Result, witness []model.MethodCall) *capability.CapabilitySet {
	set := detector.ClassifyEdges(witness)

	classes := make(map[string]bool)
	for _, e := range witness {
		classes[e.CallerClass] = true
		classes[e.CalleeClass] = true
	}

	var imports []string
	for _, f := range result.Files {
		for _, cl := range f.Classes {
			if !classes[cl.FQCN()] {
				continue
			}
			for _, u := range f.Uses {
				imports = append(imports, u.Path)
			}
			break
		}
	}
	set.Merge(detector.ClassifyImports(imports))
	return set
}

func printJSON(entry, target model.MethodID, found bool, witness []model.MethodCall, hazards *capability.CapabilitySet) int {
	type jsonEdge struct {
		Caller string `json:"caller"`
		Callee string `json:"callee"`
		Line   int    `json:"line"`
		Static bool   `json:"static"`
	}
	edges := make([]jsonEdge, 0, len(witness))
	for _, e := range witness {
		edges = append(edges, jsonEdge{
			Caller: string(e.Caller()), Callee: string(e.Callee()),
			Line: e.Line, Static: e.Static,
		})
	}
	out := struct {
		Entry        string     `json:"entry"`
		Target       string     `json:"target"`
		Found        bool       `json:"found"`
		Witness      []jsonEdge `json:"witness"`
		Capabilities string     `json:"capabilities"`
		RiskLevel    string     `json:"risk_level"`
	}{
		Entry: string(entry), Target: string(target), Found: found,
		Witness: edges, Capabilities: hazards.String(), RiskLevel: hazards.RiskLevel(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
	return 0
}

func printText(entry, target model.MethodID, found bool, witness []model.MethodCall, hazards *capability.CapabilitySet, entryKnown, targetKnown bool) int {
	const (
		bold  = "\033[1m"
		green = "\033[32m"
		red   = "\033[31m"
		gray  = "\033[90m"
		reset = "\033[0m"
	)

	if !found {
		fmt.Printf("%s%sno path%s from %s to %s\n", bold, red, reset, entry, target)
		switch {
		case !entryKnown:
			fmt.Printf("  %s%s was never seen as a caller or callee in the call graph%s\n", gray, entry, reset)
		case !targetKnown:
			fmt.Printf("  %s%s was never seen as a caller or callee in the call graph%s\n", gray, target, reset)
		default:
			fmt.Printf("  %sboth methods exist, but no call chain connects them%s\n", gray, reset)
		}
		return 0
	}

	fmt.Printf("%s%spath found%s from %s to %s\n\n", bold, green, reset, entry, target)
	if len(witness) == 0 {
		fmt.Println("  (entry and target are the same method)")
	}
	for _, e := range witness {
		arrow := "->"
		if e.Static {
			arrow = "=>"
		}
		loc := ""
		if e.Line > 0 {
			loc = fmt.Sprintf("  %s:%d%s", gray, e.Line, reset)
		}
		fmt.Printf("  %s %s %s%s\n", e.Caller(), arrow, e.Callee(), loc)
	}
	if hazards.Score() > 0 {
		fmt.Printf("\n%shazards along this path: %s (%s)%s\n", bold, hazards.String(), hazards.RiskLevel(), reset)
	}
	return 0
}
