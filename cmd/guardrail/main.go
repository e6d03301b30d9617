package main

import (
	"fmt"
	"os"

	"github.com/1homsi/guardrail/cmd/guardrail/check"
	"github.com/1homsi/guardrail/cmd/guardrail/explain"
	"github.com/1homsi/guardrail/cmd/guardrail/graph"
	"github.com/1homsi/guardrail/cmd/guardrail/viz"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "check":
		os.Exit(check.Run(os.Args[2:]))
	case "explain":
		os.Exit(explain.Run(os.Args[2:]))
	case "graph":
		os.Exit(graph.Run(os.Args[2:]))
	case "viz":
		os.Exit(viz.Run(os.Args[2:]))
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `guardrail — PHP call-reachability guard

Usage:
  guardrail check   [--config file] [--entry glob] [--routes file] [--rule name] [--memory-limit N] [-v] [--json|--sarif] [path]
  guardrail explain [-path dir] [-json] <Entry::method> <Target::method>
  guardrail graph   [-json] [-format text|dot] [-min-risk low|medium|high] [path]
  guardrail viz     [--config file] [--rule name] [-min-risk low|medium|high] [path]
  guardrail version`)
}
