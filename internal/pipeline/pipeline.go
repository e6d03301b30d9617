// Package pipeline orchestrates the full batch pass sequence (§2's data
// flow): file set -> ASTs -> Pass 1 (definition collector) -> Pass 2 (call
// analyzer) -> Pass 3 (interface linker) -> immutable CallGraph.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/1homsi/guardrail/internal/ast"
	"github.com/1homsi/guardrail/internal/callanalysis"
	"github.com/1homsi/guardrail/internal/callgraph"
	"github.com/1homsi/guardrail/internal/collector"
	"github.com/1homsi/guardrail/internal/hierarchy"
	"github.com/1homsi/guardrail/internal/linker"
	"github.com/1homsi/guardrail/internal/source"
	"github.com/1homsi/guardrail/internal/typeregistry"
)

// Result is the frozen output of a full pipeline run: the call graph and
// the tables that produced it, ready for rule evaluation or reporting.
type Result struct {
	Graph     *callgraph.Graph
	Hierarchy *hierarchy.Hierarchy
	Types     *typeregistry.Registry
	Files     []*ast.File
}

// Run executes the full pipeline over root under cfg. File reads are
// sharded by internal/source; parsing is likewise sharded here (both
// embarrassingly parallel per §5) and merged back into the deterministic
// sorted-path order before Pass 1 begins. Pass 1, Pass 2, and Pass 3 run
// single-threaded over that fixed order, since all three mutate shared
// state (§5: "the graph itself is written single-threaded during
// construction").
func Run(ctx context.Context, root string, cfg source.Config, logger *slog.Logger) (*Result, error) {
	units, err := source.Walk(ctx, root, cfg)
	if err != nil {
		return nil, fmt.Errorf("pipeline: walk %s: %w", root, err)
	}

	files := make([]*ast.File, len(units))
	ok := make([]bool, len(units))
	g, _ := errgroup.WithContext(ctx)
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			f, perr := ast.ParseFile(u.Path, u.Data)
			if perr != nil {
				logger.Debug("skipping unparseable file", "path", u.Path, "error", perr)
				return nil // per-file recoverable error (§7 category 2): skip, don't fail the run
			}
			if len(f.Classes) == 0 && len(f.Uses) == 0 {
				return nil // an empty AST contributes to nothing (§4.1)
			}
			files[i] = f
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var parsed []*ast.File
	for i, f := range files {
		if ok[i] {
			parsed = append(parsed, f)
		}
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Path < parsed[j].Path })

	coll := collector.New()
	for _, f := range parsed {
		coll.Collect(f)
	}

	analyzer := callanalysis.New(coll.Hierarchy, coll.Types, callgraph.New())
	for _, f := range parsed {
		analyzer.Analyze(f)
	}

	linker.Link(coll.Hierarchy, analyzer.Graph)

	return &Result{
		Graph:     analyzer.Graph,
		Hierarchy: coll.Hierarchy,
		Types:     coll.Types,
		Files:     parsed,
	}, nil
}
