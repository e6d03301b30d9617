package callanalysis

import (
	"testing"

	"github.com/1homsi/guardrail/internal/ast"
	"github.com/1homsi/guardrail/internal/callgraph"
	"github.com/1homsi/guardrail/internal/collector"
)

func analyze(t *testing.T, src string) *callgraph.Graph {
	t.Helper()
	f, err := ast.ParseFile("test.php", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	c := collector.New()
	c.Collect(f)
	g := callgraph.New()
	New(c.Hierarchy, c.Types, g).Analyze(f)
	return g
}

func hasEdge(g *callgraph.Graph, callerClass, callerMethod, calleeClass, calleeMethod string) bool {
	for _, id := range g.Nodes() {
		for _, e := range g.Outgoing(id) {
			if e.CallerClass == callerClass && e.CallerMethod == callerMethod &&
				e.CalleeClass == calleeClass && e.CalleeMethod == calleeMethod {
				return true
			}
		}
	}
	return false
}

func TestAnalyzeInstanceCallThroughProperty(t *testing.T) {
	g := analyze(t, `<?php
namespace App;
class Auth {
    public function check() {}
}
class UserController {
    private Auth $auth;
    public function index() {
        $this->auth->check();
    }
}
`)
	if !hasEdge(g, `App\UserController`, "index", `App\Auth`, "check") {
		t.Fatal("expected an edge from UserController::index to Auth::check")
	}
}

func TestAnalyzeNewAssignedToLocal(t *testing.T) {
	g := analyze(t, `<?php
namespace App;
class Auth {
    public function check() {}
}
class UserController {
    public function index() {
        $auth = new Auth();
        $auth->check();
    }
}
`)
	if !hasEdge(g, `App\UserController`, "index", `App\Auth`, "check") {
		t.Fatal("expected an edge from a locally instantiated receiver")
	}
}

func TestAnalyzeParentCallSkipsOwnTraits(t *testing.T) {
	g := analyze(t, `<?php
namespace App;
class Base {
    public function run() {}
}
trait T {
    public function run() {}
}
class Child extends Base {
    use T;
    public function run() {
        parent::run();
    }
}
`)
	if !hasEdge(g, `App\Child`, "run", `App\Base`, "run") {
		t.Fatal("expected parent::run() to resolve to Base::run")
	}
}

func TestAnalyzeMethodCallThroughInferredReturnType(t *testing.T) {
	g := analyze(t, `<?php
namespace App;
class Logger {
    public function write() {}
}
class Factory {
    public function make(): Logger {}
}
class Service {
    private Factory $factory;
    public function run() {
        $this->factory->make()->write();
    }
}
`)
	if !hasEdge(g, `App\Service`, "run", `App\Logger`, "write") {
		t.Fatal("expected the chained call through make()'s inferred return type to resolve")
	}
}

func TestAnalyzeAbstractMethodHasNoBody(t *testing.T) {
	g := analyze(t, `<?php
interface UseCase {
    public function execute();
}
`)
	if len(g.Nodes()) != 0 {
		t.Fatalf("expected no nodes from a bodiless interface method, got %v", g.Nodes())
	}
}

func TestAnalyzeUnresolvedReceiverStillRecordsEdgeWithEmptyClass(t *testing.T) {
	g := analyze(t, `<?php
class Service {
    public function run($unknown) {
        $unknown->doThing();
    }
}
`)
	found := false
	for _, id := range g.Nodes() {
		for _, e := range g.Outgoing(id) {
			if e.CalleeMethod == "doThing" {
				found = true
				if e.CalleeClass != "" {
					t.Fatalf("expected an unresolved receiver to leave CalleeClass empty, got %q", e.CalleeClass)
				}
			}
		}
	}
	if !found {
		t.Fatal("expected an edge for doThing even with an unresolved receiver")
	}
}
