package callgraph

import (
	"testing"

	"github.com/1homsi/guardrail/internal/model"
)

func edge(caller, callerMethod, callee, calleeMethod string) model.MethodCall {
	return model.MethodCall{
		CallerClass: caller, CallerMethod: callerMethod,
		CalleeClass: callee, CalleeMethod: calleeMethod,
	}
}

func TestAddDropsEdgesWithNoCaller(t *testing.T) {
	g := New()
	g.Add(model.MethodCall{CalleeClass: "B", CalleeMethod: "auth"})
	if len(g.Nodes()) != 0 {
		t.Fatalf("expected a caller-less edge to be dropped, got nodes %v", g.Nodes())
	}
}

func TestNodesInsertionOrder(t *testing.T) {
	g := New()
	g.Add(edge("A", "run", "B", "auth"))
	g.Add(edge("B", "auth", "C", "check"))
	got := g.Nodes()
	want := []model.MethodID{"A::run", "B::auth", "C::check"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestHasPathTrivial(t *testing.T) {
	g := New()
	if !g.HasPath("A::run", "A::run") {
		t.Fatal("expected HasPath(x, x) to be true even for an unknown node")
	}
}

func TestHasPathDirect(t *testing.T) {
	g := New()
	g.Add(edge("A", "run", "B", "auth"))
	if !g.HasPath("A::run", "B::auth") {
		t.Fatal("expected a direct edge to satisfy HasPath")
	}
	if g.HasPath("B::auth", "A::run") {
		t.Fatal("expected no path in the reverse direction")
	}
}

func TestHasPathUnresolvedCalleeIsDeadEnd(t *testing.T) {
	g := New()
	g.Add(model.MethodCall{CallerClass: "A", CallerMethod: "run"})
	if g.HasPath("A::run", "B::auth") {
		t.Fatal("expected an unresolved-callee edge not to extend reachability")
	}
}

func TestFindPathTrivialIsEmptyNonNil(t *testing.T) {
	g := New()
	path, ok := g.FindPath("A::run", "A::run")
	if !ok || path == nil || len(path) != 0 {
		t.Fatalf("expected an empty, non-nil witness, got %v, ok=%v", path, ok)
	}
}

func TestFindPathMultiHop(t *testing.T) {
	g := New()
	g.Add(edge("A", "run", "B", "with"))
	g.Add(edge("B", "with", "C", "auth"))
	path, ok := g.FindPath("A::run", "C::auth")
	if !ok {
		t.Fatal("expected A::run to reach C::auth")
	}
	if len(path) != 2 {
		t.Fatalf("expected a 2-edge witness, got %d", len(path))
	}
	if string(path[0].Caller()) != "A::run" || string(path[1].Callee()) != "C::auth" {
		t.Fatalf("unexpected witness: %v", path)
	}
	if path[0].Callee() != path[1].Caller() {
		t.Fatalf("expected consecutive edges to share an intermediate identifier: %v", path)
	}
}

func TestFindPathNotFound(t *testing.T) {
	g := New()
	g.Add(edge("A", "run", "B", "with"))
	if _, ok := g.FindPath("A::run", "Z::unrelated"); ok {
		t.Fatal("expected no witness to an unconnected node")
	}
}

func TestFindPathCycleTerminates(t *testing.T) {
	g := New()
	g.Add(edge("A", "spin", "B", "loop"))
	g.Add(edge("B", "loop", "A", "spin"))
	if !g.HasPath("A::spin", "B::loop") {
		t.Fatal("expected A::spin to reach B::loop despite the cycle")
	}
	if _, ok := g.FindPath("A::spin", "Z::unrelated"); ok {
		t.Fatal("expected the cycle not to cause a false positive or hang")
	}
}

func TestOutgoingAndIncoming(t *testing.T) {
	g := New()
	e1 := edge("A", "run", "B", "auth")
	e2 := edge("A", "run", "C", "check")
	g.Add(e1)
	g.Add(e2)
	out := g.Outgoing("A::run")
	if len(out) != 2 {
		t.Fatalf("expected 2 outgoing edges, got %d", len(out))
	}
	in := g.Incoming("B::auth")
	if len(in) != 1 {
		t.Fatalf("expected 1 incoming edge, got %d", len(in))
	}
}
