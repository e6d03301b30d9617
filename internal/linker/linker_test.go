package linker

import (
	"testing"

	"github.com/1homsi/guardrail/internal/callgraph"
	"github.com/1homsi/guardrail/internal/hierarchy"
	"github.com/1homsi/guardrail/internal/model"
)

func TestLinkAddsEdgeToImplementor(t *testing.T) {
	h := hierarchy.New()
	h.MarkInterface("UseCase")
	h.AddMethodDef("UseCase", "execute")
	h.SetInterfaces("Handler", []string{"UseCase"})
	h.AddMethodDef("Handler", "execute")

	g := callgraph.New()
	Link(h, g)

	edges := g.Outgoing("UseCase::execute")
	if len(edges) != 1 || edges[0].CalleeClass != "Handler" {
		t.Fatalf("expected one synthetic edge to Handler::execute, got %v", edges)
	}
}

func TestLinkSkipsImplementorsWithoutTheMethod(t *testing.T) {
	h := hierarchy.New()
	h.MarkInterface("UseCase")
	h.AddMethodDef("UseCase", "execute")
	h.SetInterfaces("Handler", []string{"UseCase"})
	// Handler never defines "execute".

	g := callgraph.New()
	Link(h, g)

	if len(g.Outgoing("UseCase::execute")) != 0 {
		t.Fatal("expected no synthetic edge for an implementor missing the method")
	}
}

func TestLinkIsIdempotent(t *testing.T) {
	h := hierarchy.New()
	h.MarkInterface("UseCase")
	h.AddMethodDef("UseCase", "execute")
	h.SetInterfaces("Handler", []string{"UseCase"})
	h.AddMethodDef("Handler", "execute")

	g := callgraph.New()
	Link(h, g)
	Link(h, g)

	if got := len(g.Outgoing("UseCase::execute")); got != 1 {
		t.Fatalf("expected Link to be idempotent, got %d edges", got)
	}
}

func TestLinkDoesNotDuplicateAnExistingCallSiteEdge(t *testing.T) {
	h := hierarchy.New()
	h.MarkInterface("UseCase")
	h.AddMethodDef("UseCase", "execute")
	h.SetInterfaces("Handler", []string{"UseCase"})
	h.AddMethodDef("Handler", "execute")

	g := callgraph.New()
	g.Add(model.MethodCall{
		CallerClass: "UseCase", CallerMethod: "execute",
		CalleeClass: "Handler", CalleeMethod: "execute",
		Line: 0, Static: false,
	})
	Link(h, g)

	if got := len(g.Outgoing("UseCase::execute")); got != 1 {
		t.Fatalf("expected the pre-existing edge to suppress the synthetic one, got %d edges", got)
	}
}

func TestLinkHandlesMultipleImplementors(t *testing.T) {
	h := hierarchy.New()
	h.MarkInterface("UseCase")
	h.AddMethodDef("UseCase", "execute")
	h.SetInterfaces("HandlerA", []string{"UseCase"})
	h.SetInterfaces("HandlerB", []string{"UseCase"})
	h.AddMethodDef("HandlerA", "execute")
	h.AddMethodDef("HandlerB", "execute")

	g := callgraph.New()
	Link(h, g)

	edges := g.Outgoing("UseCase::execute")
	if len(edges) != 2 {
		t.Fatalf("expected 2 synthetic edges, got %d", len(edges))
	}
}
