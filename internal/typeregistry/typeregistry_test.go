package typeregistry

import (
	"testing"

	"github.com/1homsi/guardrail/internal/hierarchy"
)

func TestResolvePropertyTypeDirect(t *testing.T) {
	h := hierarchy.New()
	r := New(h)
	r.AddPropertyType("A", "b", "B")
	got, ok := r.ResolvePropertyType("A", "b")
	if !ok || got != "B" {
		t.Fatalf("expected (B, true), got (%q, %v)", got, ok)
	}
}

func TestResolvePropertyTypeMissing(t *testing.T) {
	h := hierarchy.New()
	r := New(h)
	if _, ok := r.ResolvePropertyType("A", "b"); ok {
		t.Fatal("expected no type for an unrecorded property")
	}
}

func TestResolvePropertyTypeIgnoresEmptyType(t *testing.T) {
	h := hierarchy.New()
	r := New(h)
	r.AddPropertyType("A", "b", "")
	if _, ok := r.ResolvePropertyType("A", "b"); ok {
		t.Fatal("expected an empty declared type to not be recorded")
	}
}

func TestResolvePropertyTypeViaParent(t *testing.T) {
	h := hierarchy.New()
	h.SetParent("Child", "Parent")
	r := New(h)
	r.AddPropertyType("Parent", "conn", "Connection")
	got, ok := r.ResolvePropertyType("Child", "conn")
	if !ok || got != "Connection" {
		t.Fatalf("expected (Connection, true), got (%q, %v)", got, ok)
	}
}

func TestResolvePropertyTypeViaTrait(t *testing.T) {
	h := hierarchy.New()
	h.MarkTrait("Authenticatable")
	h.SetTraits("User", []string{"Authenticatable"})
	r := New(h)
	r.AddPropertyType("User", "token", "Token")
	got, ok := r.ResolvePropertyType("Authenticatable", "token")
	if !ok || got != "Token" {
		t.Fatalf("expected (Token, true), got (%q, %v)", got, ok)
	}
}

func TestResolvePropertyTypeDirectBeatsParent(t *testing.T) {
	h := hierarchy.New()
	h.SetParent("Child", "Parent")
	r := New(h)
	r.AddPropertyType("Parent", "conn", "Connection")
	r.AddPropertyType("Child", "conn", "PooledConnection")
	got, ok := r.ResolvePropertyType("Child", "conn")
	if !ok || got != "PooledConnection" {
		t.Fatalf("expected the direct declaration to win, got (%q, %v)", got, ok)
	}
}

func TestResolvePropertyTypeCycleSafe(t *testing.T) {
	h := hierarchy.New()
	h.MarkTrait("X")
	h.MarkTrait("Y")
	h.SetTraits("X", []string{"Y"})
	h.SetTraits("Y", []string{"X"})
	r := New(h)
	if _, ok := r.ResolvePropertyType("X", "missing"); ok {
		t.Fatal("expected no type, and no infinite loop, for a trait cycle")
	}
}
