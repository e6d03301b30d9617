// Package typeregistry records declared property types — plain
// declarations, constructor-promoted parameters, and static properties —
// and resolves a property's type up the class hierarchy and through
// traits, per §4.4.
package typeregistry

import "github.com/1homsi/guardrail/internal/hierarchy"

type propKey struct{ class, prop string }

// Registry is the mutable-during-construction, read-only-after-freeze
// (class, property) -> declared-type table.
type Registry struct {
	types map[propKey]string
	h     *hierarchy.Hierarchy
}

// New returns an empty Registry backed by h for parent/trait-user lookups.
func New(h *hierarchy.Hierarchy) *Registry {
	return &Registry{types: make(map[propKey]string), h: h}
}

// AddPropertyType records that class declares property p with type t.
// Called for plain declared properties, constructor-promoted parameters,
// and static properties alike — the source distinction doesn't affect
// resolution.
func (r *Registry) AddPropertyType(class, p, t string) {
	if t == "" {
		return
	}
	r.types[propKey{class, p}] = t
}

// ResolvePropertyType resolves (class, p)'s declared type: (1) a direct hit
// on (class, p); (2) if class is a trait, every class using that trait, any
// hit wins, first in class-insertion order; (3) otherwise class's parent.
// Cycle-safe via a visited set, since a trait's user set can loop back
// through another trait sharing a user.
func (r *Registry) ResolvePropertyType(class, p string) (string, bool) {
	return r.resolve(class, p, make(map[string]bool))
}

func (r *Registry) resolve(class, p string, visited map[string]bool) (string, bool) {
	if class == "" || visited[class] {
		return "", false
	}
	visited[class] = true

	if t, ok := r.types[propKey{class, p}]; ok {
		return t, true
	}
	if r.h.IsTrait(class) {
		for _, user := range r.h.FindClassesUsingTrait(class) {
			if t, ok := r.resolve(user, p, visited); ok {
				return t, true
			}
		}
		return "", false
	}
	if parent, ok := r.h.Parent(class); ok {
		return r.resolve(parent, p, visited)
	}
	return "", false
}
