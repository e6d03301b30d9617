// Package collector implements the definition collector (Pass 1, §4.5):
// walking every parsed file to populate the class hierarchy and type
// registry before the call analyzer inspects any call site.
package collector

import (
	"github.com/1homsi/guardrail/internal/ast"
	"github.com/1homsi/guardrail/internal/hierarchy"
	"github.com/1homsi/guardrail/internal/resolver"
	"github.com/1homsi/guardrail/internal/typeregistry"
)

// Collector owns the two tables Pass 1 populates.
type Collector struct {
	Hierarchy *hierarchy.Hierarchy
	Types     *typeregistry.Registry
}

// New returns a Collector with fresh, empty tables.
func New() *Collector {
	h := hierarchy.New()
	return &Collector{Hierarchy: h, Types: typeregistry.New(h)}
}

// Collect walks file, pushing its namespace and import map on entry to each
// class-like declaration and popping them on exit (in practice: each
// ClassLike gets its own Scope built fresh from the file's namespace and
// use-imports, since this language doesn't nest class declarations).
func (c *Collector) Collect(file *ast.File) {
	fileScope := resolver.NewScope(file.Namespace)
	for _, u := range file.Uses {
		fileScope.AddImport(u.Path, u.Alias)
	}

	for _, cl := range file.Classes {
		scope := fileScope
		scope.CurrentClass = cl.FQCN()
		c.collectClass(cl, scope)
	}
}

func (c *Collector) collectClass(cl *ast.ClassLike, scope resolver.Scope) {
	fqcn := scope.CurrentClass

	switch cl.Kind {
	case ast.KindTrait:
		c.Hierarchy.MarkTrait(fqcn)
	case ast.KindInterface:
		c.Hierarchy.MarkInterface(fqcn)
	}

	if len(cl.Extends) > 0 {
		// A class has at most one parent; an interface may list several
		// "extends" — the hierarchy models only the first for parent-chain
		// lookups, the rest are recorded as declared interfaces so
		// find_classes_implementing still sees them.
		c.Hierarchy.SetParent(fqcn, scope.Resolve(cl.Extends[0]))
		if cl.Kind == ast.KindInterface && len(cl.Extends) > 1 {
			c.Hierarchy.SetInterfaces(fqcn, resolveAll(scope, cl.Extends[1:]))
		}
	}
	if len(cl.Implements) > 0 {
		c.Hierarchy.SetInterfaces(fqcn, resolveAll(scope, cl.Implements))
	}
	if len(cl.UsedTraits) > 0 {
		c.Hierarchy.SetTraits(fqcn, resolveAll(scope, cl.UsedTraits))
	}

	for _, m := range cl.Methods {
		c.Hierarchy.AddMethodDef(fqcn, m.Name)
		if m.ReturnType != "" {
			if rt := scope.ResolveType(m.ReturnType); rt != "" {
				c.Hierarchy.AddReturnType(fqcn, m.Name, rt)
			}
		}
	}

	for _, p := range cl.Properties {
		if p.Type == "" {
			continue
		}
		if t := scope.ResolveType(p.Type); t != "" {
			c.Types.AddPropertyType(fqcn, p.Name, t)
		}
	}
}

func resolveAll(scope resolver.Scope, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = scope.Resolve(n)
	}
	return out
}
