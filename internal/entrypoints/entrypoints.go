// Package entrypoints implements the two entry-point discovery
// collaborators named in §6/§4.12: namespace/glob discovery over the
// parsed ASTs, and a YAML route-manifest reader for web-framework-style
// entry points. Neither is prescribed by the core — both are ordinary
// implementations of the same Discoverer seam.
package entrypoints

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1homsi/guardrail/internal/ast"
	"github.com/1homsi/guardrail/internal/model"
)

// Discoverer produces the entry-point stream the core consumes (§6).
type Discoverer interface {
	Discover() ([]model.EntryPoint, error)
}

// NamespaceGlob selects entry points by matching a class's fully-qualified
// name against Pattern (a "*"-wildcard glob, e.g. `App\Controller\*`) and,
// when Method is non-empty, a specific method name; an empty Method
// matches every declared method on the selected classes.
type NamespaceGlob struct {
	Files   []*ast.File
	Pattern string
	Method  string
}

// Discover implements Discoverer.
func (n NamespaceGlob) Discover() ([]model.EntryPoint, error) {
	var out []model.EntryPoint
	// Backslash is the namespace separator here, not path.Match's escape.
	pattern := strings.ReplaceAll(n.Pattern, `\`, `\\`)
	for _, f := range n.Files {
		for _, cl := range f.Classes {
			fqcn := cl.FQCN()
			matched, err := path.Match(pattern, fqcn)
			if err != nil {
				return nil, fmt.Errorf("entrypoints: bad pattern %q: %w", n.Pattern, err)
			}
			if !matched {
				continue
			}
			for _, m := range cl.Methods {
				if n.Method != "" && m.Name != n.Method {
					continue
				}
				out = append(out, model.EntryPoint{Class: fqcn, Method: m.Name, File: f.Path})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Class != out[j].Class {
			return out[i].Class < out[j].Class
		}
		return out[i].Method < out[j].Method
	})
	return out, nil
}

// routeEntry is the YAML shape of one route-manifest record.
type routeEntry struct {
	Class       string `yaml:"class"`
	Method      string `yaml:"method"`
	Route       string `yaml:"route"`
	HTTPMethod  string `yaml:"http_method"`
	Description string `yaml:"description"`
}

// RouteManifest discovers entry points from a YAML file listing
// (class, method, route, http_method, description) records — the
// collaborator for web-framework route tables the core doesn't parse
// itself (§1's "out of scope" list).
type RouteManifest struct {
	Path string
}

// Discover implements Discoverer.
func (r RouteManifest) Discover() ([]model.EntryPoint, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("entrypoints: read manifest %s: %w", r.Path, err)
	}
	var routes []routeEntry
	if err := yaml.Unmarshal(data, &routes); err != nil {
		return nil, fmt.Errorf("entrypoints: parse manifest %s: %w", r.Path, err)
	}
	out := make([]model.EntryPoint, 0, len(routes))
	for _, rt := range routes {
		out = append(out, model.EntryPoint{
			Class: rt.Class, Method: rt.Method, File: r.Path,
			Route: rt.Route, HTTPMethod: rt.HTTPMethod, Description: rt.Description,
		})
	}
	return out, nil
}
