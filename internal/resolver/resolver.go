// Package resolver implements the name resolver (§4.2): resolving a short
// name written at a use site to a fully-qualified class name, given the
// current namespace and the file's import map.
package resolver

import "strings"

// Scope carries the two contextual variables the resolver needs while
// walking a file: the current namespace and the short-name -> FQCN import
// map built from its use-declarations. CurrentClass is the enclosing
// class/trait/interface FQCN, used to substitute self/static.
type Scope struct {
	Namespace    string
	Imports      map[string]string
	CurrentClass string
}

// NewScope returns a Scope with an initialized, empty import map.
func NewScope(namespace string) Scope {
	return Scope{Namespace: namespace, Imports: make(map[string]string)}
}

// AddImport records a `use Path [as Alias]` declaration. The short name
// used to key the map is the alias when given, otherwise the last segment
// of path.
func (s Scope) AddImport(path, alias string) {
	short := alias
	if short == "" {
		short = lastSegment(path)
	}
	s.Imports[short] = strings.TrimPrefix(path, "\\")
}

func lastSegment(path string) string {
	path = strings.TrimSuffix(path, "\\")
	if i := strings.LastIndex(path, "\\"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Resolve applies the §4.2 resolution rules to name n.
//
//  1. fully qualified (leading '\') -> strip separator, return as-is.
//  2. n in {self, static} -> CurrentClass, or n literally if there is none.
//  3. first segment of n is a key in Imports -> substitute, keep remaining segments.
//  4. else, inside a namespace -> prepend namespace.
//  5. else -> return n unchanged.
func (s Scope) Resolve(n string) string {
	if n == "" {
		return n
	}
	if strings.HasPrefix(n, "\\") {
		return strings.TrimPrefix(n, "\\")
	}

	lower := strings.ToLower(n)
	if lower == "self" || lower == "static" {
		if s.CurrentClass != "" {
			return s.CurrentClass
		}
		return n
	}
	if lower == "parent" {
		// parent is resolved by the caller (class hierarchy lookup), which
		// needs CurrentClass's parent link, not a name substitution; return
		// it unresolved so callers can special-case it as documented in §9.
		return n
	}

	first, rest := n, ""
	if i := strings.Index(n, "\\"); i >= 0 {
		first, rest = n[:i], n[i:]
	}
	if fqcn, ok := s.Imports[first]; ok {
		return fqcn + rest
	}

	if s.Namespace != "" {
		return s.Namespace + "\\" + n
	}
	return n
}

// ResolveType resolves a type expression as produced by the parser's
// tryParseType: a possibly-nullable, possibly-union/intersection-collapsed
// single identifier. The parser has already collapsed to the first
// concrete member, so ResolveType only needs the ordinary name resolution;
// it exists as a distinct entry point so callers don't conflate "resolve a
// class reference at a call site" with "resolve a declared type", even
// though today they share an implementation.
func (s Scope) ResolveType(t string) string {
	if t == "" {
		return ""
	}
	switch strings.ToLower(t) {
	case "self", "static", "parent", "array", "callable", "iterable", "mixed",
		"void", "never", "int", "float", "string", "bool", "object", "null", "false", "true":
		if strings.ToLower(t) == "self" || strings.ToLower(t) == "static" {
			return s.Resolve(t)
		}
		return "" // scalar/builtin pseudo-types never name a class
	}
	return s.Resolve(t)
}
