// Package callanalysis implements the call analyzer (Pass 2, §4.6): walking
// every AST after Pass 1 has populated the class hierarchy and type
// registry, inferring receiver types with a per-method local-variable
// scope, and emitting call-graph edges.
package callanalysis

import (
	"strings"

	"github.com/1homsi/guardrail/internal/ast"
	"github.com/1homsi/guardrail/internal/callgraph"
	"github.com/1homsi/guardrail/internal/hierarchy"
	"github.com/1homsi/guardrail/internal/model"
	"github.com/1homsi/guardrail/internal/resolver"
	"github.com/1homsi/guardrail/internal/typeregistry"
)

// methodScope maps a local variable name to its inferred class type,
// rebuilt fresh for every method body (§3's MethodScope).
type methodScope map[string]string

// Analyzer walks ASTs and emits edges into Graph, using Hierarchy and Types
// (already fully populated by Pass 1) to resolve receivers.
type Analyzer struct {
	Hierarchy *hierarchy.Hierarchy
	Types     *typeregistry.Registry
	Graph     *callgraph.Graph
}

// New returns an Analyzer over the given frozen Pass-1 tables, emitting
// into graph.
func New(h *hierarchy.Hierarchy, t *typeregistry.Registry, graph *callgraph.Graph) *Analyzer {
	return &Analyzer{Hierarchy: h, Types: t, Graph: graph}
}

// Analyze walks one parsed file, emitting edges for every method body it
// contains.
func (a *Analyzer) Analyze(file *ast.File) {
	fileScope := resolver.NewScope(file.Namespace)
	for _, u := range file.Uses {
		fileScope.AddImport(u.Path, u.Alias)
	}
	for _, cl := range file.Classes {
		scope := fileScope
		scope.CurrentClass = cl.FQCN()
		for _, m := range cl.Methods {
			if m.Body == nil {
				continue // abstract/interface method: no body to analyze
			}
			a.analyzeMethod(scope.CurrentClass, m, scope)
		}
	}
}

func (a *Analyzer) analyzeMethod(class string, m *ast.Method, scope resolver.Scope) {
	ms := make(methodScope)
	for _, p := range m.Params {
		if p.Type == "" {
			continue
		}
		if t := scope.ResolveType(p.Type); t != "" {
			ms[p.Name] = t
		}
	}
	for _, stmt := range m.Body {
		a.walkStmt(class, m.Name, stmt, scope, ms)
	}
}

func (a *Analyzer) walkStmt(class, method string, s ast.Stmt, scope resolver.Scope, ms methodScope) {
	switch v := s.(type) {
	case ast.AssignStmt:
		a.walk(class, method, v.Expr, scope, ms)
		if t, ok := a.exprType(class, v.Expr, scope, ms); ok && t != "" {
			ms[v.Var] = t
		}
	case ast.ExprStmt:
		a.walk(class, method, v.Expr, scope, ms)
	}
}

// walk recurses into every expression node reachable from e, emitting a
// call-graph edge at each call site it recognizes while still descending
// into receivers and arguments so nested calls (e.g. `a()->b(c())`) are
// never missed.
func (a *Analyzer) walk(class, method string, e ast.Expr, scope resolver.Scope, ms methodScope) {
	if e == nil {
		return
	}
	switch v := e.(type) {
	case ast.MethodCallExpr:
		a.emitInstanceCall(class, method, v, scope, ms)
		a.walk(class, method, v.Recv, scope, ms)
		for _, arg := range v.Args {
			a.walk(class, method, arg, scope, ms)
		}
	case ast.StaticCallExpr:
		a.emitStaticCall(class, method, v, scope, ms)
		for _, arg := range v.Args {
			a.walk(class, method, arg, scope, ms)
		}
	case ast.InvokeExpr:
		a.emitInvoke(class, method, v, scope, ms)
		a.walk(class, method, v.Callee, scope, ms)
		for _, arg := range v.Args {
			a.walk(class, method, arg, scope, ms)
		}
	case ast.NewExpr:
		for _, arg := range v.Args {
			a.walk(class, method, arg, scope, ms)
		}
	case ast.CloneExpr:
		a.walk(class, method, v.Expr, scope, ms)
	case ast.PropFetchExpr:
		a.walk(class, method, v.Recv, scope, ms)
	case ast.TernaryExpr:
		a.walk(class, method, v.Cond, scope, ms)
		a.walk(class, method, v.Then, scope, ms)
		a.walk(class, method, v.Else, scope, ms)
	case ast.CoalesceExpr:
		a.walk(class, method, v.Left, scope, ms)
		a.walk(class, method, v.Right, scope, ms)
	case ast.IndexExpr:
		a.walk(class, method, v.Recv, scope, ms)
		a.walk(class, method, v.Index, scope, ms)
	case ast.BinaryExpr:
		a.walk(class, method, v.Left, scope, ms)
		a.walk(class, method, v.Right, scope, ms)
	case ast.UnaryExpr:
		a.walk(class, method, v.Expr, scope, ms)
	case ast.ArrayExpr:
		for _, el := range v.Elements {
			a.walk(class, method, el, scope, ms)
		}
	}
}

// resolveOwner applies resolve_method_class so an edge points at a
// method's true defining site rather than the class named at the call
// site, which matters whenever that class inherits the method from a
// trait or parent (§4.6: "essential for reachability through
// inheritance"). Falls back to the named class itself when it defines
// nothing by that name (e.g. the receiver type is unresolved, or the
// method genuinely can't be found — still recorded for diagnostics).
func (a *Analyzer) resolveOwner(cls, method string) string {
	if cls == "" {
		return ""
	}
	if owner, ok := a.Hierarchy.ResolveMethodClass(cls, method); ok {
		return owner
	}
	return cls
}

func (a *Analyzer) emitInstanceCall(class, method string, v ast.MethodCallExpr, scope resolver.Scope, ms methodScope) {
	rc, _ := a.exprType(class, v.Recv, scope, ms)
	calleeClass := a.resolveOwner(rc, v.Name)
	a.Graph.Add(model.MethodCall{
		CallerClass: class, CallerMethod: method,
		CalleeClass: calleeClass, CalleeMethod: v.Name,
		Line: v.Line, Static: false,
		ReceiverExpr: describeRecv(v.Recv),
	})
}

func (a *Analyzer) emitStaticCall(class, method string, v ast.StaticCallExpr, scope resolver.Scope, ms methodScope) {
	var calleeClass string
	switch strings.ToLower(v.Class) {
	case "parent":
		if owner, ok := a.Hierarchy.ResolveMethodClassSkippingOwnTraits(class, v.Name); ok {
			calleeClass = owner
		} else if p, ok := a.Hierarchy.Parent(class); ok {
			calleeClass = p
		}
	case "self", "static":
		calleeClass = a.resolveOwner(class, v.Name)
	default:
		calleeClass = a.resolveOwner(scope.Resolve(v.Class), v.Name)
	}
	a.Graph.Add(model.MethodCall{
		CallerClass: class, CallerMethod: method,
		CalleeClass: calleeClass, CalleeMethod: v.Name,
		Line: v.Line, Static: true,
		ReceiverExpr: v.Class,
	})
}

func (a *Analyzer) emitInvoke(class, method string, v ast.InvokeExpr, scope resolver.Scope, ms methodScope) {
	switch v.Callee.(type) {
	case ast.VarExpr, ast.PropFetchExpr:
	default:
		return // a plain function call, not a call through an invocable object
	}
	rc, _ := a.exprType(class, v.Callee, scope, ms)
	calleeClass := a.resolveOwner(rc, "__invoke")
	a.Graph.Add(model.MethodCall{
		CallerClass: class, CallerMethod: method,
		CalleeClass: calleeClass, CalleeMethod: "__invoke",
		Line: v.Line, Static: false,
		ReceiverExpr: describeRecv(v.Callee),
	})
}

// exprType implements the §4.6 expression-type table. Returns ("", false)
// for any form not listed there.
func (a *Analyzer) exprType(class string, e ast.Expr, scope resolver.Scope, ms methodScope) (string, bool) {
	switch v := e.(type) {
	case ast.NewExpr:
		return a.classRefType(class, v.Class, scope, ms)
	case ast.ThisExpr:
		return class, class != ""
	case ast.SelfExpr:
		c := a.resolveClassKeyword(class, v.Keyword)
		return c, c != ""
	case ast.StaticPropFetchExpr:
		cls := a.resolveClassKeyword(class, v.Class)
		if cls == "" {
			cls = scope.Resolve(v.Class)
		}
		if cls == "" {
			return "", false
		}
		return a.Types.ResolvePropertyType(cls, v.Name)
	case ast.PropFetchExpr:
		recvType, ok := a.exprType(class, v.Recv, scope, ms)
		if !ok || recvType == "" {
			return "", false
		}
		return a.Types.ResolvePropertyType(recvType, v.Name)
	case ast.VarExpr:
		t, ok := ms[v.Name]
		return t, ok
	case ast.MethodCallExpr:
		recvType, ok := a.exprType(class, v.Recv, scope, ms)
		if !ok || recvType == "" {
			return "", false
		}
		return a.Hierarchy.ResolveMethodReturnType(recvType, v.Name)
	case ast.StaticCallExpr:
		var cls string
		switch strings.ToLower(v.Class) {
		case "parent":
			cls, _ = a.Hierarchy.Parent(class)
		case "self", "static":
			cls = class
		default:
			cls = scope.Resolve(v.Class)
		}
		if cls == "" {
			return "", false
		}
		return a.Hierarchy.ResolveMethodReturnType(cls, v.Name)
	case ast.TernaryExpr:
		if v.Then != nil {
			if t, ok := a.exprType(class, v.Then, scope, ms); ok {
				return t, true
			}
		}
		return a.exprType(class, v.Else, scope, ms)
	case ast.CloneExpr:
		return a.exprType(class, v.Expr, scope, ms)
	case ast.CoalesceExpr:
		if t, ok := a.exprType(class, v.Left, scope, ms); ok {
			return t, true
		}
		return a.exprType(class, v.Right, scope, ms)
	default:
		return "", false
	}
}

func (a *Analyzer) resolveClassKeyword(currentClass, keyword string) string {
	switch strings.ToLower(keyword) {
	case "self", "static":
		return currentClass
	case "parent":
		p, _ := a.Hierarchy.Parent(currentClass)
		return p
	default:
		return ""
	}
}

// classRefType resolves a `new` expression's class reference, which the
// parser leaves as an Expr (NameExpr, SelfExpr, or VarExpr for `new
// $cls(...)`), to a class name.
func (a *Analyzer) classRefType(currentClass string, ref ast.Expr, scope resolver.Scope, ms methodScope) (string, bool) {
	switch v := ref.(type) {
	case ast.NameExpr:
		if c := a.resolveClassKeyword(currentClass, v.Name); c != "" {
			return c, true
		}
		c := scope.Resolve(v.Name)
		return c, c != ""
	case ast.SelfExpr:
		c := a.resolveClassKeyword(currentClass, v.Keyword)
		return c, c != ""
	case ast.VarExpr:
		t, ok := ms[v.Name]
		return t, ok
	default:
		return "", false
	}
}

func describeRecv(e ast.Expr) string {
	switch v := e.(type) {
	case ast.VarExpr:
		return "$" + v.Name
	case ast.ThisExpr:
		return "$this"
	case ast.PropFetchExpr:
		return describeRecv(v.Recv) + "->" + v.Name
	case ast.NameExpr:
		return v.Name
	case ast.SelfExpr:
		return v.Keyword
	default:
		return ""
	}
}
