// Package hierarchy records class/trait/interface relationships — parent
// links, used traits, declared interfaces, method-definition sites, and
// declared return types — and answers the inheritance-aware lookups the
// call analyzer and rule evaluator depend on.
//
// Grounded in the teacher's internal/graph.DependencyGraph: a handful of
// ordered adjacency maps behind write-once setters and read-only resolvers,
// generalized here from module dependencies to class/method ownership.
package hierarchy

import "sort"

// methodKey is the map key for a (class, method) pair.
type methodKey struct{ class, method string }

// Hierarchy is the mutable-during-construction, read-only-after-freeze
// table Pass 1 populates and Pass 2 / the evaluator query.
type Hierarchy struct {
	parent       map[string]string
	hasParent    map[string]bool
	traits       map[string][]string
	interfaces   map[string][]string
	methodDefs   map[methodKey]string // (class, method) -> defining class
	returnTypes  map[methodKey]string
	isTrait      map[string]bool
	isInterface  map[string]bool

	// implementors/traitUsers preserve class-insertion order for
	// find_classes_implementing / find_classes_using_trait.
	implementors map[string][]string
	traitUsers   map[string][]string
	seenImpl     map[string]map[string]bool
	seenTraitUse map[string]map[string]bool
}

// New returns an empty Hierarchy.
func New() *Hierarchy {
	return &Hierarchy{
		parent:       make(map[string]string),
		hasParent:    make(map[string]bool),
		traits:       make(map[string][]string),
		interfaces:   make(map[string][]string),
		methodDefs:   make(map[methodKey]string),
		returnTypes:  make(map[methodKey]string),
		isTrait:      make(map[string]bool),
		isInterface:  make(map[string]bool),
		implementors: make(map[string][]string),
		traitUsers:   make(map[string][]string),
		seenImpl:     make(map[string]map[string]bool),
		seenTraitUse: make(map[string]map[string]bool),
	}
}

// SetParent records class's parent, resolved name. A subsequent call
// overwrites, matching the write-once-per-class usage from Pass 1.
func (h *Hierarchy) SetParent(class, parent string) {
	if parent == "" {
		return
	}
	h.parent[class] = parent
	h.hasParent[class] = true
}

// SetTraits records the ordered list of traits a class uses.
func (h *Hierarchy) SetTraits(class string, traits []string) {
	h.traits[class] = append([]string(nil), traits...)
	for _, t := range traits {
		h.addTraitUser(t, class)
	}
}

// SetInterfaces records the ordered list of interfaces a class declares.
func (h *Hierarchy) SetInterfaces(class string, ifaces []string) {
	h.interfaces[class] = append([]string(nil), ifaces...)
	for _, i := range ifaces {
		h.addImplementor(i, class)
	}
}

// MarkTrait records that class is a trait declaration.
func (h *Hierarchy) MarkTrait(class string) { h.isTrait[class] = true }

// MarkInterface records that class is an interface declaration.
func (h *Hierarchy) MarkInterface(class string) { h.isInterface[class] = true }

// IsTrait reports whether class was declared as a trait.
func (h *Hierarchy) IsTrait(class string) bool { return h.isTrait[class] }

// IsInterface reports whether class was declared as an interface.
func (h *Hierarchy) IsInterface(class string) bool { return h.isInterface[class] }

// AddMethodDef records that method's body lives directly on class.
func (h *Hierarchy) AddMethodDef(class, method string) {
	h.methodDefs[methodKey{class, method}] = class
}

// AddReturnType records method's declared return type on class.
func (h *Hierarchy) AddReturnType(class, method, typ string) {
	if typ == "" {
		return
	}
	h.returnTypes[methodKey{class, method}] = typ
}

func (h *Hierarchy) addImplementor(iface, class string) {
	if h.seenImpl[iface] == nil {
		h.seenImpl[iface] = make(map[string]bool)
	}
	if h.seenImpl[iface][class] {
		return
	}
	h.seenImpl[iface][class] = true
	h.implementors[iface] = append(h.implementors[iface], class)
}

func (h *Hierarchy) addTraitUser(trait, class string) {
	if h.seenTraitUse[trait] == nil {
		h.seenTraitUse[trait] = make(map[string]bool)
	}
	if h.seenTraitUse[trait][class] {
		return
	}
	h.seenTraitUse[trait][class] = true
	h.traitUsers[trait] = append(h.traitUsers[trait], class)
}

// ResolveMethodClass returns the FQCN that lexically owns method when
// looked up from class: class itself, then each of its traits in
// declaration order, then recursively its parent. Returns "", false if the
// method is defined nowhere in the chain. Cycle-safe via a visited set.
func (h *Hierarchy) ResolveMethodClass(class, method string) (string, bool) {
	return h.resolveMethodClass(class, method, make(map[string]bool))
}

func (h *Hierarchy) resolveMethodClass(class, method string, visited map[string]bool) (string, bool) {
	if class == "" || visited[class] {
		return "", false
	}
	visited[class] = true

	if owner, ok := h.methodDefs[methodKey{class, method}]; ok {
		return owner, true
	}
	for _, t := range h.traits[class] {
		if owner, ok := h.resolveMethodClass(t, method, visited); ok {
			return owner, true
		}
	}
	if h.hasParent[class] {
		if owner, ok := h.resolveMethodClass(h.parent[class], method, visited); ok {
			return owner, true
		}
	}
	return "", false
}

// ResolveMethodClassSkippingOwnTraits resolves method starting at parent(class)
// directly, bypassing class's own traits. This implements the engine's
// documented parent::m() semantics (§9 open question (a)): parent resolution
// follows the parent chain strictly and never re-enters the calling class's
// trait set.
func (h *Hierarchy) ResolveMethodClassSkippingOwnTraits(class, method string) (string, bool) {
	if !h.hasParent[class] {
		return "", false
	}
	return h.ResolveMethodClass(h.parent[class], method)
}

// ResolveMethodReturnType mirrors ResolveMethodClass's search order over
// the return-type table.
func (h *Hierarchy) ResolveMethodReturnType(class, method string) (string, bool) {
	return h.resolveMethodReturnType(class, method, make(map[string]bool))
}

func (h *Hierarchy) resolveMethodReturnType(class, method string, visited map[string]bool) (string, bool) {
	if class == "" || visited[class] {
		return "", false
	}
	visited[class] = true

	if t, ok := h.returnTypes[methodKey{class, method}]; ok {
		return t, true
	}
	for _, t := range h.traits[class] {
		if rt, ok := h.resolveMethodReturnType(t, method, visited); ok {
			return rt, true
		}
	}
	if h.hasParent[class] {
		if rt, ok := h.resolveMethodReturnType(h.parent[class], method, visited); ok {
			return rt, true
		}
	}
	return "", false
}

// Parent returns class's parent and whether it has one.
func (h *Hierarchy) Parent(class string) (string, bool) {
	p, ok := h.hasParent[class]
	if !ok || !p {
		return "", false
	}
	return h.parent[class], true
}

// Traits returns the ordered list of traits class uses.
func (h *Hierarchy) Traits(class string) []string { return h.traits[class] }

// Interfaces returns the ordered list of interfaces class declares.
func (h *Hierarchy) Interfaces(class string) []string { return h.interfaces[class] }

// FindClassesImplementing returns every class that declared iface in its
// implements list, in class-insertion order.
func (h *Hierarchy) FindClassesImplementing(iface string) []string {
	return h.implementors[iface]
}

// FindClassesUsingTrait returns every class that uses trait, in
// class-insertion order.
func (h *Hierarchy) FindClassesUsingTrait(trait string) []string {
	return h.traitUsers[trait]
}

// HasMethodDef reports whether class declares method directly (used by the
// interface linker to test whether an implementor actually defines the
// interface method it's being fanned out to).
func (h *Hierarchy) HasMethodDef(class, method string) bool {
	_, ok := h.methodDefs[methodKey{class, method}]
	return ok
}

// InterfaceMethod names a method defined on an interface.
type InterfaceMethod struct {
	Interface string
	Method    string
}

// AllInterfaceMethods returns every (interface, method) pair marked as
// defined on an interface — the seed set for Pass 3.
func (h *Hierarchy) AllInterfaceMethods() []InterfaceMethod {
	var out []InterfaceMethod
	for k := range h.methodDefs {
		if h.isInterface[k.class] {
			out = append(out, InterfaceMethod{Interface: k.class, Method: k.method})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Interface != out[j].Interface {
			return out[i].Interface < out[j].Interface
		}
		return out[i].Method < out[j].Method
	})
	return out
}
