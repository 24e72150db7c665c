package types

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// ── Registry ─────────────────────────────────────────────────────────────────

// Registry interns every type the resolver can reason about and groups
// declarations into modules. It is the single source of type metadata:
// assignability, generic closing and scope ordering are all answered here.
type Registry struct {
	mu      sync.RWMutex
	modules []*Module
	byName  map[string]*Module
	byType  map[reflect.Type]*decl
	byMeta  map[string]*decl
	closed  map[string]*decl
	nextID  int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Module),
		byType: make(map[reflect.Type]*decl),
		byMeta: make(map[string]*decl),
		closed: make(map[string]*decl),
	}
}

// ── Modules ──────────────────────────────────────────────────────────────────

// Module is a named group of declarations — the unit implementation
// discovery searches. A module lists the modules it uses; those are searched
// right after the module itself, before the rest of the registry.
type Module struct {
	reg   *Registry
	name  string
	uses  []*Module
	decls []*decl
}

// Module registers a module. Used modules must already be registered, which
// keeps the dependency graph acyclic and bootstrap order explicit.
func (r *Registry) Module(name string, uses ...string) *Module {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		panic("types: module name must not be empty")
	}
	if _, exists := r.byName[name]; exists {
		panic(fmt.Sprintf("types: module [%s] already registered", name))
	}

	m := &Module{reg: r, name: name}
	for _, u := range uses {
		dep, ok := r.byName[u]
		if !ok {
			panic(fmt.Sprintf("types: module [%s] uses unknown module [%s]; register it first", name, u))
		}
		m.uses = append(m.uses, dep)
	}
	r.modules = append(r.modules, m)
	r.byName[name] = m
	return m
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Concretes returns the constructable declarations of the module in
// declaration order: plain concrete types, open generic definitions and
// pre-built instances. Interfaces and abstract types are contracts, not
// candidates, and are excluded.
func (m *Module) Concretes() []Ref {
	m.reg.mu.RLock()
	defer m.reg.mu.RUnlock()
	out := make([]Ref, 0, len(m.decls))
	for _, d := range m.decls {
		if d.kind == KindConcrete {
			out = append(out, Ref{d: d})
		}
	}
	return out
}

// Scope is the view of a module the container consumes during discovery.
type Scope interface {
	Name() string
	Concretes() []Ref
}

// ScopesFor returns every module in the order discovery should search them
// for the given requester: the requester's own module first, then the
// modules it uses in declared order, then all remaining modules in
// registration order, without duplicates. A zero requester, or one declared
// in no module, searches registration order only.
func (r *Registry) ScopesFor(requester Ref) []Scope {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ordered := make([]Scope, 0, len(r.modules))
	seen := make(map[*Module]bool, len(r.modules))
	add := func(m *Module) {
		if m != nil && !seen[m] {
			seen[m] = true
			ordered = append(ordered, m)
		}
	}

	if requester.d != nil && requester.d.module != nil {
		home := requester.d.module
		add(home)
		for _, u := range home.uses {
			add(u)
		}
	}
	for _, m := range r.modules {
		add(m)
	}
	return ordered
}

// ── Interning ────────────────────────────────────────────────────────────────

// RefFor interns a Go type and returns its Ref. Types not declared in any
// module are still referencable — as constructor parameters, interface
// targets or primitive markers — they just belong to no scope.
func (r *Registry) RefFor(t reflect.Type) Ref {
	if t == nil {
		return Ref{}
	}

	r.mu.RLock()
	d, ok := r.byType[t]
	r.mu.RUnlock()
	if ok {
		return Ref{d: d}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok = r.byType[t]; ok {
		return Ref{d: d}
	}
	d = &decl{
		reg:    r,
		id:     r.allocID(),
		name:   t.String(),
		kind:   classifyKind(t),
		goType: t,
	}
	r.byType[t] = d
	return Ref{d: d}
}

// Of interns the Go type T and returns its Ref — the request-side companion
// of Module.Provide.
//
//	store := types.Of[UserStore](reg)   // works for interface types too
func Of[T any](r *Registry) Ref {
	return r.RefFor(reflect.TypeOf((*T)(nil)).Elem())
}

// claimGoType interns a Go type and claims it for the module. A concrete
// type belongs to exactly one module; claiming it from a second one panics.
func (r *Registry) claimGoType(t reflect.Type, m *Module) *decl {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.byType[t]
	if !ok {
		d = &decl{
			reg:    r,
			id:     r.allocID(),
			name:   t.String(),
			kind:   classifyKind(t),
			goType: t,
		}
		r.byType[t] = d
	}
	if d.module != nil && d.module != m {
		panic(fmt.Sprintf("types: %s already declared in module [%s]", d.name, d.module.name))
	}
	if d.module == nil {
		d.module = m
		m.decls = append(m.decls, d)
	}
	return d
}

// newNamedDecl creates a metadata declaration owned by the module. Names are
// registry-unique so errors and traces stay unambiguous.
func (r *Registry) newNamedDecl(name string, kind Kind, m *Module) *decl {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, exists := r.byMeta[name]; exists {
		panic(fmt.Sprintf("types: %s already declared in module [%s]", name, prev.module.name))
	}
	d := &decl{
		reg:    r,
		id:     r.allocID(),
		name:   name,
		kind:   kind,
		module: m,
	}
	r.byMeta[name] = d
	m.decls = append(m.decls, d)
	return d
}

func (r *Registry) allocID() int {
	r.nextID++
	return r.nextID
}

// ── Generic closing ──────────────────────────────────────────────────────────

// ConstraintError reports a type argument rejected by a Where constraint.
type ConstraintError struct {
	Shape Ref
	Index int
	Arg   Ref
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("types: %s violates the constraint on parameter %d of %s", e.Arg, e.Index, e.Shape)
}

// Apply closes an open generic definition with the given type arguments and
// returns the interned closed form. Closing the same definition with the
// same arguments always returns the same Ref. Constraint violations return
// a *ConstraintError; discovery treats those as "this candidate does not
// apply" rather than a failure.
func (r *Registry) Apply(open Ref, args []Ref) (Ref, error) {
	d := open.d
	if d == nil {
		return Ref{}, fmt.Errorf("types: Apply on zero Ref")
	}
	if !d.isOpen() {
		return Ref{}, fmt.Errorf("types: %s is not an open generic definition", d.name)
	}
	if len(args) != d.arity {
		return Ref{}, fmt.Errorf("types: %s expects %d type arguments, got %d", d.name, d.arity, len(args))
	}
	for i, a := range args {
		if a.IsZero() {
			return Ref{}, fmt.Errorf("types: zero Ref as type argument %d of %s", i, d.name)
		}
		if pred, ok := d.constraints[i]; ok && !pred(a) {
			return Ref{}, &ConstraintError{Shape: open, Index: i, Arg: a}
		}
	}

	key := closedKey(d, args)
	r.mu.RLock()
	cd, ok := r.closed[key]
	r.mu.RUnlock()
	if ok {
		return Ref{d: cd}, nil
	}

	// Build outside the lock: substitution may close nested forms, which
	// re-enters Apply.
	cd = &decl{
		reg:      r,
		name:     renderClosedName(d, args),
		kind:     d.kind,
		module:   d.module,
		shape:    d,
		args:     append([]Ref(nil), args...),
		lifetime: d.lifetime,
		owns:     d.owns,
	}
	for _, e := range d.superExprs {
		sup, err := e.subst(r, args)
		if err != nil {
			return Ref{}, err
		}
		cd.supers = append(cd.supers, sup)
	}
	for _, ct := range d.ctors {
		params := make([]Ref, len(ct.paramExprs))
		for i, e := range ct.paramExprs {
			p, err := e.subst(r, args)
			if err != nil {
				return Ref{}, err
			}
			params[i] = p
		}
		cd.ctors = append(cd.ctors, &Constructor{
			owner:    cd,
			params:   params,
			variadic: ct.variadic,
			factory:  ct.factory,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.closed[key]; ok {
		// another goroutine closed the same form first; keep theirs
		return Ref{d: existing}, nil
	}
	cd.id = r.allocID()
	r.closed[key] = cd
	return Ref{d: cd}, nil
}

func closedKey(shape *decl, args []Ref) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d[", shape.id)
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", a.d.id)
	}
	b.WriteByte(']')
	return b.String()
}

func renderClosedName(shape *decl, args []Ref) string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Name()
	}
	return shape.name + "[" + strings.Join(names, ", ") + "]"
}

// ── Assignability ────────────────────────────────────────────────────────────

// Assignable reports whether a value of type src can serve where dst is
// required. Identity, Go reflection assignability, declared supertype
// chains and generic variance all count; open generic definitions never do —
// they have to be closed first.
func (r *Registry) Assignable(src, dst Ref) bool {
	return r.assignable(src.d, dst.d, make(map[[2]*decl]bool))
}

func (r *Registry) assignable(s, d *decl, seen map[[2]*decl]bool) bool {
	if s == nil || d == nil {
		return false
	}
	// open definitions are not types yet, not even to themselves
	if s.isOpen() || d.isOpen() {
		return false
	}
	if s == d {
		return true
	}
	if s.goType != nil && d.goType != nil && s.goType.AssignableTo(d.goType) {
		return true
	}

	pair := [2]*decl{s, d}
	if seen[pair] {
		return false
	}
	seen[pair] = true

	if s.shape != nil && d.shape != nil && s.shape == d.shape && r.varianceCompatible(s, d, seen) {
		return true
	}
	for _, sup := range s.supers {
		if r.assignable(sup.d, d, seen) {
			return true
		}
	}
	return false
}

// varianceCompatible compares two closed forms of the same definition
// argument by argument under the definition's declared variance.
func (r *Registry) varianceCompatible(s, d *decl, seen map[[2]*decl]bool) bool {
	for i := range s.args {
		v := Invariant
		if i < len(s.shape.variance) {
			v = s.shape.variance[i]
		}
		switch v {
		case Invariant:
			if s.args[i] != d.args[i] {
				return false
			}
		case Covariant:
			if !r.assignable(s.args[i].d, d.args[i].d, seen) {
				return false
			}
		case Contravariant:
			if !r.assignable(d.args[i].d, s.args[i].d, seen) {
				return false
			}
		}
	}
	return true
}

// ── Shape derivation ─────────────────────────────────────────────────────────

// Derives reports whether t's derivation chain reaches the open generic
// definition shape: t is the definition itself, a closed form of it, or
// declares a supertype that (transitively) does. Discovery uses this to
// decide whether closing an open candidate could possibly produce an
// implementation of a closed generic target.
func (r *Registry) Derives(t, shape Ref) bool {
	if t.d == nil || shape.d == nil {
		return false
	}
	return r.derives(t.d, shape.d, make(map[*decl]bool))
}

func (r *Registry) derives(t, shape *decl, seen map[*decl]bool) bool {
	if t == shape || t.shape == shape {
		return true
	}
	if seen[t] {
		return false
	}
	seen[t] = true

	for _, e := range t.superExprs {
		for _, head := range e.heads() {
			if r.derives(head, shape, seen) {
				return true
			}
		}
	}
	for _, sup := range t.supers {
		if r.derives(sup.d, shape, seen) {
			return true
		}
	}
	// a closed form derives everything its definition derives
	if t.shape != nil && r.derives(t.shape, shape, seen) {
		return true
	}
	return false
}
