package types

import (
	"fmt"
	"reflect"
)

// ── Enumerations ─────────────────────────────────────────────────────────────

// Kind classifies what a declared type is.
type Kind uint8

const (
	// KindInterface is a pure contract: never constructed, only implemented.
	KindInterface Kind = iota

	// KindAbstract is a partial type: never constructed, but part of a
	// derivation chain that concrete types extend.
	KindAbstract

	// KindConcrete is a constructable type — the only kind discovery returns.
	KindConcrete

	// KindPrimitive is a bare value type (string, int, bool, ...). Primitives
	// carry no construction semantics and the resolver refuses them.
	KindPrimitive
)

func (k Kind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindAbstract:
		return "abstract"
	case KindConcrete:
		return "concrete"
	case KindPrimitive:
		return "primitive"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Lifetime says whether one instance is shared or each request gets its own.
type Lifetime uint8

const (
	// Singleton instances are constructed once per container and reused.
	Singleton Lifetime = iota

	// Transient instances are constructed anew for every resolution.
	Transient
)

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("lifetime(%d)", uint8(l))
	}
}

// Variance controls how closed forms of one generic definition relate.
// With Covariant at position i, Repo[Admin] is assignable to Repo[User]
// whenever Admin is assignable to User; Contravariant flips the direction;
// Invariant (the default) requires identical arguments.
type Variance uint8

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

func (v Variance) String() string {
	switch v {
	case Invariant:
		return "invariant"
	case Covariant:
		return "covariant"
	case Contravariant:
		return "contravariant"
	default:
		return fmt.Sprintf("variance(%d)", uint8(v))
	}
}

// ── Ref ──────────────────────────────────────────────────────────────────────

// Ref is an interned handle for a declared or referenced type.
//
// Refs are comparable: two Refs from the same registry are equal exactly when
// they denote the same type, including closed generic forms. The zero Ref
// denotes no type at all.
type Ref struct {
	d *decl
}

// IsZero reports whether the Ref denotes no type.
func (r Ref) IsZero() bool { return r.d == nil }

// Name returns the declared or rendered name, e.g. "Repo[User]" or
// "*service.UserService".
func (r Ref) Name() string {
	if r.d == nil {
		return "<none>"
	}
	return r.d.name
}

func (r Ref) String() string { return r.Name() }

// Kind returns the type's classification.
func (r Ref) Kind() Kind {
	if r.d == nil {
		return KindPrimitive
	}
	return r.d.kind
}

// IsConcrete reports whether the type is constructable in principle.
// Open generic definitions are concrete but must be closed before
// construction.
func (r Ref) IsConcrete() bool { return r.d != nil && r.d.kind == KindConcrete }

// IsOpenGeneric reports whether this is an unclosed generic definition.
func (r Ref) IsOpenGeneric() bool { return r.d != nil && r.d.isOpen() }

// IsClosedGeneric reports whether this is a generic definition applied to
// concrete type arguments.
func (r Ref) IsClosedGeneric() bool { return r.d != nil && r.d.shape != nil }

// Arity returns the number of type parameters (open definitions) or type
// arguments (closed forms); zero for plain types.
func (r Ref) Arity() int {
	if r.d == nil {
		return 0
	}
	if r.d.shape != nil {
		return len(r.d.args)
	}
	return r.d.arity
}

// Shape returns the open definition a closed form was built from, or the
// zero Ref for anything that is not a closed form.
func (r Ref) Shape() Ref {
	if r.d == nil || r.d.shape == nil {
		return Ref{}
	}
	return Ref{d: r.d.shape}
}

// Args returns the type arguments of a closed form, nil otherwise.
func (r Ref) Args() []Ref {
	if r.d == nil || r.d.shape == nil {
		return nil
	}
	out := make([]Ref, len(r.d.args))
	copy(out, r.d.args)
	return out
}

// Of closes an open generic definition with the given arguments.
// It panics on arity mismatch or constraint violation — use it for
// declarations and requests written by hand, and Registry.Apply when a
// failure must be observable.
func (r Ref) Of(args ...Ref) Ref {
	if r.d == nil {
		panic("types: Of on zero Ref")
	}
	closed, err := r.d.reg.Apply(r, args)
	if err != nil {
		panic(fmt.Sprintf("types: %s.Of: %v", r.d.name, err))
	}
	return closed
}

// Constructors returns the declared constructors in declaration order.
func (r Ref) Constructors() []*Constructor {
	if r.d == nil {
		return nil
	}
	return r.d.ctors
}

// ExplicitLifetime returns the declared lifetime override, if any.
func (r Ref) ExplicitLifetime() (Lifetime, bool) {
	if r.d == nil || r.d.lifetime == nil {
		return 0, false
	}
	return *r.d.lifetime, true
}

// OwnsResources reports whether instances hold releasable resources.
// Go declarations whose type implements io.Closer are detected
// automatically; metadata declarations opt in with the OwnsResources option.
func (r Ref) OwnsResources() bool { return r.d != nil && r.d.owns }

// HasInstance reports whether the declaration carries a pre-built value.
func (r Ref) HasInstance() bool { return r.d != nil && r.d.hasInstance }

// Instance returns the pre-built value, or nil.
func (r Ref) Instance() any {
	if r.d == nil {
		return nil
	}
	return r.d.instance
}

// GoType returns the reflect type behind a Go-backed declaration, or nil for
// metadata-only declarations.
func (r Ref) GoType() reflect.Type {
	if r.d == nil {
		return nil
	}
	return r.d.goType
}

// ScopeName returns the name of the module that declared the type, or ""
// for types that were only ever referenced.
func (r Ref) ScopeName() string {
	if r.d == nil || r.d.module == nil {
		return ""
	}
	return r.d.module.name
}

// ── Constructor ──────────────────────────────────────────────────────────────

// Factory is the type-erased constructor used by metadata declarations.
// It receives the resolved dependencies in parameter order.
type Factory func(deps []any) (any, error)

// Constructor describes one way to build a type: an ordered parameter list
// plus either a reflected Go function or a type-erased factory.
type Constructor struct {
	owner *decl

	// params is resolved for constructable declarations; open generic
	// definitions keep paramExprs until they are closed.
	params     []Ref
	paramExprs []Expr

	variadic bool

	fn      reflect.Value // Go constructor function, if any
	factory Factory       // erased factory, if any
}

// NumParams returns the number of declared parameters.
func (ct *Constructor) NumParams() int {
	if ct.params != nil {
		return len(ct.params)
	}
	return len(ct.paramExprs)
}

// Params returns the resolved parameter types. For constructors on open
// generic definitions the parameters are only resolved once the definition
// is closed, and Params returns nil.
func (ct *Constructor) Params() []Ref { return ct.params }

// Variadic reports whether the constructor takes a trailing variadic
// parameter. Variadic constructors cannot be auto-wired: the resolver has no
// way to decide how many values to supply.
func (ct *Constructor) Variadic() bool { return ct.variadic }

// Invoke builds an instance from already-resolved dependency values.
func (ct *Constructor) Invoke(args []any) (any, error) {
	if ct.fn.IsValid() {
		return ct.invokeReflect(args)
	}
	if ct.factory != nil {
		return ct.factory(args)
	}
	return nil, fmt.Errorf("types: constructor of %s is not invocable before the definition is closed", ct.owner.name)
}

func (ct *Constructor) invokeReflect(args []any) (any, error) {
	ft := ct.fn.Type()
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if a == nil {
			in[i] = reflect.Zero(ft.In(i))
			continue
		}
		in[i] = reflect.ValueOf(a)
	}
	out := ct.fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}
