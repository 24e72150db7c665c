package types

import (
	"fmt"
	"io"
	"reflect"
)

// decl is the interned record behind a Ref. Fields are written during the
// declaration phase (or, for closed generic forms, while interning) and read
// without locks afterwards.
type decl struct {
	reg    *Registry
	id     int
	name   string
	kind   Kind
	goType reflect.Type
	module *Module

	// open generic definitions
	arity       int
	variance    []Variance
	constraints map[int]func(Ref) bool

	// closed generic forms
	shape *decl
	args  []Ref

	// declared supertypes: superExprs on open definitions, supers everywhere
	// else (resolved eagerly at declaration, or by substitution at closing)
	superExprs []Expr
	supers     []Ref

	ctors []*Constructor

	lifetime    *Lifetime
	owns        bool
	instance    any
	hasInstance bool
}

func (d *decl) isOpen() bool { return d.arity > 0 && d.shape == nil }

// ── Declaration options ──────────────────────────────────────────────────────

// DeclOption configures a declaration made through Provide, Define,
// DefineInterface or DefineAbstract.
type DeclOption func(*declConfig)

type declConfig struct {
	arity       int
	variance    []Variance
	constraints map[int]func(Ref) bool
	supers      []Expr
	ctors       []ctorConfig
	lifetime    *Lifetime
	owns        bool
}

type ctorConfig struct {
	factory  Factory
	params   []Expr
	variadic bool
}

// Arity makes the declaration an open generic definition with n type
// parameters.
func Arity(n int) DeclOption {
	return func(c *declConfig) { c.arity = n }
}

// WithVariance sets the variance of each type parameter in order.
// Unspecified parameters are invariant.
func WithVariance(vs ...Variance) DeclOption {
	return func(c *declConfig) { c.variance = vs }
}

// Where constrains type parameter i: closings whose i-th argument fails the
// predicate are rejected.
func Where(i int, pred func(Ref) bool) DeclOption {
	return func(c *declConfig) {
		if c.constraints == nil {
			c.constraints = make(map[int]func(Ref) bool)
		}
		c.constraints[i] = pred
	}
}

// Implements records the interfaces the declared type satisfies.
func Implements(supers ...Expr) DeclOption {
	return func(c *declConfig) { c.supers = append(c.supers, supers...) }
}

// Extends records the base type the declared type derives from.
func Extends(base Expr) DeclOption {
	return func(c *declConfig) { c.supers = append(c.supers, base) }
}

// Ctor adds a constructor with the given parameter expressions, built by the
// type-erased factory. Several Ctor options accumulate in declaration order.
func Ctor(factory Factory, params ...Expr) DeclOption {
	return func(c *declConfig) {
		c.ctors = append(c.ctors, ctorConfig{factory: factory, params: params})
	}
}

// WithLifetime declares the lifetime explicitly instead of leaving it to
// inference.
func WithLifetime(lt Lifetime) DeclOption {
	return func(c *declConfig) { c.lifetime = &lt }
}

// OwnsResources marks instances as holding releasable resources, which makes
// the inferred lifetime transient. Go declarations implementing io.Closer
// are marked automatically.
func OwnsResources() DeclOption {
	return func(c *declConfig) { c.owns = true }
}

// ── Go declarations ──────────────────────────────────────────────────────────

var (
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
	closerType = reflect.TypeOf((*io.Closer)(nil)).Elem()
)

// Provide declares the result type of a constructor function into the
// module. Parameter types are read via reflection; the function may return
// (T) or (T, error). Calling Provide again with another constructor for the
// same result type adds an overload; the resolver picks the one with the
// most parameters, earliest declared winning ties.
//
// Provide panics on misuse: non-function arguments, interface or primitive
// results, or a result type already declared in a different module.
func (m *Module) Provide(ctor any, opts ...DeclOption) Ref {
	fn := reflect.ValueOf(ctor)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		panic(fmt.Sprintf("types: Provide expects a constructor function, got %T", ctor))
	}
	ft := fn.Type()

	switch ft.NumOut() {
	case 1:
		// plain result
	case 2:
		if !ft.Out(1).Implements(errorType) {
			panic(fmt.Sprintf("types: constructor %s: second result must be error", ft))
		}
	default:
		panic(fmt.Sprintf("types: constructor %s must return (T) or (T, error)", ft))
	}

	out := ft.Out(0)
	if out.Kind() == reflect.Interface {
		panic(fmt.Sprintf("types: constructor %s returns an interface; provide the concrete type and let discovery match it", ft))
	}
	if classifyKind(out) == KindPrimitive {
		panic(fmt.Sprintf("types: constructor %s returns a primitive; primitives are not resolvable", ft))
	}

	cfg := applyOptions(opts)
	if cfg.arity > 0 {
		panic("types: Provide cannot declare generic definitions; use Define with Arity")
	}
	if len(cfg.ctors) > 0 {
		panic("types: Ctor options are for metadata declarations; Provide already carries its constructor")
	}

	d := m.reg.claimGoType(out, m)
	m.applyConfig(d, cfg)

	params := make([]Ref, ft.NumIn())
	for i := range params {
		params[i] = m.reg.RefFor(ft.In(i))
	}
	d.ctors = append(d.ctors, &Constructor{
		owner:    d,
		params:   params,
		variadic: ft.IsVariadic(),
		fn:       fn,
	})

	if out.Implements(closerType) || reflect.PointerTo(out).Implements(closerType) {
		d.owns = true
	}
	return Ref{d: d}
}

// Instance declares a pre-built value. The value is served as-is and the
// declaration is an explicit singleton.
func (m *Module) Instance(value any) Ref {
	if value == nil {
		panic("types: Instance value must not be nil")
	}
	t := reflect.TypeOf(value)
	if classifyKind(t) == KindPrimitive {
		panic(fmt.Sprintf("types: Instance of primitive %s; primitives are not resolvable", t))
	}

	d := m.reg.claimGoType(t, m)
	d.instance = value
	d.hasInstance = true
	lt := Singleton
	d.lifetime = &lt
	return Ref{d: d}
}

// ── Metadata declarations ────────────────────────────────────────────────────

// Define declares a concrete metadata type, optionally generic via Arity.
// Construction goes through the factories given with Ctor.
func (m *Module) Define(name string, opts ...DeclOption) Ref {
	return m.define(name, KindConcrete, opts)
}

// DefineInterface declares a metadata interface. Interfaces are never
// constructed; concrete types name them in Implements.
func (m *Module) DefineInterface(name string, opts ...DeclOption) Ref {
	return m.define(name, KindInterface, opts)
}

// DefineAbstract declares a metadata abstract type: part of a derivation
// chain via Extends, never constructed itself.
func (m *Module) DefineAbstract(name string, opts ...DeclOption) Ref {
	return m.define(name, KindAbstract, opts)
}

func (m *Module) define(name string, kind Kind, opts []DeclOption) Ref {
	if name == "" {
		panic("types: declaration name must not be empty")
	}
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("types: %s: %v", name, err))
	}

	d := m.reg.newNamedDecl(name, kind, m)
	d.arity = cfg.arity
	d.variance = cfg.variance
	d.constraints = cfg.constraints
	m.applyConfig(d, cfg)

	if d.isOpen() {
		// keep expressions raw; substitution happens at closing
		d.superExprs = cfg.supers
		for _, ct := range cfg.ctors {
			d.ctors = append(d.ctors, &Constructor{
				owner:      d,
				paramExprs: ct.params,
				variadic:   ct.variadic,
				factory:    ct.factory,
			})
		}
		return Ref{d: d}
	}

	// non-generic: resolve expressions now so misuse fails at the
	// declaration site
	for _, e := range cfg.supers {
		sup, err := e.subst(m.reg, nil)
		if err != nil {
			panic(fmt.Sprintf("types: %s: %v", name, err))
		}
		d.supers = append(d.supers, sup)
	}
	for _, ct := range cfg.ctors {
		params := make([]Ref, len(ct.params))
		for i, e := range ct.params {
			p, err := e.subst(m.reg, nil)
			if err != nil {
				panic(fmt.Sprintf("types: %s: constructor parameter %d: %v", name, i, err))
			}
			params[i] = p
		}
		d.ctors = append(d.ctors, &Constructor{
			owner:    d,
			params:   params,
			variadic: ct.variadic,
			factory:  ct.factory,
		})
	}
	return Ref{d: d}
}

// ── Shared plumbing ──────────────────────────────────────────────────────────

func applyOptions(opts []DeclOption) *declConfig {
	cfg := &declConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *declConfig) validate() error {
	if c.arity < 0 {
		return fmt.Errorf("negative arity %d", c.arity)
	}
	if c.arity > 0 && len(c.variance) > c.arity {
		return fmt.Errorf("%d variance entries for %d type parameters", len(c.variance), c.arity)
	}
	for i := range c.constraints {
		if i < 0 || i >= c.arity {
			return fmt.Errorf("constraint on parameter %d of %d", i, c.arity)
		}
	}
	for _, e := range c.supers {
		if m := e.maxParam(); m >= c.arity {
			return fmt.Errorf("supertype mentions type parameter %d of %d", m, c.arity)
		}
	}
	for _, ct := range c.ctors {
		for _, e := range ct.params {
			if m := e.maxParam(); m >= c.arity {
				return fmt.Errorf("constructor parameter mentions type parameter %d of %d", m, c.arity)
			}
		}
	}
	return nil
}

func (m *Module) applyConfig(d *decl, cfg *declConfig) {
	if cfg.lifetime != nil {
		d.lifetime = cfg.lifetime
	}
	if cfg.owns {
		d.owns = true
	}
	// Go declarations resolve Implements/Extends expressions eagerly; the
	// metadata path handles its own in define.
	if d.goType != nil {
		for _, e := range cfg.supers {
			sup, err := e.subst(m.reg, nil)
			if err != nil {
				panic(fmt.Sprintf("types: %s: %v", d.name, err))
			}
			d.supers = append(d.supers, sup)
		}
	}
}

func classifyKind(t reflect.Type) Kind {
	switch t.Kind() {
	case reflect.Interface:
		return KindInterface
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return KindPrimitive
	default:
		return KindConcrete
	}
}
