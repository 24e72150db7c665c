package container

import (
	"fmt"
	"io"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/km-arc/go-autowire/framework/types"
)

// ── Container ────────────────────────────────────────────────────────────────

// entry is the cached outcome for one concrete type: the decided lifetime,
// and for singletons the instance everyone shares. owned marks instances the
// container constructed itself, as opposed to pre-built declared values.
type entry struct {
	lifetime types.Lifetime
	instance any
	owned    bool
}

// Container resolves object graphs automatically. Nothing is bound up
// front: ask for a type, and the container discovers an implementation in
// the registry, infers whether it should be shared, and constructs it with
// all of its dependencies.
//
// Outcomes are cached per concrete implementation. A singleton entry holds
// the instance; a transient entry holds only the decision, and every request
// constructs anew. Requests for abstract types run discovery every time —
// which implementation answers depends on who is asking.
type Container struct {
	source    Introspector
	observers []Observer

	mu        sync.RWMutex
	entries   map[types.Ref]*entry
	lifetimes map[types.Ref]types.Lifetime
}

// New creates a container over a type metadata source, usually a
// *types.Registry. Containers share nothing: two containers over one
// registry each construct their own singletons.
func New(source Introspector, opts ...Option) *Container {
	if source == nil {
		panic("container: New requires a type metadata source")
	}
	c := &Container{
		source:    source,
		entries:   make(map[types.Ref]*entry),
		lifetimes: make(map[types.Ref]types.Lifetime),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resolveState is the per-call working set of one top-level Resolve: the
// construction stack and nesting depth are local to the calling goroutine,
// never shared, so concurrent resolutions cannot see each other's chains.
type resolveState struct {
	traceID string
	build   []types.Ref
	depth   int
}

// ── Resolution ───────────────────────────────────────────────────────────────

// Resolve resolves the target type and returns the instance.
//
//	store, err := c.Resolve(types.Of[UserStore](reg))
func (c *Container) Resolve(target types.Ref) (any, error) {
	st := &resolveState{}
	if len(c.observers) > 0 {
		st.traceID = shortTraceID()
	}
	return c.resolve(st, target, types.Ref{})
}

// resolve is one orchestration frame: direct Resolve calls and nested
// dependency resolutions both land here, differing only in requester.
func (c *Container) resolve(st *resolveState, target, requester types.Ref) (out any, err error) {
	if target.IsZero() {
		return nil, &NotFoundError{Target: target, Requester: requester}
	}

	if len(c.observers) > 0 {
		start := time.Now()
		ev := ResolutionEvent{TraceID: st.traceID, Requested: target, Depth: st.depth}
		defer func() {
			ev.Duration = time.Since(start)
			ev.Err = err
			c.notify(&ev)
		}()
		return c.resolveFrame(st, target, requester, &ev)
	}
	return c.resolveFrame(st, target, requester, nil)
}

func (c *Container) resolveFrame(st *resolveState, target, requester types.Ref, ev *ResolutionEvent) (any, error) {
	concrete, err := c.implementationFor(target, requester)
	if err != nil {
		return nil, err
	}
	if ev != nil {
		ev.Concrete = concrete
	}

	c.mu.RLock()
	cached, hit := c.entries[concrete]
	c.mu.RUnlock()
	if hit {
		if ev != nil {
			ev.Lifetime = cached.lifetime
		}
		if cached.lifetime == types.Singleton {
			if ev != nil {
				ev.CacheHit = true
			}
			return cached.instance, nil
		}
		// transient: only the decision is cached, construction is fresh
		return c.construct(st, concrete)
	}

	lt, err := c.lifetimeOf(concrete, nil)
	if err != nil {
		return nil, err
	}
	if ev != nil {
		ev.Lifetime = lt
	}

	inst, err := c.construct(st, concrete)
	if err != nil {
		return nil, err
	}
	return c.store(concrete, lt, inst), nil
}

// store records the outcome for a concrete type. The first writer wins: if
// two goroutines raced the first construction of a singleton, the instance
// stored first is the one everybody gets, and the loser's duplicate is
// released. Losing a race never fails a resolution.
func (c *Container) store(concrete types.Ref, lt types.Lifetime, inst any) any {
	c.mu.Lock()
	if prev, ok := c.entries[concrete]; ok {
		c.mu.Unlock()
		if prev.lifetime == types.Singleton {
			if closer, ok := inst.(io.Closer); ok && !samePointer(inst, prev.instance) {
				_ = closer.Close()
			}
			return prev.instance
		}
		return inst
	}
	e := &entry{lifetime: lt, owned: !concrete.HasInstance()}
	if lt == types.Singleton {
		e.instance = inst
	}
	c.entries[concrete] = e
	c.mu.Unlock()
	return inst
}

// samePointer reports whether a and b are the same pointer. Values that are
// not pointers never count as the same, erring on the side of releasing a
// duplicate.
func samePointer(a, b any) bool {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	return av.Kind() == reflect.Pointer && bv.Kind() == reflect.Pointer && av.Pointer() == bv.Pointer()
}

func (c *Container) notify(ev *ResolutionEvent) {
	for _, o := range c.observers {
		o.ObserveResolution(*ev)
	}
}

func shortTraceID() string {
	return uuid.New().String()[:8]
}

// ── Introspection ────────────────────────────────────────────────────────────

// Resolved reports whether a singleton instance for the concrete type is
// already cached.
func (c *Container) Resolved(concrete types.Ref) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[concrete]
	return ok && e.lifetime == types.Singleton
}

// Lifetime returns the decided lifetime for a concrete type, if any
// resolution has decided one yet.
func (c *Container) Lifetime(concrete types.Ref) (types.Lifetime, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	lt, ok := c.lifetimes[concrete]
	return lt, ok
}

// Flush drops every cached instance and decision. Singletons the container
// constructed itself are closed if they implement io.Closer; pre-built
// declared values stay untouched — their owner declared them, their owner
// releases them. Mainly useful in tests and long-lived tools that reload
// their registry world.
func (c *Container) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if !e.owned {
			continue
		}
		if closer, ok := e.instance.(io.Closer); ok {
			_ = closer.Close()
		}
	}
	c.entries = make(map[types.Ref]*entry)
	c.lifetimes = make(map[types.Ref]types.Lifetime)
}

// ── Generics helpers ─────────────────────────────────────────────────────────

// As resolves a metadata target and asserts the instance to T.
//
//	repo, err := container.As[*MemRepo](c, repoOfUser)
func As[T any](c *Container, target types.Ref) (T, error) {
	var zero T
	inst, err := c.Resolve(target)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, &TypeMismatchError{
			Target: target,
			Want:   reflect.TypeOf((*T)(nil)).Elem().String(),
			Got:    fmt.Sprintf("%T", inst),
		}
	}
	return typed, nil
}

// Resolve resolves the Go type T.
//
//	svc, err := container.Resolve[*UserService](c)
func Resolve[T any](c *Container) (T, error) {
	target := c.source.RefFor(reflect.TypeOf((*T)(nil)).Elem())
	return As[T](c, target)
}

// MustResolve is Resolve for bootstrap code: any failure is a panic.
func MustResolve[T any](c *Container) T {
	v, err := Resolve[T](c)
	if err != nil {
		panic(fmt.Sprintf("container: MustResolve[%s]: %v",
			reflect.TypeOf((*T)(nil)).Elem(), err))
	}
	return v
}
