package container

import "github.com/km-arc/go-autowire/framework/types"

// lifetimeOf infers whether one instance of the concrete type can be shared
// by everyone (singleton) or each resolution needs its own (transient). The
// analysis is static — nothing is constructed — and walks the whole
// dependency graph of the type:
//
//  1. A declared lifetime wins, but a declared singleton whose constructor
//     takes a transient dependency is rejected as captive.
//  2. Types that own releasable resources are transient.
//  3. A transient anywhere in the constructor parameters makes the type
//     transient too — least cacheable wins, cascading upward.
//  4. Everything else is a singleton.
//
// Results are memoized per container in a write-once cache. stack carries
// the chain of types currently being analyzed; meeting one of them again is
// a dependency cycle, reported with the full chain.
func (c *Container) lifetimeOf(concrete types.Ref, stack []types.Ref) (types.Lifetime, error) {
	c.mu.RLock()
	lt, cached := c.lifetimes[concrete]
	c.mu.RUnlock()
	if cached {
		return lt, nil
	}

	for i, s := range stack {
		if s == concrete {
			chain := make([]types.Ref, 0, len(stack)-i+1)
			chain = append(chain, stack[i:]...)
			chain = append(chain, concrete)
			return 0, &CycleError{Chain: chain}
		}
	}

	// pre-built values are served as-is, nothing to analyze
	if concrete.HasInstance() {
		return c.storeLifetime(concrete, types.Singleton), nil
	}

	stack = append(stack, concrete)

	ctor, err := selectConstructor(concrete)
	if err != nil {
		return 0, err
	}

	var transientDep types.Ref
	for _, param := range ctor.Params() {
		impl, err := c.implementationFor(param, concrete)
		if err != nil {
			return 0, err
		}
		plt, err := c.lifetimeOf(impl, stack)
		if err != nil {
			return 0, err
		}
		if plt == types.Transient && transientDep.IsZero() {
			transientDep = impl
		}
	}

	if declared, ok := concrete.ExplicitLifetime(); ok {
		if declared == types.Singleton && !transientDep.IsZero() {
			return 0, &CaptiveError{Type: concrete, Dependency: transientDep}
		}
		return c.storeLifetime(concrete, declared), nil
	}
	if concrete.OwnsResources() {
		return c.storeLifetime(concrete, types.Transient), nil
	}
	if !transientDep.IsZero() {
		return c.storeLifetime(concrete, types.Transient), nil
	}
	return c.storeLifetime(concrete, types.Singleton), nil
}

// storeLifetime records an inference result. The first writer wins; a
// concurrent analysis of the same type reaches the same conclusion from the
// same immutable metadata, so keeping the stored value is safe either way.
func (c *Container) storeLifetime(concrete types.Ref, lt types.Lifetime) types.Lifetime {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.lifetimes[concrete]; ok {
		return prev
	}
	c.lifetimes[concrete] = lt
	return lt
}
