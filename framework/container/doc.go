// Package container provides an auto-wiring IoC container: implementations
// are discovered, lifetimes are inferred, and object graphs are constructed
// without a single explicit binding.
//
// # Overview
//
// A binding-based container asks you to register a factory for every
// abstract key. This container asks for none of that. You declare your types
// into registry modules once, and resolution does the rest:
//
//  1. Discovery finds the concrete implementation of the requested type,
//     searching the scopes closest to the requesting type first and closing
//     open generic definitions against closed generic requests.
//  2. Lifetime inference decides, statically and before anything is built,
//     whether the implementation is shared (singleton) or per-request
//     (transient). Explicit declarations win; otherwise a type that owns
//     resources or depends on anything transient is itself transient.
//  3. Construction selects the widest constructor and resolves its
//     parameters recursively, with cycle detection on an explicit per-call
//     stack.
//
// # Lifecycle
//
//  1. Declare: build a *types.Registry, declare modules and types
//  2. Create: c := container.New(reg)
//  3. Resolve: svc, err := container.Resolve[*UserService](c)
//
// # Resolving
//
//	// untyped, by Ref
//	raw, err := c.Resolve(types.Of[UserStore](reg))
//
//	// typed (preferred — no assertion required)
//	svc, err := container.Resolve[*UserService](c)
//
//	// bootstrap code that should crash loudly
//	svc := container.MustResolve[*UserService](c)
//
//	// metadata targets, including closed generics
//	repo, err := container.As[*MemUserRepo](c, repoShape.Of(user))
//
// # Failure modes
//
// Every failure is a typed error (*NotFoundError, *AmbiguousError,
// *CycleError, *CaptiveError and friends) so callers branch with errors.As.
// A failed resolution unwinds completely and leaves the container usable.
//
// # Concurrency
//
// Resolve is safe to call from any number of goroutines. Cycle detection
// state is local to each call; caches are write-once, first writer wins.
// If two goroutines race the very first construction of a singleton, both
// construct, the instance stored first is handed to both, and the duplicate
// is closed if it owns resources. The container never blocks one resolution
// waiting on another, so resolution itself cannot deadlock.
//
// # Observing resolutions
//
//	c := container.New(reg,
//	    container.WithObserver(logging.NewResolutionObserver(logger)),
//	    container.WithObserver(metricsCollector),
//	)
//
// Observers receive one event per resolution frame: requested and concrete
// type, lifetime, cache hit or miss, nesting depth, duration, error, and a
// trace id shared by all frames of one top-level call.
package container
