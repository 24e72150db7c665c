package container

import (
	"time"

	"github.com/km-arc/go-autowire/framework/types"
)

// ── Resolution events ────────────────────────────────────────────────────────

// ResolutionEvent describes one resolution frame: a direct Resolve call or
// any nested dependency it pulled in. Events fire for failures too, with Err
// set and Concrete possibly zero.
type ResolutionEvent struct {
	// TraceID ties together all frames of one top-level Resolve call.
	TraceID string

	// Requested is the type the frame asked for; Concrete is the
	// implementation discovery picked for it.
	Requested types.Ref
	Concrete  types.Ref

	Lifetime types.Lifetime

	// CacheHit is true when a cached singleton instance was served and no
	// construction happened.
	CacheHit bool

	// Depth is 0 for the top-level request and grows with constructor
	// nesting.
	Depth int

	Duration time.Duration
	Err      error
}

// Observer receives resolution events. Implementations must be safe for
// concurrent use; the container calls them synchronously on the resolving
// goroutine.
type Observer interface {
	ObserveResolution(ev ResolutionEvent)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ResolutionEvent)

func (f ObserverFunc) ObserveResolution(ev ResolutionEvent) { f(ev) }

// ── Options ──────────────────────────────────────────────────────────────────

// Option configures a Container at construction time.
type Option func(*Container)

// WithObserver attaches observers to the container. Repeated options
// accumulate; every observer sees every event.
func WithObserver(obs ...Observer) Option {
	return func(c *Container) {
		c.observers = append(c.observers, obs...)
	}
}
