package container

import (
	"fmt"
	"strings"

	"github.com/km-arc/go-autowire/framework/types"
)

// Every way a resolution can fail has its own error type, so callers can
// switch on errors.As instead of parsing messages. All of them abort the
// in-progress Resolve, unwind cleanly and leave the container usable.

// NoConstructorError reports a concrete type with no declared constructor.
type NoConstructorError struct {
	Type types.Ref
}

func (e *NoConstructorError) Error() string {
	return fmt.Sprintf("container: %s has no constructor to auto-wire", e.Type)
}

// UnsupportedParamsError reports that the selected constructor takes a
// variadic parameter list, which the resolver cannot satisfy: there is no
// principled number of values to supply.
type UnsupportedParamsError struct {
	Type types.Ref
}

func (e *UnsupportedParamsError) Error() string {
	return fmt.Sprintf("container: the selected constructor of %s is variadic and cannot be auto-wired", e.Type)
}

// NotFoundError reports that no scope contains an implementation of the
// target.
type NotFoundError struct {
	Target    types.Ref
	Requester types.Ref
}

func (e *NotFoundError) Error() string {
	if !e.Requester.IsZero() {
		return fmt.Sprintf("container: no implementation of %s found in any scope (requested by %s)", e.Target, e.Requester)
	}
	return fmt.Sprintf("container: no implementation of %s found in any scope", e.Target)
}

// AmbiguousError reports a scope that offers more than one implementation of
// the target. Discovery stops at the first scope with candidates, so the
// ambiguity is always within a single scope.
type AmbiguousError struct {
	Target     types.Ref
	Scope      string
	Candidates []types.Ref
}

func (e *AmbiguousError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.Name()
	}
	return fmt.Sprintf("container: %d implementations of %s in scope [%s]: %s",
		len(e.Candidates), e.Target, e.Scope, strings.Join(names, ", "))
}

// CycleError reports a dependency chain that reaches back into itself.
// Chain lists the types in discovery order, first and last being the same
// type.
type CycleError struct {
	Chain []types.Ref
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Chain))
	for i, r := range e.Chain {
		names[i] = r.Name()
	}
	return "container: circular dependency: " + strings.Join(names, " -> ")
}

// CaptiveError reports a declared singleton whose constructor takes a
// transient dependency: the shared instance would pin a value that is meant
// to be fresh per resolution.
type CaptiveError struct {
	Type       types.Ref
	Dependency types.Ref
}

func (e *CaptiveError) Error() string {
	return fmt.Sprintf("container: singleton %s would capture transient %s", e.Type, e.Dependency)
}

// PrimitiveError reports a request for a bare value type. Primitives carry
// no construction semantics; pass them through configuration instead.
type PrimitiveError struct {
	Type types.Ref
}

func (e *PrimitiveError) Error() string {
	return fmt.Sprintf("container: primitive %s is not resolvable", e.Type)
}

// ConstructionError reports a constructor that ran and failed, or produced
// no instance.
type ConstructionError struct {
	Type types.Ref
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("container: constructing %s: %v", e.Type, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// TypeMismatchError reports a resolved instance that does not satisfy the
// Go type the caller asked for. With a well-formed registry this cannot
// happen; it exists so a malformed factory fails loudly instead of leaking a
// wrong value.
type TypeMismatchError struct {
	Target types.Ref
	Want   string
	Got    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("container: %s resolved to %s, want %s", e.Target, e.Got, e.Want)
}
