package container

import (
	"reflect"

	"github.com/km-arc/go-autowire/framework/types"
)

// Introspector is the container's window into type metadata. The resolver
// never inspects Go types directly; everything it knows — scope ordering,
// assignability, generic closing, derivation — comes through this interface.
//
// *types.Registry satisfies it. Tests can substitute their own
// implementation to stage scope layouts the declaration API would not
// produce.
type Introspector interface {
	// ScopesFor lists every scope in the order discovery should search them
	// for the given requester: the requester's own scope, the scopes it
	// uses, then the rest, deduplicated and deterministic.
	ScopesFor(requester types.Ref) []types.Scope

	// Assignable reports whether a value of type src can serve where dst is
	// required.
	Assignable(src, dst types.Ref) bool

	// Apply closes an open generic definition with concrete type arguments.
	// A *types.ConstraintError means the arguments are rejected by the
	// definition, not that anything is broken.
	Apply(open types.Ref, args []types.Ref) (types.Ref, error)

	// Derives reports whether t's derivation chain reaches the open generic
	// definition shape.
	Derives(t, shape types.Ref) bool

	// RefFor interns a Go type.
	RefFor(t reflect.Type) types.Ref
}

var _ Introspector = (*types.Registry)(nil)
