package container

import "github.com/km-arc/go-autowire/framework/types"

// implementationFor maps a requested type to the concrete type that will be
// constructed for it. Concrete requests are their own implementation;
// abstract ones go through scope-ordered discovery. Primitives are rejected
// here, which covers both direct requests and constructor parameters — every
// nested resolution passes through this gate.
func (c *Container) implementationFor(target, requester types.Ref) (types.Ref, error) {
	if target.Kind() == types.KindPrimitive {
		return types.Ref{}, &PrimitiveError{Type: target}
	}
	if target.IsConcrete() && !target.IsOpenGeneric() {
		return target, nil
	}
	return c.discover(target, requester)
}

// discover searches the scopes closest to the requester first and stops at
// the first scope that offers a candidate: a scope with exactly one match
// decides the implementation, a scope with several is ambiguous, an empty
// scope passes the search on. Scopes the requester does not see directly are
// still searched, last.
func (c *Container) discover(target, requester types.Ref) (types.Ref, error) {
	for _, scope := range c.source.ScopesFor(requester) {
		var matches []types.Ref
		for _, cand := range scope.Concretes() {
			if m, ok := c.match(cand, target); ok {
				matches = append(matches, m)
			}
		}
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return types.Ref{}, &AmbiguousError{Target: target, Scope: scope.Name(), Candidates: matches}
		}
	}
	return types.Ref{}, &NotFoundError{Target: target, Requester: requester}
}

// match decides whether one scope candidate implements the target, either
// directly or by closing an open generic definition against the target's
// type arguments.
func (c *Container) match(cand, target types.Ref) (types.Ref, bool) {
	if c.source.Assignable(cand, target) {
		return cand, true
	}

	// Open candidates can only serve closed generic targets, and only when
	// their definition has the same number of type parameters and actually
	// derives the target's shape. Closing substitutes the target's arguments
	// positionally — nothing is inferred — so a definition that relates to
	// the shape some other way closes to a form the assignability check
	// rejects, and the candidate simply does not apply.
	if !target.IsClosedGeneric() || !cand.IsOpenGeneric() {
		return types.Ref{}, false
	}
	if cand.Arity() != target.Arity() {
		return types.Ref{}, false
	}
	if !c.source.Derives(cand, target.Shape()) {
		return types.Ref{}, false
	}

	closed, err := c.source.Apply(cand, target.Args())
	if err != nil {
		// constraint rejections mean "not a candidate", never a failure
		return types.Ref{}, false
	}
	if !c.source.Assignable(closed, target) {
		return types.Ref{}, false
	}
	return closed, true
}
