package types

import "fmt"

// ── Type expressions ─────────────────────────────────────────────────────────

// Expr is a type position inside a declaration: a fixed type, one of the
// declaring definition's own type parameters, or a generic shape applied to
// further expressions. Expressions appear in Implements, Extends and Ctor
// options and are substituted into plain Refs when a definition is closed.
//
//	types.To(user)                          // the fixed type User
//	types.Arg(0)                            // the definition's first parameter
//	types.App(repo, types.Arg(0))           // Repo[T0]
//	types.App(pair, types.Arg(1), types.To(user))
type Expr struct {
	kind  exprKind
	fixed Ref
	param int
	shape Ref
	args  []Expr
}

type exprKind uint8

const (
	exprFixed exprKind = iota
	exprParam
	exprApplied
)

// To wraps a fixed type reference.
func To(r Ref) Expr { return Expr{kind: exprFixed, fixed: r} }

// Arg refers to type parameter i of the declaring definition.
func Arg(i int) Expr { return Expr{kind: exprParam, param: i} }

// App applies an open generic shape to argument expressions.
func App(shape Ref, args ...Expr) Expr {
	return Expr{kind: exprApplied, shape: shape, args: args}
}

// subst resolves the expression against the type arguments of a closing.
// args is nil when resolving expressions of a non-generic declaration, in
// which case parameter references are a declaration error.
func (e Expr) subst(reg *Registry, args []Ref) (Ref, error) {
	switch e.kind {
	case exprFixed:
		if e.fixed.IsZero() {
			return Ref{}, fmt.Errorf("types: zero Ref in type expression")
		}
		return e.fixed, nil

	case exprParam:
		if e.param < 0 || e.param >= len(args) {
			return Ref{}, fmt.Errorf("types: type parameter %d out of range", e.param)
		}
		return args[e.param], nil

	case exprApplied:
		resolved := make([]Ref, len(e.args))
		for i, a := range e.args {
			r, err := a.subst(reg, args)
			if err != nil {
				return Ref{}, err
			}
			resolved[i] = r
		}
		return reg.Apply(e.shape, resolved)

	default:
		return Ref{}, fmt.Errorf("types: malformed type expression")
	}
}

// maxParam returns the largest parameter index mentioned, or -1.
func (e Expr) maxParam() int {
	switch e.kind {
	case exprParam:
		return e.param
	case exprApplied:
		max := -1
		for _, a := range e.args {
			if m := a.maxParam(); m > max {
				max = m
			}
		}
		return max
	default:
		return -1
	}
}

// heads returns the declarations an expression derives through: the fixed
// target or the applied shape. Argument positions are not derivation links —
// implementing Wrap[List[T]] derives Wrap, not List.
func (e Expr) heads() []*decl {
	switch e.kind {
	case exprFixed:
		if e.fixed.d != nil {
			return []*decl{e.fixed.d}
		}
	case exprApplied:
		if e.shape.d != nil {
			return []*decl{e.shape.d}
		}
	}
	return nil
}
