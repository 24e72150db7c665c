package container

import (
	"errors"
	"reflect"

	"github.com/km-arc/go-autowire/framework/types"
)

var errNoInstance = errors.New("constructor produced no instance")

// construct builds an instance of the concrete type, resolving every
// constructor parameter through the orchestrator with the type itself as
// requester — so discovery for the parameters starts from the constructed
// type's own scope.
//
// The build stack tracks the chain of in-flight constructions for this one
// top-level Resolve. Lifetime analysis already rejects cyclic graphs before
// anything is built; the stack check here guards the same invariant at the
// moment of construction. Push and pop are paired through defer, so the
// stack unwinds no matter which exit path is taken.
func (c *Container) construct(st *resolveState, concrete types.Ref) (any, error) {
	for i, inFlight := range st.build {
		if inFlight == concrete {
			chain := make([]types.Ref, 0, len(st.build)-i+1)
			chain = append(chain, st.build[i:]...)
			chain = append(chain, concrete)
			return nil, &CycleError{Chain: chain}
		}
	}

	if concrete.HasInstance() {
		return concrete.Instance(), nil
	}

	st.build = append(st.build, concrete)
	st.depth++
	defer func() {
		st.depth--
		st.build = st.build[:len(st.build)-1]
	}()

	ctor, err := selectConstructor(concrete)
	if err != nil {
		return nil, err
	}

	params := ctor.Params()
	args := make([]any, len(params))
	for i, param := range params {
		dep, err := c.resolve(st, param, concrete)
		if err != nil {
			return nil, err
		}
		args[i] = dep
	}

	inst, err := ctor.Invoke(args)
	if err != nil {
		return nil, &ConstructionError{Type: concrete, Err: err}
	}
	if inst == nil || isNilValue(inst) {
		return nil, &ConstructionError{Type: concrete, Err: errNoInstance}
	}
	return inst, nil
}

// isNilValue catches typed nils: a constructor returning (*T)(nil) produced
// no instance even though the interface value is non-nil.
func isNilValue(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
