package container

import "github.com/km-arc/go-autowire/framework/types"

// selectConstructor picks the constructor the resolver will wire: the one
// with the most parameters, earliest declared winning ties.
//
// The variadic check applies to the selected constructor only; a narrower
// variadic overload that loses the selection never disqualifies the type.
func selectConstructor(concrete types.Ref) (*types.Constructor, error) {
	ctors := concrete.Constructors()
	if len(ctors) == 0 {
		return nil, &NoConstructorError{Type: concrete}
	}

	best := ctors[0]
	for _, ct := range ctors[1:] {
		if ct.NumParams() > best.NumParams() {
			best = ct
		}
	}

	if best.Variadic() {
		return nil, &UnsupportedParamsError{Type: concrete}
	}
	return best, nil
}
