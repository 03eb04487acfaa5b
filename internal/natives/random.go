package natives

import (
	"fmt"

	"github.com/mna/hypl/lang/object"
)

func (l *Loader) randomModule() map[string]object.NativeFn {
	return map[string]object.NativeFn{
		"seed": func(args []object.Value) (object.Value, error) {
			if len(args) != 1 || !args[0].IsInt() {
				return object.Nil, argError(1, len(args))
			}
			l.rng.Seed(args[0].AsInt())
			return object.Nil, nil
		},
		"int": func(args []object.Value) (object.Value, error) {
			if len(args) != 2 || !args[0].IsInt() || !args[1].IsInt() {
				return object.Nil, argError(2, len(args))
			}
			lo, hi := args[0].AsInt(), args[1].AsInt()
			if hi <= lo {
				return object.Nil, fmt.Errorf("int: upper bound must exceed lower bound")
			}
			return object.Int(lo + l.rng.Int63n(hi-lo)), nil
		},
		"float": func(args []object.Value) (object.Value, error) {
			if len(args) != 0 {
				return object.Nil, argError(0, len(args))
			}
			return object.Double(l.rng.Float64()), nil
		},
	}
}
