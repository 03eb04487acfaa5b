package natives

import (
	"fmt"
	"math"

	"github.com/mna/hypl/lang/object"
)

func requireNumber(args []object.Value, i int) (float64, error) {
	if i >= len(args) || !args[i].IsNumber() {
		return 0, fmt.Errorf("argument %d must be a number", i)
	}
	return args[i].AsFloat64(), nil
}

func (l *Loader) mathModule() map[string]object.NativeFn {
	unary := func(f func(float64) float64) object.NativeFn {
		return func(args []object.Value) (object.Value, error) {
			if len(args) != 1 {
				return object.Nil, argError(1, len(args))
			}
			x, err := requireNumber(args, 0)
			if err != nil {
				return object.Nil, err
			}
			return object.Double(f(x)), nil
		}
	}

	return map[string]object.NativeFn{
		"pi": func(args []object.Value) (object.Value, error) {
			if len(args) != 0 {
				return object.Nil, argError(0, len(args))
			}
			return object.Double(math.Pi), nil
		},
		"abs": func(args []object.Value) (object.Value, error) {
			if len(args) != 1 {
				return object.Nil, argError(1, len(args))
			}
			if args[0].IsInt() {
				n := args[0].AsInt()
				if n < 0 {
					n = -n
				}
				return object.Int(n), nil
			}
			x, err := requireNumber(args, 0)
			if err != nil {
				return object.Nil, err
			}
			return object.Double(math.Abs(x)), nil
		},
		"floor": unary(math.Floor),
		"ceil":  unary(math.Ceil),
		"sin":   unary(math.Sin),
		"cos":   unary(math.Cos),
		"sqrt":  unary(math.Sqrt),
		"fac": func(args []object.Value) (object.Value, error) {
			if len(args) != 1 || !args[0].IsInt() {
				return object.Nil, fmt.Errorf("fac expects one integer argument")
			}
			n := args[0].AsInt()
			if n < 0 {
				return object.Nil, fmt.Errorf("fac: negative argument")
			}
			var result int64 = 1
			for i := int64(2); i <= n; i++ {
				result *= i
			}
			return object.Int(result), nil
		},
	}
}
