package natives

import (
	"fmt"
	"strconv"

	"github.com/mna/hypl/lang/object"
)

func (l *Loader) typeConversionModule() map[string]object.NativeFn {
	return map[string]object.NativeFn{
		"int": func(args []object.Value) (object.Value, error) {
			if len(args) != 1 {
				return object.Nil, argError(1, len(args))
			}
			switch {
			case args[0].IsInt():
				return args[0], nil
			case args[0].IsDouble():
				return object.Int(int64(args[0].AsDouble())), nil
			case args[0].IsString():
				n, err := strconv.ParseInt(args[0].AsString().Chars, 10, 64)
				if err != nil {
					return object.Nil, fmt.Errorf("int: cannot convert %q", args[0].AsString().Chars)
				}
				return object.Int(n), nil
			case args[0].IsBool():
				if args[0].AsBool() {
					return object.Int(1), nil
				}
				return object.Int(0), nil
			default:
				return object.Nil, fmt.Errorf("int: cannot convert a %s", args[0].TypeName())
			}
		},
		"double": func(args []object.Value) (object.Value, error) {
			if len(args) != 1 {
				return object.Nil, argError(1, len(args))
			}
			switch {
			case args[0].IsNumber():
				return object.Double(args[0].AsFloat64()), nil
			case args[0].IsString():
				f, err := strconv.ParseFloat(args[0].AsString().Chars, 64)
				if err != nil {
					return object.Nil, fmt.Errorf("double: cannot convert %q", args[0].AsString().Chars)
				}
				return object.Double(f), nil
			default:
				return object.Nil, fmt.Errorf("double: cannot convert a %s", args[0].TypeName())
			}
		},
		"string": func(args []object.Value) (object.Value, error) {
			if len(args) != 1 {
				return object.Nil, argError(1, len(args))
			}
			return object.FromObj(l.heap.AllocateString(args[0].String())), nil
		},
		"bool": func(args []object.Value) (object.Value, error) {
			if len(args) != 1 {
				return object.Nil, argError(1, len(args))
			}
			return object.Bool(!args[0].Falsey()), nil
		},
	}
}
