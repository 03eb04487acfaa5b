package natives

import (
	"fmt"
	"strings"

	"github.com/mna/hypl/lang/object"
)

func requireString(args []object.Value, i int) (string, error) {
	if i >= len(args) || !args[i].IsString() {
		return "", fmt.Errorf("argument %d must be a string", i)
	}
	return args[i].AsString().Chars, nil
}

func (l *Loader) stringModule() map[string]object.NativeFn {
	return map[string]object.NativeFn{
		"len": func(args []object.Value) (object.Value, error) {
			s, err := requireString(args, 0)
			if err != nil {
				return object.Nil, err
			}
			return object.Int(int64(len(s))), nil
		},
		"upper": func(args []object.Value) (object.Value, error) {
			s, err := requireString(args, 0)
			if err != nil {
				return object.Nil, err
			}
			return object.FromObj(l.heap.AllocateString(strings.ToUpper(s))), nil
		},
		"lower": func(args []object.Value) (object.Value, error) {
			s, err := requireString(args, 0)
			if err != nil {
				return object.Nil, err
			}
			return object.FromObj(l.heap.AllocateString(strings.ToLower(s))), nil
		},
		"trim": func(args []object.Value) (object.Value, error) {
			s, err := requireString(args, 0)
			if err != nil {
				return object.Nil, err
			}
			return object.FromObj(l.heap.AllocateString(strings.TrimSpace(s))), nil
		},
		"sub": func(args []object.Value) (object.Value, error) {
			if len(args) != 3 {
				return object.Nil, argError(3, len(args))
			}
			s, err := requireString(args, 0)
			if err != nil {
				return object.Nil, err
			}
			if !args[1].IsInt() || !args[2].IsInt() {
				return object.Nil, fmt.Errorf("sub: start and end must be integers")
			}
			start, end := args[1].AsInt(), args[2].AsInt()
			if start < 0 || end > int64(len(s)) || start > end {
				return object.Nil, fmt.Errorf("sub: index out of range")
			}
			return object.FromObj(l.heap.AllocateString(s[start:end])), nil
		},
		"find": func(args []object.Value) (object.Value, error) {
			if len(args) != 2 {
				return object.Nil, argError(2, len(args))
			}
			s, err := requireString(args, 0)
			if err != nil {
				return object.Nil, err
			}
			sub, err := requireString(args, 1)
			if err != nil {
				return object.Nil, err
			}
			return object.Int(int64(strings.Index(s, sub))), nil
		},
		"split": func(args []object.Value) (object.Value, error) {
			if len(args) != 2 {
				return object.Nil, argError(2, len(args))
			}
			s, err := requireString(args, 0)
			if err != nil {
				return object.Nil, err
			}
			sep, err := requireString(args, 1)
			if err != nil {
				return object.Nil, err
			}
			parts := strings.Split(s, sep)
			elems := make([]object.Value, len(parts))
			for i, p := range parts {
				elems[i] = object.FromObj(l.heap.AllocateString(p))
			}
			return object.FromObj(l.heap.AllocateList(elems)), nil
		},
	}
}
