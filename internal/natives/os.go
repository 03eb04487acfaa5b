package natives

import "github.com/mna/hypl/lang/object"

func (l *Loader) osModule() map[string]object.NativeFn {
	return map[string]object.NativeFn{
		"args": func(args []object.Value) (object.Value, error) {
			if len(args) != 0 {
				return object.Nil, argError(0, len(args))
			}
			elems := make([]object.Value, len(l.Args))
			for i, a := range l.Args {
				elems[i] = object.FromObj(l.heap.AllocateString(a))
			}
			return object.FromObj(l.heap.AllocateList(elems)), nil
		},
		"getenv": func(args []object.Value) (object.Value, error) {
			name, err := requireString(args, 0)
			if err != nil {
				return object.Nil, err
			}
			return object.FromObj(l.heap.AllocateString(l.Getenv(name))), nil
		},
		"exit": func(args []object.Value) (object.Value, error) {
			code := 0
			if len(args) == 1 && args[0].IsInt() {
				code = int(args[0].AsInt())
			}
			l.Exit(code)
			return object.Nil, nil
		},
	}
}
