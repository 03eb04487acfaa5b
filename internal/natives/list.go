package natives

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/mna/hypl/lang/object"
)

func requireList(args []object.Value, i int) (*object.ObjList, error) {
	if i >= len(args) || !args[i].IsObj() {
		return nil, fmt.Errorf("argument %d must be a list", i)
	}
	list, ok := args[i].AsObj().(*object.ObjList)
	if !ok {
		return nil, fmt.Errorf("argument %d must be a list", i)
	}
	return list, nil
}

func (l *Loader) listModule() map[string]object.NativeFn {
	return map[string]object.NativeFn{
		"push": func(args []object.Value) (object.Value, error) {
			if len(args) != 2 {
				return object.Nil, argError(2, len(args))
			}
			list, err := requireList(args, 0)
			if err != nil {
				return object.Nil, err
			}
			list.Elements = append(list.Elements, args[1])
			return object.Nil, nil
		},
		"pop": func(args []object.Value) (object.Value, error) {
			list, err := requireList(args, 0)
			if err != nil {
				return object.Nil, err
			}
			if len(list.Elements) == 0 {
				return object.Nil, fmt.Errorf("pop: list is empty")
			}
			last := list.Elements[len(list.Elements)-1]
			list.Elements = list.Elements[:len(list.Elements)-1]
			return last, nil
		},
		"len": func(args []object.Value) (object.Value, error) {
			list, err := requireList(args, 0)
			if err != nil {
				return object.Nil, err
			}
			return object.Int(int64(len(list.Elements))), nil
		},
		"get": func(args []object.Value) (object.Value, error) {
			if len(args) != 2 {
				return object.Nil, argError(2, len(args))
			}
			list, err := requireList(args, 0)
			if err != nil {
				return object.Nil, err
			}
			if !args[1].IsInt() {
				return object.Nil, fmt.Errorf("get: index must be an integer")
			}
			idx := args[1].AsInt()
			if idx < 0 || idx >= int64(len(list.Elements)) {
				return object.Nil, fmt.Errorf("get: index %d out of range", idx)
			}
			return list.Elements[idx], nil
		},
		"set": func(args []object.Value) (object.Value, error) {
			if len(args) != 3 {
				return object.Nil, argError(3, len(args))
			}
			list, err := requireList(args, 0)
			if err != nil {
				return object.Nil, err
			}
			if !args[1].IsInt() {
				return object.Nil, fmt.Errorf("set: index must be an integer")
			}
			idx := args[1].AsInt()
			if idx < 0 || idx >= int64(len(list.Elements)) {
				return object.Nil, fmt.Errorf("set: index %d out of range", idx)
			}
			list.Elements[idx] = args[2]
			return object.Nil, nil
		},
		"sort": func(args []object.Value) (object.Value, error) {
			list, err := requireList(args, 0)
			if err != nil {
				return object.Nil, err
			}
			sorted := make([]object.Value, len(list.Elements))
			copy(sorted, list.Elements)
			var sortErr error
			slices.SortStableFunc(sorted, func(a, b object.Value) int {
				if a.IsNumber() && b.IsNumber() {
					switch af, bf := a.AsFloat64(), b.AsFloat64(); {
					case af < bf:
						return -1
					case af > bf:
						return 1
					default:
						return 0
					}
				}
				if a.IsString() && b.IsString() {
					switch as, bs := a.AsString().Chars, b.AsString().Chars; {
					case as < bs:
						return -1
					case as > bs:
						return 1
					default:
						return 0
					}
				}
				sortErr = fmt.Errorf("sort: elements must be pairwise comparable numbers or strings")
				return 0
			})
			if sortErr != nil {
				return object.Nil, sortErr
			}
			list.Elements = sorted
			return object.Nil, nil
		},
	}
}
