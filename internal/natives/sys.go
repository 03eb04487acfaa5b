package natives

import (
	"runtime"

	"github.com/mna/hypl/lang/object"
)

// Version is the interpreter version string reported by sys:version.
const Version = "0.1.0"

func (l *Loader) sysModule() map[string]object.NativeFn {
	return map[string]object.NativeFn{
		"version": func(args []object.Value) (object.Value, error) {
			if len(args) != 0 {
				return object.Nil, argError(0, len(args))
			}
			return object.FromObj(l.heap.AllocateString(Version)), nil
		},
		"platform": func(args []object.Value) (object.Value, error) {
			if len(args) != 0 {
				return object.Nil, argError(0, len(args))
			}
			return object.FromObj(l.heap.AllocateString(runtime.GOOS + "/" + runtime.GOARCH)), nil
		},
	}
}
