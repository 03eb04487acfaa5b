package natives

import (
	"fmt"

	"github.com/mna/hypl/lang/object"
)

// fileIOModule is the installer hook for `import std file_io;`. It is wired
// into Load and reachable from a script, but every entry point refuses with
// ModuleNotFound until a sandboxed filesystem root is configured: letting
// scripts open arbitrary host files has no safe story in this exercise.
func (l *Loader) fileIOModule() map[string]object.NativeFn {
	unavailable := func(args []object.Value) (object.Value, error) {
		return object.Nil, fmt.Errorf("file_io: %w", ErrModuleNotFound)
	}
	return map[string]object.NativeFn{
		"open":  unavailable,
		"read":  unavailable,
		"write": unavailable,
		"close": unavailable,
	}
}
