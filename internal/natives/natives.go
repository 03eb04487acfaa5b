// Package natives implements the standard-library modules a script pulls
// in with `import std <name>;`. Each installer returns a map of bare
// symbol names to object.NativeFn; the VM namespaces them itself
// ("math:floor", "string:upper", and so on) before binding them into
// globals, matching the convention named in the module registration rules.
package natives

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/mna/hypl/lang/object"
)

// ErrModuleNotFound is returned by file_io's entry points: the hook is real
// and reachable, but disk access is deliberately unimplemented.
var ErrModuleNotFound = errors.New("module not available")

// Loader resolves a module name to its native function table and owns the
// shared state (the heap, for allocating results; stdio; process args)
// every installer needs.
type Loader struct {
	heap *object.Heap

	Stdout io.Writer
	Stdin  io.Reader
	Args   []string
	Getenv func(string) string
	Exit   func(int)

	rng *rand.Rand
}

// NewLoader returns a Loader ready to resolve any of the nine bundled
// modules against heap for its allocations.
func NewLoader(heap *object.Heap, stdout io.Writer, stdin io.Reader) *Loader {
	return &Loader{
		heap:   heap,
		Stdout: stdout,
		Stdin:  stdin,
		Args:   os.Args,
		Getenv: os.Getenv,
		Exit:   os.Exit,
		rng:    rand.New(rand.NewSource(1)),
	}
}

// Load implements vm.StdLoader.
func (l *Loader) Load(name string) (map[string]object.NativeFn, error) {
	switch name {
	case "math":
		return l.mathModule(), nil
	case "string":
		return l.stringModule(), nil
	case "list":
		return l.listModule(), nil
	case "os":
		return l.osModule(), nil
	case "time":
		return l.timeModule(), nil
	case "random":
		return l.randomModule(), nil
	case "to":
		return l.typeConversionModule(), nil
	case "console":
		return l.consoleModule(), nil
	case "sys":
		return l.sysModule(), nil
	case "file_io":
		return l.fileIOModule(), nil
	default:
		return nil, fmt.Errorf("unknown standard module %q", name)
	}
}

// Sys returns the `sys:*` bindings installed unconditionally at startup,
// bypassing `import std` entirely.
func (l *Loader) Sys() map[string]object.NativeFn {
	return l.sysModule()
}

func argError(want, got int) error {
	return fmt.Errorf("expected %d argument(s), got %d", want, got)
}
