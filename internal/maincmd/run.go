package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/hypl/internal/debug"
	"github.com/mna/hypl/internal/natives"
	"github.com/mna/hypl/lang/compiler"
	"github.com/mna/hypl/lang/object"
	"github.com/mna/hypl/lang/vm"
)

// fileImporter resolves `import NAME;` to sibling .hypl files next to the
// entry script, the only filesystem-backed module resolution this CLI
// offers.
type fileImporter struct{ dir string }

func (fi fileImporter) ReadModule(name string) (string, error) {
	b, err := os.ReadFile(fi.dir + "/" + name + ".hypl")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// newMachine wires a fresh heap and VM together with the native module
// loader and the always-on sys table, matching the other interpreter
// entry point (the REPL) so both share the same startup sequence.
func newMachine(heap *object.Heap, stdio mainer.Stdio, trace bool) *vm.VM {
	machine := vm.New(heap, stdio.Stdout, stdio.Stderr)
	loader := natives.NewLoader(heap, stdio.Stdout, stdio.Stdin)
	machine.StdLoader = loader.Load
	for name, fn := range loader.Sys() {
		machine.DefineNative("sys:"+name, fn)
	}
	if trace {
		machine.Trace = debug.Tracer(stdio.Stderr)
	}
	return machine
}

func runFile(_ context.Context, stdio mainer.Stdio, path string, trace, gcStress bool) mainer.ExitCode {
	src, err := os.ReadFile(path)
	if err != nil {
		printError(stdio, err)
		return ExitIOFailure
	}

	heap := object.NewHeap()
	heap.StressGC = gcStress
	importer := fileImporter{dir: dirOf(path)}

	fn, errs := compiler.Compile(string(src), heap, importer)
	if errs != nil && !errs.Empty() {
		printError(stdio, errs)
		return ExitCompileError
	}

	machine := newMachine(heap, stdio, trace)
	if _, err := machine.Interpret(fn); err != nil {
		printError(stdio, err)
		return ExitRuntimeError
	}
	return ExitSuccess
}

func printError(stdio mainer.Stdio, err error) {
	fmt.Fprintf(stdio.Stderr, "%s\n", err)
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
