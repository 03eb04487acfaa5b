package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/hypl/internal/natives"
	"github.com/mna/hypl/lang/compiler"
	"github.com/mna/hypl/lang/object"
)

// noImporter rejects `import NAME;` statements entered at the REPL: there
// is no source file to resolve sibling modules against.
type noImporter struct{}

func (noImporter) ReadModule(name string) (string, error) {
	return "", fmt.Errorf("import %q: file-based imports are not available in the REPL", name)
}

// runREPL reads one line at a time, compiling and running each as its own
// top-level chunk against a heap and VM shared across the whole session, so
// globals declared on one line are visible on the next.
func runREPL(ctx context.Context, stdio mainer.Stdio, trace, gcStress bool) mainer.ExitCode {
	heap := object.NewHeap()
	heap.StressGC = gcStress
	machine := newMachine(heap, stdio, trace)

	fmt.Fprintf(stdio.Stdout, "hypl %s\n", natives.Version)

	scanner := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if ctx.Err() != nil {
			fmt.Fprintln(stdio.Stdout)
			return ExitSuccess
		}
		if !scanner.Scan() {
			fmt.Fprintln(stdio.Stdout)
			return ExitSuccess
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		fn, errs := compiler.Compile(line, heap, noImporter{})
		if errs != nil && !errs.Empty() {
			fmt.Fprintln(stdio.Stderr, errs)
			continue
		}

		if _, err := machine.Interpret(fn); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
		}
	}
}
