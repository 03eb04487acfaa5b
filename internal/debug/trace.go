package debug

import (
	"fmt"
	"io"

	"github.com/mna/hypl/lang/object"
)

// Tracer returns a function matching vm.VM.Trace's signature: it prints a
// bracketed snapshot of the value stack, then the disassembly of the
// instruction about to run, in that order, before every step.
func Tracer(w io.Writer) func(chunk *object.Chunk, ip int, stack []object.Value, frameDepth int) {
	return func(chunk *object.Chunk, ip int, stack []object.Value, frameDepth int) {
		fmt.Fprint(w, "          ")
		for i := 0; i < frameDepth; i++ {
			fmt.Fprint(w, "  ")
		}
		for _, v := range stack {
			fmt.Fprintf(w, "[ %s ]", v.String())
		}
		fmt.Fprintln(w)
		Instruction(w, chunk, ip)
	}
}
