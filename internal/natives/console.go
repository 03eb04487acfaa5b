package natives

import (
	"bufio"
	"fmt"

	"github.com/mna/hypl/lang/object"
)

func (l *Loader) consoleModule() map[string]object.NativeFn {
	reader := bufio.NewReader(l.Stdin)
	return map[string]object.NativeFn{
		"write": func(args []object.Value) (object.Value, error) {
			if len(args) != 1 {
				return object.Nil, argError(1, len(args))
			}
			fmt.Fprint(l.Stdout, args[0].String())
			return object.Nil, nil
		},
		"writeline": func(args []object.Value) (object.Value, error) {
			if len(args) != 1 {
				return object.Nil, argError(1, len(args))
			}
			fmt.Fprintln(l.Stdout, args[0].String())
			return object.Nil, nil
		},
		"read": func(args []object.Value) (object.Value, error) {
			if len(args) != 0 {
				return object.Nil, argError(0, len(args))
			}
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return object.Nil, nil
			}
			for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
				line = line[:len(line)-1]
			}
			return object.FromObj(l.heap.AllocateString(line)), nil
		},
	}
}
