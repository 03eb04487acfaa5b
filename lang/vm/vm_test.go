package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/hypl/lang/compiler"
	"github.com/mna/hypl/lang/object"
	"github.com/mna/hypl/lang/vm"
)

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	heap := object.NewHeap()
	fn, errs := compiler.Compile(src, heap, nil)
	require.True(t, errs == nil || errs.Empty(), "unexpected compile errors: %v", errs)
	require.NotNil(t, fn)

	var out, errOut bytes.Buffer
	machine := vm.New(heap, &out, &errOut)
	_, err := machine.Interpret(fn)
	return out.String(), err
}

func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		desc string
		src  string
		want string
	}{
		{"arithmetic precedence", `print 1 + 2 * 3;`, "7\n"},
		{"string concatenation", `print "foo" + "bar";`, "foobar\n"},
		{
			"recursive fibonacci", `
			fun fib(n) {
				if (n < 2) return n;
				return fib(n - 1) + fib(n - 2);
			}
			print fib(10);
		`, "55\n",
		},
		{
			"closures share upvalue state", `
			fun counter() {
				let n = 0;
				fun next() { inc n; return n; }
				return next;
			}
			let c = counter();
			print c();
			print c();
			print c();
		`, "1\n2\n3\n",
		},
		{
			"closures from separate calls are independent", `
			fun counter() {
				let n = 0;
				fun next() { inc n; return n; }
				return next;
			}
			let a = counter();
			let b = counter();
			print a();
			print a();
			print b();
		`, "1\n2\n1\n",
		},
		{
			"classes, fields, and bound methods", `
			class Point {
				init(x, y) {
					this.x = x;
					this.y = y;
				}
				sum() { return this.x + this.y; }
			}
			let p = Point(3, 4);
			print p.sum();
			let bound = p.sum;
			print bound();
		`, "7\n7\n",
		},
		{
			"field shadows method", `
			class Box {
				value() { return 1; }
			}
			let b = Box();
			b.value = 2;
			print b.value;
		`, "2\n",
		},
		{"list literal and index", `let xs = [1, 2, 3]; print xs[1];`, "2\n"},
		{"list index assignment", `let xs = [1, 2, 3]; xs[0] = 9; print xs[0];`, "9\n"},
		{"write has no trailing newline", `write "a"; write "b";`, "ab"},
		{"integer power", `print 2 ^ 10;`, "1024\n"},
		{"float power", `print 2.0 ^ 0.5;`, "1.4142135623730951\n"},
		{"integer modulo", `print 7 % 3;`, "1\n"},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			out, err := run(t, tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	cases := []struct {
		desc string
		src  string
		want string
	}{
		{"undefined global", `print notdefined;`, "undefined variable 'notdefined'"},
		{"add string to number", `print 1 + "x";`, "operands must be numbers"},
		{"negate non-number", `print -"x";`, "operand must be a number"},
		{"integer division by zero", `print 1 / 0;`, "integer division by zero"},
		{"index out of bounds", `let xs = [1]; print xs[5];`, "list index 5 out of range"},
		{"call a non-function", `let x = 1; x();`, "can only call functions and classes"},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := run(t, tc.src)
			require.Error(t, err)
			var rerr *vm.RuntimeError
			require.ErrorAs(t, err, &rerr)
			assert.Contains(t, rerr.Message, tc.want)
			require.NotEmpty(t, rerr.Frames)
		})
	}
}

func TestRuntimeErrorStackTrace(t *testing.T) {
	_, err := run(t, `
		fun inner() { return 1 / 0; }
		fun outer() { return inner(); }
		outer();
	`)
	require.Error(t, err)
	var rerr *vm.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Len(t, rerr.Frames, 3)
	assert.Equal(t, "inner", rerr.Frames[0].FuncName)
	assert.Equal(t, "outer", rerr.Frames[1].FuncName)
	assert.Equal(t, "script", rerr.Frames[2].FuncName)

	rendered := rerr.Error()
	assert.Contains(t, rendered, "in inner()")
	assert.Contains(t, rendered, "in outer()")
	assert.Contains(t, rendered, "in script")
	assert.NotContains(t, rendered, "in script()")
}

func TestGCStressDuringExecution(t *testing.T) {
	heap := object.NewHeap()
	heap.StressGC = true
	fn, errs := compiler.Compile(`
		fun build(n) {
			let s = "";
			let i = 0;
			while (i < n) {
				s = s + "x";
				inc i;
			}
			return s;
		}
		print build(50);
	`, heap, nil)
	require.True(t, errs == nil || errs.Empty())
	require.NotNil(t, fn)

	var out, errOut bytes.Buffer
	machine := vm.New(heap, &out, &errOut)
	_, err := machine.Interpret(fn)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 50)+"\n", out.String())
}
