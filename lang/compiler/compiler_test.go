package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/hypl/lang/compiler"
	"github.com/mna/hypl/lang/object"
)

func compile(t *testing.T, src string) *object.ObjFunction {
	t.Helper()
	heap := object.NewHeap()
	fn, errs := compiler.Compile(src, heap, nil)
	require.True(t, errs == nil || errs.Empty(), "unexpected compile errors: %v", errs)
	require.NotNil(t, fn)
	return fn
}

func TestCompileSmoke(t *testing.T) {
	cases := []struct {
		desc string
		src  string
	}{
		{"empty program", ``},
		{"let and print", `let x = 1; print x;`},
		{"arithmetic", `print 1 + 2 * 3 - 4 / 2;`},
		{"if else", `if (true) { print 1; } else { print 2; }`},
		{"while loop", `let i = 0; while (i < 3) { print i; inc i; }`},
		{"for loop", `for (let i = 0; i < 3; inc i) { print i; }`},
		{"function", `fun add(a, b) { return a + b; } print add(1, 2);`},
		{"closures", `
			fun counter() {
				let n = 0;
				fun next() { inc n; return n; }
				return next;
			}
			let c = counter();
			print c();
		`},
		{"class and method", `
			class Point {
				init(x, y) {
					this.x = x;
					this.y = y;
				}
				sum() { return this.x + this.y; }
			}
			let p = Point(1, 2);
			print p.sum();
		`},
		{"list literal and index", `let xs = [1, 2, 3]; print xs[1];`},
		{"write without newline", `write "no newline";`},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			fn := compile(t, tc.src)
			assert.NotNil(t, fn.Chunk.Code)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		desc string
		src  string
		kind compiler.ErrorKind
	}{
		{"missing semicolon", `let x = 1`, compiler.ExpectToken},
		{"invalid assignment target", `1 = 2;`, compiler.InvalidAssignmentTarget},
		{"return at top level", `return 1;`, compiler.CantReturnTopLevel},
		{"this outside class", `print this;`, compiler.ThisOutsideClass},
		{"return value from initializer", `
			class Foo {
				init() { return 1; }
			}
		`, compiler.CantReturnFromInitializer},
		{"redeclare local", `{ let x = 1; let x = 2; }`, compiler.VariableAlreadyDeclared},
		{"read in own initializer", `{ let x = x; }`, compiler.ReadInOwnInitializer},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			heap := object.NewHeap()
			fn, errs := compiler.Compile(tc.src, heap, nil)
			require.Nil(t, fn)
			require.NotNil(t, errs)
			require.False(t, errs.Empty())
			assert.Equal(t, tc.kind, errs.Errors[0].Kind)
		})
	}
}

func TestCompileRecoversFromMultipleErrors(t *testing.T) {
	heap := object.NewHeap()
	_, errs := compiler.Compile(`
		let a = ;
		let b = ;
		print a + b;
	`, heap, nil)
	require.NotNil(t, errs)
	assert.GreaterOrEqual(t, len(errs.Errors), 2)
}

func TestErrorListFormatting(t *testing.T) {
	el := &compiler.ErrorList{}
	assert.True(t, el.Empty())
	assert.Equal(t, "no errors", el.Error())
}
