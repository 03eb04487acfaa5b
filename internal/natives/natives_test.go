package natives_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/hypl/internal/natives"
	"github.com/mna/hypl/lang/object"
)

func newLoader(t *testing.T, stdin string) (*natives.Loader, *object.Heap, *bytes.Buffer) {
	t.Helper()
	heap := object.NewHeap()
	var out bytes.Buffer
	l := natives.NewLoader(heap, &out, strings.NewReader(stdin))
	return l, heap, &out
}

func call(t *testing.T, mod map[string]object.NativeFn, name string, args ...object.Value) (object.Value, error) {
	t.Helper()
	fn, ok := mod[name]
	require.True(t, ok, "missing native %q", name)
	return fn(args)
}

func TestMathModule(t *testing.T) {
	l, _, _ := newLoader(t, "")
	mod, err := l.Load("math")
	require.NoError(t, err)

	v, err := call(t, mod, "pi")
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, v.AsDouble(), 1e-9)

	v, err = call(t, mod, "abs", object.Int(-3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.AsInt())

	v, err = call(t, mod, "abs", object.Double(-2.5))
	require.NoError(t, err)
	assert.Equal(t, 2.5, v.AsDouble())

	v, err = call(t, mod, "floor", object.Double(1.9))
	require.NoError(t, err)
	assert.Equal(t, 1.0, v.AsDouble())

	v, err = call(t, mod, "sqrt", object.Double(4))
	require.NoError(t, err)
	assert.Equal(t, 2.0, v.AsDouble())

	v, err = call(t, mod, "fac", object.Int(5))
	require.NoError(t, err)
	assert.Equal(t, int64(120), v.AsInt())

	_, err = call(t, mod, "fac", object.Int(-1))
	require.Error(t, err)
}

func TestStringModule(t *testing.T) {
	l, heap, _ := newLoader(t, "")
	mod, err := l.Load("string")
	require.NoError(t, err)

	s := object.FromObj(heap.AllocateString("Hello World"))

	v, err := call(t, mod, "len", s)
	require.NoError(t, err)
	assert.Equal(t, int64(11), v.AsInt())

	v, err = call(t, mod, "upper", s)
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD", v.AsString().Chars)

	v, err = call(t, mod, "lower", s)
	require.NoError(t, err)
	assert.Equal(t, "hello world", v.AsString().Chars)

	v, err = call(t, mod, "sub", s, object.Int(0), object.Int(5))
	require.NoError(t, err)
	assert.Equal(t, "Hello", v.AsString().Chars)

	v, err = call(t, mod, "find", s, object.FromObj(heap.AllocateString("World")))
	require.NoError(t, err)
	assert.Equal(t, int64(6), v.AsInt())

	v, err = call(t, mod, "split", object.FromObj(heap.AllocateString("a,b,c")), object.FromObj(heap.AllocateString(",")))
	require.NoError(t, err)
	list := v.AsObj().(*object.ObjList)
	require.Len(t, list.Elements, 3)
	assert.Equal(t, "b", list.Elements[1].AsString().Chars)
}

func TestListModule(t *testing.T) {
	l, heap, _ := newLoader(t, "")
	mod, err := l.Load("list")
	require.NoError(t, err)

	list := object.FromObj(heap.AllocateList([]object.Value{object.Int(3), object.Int(1), object.Int(2)}))

	v, err := call(t, mod, "len", list)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.AsInt())

	_, err = call(t, mod, "push", list, object.Int(4))
	require.NoError(t, err)
	v, _ = call(t, mod, "len", list)
	assert.Equal(t, int64(4), v.AsInt())

	v, err = call(t, mod, "pop", list)
	require.NoError(t, err)
	assert.Equal(t, int64(4), v.AsInt())

	_, err = call(t, mod, "sort", list)
	require.NoError(t, err)
	got := list.AsObj().(*object.ObjList)
	assert.Equal(t, []int64{1, 2, 3}, []int64{got.Elements[0].AsInt(), got.Elements[1].AsInt(), got.Elements[2].AsInt()})

	_, err = call(t, mod, "get", list, object.Int(99))
	require.Error(t, err)
}

func TestOsModule(t *testing.T) {
	l, heap, _ := newLoader(t, "")
	l.Getenv = func(string) string { return "value" }
	mod, err := l.Load("os")
	require.NoError(t, err)

	v, err := call(t, mod, "getenv", object.FromObj(heap.AllocateString("ANYTHING")))
	require.NoError(t, err)
	assert.Equal(t, "value", v.AsString().Chars)

	v, err = call(t, mod, "args")
	require.NoError(t, err)
	_, ok := v.AsObj().(*object.ObjList)
	assert.True(t, ok)
}

func TestRandomModule(t *testing.T) {
	l, _, _ := newLoader(t, "")
	mod, err := l.Load("random")
	require.NoError(t, err)

	_, err = call(t, mod, "seed", object.Int(42))
	require.NoError(t, err)

	v, err := call(t, mod, "int", object.Int(0), object.Int(10))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v.AsInt(), int64(0))
	assert.Less(t, v.AsInt(), int64(10))

	v, err = call(t, mod, "float")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v.AsDouble(), 0.0)
	assert.Less(t, v.AsDouble(), 1.0)
}

func TestTypeConversionModule(t *testing.T) {
	l, heap, _ := newLoader(t, "")
	mod, err := l.Load("to")
	require.NoError(t, err)

	v, err := call(t, mod, "int", object.FromObj(heap.AllocateString("42")))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.AsInt())

	v, err = call(t, mod, "double", object.Int(3))
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.AsDouble())

	v, err = call(t, mod, "string", object.Int(7))
	require.NoError(t, err)
	assert.Equal(t, "7", v.AsString().Chars)

	v, err = call(t, mod, "bool", object.Int(0))
	require.NoError(t, err)
	assert.True(t, v.AsBool(), "only nil and false are falsey")
}

func TestConsoleModule(t *testing.T) {
	l, _, out := newLoader(t, "typed input\n")
	mod, err := l.Load("console")
	require.NoError(t, err)

	_, err = call(t, mod, "write", object.Int(1))
	require.NoError(t, err)
	_, err = call(t, mod, "writeline", object.Int(2))
	require.NoError(t, err)
	assert.Equal(t, "12\n", out.String())

	v, err := call(t, mod, "read")
	require.NoError(t, err)
	assert.Equal(t, "typed input", v.AsString().Chars)
}

func TestSysModule(t *testing.T) {
	l, _, _ := newLoader(t, "")
	mod, err := l.Load("sys")
	require.NoError(t, err)

	v, err := call(t, mod, "version")
	require.NoError(t, err)
	assert.Equal(t, natives.Version, v.AsString().Chars)

	v, err = call(t, mod, "platform")
	require.NoError(t, err)
	assert.NotEmpty(t, v.AsString().Chars)
}

func TestFileIOModuleIsUnavailable(t *testing.T) {
	l, _, _ := newLoader(t, "")
	mod, err := l.Load("file_io")
	require.NoError(t, err)

	_, err = call(t, mod, "open")
	require.Error(t, err)
	assert.True(t, errors.Is(err, natives.ErrModuleNotFound))
}

func TestLoadUnknownModule(t *testing.T) {
	l, _, _ := newLoader(t, "")
	_, err := l.Load("nope")
	require.Error(t, err)
}
