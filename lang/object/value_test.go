package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mna/hypl/lang/object"
)

func TestValueKindsAndAccessors(t *testing.T) {
	assert.True(t, object.Nil.IsNil())
	assert.True(t, object.Bool(true).IsBool())
	assert.True(t, object.Int(7).IsInt())
	assert.True(t, object.Double(1.5).IsDouble())
	assert.True(t, object.Int(1).IsNumber())
	assert.True(t, object.Double(1).IsNumber())
	assert.False(t, object.Nil.IsNumber())

	assert.Equal(t, int64(7), object.Int(7).AsInt())
	assert.Equal(t, 1.5, object.Double(1.5).AsDouble())
	assert.True(t, object.Bool(true).AsBool())
}

func TestValueAsFloat64Widens(t *testing.T) {
	assert.Equal(t, 3.0, object.Int(3).AsFloat64())
	assert.Equal(t, 3.5, object.Double(3.5).AsFloat64())
}

func TestValueFalsey(t *testing.T) {
	assert.True(t, object.Nil.Falsey())
	assert.True(t, object.Bool(false).Falsey())
	assert.False(t, object.Bool(true).Falsey())
	assert.False(t, object.Int(0).Falsey())
	assert.False(t, object.Double(0).Falsey())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, object.Equal(object.Nil, object.Nil))
	assert.True(t, object.Equal(object.Int(1), object.Int(1)))
	assert.False(t, object.Equal(object.Int(1), object.Double(1)))
	assert.True(t, object.Equal(object.Bool(true), object.Bool(true)))
	assert.False(t, object.Equal(object.Bool(true), object.Bool(false)))

	heap := object.NewHeap()
	a := heap.AllocateString("same")
	b := heap.AllocateString("same")
	assert.Same(t, a, b, "interning should return the same ObjString for equal contents")
	assert.True(t, object.Equal(object.FromObj(a), object.FromObj(b)))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "nil", object.Nil.String())
	assert.Equal(t, "true", object.Bool(true).String())
	assert.Equal(t, "false", object.Bool(false).String())
	assert.Equal(t, "42", object.Int(42).String())
	assert.Equal(t, "1.5", object.Double(1.5).String())

	heap := object.NewHeap()
	s := heap.AllocateString("hi")
	assert.Equal(t, "hi", object.FromObj(s).String())
}

func TestValueTypeName(t *testing.T) {
	assert.Equal(t, "nil", object.Nil.TypeName())
	assert.Equal(t, "bool", object.Bool(true).TypeName())
	assert.Equal(t, "int", object.Int(1).TypeName())
	assert.Equal(t, "double", object.Double(1).TypeName())

	heap := object.NewHeap()
	s := heap.AllocateString("x")
	assert.Equal(t, "string", object.FromObj(s).TypeName())
}
