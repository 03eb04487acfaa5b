package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mna/hypl/lang/object"
)

func TestObjFunctionString(t *testing.T) {
	heap := object.NewHeap()
	fn := heap.AllocateFunction()
	assert.Equal(t, "<script>", fn.String())

	fn.Name = heap.AllocateString("greet")
	assert.Equal(t, "<fn greet>", fn.String())
	assert.Equal(t, "function", object.FromObj(fn).TypeName())
}

func TestObjUpvalueOpenClosed(t *testing.T) {
	heap := object.NewHeap()
	slot := object.Int(1)
	uv := heap.AllocateUpvalue(&slot)

	assert.True(t, uv.IsOpen())
	assert.Equal(t, int64(1), uv.Get().AsInt())

	slot = object.Int(2)
	assert.Equal(t, int64(2), uv.Get().AsInt(), "open upvalue reads through to the live slot")

	uv.Set(object.Int(3))
	assert.Equal(t, int64(3), slot.AsInt(), "open upvalue writes through to the live slot")

	uv.Close()
	assert.False(t, uv.IsOpen())
	assert.Equal(t, int64(3), uv.Get().AsInt())

	uv.Set(object.Int(4))
	assert.Equal(t, int64(4), uv.Get().AsInt())
	assert.Equal(t, int64(3), slot.AsInt(), "closed upvalue no longer writes through")
}

func TestObjClosureName(t *testing.T) {
	heap := object.NewHeap()
	fn := heap.AllocateFunction()
	closure := heap.AllocateClosure(fn)
	assert.Equal(t, "script", closure.Name())

	fn.Name = heap.AllocateString("f")
	assert.Equal(t, "f", closure.Name())
}

func TestObjClassInstanceBoundMethodStrings(t *testing.T) {
	heap := object.NewHeap()
	className := heap.AllocateString("Point")
	class := heap.AllocateClass(className)
	assert.Equal(t, "<class Point>", class.String())

	inst := heap.AllocateInstance(class)
	assert.Equal(t, "<Point instance>", inst.String())
	assert.Equal(t, "instance", object.FromObj(inst).TypeName())

	fn := heap.AllocateFunction()
	fn.Name = heap.AllocateString("sum")
	method := heap.AllocateClosure(fn)
	bound := heap.AllocateBoundMethod(object.FromObj(inst), method)
	assert.Equal(t, "<fn sum>", bound.String())
	assert.Equal(t, "bound method", object.FromObj(bound).TypeName())
}

func TestObjListString(t *testing.T) {
	heap := object.NewHeap()
	list := heap.AllocateList([]object.Value{object.Int(1), object.Int(2), object.Int(3)})
	assert.Equal(t, "[1, 2, 3]", list.String())
	assert.Equal(t, "list", object.FromObj(list).TypeName())

	empty := heap.AllocateList(nil)
	assert.Equal(t, "[]", empty.String())
}
