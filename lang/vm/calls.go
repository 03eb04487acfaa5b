package vm

import (
	"unsafe"

	"github.com/mna/hypl/lang/object"
)

// callValue dispatches a call to whatever callee turns out to be: a
// closure, a native function, a class (construction), or a bound method.
func (vm *VM) callValue(callee object.Value, argCount int) error {
	if !callee.IsObj() {
		return vm.runtimeError("can only call functions and classes")
	}

	switch o := callee.AsObj().(type) {
	case *object.ObjClosure:
		return vm.call(o, argCount)

	case *object.ObjNative:
		args := vm.stack[vm.stackTop-argCount : vm.stackTop]
		result, err := o.Fn(args)
		if err != nil {
			return vm.runtimeError("%s", err.Error())
		}
		vm.stackTop -= argCount + 1
		vm.push(result)
		return nil

	case *object.ObjClass:
		instance := vm.heap.AllocateInstance(o)
		vm.stack[vm.stackTop-argCount-1] = object.FromObj(instance)
		if initializer, ok := o.Methods.Get(vm.initString); ok {
			return vm.call(initializer.AsObj().(*object.ObjClosure), argCount)
		}
		if argCount != 0 {
			return vm.runtimeError("expected 0 arguments but got %d", argCount)
		}
		return nil

	case *object.ObjBoundMethod:
		vm.stack[vm.stackTop-argCount-1] = o.Receiver
		return vm.call(o.Method, argCount)

	default:
		return vm.runtimeError("can only call functions and classes")
	}
}

// call pushes a new CallFrame for closure, verifying its arity first.
func (vm *VM) call(closure *object.ObjClosure, argCount int) error {
	if argCount != closure.Function.Arity {
		return vm.runtimeError("expected %d arguments but got %d", closure.Function.Arity, argCount)
	}
	if len(vm.frames) >= maxFrames {
		return vm.runtimeError("stack overflow")
	}
	vm.frames = append(vm.frames, CallFrame{
		closure:   closure,
		slotsBase: vm.stackTop - argCount - 1,
	})
	return nil
}

// invoke implements the OP_INVOKE fast path: `receiver.name(args)` without
// materializing an intermediate BoundMethod, by resolving the instance,
// checking its field table first (a field can shadow a method), then
// falling back to the class method table.
func (vm *VM) invoke(name *object.ObjString, argCount int) error {
	receiver := vm.peek(argCount)
	if !receiver.IsObj() {
		return vm.runtimeError("only instances have methods")
	}
	instance, ok := receiver.AsObj().(*object.ObjInstance)
	if !ok {
		return vm.runtimeError("only instances have methods")
	}

	if field, ok := instance.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argCount-1] = field
		return vm.callValue(field, argCount)
	}

	return vm.invokeFromClass(instance.Class, name, argCount)
}

func (vm *VM) invokeFromClass(class *object.ObjClass, name *object.ObjString, argCount int) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError("undefined property '%s'", name.Chars)
	}
	return vm.call(method.AsObj().(*object.ObjClosure), argCount)
}

// bindMethod looks up name on class and, if found, wraps it with receiver
// into a BoundMethod.
func (vm *VM) bindMethod(class *object.ObjClass, receiver object.Value, name *object.ObjString) (object.Value, bool) {
	method, ok := class.Methods.Get(name)
	if !ok {
		return object.Nil, false
	}
	bound := vm.heap.AllocateBoundMethod(receiver, method.AsObj().(*object.ObjClosure))
	return object.FromObj(bound), true
}

func (vm *VM) defineMethod(name *object.ObjString) {
	method := vm.pop()
	class := vm.peek(0).AsObj().(*object.ObjClass)
	class.Methods.Set(name, method)
}

// captureUpvalue returns the existing open upvalue for the stack slot at
// absoluteIndex, or creates one, inserting into the open-upvalue list kept
// sorted by descending slot address.
func (vm *VM) captureUpvalue(absoluteIndex int) *object.ObjUpvalue {
	var prev *object.ObjUpvalue
	cur := vm.openUpvalues
	for cur != nil && vm.slotIndex(cur.Location) > absoluteIndex {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && vm.slotIndex(cur.Location) == absoluteIndex {
		return cur
	}

	created := vm.heap.AllocateUpvalue(&vm.stack[absoluteIndex])
	created.Next = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// slotIndex recovers the stack index of a pointer into vm.stack. Safe only
// because the stack is a fixed array that is never reallocated.
func (vm *VM) slotIndex(loc *object.Value) int {
	base := unsafe.Pointer(&vm.stack[0])
	return int((uintptr(unsafe.Pointer(loc)) - uintptr(base)) / unsafe.Sizeof(object.Value{}))
}

// closeUpvalues closes every open upvalue whose stack slot is at or above
// fromIndex, copying each one's value out of the stack before it is
// discarded by a scope exit or return.
func (vm *VM) closeUpvalues(fromIndex int) {
	for vm.openUpvalues != nil && vm.slotIndex(vm.openUpvalues.Location) >= fromIndex {
		uv := vm.openUpvalues
		uv.Close()
		vm.openUpvalues = uv.Next
	}
}
