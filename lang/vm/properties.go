package vm

import "github.com/mna/hypl/lang/object"

// getProperty implements OP_GET_PROPERTY: receiver.name. An instance field
// takes priority over a method of the same name; a matching method is
// always materialized as a BoundMethod, never left as a bare closure, so
// `let m = obj.method; m();` keeps working after the instance is gone from
// the expression stack.
func (vm *VM) getProperty(name *object.ObjString) error {
	receiver := vm.peek(0)
	if !receiver.IsObj() {
		return vm.runtimeError("only instances have properties")
	}
	instance, ok := receiver.AsObj().(*object.ObjInstance)
	if !ok {
		return vm.runtimeError("only instances have properties")
	}

	if field, ok := instance.Fields.Get(name); ok {
		vm.pop()
		vm.push(field)
		return nil
	}

	bound, ok := vm.bindMethod(instance.Class, receiver, name)
	if !ok {
		return vm.runtimeError("undefined property '%s'", name.Chars)
	}
	vm.pop()
	vm.push(bound)
	return nil
}

// setProperty implements OP_SET_PROPERTY: receiver.name = value. Unlike
// getProperty, there is no method fallback: setting a property always
// writes (or creates) an instance field.
func (vm *VM) setProperty(name *object.ObjString) error {
	receiver := vm.peek(1)
	if !receiver.IsObj() {
		return vm.runtimeError("only instances have properties")
	}
	instance, ok := receiver.AsObj().(*object.ObjInstance)
	if !ok {
		return vm.runtimeError("only instances have properties")
	}

	value := vm.peek(0)
	instance.Fields.Set(name, value)

	vm.pop()
	vm.pop()
	vm.push(value)
	return nil
}

// indexSubscr implements OP_INDEX_SUBSCR: list[index].
func (vm *VM) indexSubscr() error {
	idx := vm.pop()
	recv := vm.pop()

	list, ok := recv.AsObj().(*object.ObjList)
	if !recv.IsObj() || !ok {
		return vm.runtimeError("only lists support indexing")
	}
	if !idx.IsInt() {
		return vm.runtimeError("list index must be an integer")
	}
	i := idx.AsInt()
	if i < 0 || i >= int64(len(list.Elements)) {
		return vm.runtimeError("list index %d out of range (length %d)", i, len(list.Elements))
	}
	vm.push(list.Elements[i])
	return nil
}

// storeSubscr implements OP_STORE_SUBSCR: list[index] = value, leaving
// value on the stack as the expression's result.
func (vm *VM) storeSubscr() error {
	value := vm.pop()
	idx := vm.pop()
	recv := vm.pop()

	list, ok := recv.AsObj().(*object.ObjList)
	if !recv.IsObj() || !ok {
		return vm.runtimeError("only lists support indexed assignment")
	}
	if !idx.IsInt() {
		return vm.runtimeError("list index must be an integer")
	}
	i := idx.AsInt()
	if i < 0 || i >= int64(len(list.Elements)) {
		return vm.runtimeError("list index %d out of range (length %d)", i, len(list.Elements))
	}
	list.Elements[i] = value
	vm.push(value)
	return nil
}
