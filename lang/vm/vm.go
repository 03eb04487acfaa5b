// Package vm implements the stack-based virtual machine: a value stack, a
// stack of call frames (one per live closure invocation), open upvalue
// tracking, and the bytecode interpreter loop dispatching every opcode the
// compiler emits.
package vm

import (
	"fmt"
	"io"
	"math"

	"github.com/dolthub/swiss"

	"github.com/mna/hypl/lang/object"
)

// maxFrames and maxStack bound recursion and expression depth: the stack
// never exceeds maxFrames*maxLocalsPerFrame slots, frames never exceed
// maxFrames.
const (
	maxFrames          = 64
	maxLocalsPerFrame  = 256
	maxStack           = maxFrames * maxLocalsPerFrame
)

// CallFrame is one live invocation of a closure: its return address (ip
// into its own chunk) and the base stack slot its locals start at.
type CallFrame struct {
	closure   *object.ObjClosure
	ip        int
	slotsBase int
}

// StdLoader resolves the native bindings a `import std <name>;` statement
// installs into the globals table, keyed by the bare symbol name (without
// the "name:" namespace prefix the VM adds itself).
type StdLoader func(name string) (map[string]object.NativeFn, error)

// VM is the interpreter: one value stack, one frame stack, one globals
// table, one open-upvalue chain, all owned by a single goroutine. It is not
// safe for concurrent use, matching the language's single-threaded,
// cooperative execution model.
type VM struct {
	heap *object.Heap

	// stack is a fixed-size array, never reallocated: open upvalues hold a
	// *Value pointing directly into it, and a growing slice would invalidate
	// every such pointer on reallocation.
	stack    [maxStack]object.Value
	stackTop int
	frames   []CallFrame

	globals *swiss.Map[*object.ObjString, object.Value]

	openUpvalues *object.ObjUpvalue // sorted by descending slot address
	initString   *object.ObjString

	Stdout io.Writer
	Stderr io.Writer

	// StdLoader, if set, resolves `import std` module names to their native
	// function tables; nil makes every `import std` a runtime error.
	StdLoader StdLoader

	// Trace, if set, is called immediately before every instruction is
	// executed, letting an external collaborator (internal/debug) render an
	// execution trace without this package depending on it.
	Trace func(chunk *object.Chunk, ip int, stack []object.Value, frameDepth int)
}

// New returns a VM with an empty stack and globals table, ready to
// Interpret a compiled script.
func New(heap *object.Heap, stdout, stderr io.Writer) *VM {
	vm := &VM{
		heap:    heap,
		frames:  make([]CallFrame, 0, maxFrames),
		globals: swiss.NewMap[*object.ObjString, object.Value](64),
		Stdout:  stdout,
		Stderr:  stderr,
	}
	vm.initString = heap.AllocateString("init")
	heap.AddRoot(vm)
	return vm
}

// MarkRoots implements object.RootMarker.
func (vm *VM) MarkRoots(mark func(object.Value)) {
	for i := 0; i < vm.stackTop; i++ {
		mark(vm.stack[i])
	}
	for i := range vm.frames {
		mark(object.FromObj(vm.frames[i].closure))
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.Next {
		mark(object.FromObj(uv))
	}
	vm.globals.Iter(func(k *object.ObjString, v object.Value) bool {
		mark(object.FromObj(k))
		mark(v)
		return false
	})
	if vm.initString != nil {
		mark(object.FromObj(vm.initString))
	}
}

// DefineGlobal binds name to v in the globals table, for natives installers
// and the host program (e.g. command-line arguments) to seed bindings
// before a script runs.
func (vm *VM) DefineGlobal(name string, v object.Value) {
	key := vm.heap.AllocateString(name)
	vm.globals.Put(key, v)
}

// DefineNative wraps fn as an ObjNative and binds it to name.
func (vm *VM) DefineNative(name string, fn object.NativeFn) {
	n := vm.heap.AllocateNative(name, fn)
	vm.DefineGlobal(name, object.FromObj(n))
}

func (vm *VM) push(v object.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() object.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) object.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frames = vm.frames[:0]
	vm.openUpvalues = nil
}

// Interpret wraps fn (the top-level script, as returned by
// compiler.Compile) in a closure and runs it to completion. It returns the
// top-level function's return value, which is always Nil: a script cannot
// `return`, so it ends with the implicit NIL+RETURN.
func (vm *VM) Interpret(fn *object.ObjFunction) (object.Value, error) {
	closure := vm.heap.AllocateClosure(fn)
	vm.push(object.FromObj(closure))
	if err := vm.call(closure, 0); err != nil {
		return object.Nil, err
	}
	v, err := vm.run()
	if err != nil {
		vm.resetStack()
		return object.Nil, err
	}
	return v, nil
}

func (vm *VM) currentFrame() *CallFrame { return &vm.frames[len(vm.frames)-1] }

func (vm *VM) readByte(fr *CallFrame) byte {
	b := fr.closure.Function.Chunk.Code[fr.ip]
	fr.ip++
	return b
}

func (vm *VM) readOp(fr *CallFrame) object.OpCode { return object.OpCode(vm.readByte(fr)) }

func (vm *VM) readShort(fr *CallFrame) uint16 {
	hi := vm.readByte(fr)
	lo := vm.readByte(fr)
	return uint16(hi)<<8 | uint16(lo)
}

func (vm *VM) readConstant(fr *CallFrame) object.Value {
	idx := vm.readByte(fr)
	return fr.closure.Function.Chunk.Constants[idx]
}

func (vm *VM) readString(fr *CallFrame) *object.ObjString {
	return vm.readConstant(fr).AsString()
}

// run executes instructions from the current (topmost) frame until the
// frame stack empties (the outermost script returns) or a runtime error
// occurs.
func (vm *VM) run() (object.Value, error) {
	baseDepth := len(vm.frames)
	for {
		fr := vm.currentFrame()

		if vm.Trace != nil {
			vm.Trace(&fr.closure.Function.Chunk, fr.ip, vm.stack[:vm.stackTop], len(vm.frames))
		}

		op := vm.readOp(fr)
		switch op {
		case object.OpConstant:
			vm.push(vm.readConstant(fr))

		case object.OpNil:
			vm.push(object.Nil)
		case object.OpTrue:
			vm.push(object.Bool(true))
		case object.OpFalse:
			vm.push(object.Bool(false))
		case object.OpPop:
			vm.pop()

		case object.OpGetLocal:
			slot := vm.readByte(fr)
			vm.push(vm.stack[fr.slotsBase+int(slot)])
		case object.OpSetLocal:
			slot := vm.readByte(fr)
			vm.stack[fr.slotsBase+int(slot)] = vm.peek(0)

		case object.OpGetGlobal:
			name := vm.readString(fr)
			v, ok := vm.globals.Get(name)
			if !ok {
				return object.Nil, vm.runtimeError("undefined variable '%s'", name.Chars)
			}
			vm.push(v)
		case object.OpDefineGlobal:
			name := vm.readString(fr)
			vm.globals.Put(name, vm.pop())
		case object.OpSetGlobal:
			name := vm.readString(fr)
			if !vm.globals.Has(name) {
				return object.Nil, vm.runtimeError("undefined variable '%s'", name.Chars)
			}
			vm.globals.Put(name, vm.peek(0))

		case object.OpGetUpvalue:
			slot := vm.readByte(fr)
			vm.push(fr.closure.Upvalues[slot].Get())
		case object.OpSetUpvalue:
			slot := vm.readByte(fr)
			fr.closure.Upvalues[slot].Set(vm.peek(0))
		case object.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case object.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(object.Bool(object.Equal(a, b)))
		case object.OpGreater:
			if err := vm.comparison(func(a, b float64) bool { return a > b }); err != nil {
				return object.Nil, err
			}
		case object.OpLess:
			if err := vm.comparison(func(a, b float64) bool { return a < b }); err != nil {
				return object.Nil, err
			}

		case object.OpAdd:
			if err := vm.add(); err != nil {
				return object.Nil, err
			}
		case object.OpSubtract:
			if err := vm.arithmetic(func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b }); err != nil {
				return object.Nil, err
			}
		case object.OpMultiply:
			if err := vm.arithmetic(func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b }); err != nil {
				return object.Nil, err
			}
		case object.OpDivide:
			if err := vm.divide(); err != nil {
				return object.Nil, err
			}
		case object.OpModulo:
			if err := vm.modulo(); err != nil {
				return object.Nil, err
			}
		case object.OpPower:
			if err := vm.power(); err != nil {
				return object.Nil, err
			}

		case object.OpNot:
			vm.push(object.Bool(vm.pop().Falsey()))
		case object.OpNegate:
			if !vm.peek(0).IsNumber() {
				return object.Nil, vm.runtimeError("operand must be a number")
			}
			v := vm.pop()
			if v.IsInt() {
				vm.push(object.Int(-v.AsInt()))
			} else {
				vm.push(object.Double(-v.AsDouble()))
			}

		case object.OpPrint:
			fmt.Fprintln(vm.Stdout, vm.pop().String())
		case object.OpPrintNoLine:
			fmt.Fprint(vm.Stdout, vm.pop().String())

		case object.OpJump:
			offset := vm.readShort(fr)
			fr.ip += int(offset)
		case object.OpJumpIfFalse:
			offset := vm.readShort(fr)
			if vm.peek(0).Falsey() {
				fr.ip += int(offset)
			}
		case object.OpLoop:
			offset := vm.readShort(fr)
			fr.ip -= int(offset)

		case object.OpCall:
			argc := int(vm.readByte(fr))
			if err := vm.callValue(vm.peek(argc), argc); err != nil {
				return object.Nil, err
			}

		case object.OpInvoke:
			name := vm.readString(fr)
			argc := int(vm.readByte(fr))
			if err := vm.invoke(name, argc); err != nil {
				return object.Nil, err
			}

		case object.OpClosure:
			fn := vm.readConstant(fr).AsObj().(*object.ObjFunction)
			closure := vm.heap.AllocateClosure(fn)
			vm.push(object.FromObj(closure))
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := vm.readByte(fr)
				index := vm.readByte(fr)
				if isLocal == 1 {
					closure.Upvalues[i] = vm.captureUpvalue(fr.slotsBase + int(index))
				} else {
					closure.Upvalues[i] = fr.closure.Upvalues[index]
				}
			}

		case object.OpReturn:
			result := vm.pop()
			returningFrame := *fr
			vm.closeUpvalues(returningFrame.slotsBase)
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.stackTop = returningFrame.slotsBase
			if len(vm.frames) < baseDepth {
				return result, nil
			}
			vm.push(result)

		case object.OpClass:
			name := vm.readString(fr)
			vm.push(object.FromObj(vm.heap.AllocateClass(name)))
		case object.OpMethod:
			vm.defineMethod(vm.readString(fr))

		case object.OpGetProperty:
			if err := vm.getProperty(vm.readString(fr)); err != nil {
				return object.Nil, err
			}
		case object.OpSetProperty:
			if err := vm.setProperty(vm.readString(fr)); err != nil {
				return object.Nil, err
			}

		case object.OpBuildList:
			n := int(vm.readByte(fr))
			elems := make([]object.Value, n)
			copy(elems, vm.stack[vm.stackTop-n:vm.stackTop])
			vm.stackTop -= n
			vm.push(object.FromObj(vm.heap.AllocateList(elems)))
		case object.OpIndexSubscr:
			if err := vm.indexSubscr(); err != nil {
				return object.Nil, err
			}
		case object.OpStoreSubscr:
			if err := vm.storeSubscr(); err != nil {
				return object.Nil, err
			}

		case object.OpImportStd:
			if err := vm.importStd(vm.readString(fr)); err != nil {
				return object.Nil, err
			}
		case object.OpImportModule:
			return object.Nil, vm.runtimeError("OP_IMPORT_MODULE is not emitted by this compiler")

		default:
			return object.Nil, vm.runtimeError("unknown opcode %v", op)
		}
	}
}

func (vm *VM) comparison(cmp func(a, b float64) bool) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("operands must be numbers")
	}
	b := vm.pop()
	a := vm.pop()
	vm.push(object.Bool(cmp(a.AsFloat64(), b.AsFloat64())))
	return nil
}

// add implements OP_ADD's dual role: numeric addition (with Int/Double
// promotion) and string concatenation, examined via peek before either
// operand is popped so a GC triggered by AllocateString during
// concatenation still finds both operands reachable on the stack.
func (vm *VM) add() error {
	if vm.peek(0).IsString() && vm.peek(1).IsString() {
		b := vm.peek(0).AsString()
		a := vm.peek(1).AsString()
		result := vm.heap.AllocateString(a.Chars + b.Chars)
		vm.pop()
		vm.pop()
		vm.push(object.FromObj(result))
		return nil
	}
	return vm.arithmetic(func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
}

func (vm *VM) arithmetic(intOp func(a, b int64) int64, floatOp func(a, b float64) float64) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("operands must be numbers")
	}
	b := vm.pop()
	a := vm.pop()
	if a.IsInt() && b.IsInt() {
		vm.push(object.Int(intOp(a.AsInt(), b.AsInt())))
		return nil
	}
	vm.push(object.Double(floatOp(a.AsFloat64(), b.AsFloat64())))
	return nil
}

func (vm *VM) divide() error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("operands must be numbers")
	}
	b := vm.pop()
	a := vm.pop()
	if a.IsInt() && b.IsInt() {
		if b.AsInt() == 0 {
			return vm.runtimeError("integer division by zero")
		}
		vm.push(object.Int(a.AsInt() / b.AsInt()))
		return nil
	}
	vm.push(object.Double(a.AsFloat64() / b.AsFloat64()))
	return nil
}

func (vm *VM) modulo() error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("operands must be numbers")
	}
	b := vm.pop()
	a := vm.pop()
	if a.IsInt() && b.IsInt() {
		if b.AsInt() == 0 {
			return vm.runtimeError("integer modulo by zero")
		}
		vm.push(object.Int(a.AsInt() % b.AsInt()))
		return nil
	}
	vm.push(object.Double(math.Mod(a.AsFloat64(), b.AsFloat64())))
	return nil
}

func (vm *VM) power() error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("operands must be numbers")
	}
	b := vm.pop()
	a := vm.pop()
	if a.IsInt() && b.IsInt() {
		if b.AsInt() < 0 {
			return vm.runtimeError("integer power requires a non-negative exponent")
		}
		var result int64 = 1
		base, exp := a.AsInt(), b.AsInt()
		for i := int64(0); i < exp; i++ {
			result *= base
		}
		vm.push(object.Int(result))
		return nil
	}
	vm.push(object.Double(math.Pow(a.AsFloat64(), b.AsFloat64())))
	return nil
}
