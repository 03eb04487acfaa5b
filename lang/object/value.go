// Package object implements the heap-managed value model shared by the
// compiler and the virtual machine: the tagged Value union, the Obj
// variants (string, function, closure, upvalue, class, instance, bound
// method, list, native), the bytecode Chunk container, the open-addressed
// Table, and the tracing garbage collector (Heap).
//
// It is deliberately the lowest package in the module's dependency graph:
// both lang/compiler and lang/vm import it, and it imports neither, so the
// compiler can allocate interned strings and function objects on the same
// Heap the VM later runs against.
package object

import (
	"fmt"
	"math"
)

// Kind identifies which alternative of the Value tagged union is active.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindDouble
	KindObj
)

// Value is a tagged sum over boolean, 64-bit integer, 64-bit float, nil, and
// heap object reference. It is always passed and returned by value: a Value
// is cheap to copy, and the only heap indirection is through Obj.
type Value struct {
	kind Kind
	b    bool
	i    int64
	d    float64
	obj  Obj
}

var Nil = Value{kind: KindNil}

func Bool(b bool) Value   { return Value{kind: KindBool, b: b} }
func Int(i int64) Value   { return Value{kind: KindInt, i: i} }
func Double(d float64) Value { return Value{kind: KindDouble, d: d} }
func FromObj(o Obj) Value { return Value{kind: KindObj, obj: o} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNil() bool  { return v.kind == KindNil }
func (v Value) IsBool() bool { return v.kind == KindBool }
func (v Value) IsInt() bool  { return v.kind == KindInt }
func (v Value) IsDouble() bool { return v.kind == KindDouble }
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindDouble }
func (v Value) IsObj() bool  { return v.kind == KindObj }

func (v Value) AsBool() bool   { return v.b }
func (v Value) AsInt() int64   { return v.i }
func (v Value) AsDouble() float64 { return v.d }
func (v Value) AsObj() Obj     { return v.obj }

// AsFloat64 widens an Int or Double value to float64, for arithmetic that
// needs to promote to the double representation.
func (v Value) AsFloat64() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.d
}

// IsString reports whether the value is a heap string.
func (v Value) IsString() bool {
	if v.kind != KindObj {
		return false
	}
	_, ok := v.obj.(*ObjString)
	return ok
}

func (v Value) AsString() *ObjString { return v.obj.(*ObjString) }

// Falsey reports whether the value is considered false in a boolean
// context: only Nil and Bool(false) are falsey.
func (v Value) Falsey() bool {
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return !v.b
	default:
		return false
	}
}

// Equal implements the Value equality used by OP_EQUAL: same tag required;
// Obj equality is identity (sufficient for strings, since they are
// interned).
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindDouble:
		return a.d == b.d
	case KindObj:
		return a.obj == b.obj
	}
	return false
}

// String renders the value the way the `print` statement does.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindDouble:
		if math.IsInf(v.d, 1) {
			return "inf"
		}
		if math.IsInf(v.d, -1) {
			return "-inf"
		}
		return fmt.Sprintf("%g", v.d)
	case KindObj:
		return v.obj.String()
	}
	return "<invalid value>"
}

// TypeName returns the short type name used in runtime type-mismatch errors.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindObj:
		return v.obj.typeName()
	}
	return "invalid"
}
