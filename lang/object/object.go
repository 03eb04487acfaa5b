package object

import "fmt"

// ObjType tags the concrete variant of a heap Obj: a closed sum type (a
// type byte plus variant-specific payload, not
// inheritance-based dispatch).
type ObjType uint8

const (
	ObjTypeString ObjType = iota
	ObjTypeFunction
	ObjTypeNative
	ObjTypeClosure
	ObjTypeUpvalue
	ObjTypeClass
	ObjTypeInstance
	ObjTypeBoundMethod
	ObjTypeList
)

// Obj is implemented by every heap-managed object. It is a closed set
// (see ObjType); the GC and interpreter switch exhaustively over it.
type Obj interface {
	fmt.Stringer
	objType() ObjType
	typeName() string
	header() *objHeader
}

// objHeader is embedded in every Obj variant. It carries the GC mark bit
// and the intrusive "all objects" linked-list pointer; the Heap is the sole
// owner and deallocator of objects reachable through it.
type objHeader struct {
	marked bool
	next   Obj
}

func (h *objHeader) header() *objHeader { return h }

// ObjString is an immutable byte buffer with a precomputed FNV-1a hash.
// All live strings are unique under byte-wise equality: the Heap's intern
// table guarantees it, so Obj identity suffices for string equality.
type ObjString struct {
	objHeader
	Chars string
	Hash  uint32
}

func (s *ObjString) objType() ObjType { return ObjTypeString }
func (s *ObjString) typeName() string { return "string" }
func (s *ObjString) String() string   { return s.Chars }

// FNV1a32 computes the 32-bit FNV-1a hash used to key interned strings and
// table entries.
func FNV1a32(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// ObjFunction is the compiled form of a function: its arity, the number of
// upvalues its closures must capture, the Chunk the compiler filled, and
// an optional name (nil for the implicit top-level script function).
type ObjFunction struct {
	objHeader
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         *ObjString
}

func (f *ObjFunction) objType() ObjType { return ObjTypeFunction }
func (f *ObjFunction) typeName() string { return "function" }
func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// NativeFn is the native ABI: it receives its positional arguments and
// returns a Value or an error. It must be synchronous and must not
// re-enter the VM loop.
type NativeFn func(args []Value) (Value, error)

// ObjNative wraps a native Go callable, registered into the globals table
// under a namespaced name such as "math:floor".
type ObjNative struct {
	objHeader
	NativeName string
	Fn         NativeFn
}

func (n *ObjNative) objType() ObjType { return ObjTypeNative }
func (n *ObjNative) typeName() string { return "native" }
func (n *ObjNative) String() string   { return fmt.Sprintf("<native %s>", n.NativeName) }

// ObjUpvalue is either open (Location points into a live stack slot) or
// closed (it owns Closed after the enclosing frame returned). Open
// upvalues form a singly-linked list, by convention sorted by descending
// target stack address, via Next.
type ObjUpvalue struct {
	objHeader
	Location *Value // non-nil while open; points into the VM value stack
	Closed   Value
	Next     *ObjUpvalue
}

func (u *ObjUpvalue) objType() ObjType { return ObjTypeUpvalue }
func (u *ObjUpvalue) typeName() string { return "upvalue" }
func (u *ObjUpvalue) String() string   { return "<upvalue>" }

// IsOpen reports whether the upvalue still aliases a stack slot.
func (u *ObjUpvalue) IsOpen() bool { return u.Location != nil }

// Get returns the upvalue's current value, open or closed.
func (u *ObjUpvalue) Get() Value {
	if u.Location != nil {
		return *u.Location
	}
	return u.Closed
}

// Set writes through to the aliased stack slot (if open) or to the closed
// cell (if closed).
func (u *ObjUpvalue) Set(v Value) {
	if u.Location != nil {
		*u.Location = v
		return
	}
	u.Closed = v
}

// Close copies the aliased slot's value into the cell and severs the link
// to the stack; it is idempotent only once by construction (callers must
// not close an already-closed upvalue).
func (u *ObjUpvalue) Close() {
	u.Closed = *u.Location
	u.Location = nil
}

// ObjClosure packages an ObjFunction with the upvalues its body captured.
type ObjClosure struct {
	objHeader
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func (c *ObjClosure) objType() ObjType { return ObjTypeClosure }
func (c *ObjClosure) typeName() string { return "closure" }
func (c *ObjClosure) String() string   { return c.Function.String() }

// Name returns the closure's function name, or "script" for the implicit
// top-level closure.
func (c *ObjClosure) Name() string {
	if c.Function.Name == nil {
		return "script"
	}
	return c.Function.Name.Chars
}

// ObjClass is a named method table (name -> *ObjClosure).
type ObjClass struct {
	objHeader
	Name    *ObjString
	Methods *Table
}

func (c *ObjClass) objType() ObjType { return ObjTypeClass }
func (c *ObjClass) typeName() string { return "class" }
func (c *ObjClass) String() string   { return fmt.Sprintf("<class %s>", c.Name.Chars) }

// ObjInstance is a reference to a class plus a field table (name -> Value).
type ObjInstance struct {
	objHeader
	Class  *ObjClass
	Fields *Table
}

func (i *ObjInstance) objType() ObjType { return ObjTypeInstance }
func (i *ObjInstance) typeName() string { return "instance" }
func (i *ObjInstance) String() string   { return fmt.Sprintf("<%s instance>", i.Class.Name.Chars) }

// ObjBoundMethod binds a method closure to a specific receiver so it can
// be called without the receiver occupying the call's argument slots.
type ObjBoundMethod struct {
	objHeader
	Receiver Value
	Method   *ObjClosure
}

func (b *ObjBoundMethod) objType() ObjType { return ObjTypeBoundMethod }
func (b *ObjBoundMethod) typeName() string { return "bound method" }
func (b *ObjBoundMethod) String() string   { return b.Method.String() }

// ObjList is a growable vector of Values.
type ObjList struct {
	objHeader
	Elements []Value
}

func (l *ObjList) objType() ObjType { return ObjTypeList }
func (l *ObjList) typeName() string { return "list" }
func (l *ObjList) String() string {
	s := "["
	for i, e := range l.Elements {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + "]"
}
