package object

// RootMarker is implemented by anything that owns Values the GC must treat
// as roots: the running VM (value stack, call frames, open upvalues,
// globals, the cached "init" name) and, while compilation is in progress,
// the compiler's in-progress function chain. The Heap holds a set of active RootMarkers rather than
// hard-coding a single VM, so a REPL session can register/unregister a
// Compiler as a transient root around each compiled statement while the
// VM itself stays registered for the process lifetime.
type RootMarker interface {
	MarkRoots(mark func(Value))
}

// heapGrowFactor is the multiplier applied to bytesAllocated after a
// collection to compute the next collection threshold.
const heapGrowFactor = 2

// initialGCThreshold is the number of allocated bytes (by our rough
// accounting, see sizeOf) that triggers the very first collection.
const initialGCThreshold = 1 << 20

// Heap owns every live Obj through an intrusive singly-linked list, the
// string intern table, and the tri-color mark-sweep collector that is the
// sole deallocator of objects reachable through that list.
type Heap struct {
	objects        Obj // head of the intrusive "all objects" list
	bytesAllocated int64
	nextGC         int64
	gray           []Obj // worklist of gray (to-trace) objects

	Strings *Table // the string intern table (weak: see RemoveUnmarked)

	roots []RootMarker

	// lastAlloc pins the most recently tracked object as an implicit root
	// until the next allocation. A brand new object is not yet reachable
	// from the VM stack, a table, or any other structure at the instant
	// track() links it in, so if that same track() call is what pushes
	// bytesAllocated over the threshold, the ensuing collection would sweep
	// it before the caller has a chance to root it anywhere. Pinning the
	// single most recent allocation is the Go analogue of the source's
	// per-callsite discipline of pushing a newly allocated value onto the
	// stack before any further allocation ("String allocation is re-entrant
	// with GC"); callers must root an allocated object (onto the stack,
	// into a field, into a table) before allocating anything else.
	lastAlloc Obj

	// StressGC, when true, forces a collection on every allocation.
	StressGC bool

	// OnCollect, if set, is called after every collection with the number
	// of bytes and of objects freed.
	OnCollect func(freedBytes int64, freedObjects int)
}

// NewHeap returns an empty Heap with its string intern table initialized.
func NewHeap() *Heap {
	return &Heap{
		Strings: NewTable(),
		nextGC:  initialGCThreshold,
	}
}

// AddRoot registers r as a GC root source. Safe to call with the VM once at
// startup and with a Compiler for the duration of a single compilation.
func (h *Heap) AddRoot(r RootMarker) { h.roots = append(h.roots, r) }

// RemoveRoot unregisters r. It is a no-op if r was not registered (this
// makes it safe to defer unconditionally).
func (h *Heap) RemoveRoot(r RootMarker) {
	for i, existing := range h.roots {
		if existing == r {
			h.roots = append(h.roots[:i], h.roots[i+1:]...)
			return
		}
	}
}

// sizeOf is a rough, per-variant byte-cost estimate used only to decide
// when to collect; it need not be exact.
func sizeOf(o Obj) int64 {
	switch v := o.(type) {
	case *ObjString:
		return int64(32 + len(v.Chars))
	case *ObjFunction:
		return int64(96 + len(v.Chunk.Code) + len(v.Chunk.Constants)*16)
	case *ObjNative:
		return 48
	case *ObjClosure:
		return int64(32 + len(v.Upvalues)*8)
	case *ObjUpvalue:
		return 32
	case *ObjClass:
		return 48
	case *ObjInstance:
		return 48
	case *ObjBoundMethod:
		return 32
	case *ObjList:
		return int64(24 + len(v.Elements)*16)
	default:
		return 16
	}
}

// track links o into the object list and may trigger a collection. It must
// be called exactly once, immediately after an Obj variant is constructed,
// before any further allocation could run a GC cycle that wouldn't yet see
// it as a root (every allocate* helper below does this itself).
func (h *Heap) track(o Obj) {
	hdr := o.header()
	hdr.next = h.objects
	h.objects = o
	h.bytesAllocated += sizeOf(o)
	h.lastAlloc = o

	if h.StressGC || h.bytesAllocated > h.nextGC {
		h.Collect()
	}
}

// AllocateString interns chars: if an equal string is already live, its
// object is reused (this is the sole meaning of "interning" here);
// otherwise a new ObjString is allocated, hashed, tracked, and inserted
// into the intern table. Every live string is in the intern table, and
// every interned string is live.
//
// track(s) pins s as lastAlloc, so a collection triggered by that very
// track call marks it; Strings.Set then grows its entries with a plain Go
// allocation that never goes through the Heap, so no collection can run
// between track(s) and the insertion. This is the Go analogue of the
// source's "push the new string on the value stack during intern-table
// insertion" discipline.
func (h *Heap) AllocateString(chars string) *ObjString {
	hash := FNV1a32(chars)
	if existing := h.Strings.FindString(chars, hash); existing != nil {
		return existing
	}
	s := &ObjString{Chars: chars, Hash: hash}
	h.track(s)
	h.Strings.Set(s, Nil)
	return s
}

func (h *Heap) AllocateFunction() *ObjFunction {
	f := &ObjFunction{}
	h.track(f)
	return f
}

func (h *Heap) AllocateNative(name string, fn NativeFn) *ObjNative {
	n := &ObjNative{NativeName: name, Fn: fn}
	h.track(n)
	return n
}

func (h *Heap) AllocateClosure(fn *ObjFunction) *ObjClosure {
	c := &ObjClosure{Function: fn, Upvalues: make([]*ObjUpvalue, fn.UpvalueCount)}
	h.track(c)
	return c
}

func (h *Heap) AllocateUpvalue(slot *Value) *ObjUpvalue {
	u := &ObjUpvalue{Location: slot}
	h.track(u)
	return u
}

func (h *Heap) AllocateClass(name *ObjString) *ObjClass {
	c := &ObjClass{Name: name, Methods: NewTable()}
	h.track(c)
	return c
}

func (h *Heap) AllocateInstance(class *ObjClass) *ObjInstance {
	i := &ObjInstance{Class: class, Fields: NewTable()}
	h.track(i)
	return i
}

func (h *Heap) AllocateBoundMethod(receiver Value, method *ObjClosure) *ObjBoundMethod {
	b := &ObjBoundMethod{Receiver: receiver, Method: method}
	h.track(b)
	return b
}

func (h *Heap) AllocateList(elems []Value) *ObjList {
	l := &ObjList{Elements: elems}
	h.track(l)
	return l
}

// Collect runs one full tri-color mark-and-sweep cycle: mark roots, trace
// the gray worklist to black, weakly clean the string intern table, sweep
// unmarked objects, then raise the next collection threshold.
func (h *Heap) Collect() {
	before := h.bytesAllocated

	h.markRoots()
	h.trace()
	h.Strings.RemoveUnmarked()
	freedObjs := h.sweep()

	h.nextGC = h.bytesAllocated * heapGrowFactor
	if h.nextGC < initialGCThreshold {
		h.nextGC = initialGCThreshold
	}

	if h.OnCollect != nil {
		h.OnCollect(before-h.bytesAllocated, freedObjs)
	}
}

func (h *Heap) markRoots() {
	h.MarkObject(h.lastAlloc)
	for _, r := range h.roots {
		r.MarkRoots(h.MarkValue)
	}
}

// MarkValue marks v's referent object gray, if it is an unmarked Obj. It is
// the function every RootMarker and every blacken* helper calls.
func (h *Heap) MarkValue(v Value) {
	if v.IsObj() {
		h.MarkObject(v.AsObj())
	}
}

// MarkObject marks o gray (adds it to the worklist) unless it is already
// marked.
func (h *Heap) MarkObject(o Obj) {
	if o == nil {
		return
	}
	hdr := o.header()
	if hdr.marked {
		return
	}
	hdr.marked = true
	h.gray = append(h.gray, o)
}

func (h *Heap) trace() {
	for len(h.gray) > 0 {
		n := len(h.gray) - 1
		o := h.gray[n]
		h.gray = h.gray[:n]
		h.blacken(o)
	}
}

// blacken marks every object o directly references, per the traversal
// table.
func (h *Heap) blacken(o Obj) {
	switch v := o.(type) {
	case *ObjString, *ObjNative:
		// no outgoing references
	case *ObjFunction:
		h.MarkObject(v.Name)
		for _, c := range v.Chunk.Constants {
			h.MarkValue(c)
		}
	case *ObjClosure:
		h.MarkObject(v.Function)
		for _, uv := range v.Upvalues {
			h.MarkObject(uv)
		}
	case *ObjUpvalue:
		if v.Location != nil {
			h.MarkValue(*v.Location)
		} else {
			h.MarkValue(v.Closed)
		}
	case *ObjClass:
		h.MarkObject(v.Name)
		v.Methods.Each(func(key *ObjString, val Value) {
			h.MarkObject(key)
			h.MarkValue(val)
		})
	case *ObjInstance:
		h.MarkObject(v.Class)
		v.Fields.Each(func(key *ObjString, val Value) {
			h.MarkObject(key)
			h.MarkValue(val)
		})
	case *ObjBoundMethod:
		h.MarkValue(v.Receiver)
		h.MarkObject(v.Method)
	case *ObjList:
		for _, e := range v.Elements {
			h.MarkValue(e)
		}
	}
	// Methods/Fields keys are marked above alongside their values, mirroring
	// VM.MarkRoots' globals loop: a method or field name's only other
	// reachability path is through the constant pool of the function that
	// declared it, which can itself go unreachable (e.g. a class declared
	// inside a function whose closure is later discarded) while the class or
	// instance it named persists.
}

// sweep walks the object list, frees (unlinks) unmarked objects, and clears
// the mark bit on survivors for the next cycle. It returns the number of
// objects freed.
func (h *Heap) sweep() int {
	var prev Obj
	freed := 0
	cur := h.objects
	for cur != nil {
		hdr := cur.header()
		if hdr.marked {
			hdr.marked = false
			prev = cur
			cur = hdr.next
			continue
		}

		unreached := cur
		cur = hdr.next
		if prev != nil {
			prev.header().next = cur
		} else {
			h.objects = cur
		}
		h.bytesAllocated -= sizeOf(unreached)
		freed++
	}
	return freed
}
