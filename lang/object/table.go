package object

// entry is one slot of a Table. A nil Key with a Bool(true) Value marks a
// tombstone (a deleted entry kept so later linear probes don't stop short);
// a nil Key with any other Value (conventionally Nil) marks a truly empty
// slot.
type entry struct {
	Key   *ObjString
	Value Value
}

func (e *entry) isTombstone() bool { return e.Key == nil && e.Value.IsBool() && e.Value.AsBool() }
func (e *entry) isEmpty() bool     { return e.Key == nil && !e.isTombstone() }

// Table is the generic open-addressed, linear-probing, tombstoned hash
// table. It backs the string intern table and every class method table /
// instance field table. Its growth policy keeps the load factor under 75%
// after any insertion.
type Table struct {
	count   int // occupied slots: live entries plus tombstones (drives the load factor)
	entries []entry
}

const tableMaxLoad = 0.75

// NewTable returns an empty Table.
func NewTable() *Table { return &Table{} }

// Len reports the number of live (non-tombstone) entries.
func (t *Table) Len() int {
	n := 0
	for _, e := range t.entries {
		if e.Key != nil {
			n++
		}
	}
	return n
}

func (t *Table) findEntry(entries []entry, key *ObjString) *entry {
	capacity := uint32(len(entries))
	index := key.Hash % capacity
	var tombstone *entry
	for {
		e := &entries[index]
		switch {
		case e.Key == nil:
			if e.isTombstone() {
				if tombstone == nil {
					tombstone = e
				}
			} else {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
		case e.Key == key:
			return e
		}
		index = (index + 1) % capacity
	}
}

func (t *Table) adjustCapacity(capacity int) {
	entries := make([]entry, capacity)
	for i := range entries {
		entries[i] = entry{Value: Nil}
	}

	t.count = 0
	for _, old := range t.entries {
		if old.Key == nil {
			continue
		}
		dst := t.findEntry(entries, old.Key)
		dst.Key = old.Key
		dst.Value = old.Value
		t.count++
	}
	t.entries = entries
}

// Get returns the value stored for key, and whether it was found.
func (t *Table) Get(key *ObjString) (Value, bool) {
	if len(t.entries) == 0 {
		return Nil, false
	}
	e := t.findEntry(t.entries, key)
	if e.Key == nil {
		return Nil, false
	}
	return e.Value, true
}

// Set inserts or overwrites key's value. It returns true if key was not
// present before (whether it took an empty slot or reused a tombstone), and
// false if an existing entry was overwritten.
func (t *Table) Set(key *ObjString, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		capacity := 8
		if len(t.entries) > 0 {
			capacity = len(t.entries) * 2
		}
		t.adjustCapacity(capacity)
	}

	e := t.findEntry(t.entries, key)
	isNewKey := e.Key == nil
	if isNewKey && e.isEmpty() {
		t.count++
	}
	e.Key = key
	e.Value = value
	return isNewKey
}

// Delete removes key, leaving a tombstone so later linear probes do not
// stop short of keys that were inserted after a collision with it.
func (t *Table) Delete(key *ObjString) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := t.findEntry(t.entries, key)
	if e.Key == nil {
		return false
	}
	e.Key = nil
	e.Value = Bool(true) // tombstone marker
	return true
}

// FindString looks up a string by raw bytes, hash, and length rather than
// by pointer identity: it is how the interner discovers whether an equal
// string already lives on the heap.
func (t *Table) FindString(chars string, hash uint32) *ObjString {
	if len(t.entries) == 0 {
		return nil
	}
	capacity := uint32(len(t.entries))
	index := hash % capacity
	for {
		e := &t.entries[index]
		switch {
		case e.Key == nil:
			if !e.isTombstone() {
				return nil
			}
		case e.Key.Hash == hash && e.Key.Chars == chars:
			return e.Key
		}
		index = (index + 1) % capacity
	}
}

// AddAll copies every live entry of src into t.
func (t *Table) AddAll(src *Table) {
	for _, e := range src.entries {
		if e.Key != nil {
			t.Set(e.Key, e.Value)
		}
	}
}

// Each calls fn for every live entry. fn must not mutate the table.
func (t *Table) Each(fn func(key *ObjString, value Value)) {
	for _, e := range t.entries {
		if e.Key != nil {
			fn(e.Key, e.Value)
		}
	}
}

// RemoveUnmarked deletes every live entry whose key is not marked, without
// leaving tombstones behind (used for the GC's weak string-table cleanup,
// which runs before sweep frees the unmarked strings).
func (t *Table) RemoveUnmarked() {
	for i := range t.entries {
		e := &t.entries[i]
		if e.Key != nil && !e.Key.marked {
			e.Key = nil
			e.Value = Nil
			t.count--
		}
	}
}
