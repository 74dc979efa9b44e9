package symbols

import "github.com/glint-lang/glint/heap"

// MethodShape is the dispatch promotion ladder of spec.md §4.4: a method
// symbol starts empty, becomes a monomorphic one-type cache on its first
// registration, and is promoted to a polymorphic many-types cache (backed
// by methodTable, with a most-recently-used fast path) the moment a second
// distinct receiver type registers the same method id.
type MethodShape uint8

const (
	MethodEmpty MethodShape = iota
	MethodOneType
	MethodManyTypes
)

// MethodEntryKind distinguishes a user (bytecode) method from the two
// native call shapes.
type MethodEntryKind uint8

const (
	MethodUser MethodEntryKind = iota
	MethodNativeOne
	MethodNativeTwo
)

// MethodEntry is the payload resolved by a successful method lookup.
type MethodEntry struct {
	Kind MethodEntryKind

	PC        uint32
	NumLocals uint16

	NativeOne NativeOneReturn
	NativeTwo NativeTwoReturn
}

type methodSym struct {
	Shape MethodShape

	OneType  heap.TypeID
	OneEntry MethodEntry

	MRUType  heap.TypeID
	MRUEntry MethodEntry
}

type methodKey struct {
	typeID   heap.TypeID
	methodID int
}

// MethodTable holds methodSyms[id] plus the manyTypes side table keyed by
// (typeId, methodId).
type MethodTable struct {
	syms  []methodSym
	table map[methodKey]MethodEntry
}

// NewMethodTable creates an empty method-symbol table.
func NewMethodTable() *MethodTable {
	return &MethodTable{table: make(map[methodKey]MethodEntry)}
}

// Reserve allocates a new method-symbol id with no bindings yet.
func (t *MethodTable) Reserve() int {
	t.syms = append(t.syms, methodSym{})
	return len(t.syms) - 1
}

// AddMethodSym registers entry as typeID's implementation of methodID,
// promoting empty -> oneType -> manyTypes as distinct types accumulate.
func (t *MethodTable) AddMethodSym(methodID int, typeID heap.TypeID, entry MethodEntry) {
	sym := &t.syms[methodID]
	switch sym.Shape {
	case MethodEmpty:
		sym.Shape = MethodOneType
		sym.OneType = typeID
		sym.OneEntry = entry
	case MethodOneType:
		if sym.OneType == typeID {
			sym.OneEntry = entry
			return
		}
		sym.Shape = MethodManyTypes
		t.table[methodKey{sym.OneType, methodID}] = sym.OneEntry
		t.table[methodKey{typeID, methodID}] = entry
		sym.MRUType = typeID
		sym.MRUEntry = entry
	case MethodManyTypes:
		t.table[methodKey{typeID, methodID}] = entry
		sym.MRUType = typeID
		sym.MRUEntry = entry
	}
}

// Lookup resolves (methodID, typeID) to its MethodEntry, matching
// callObjSym's cache-hit/cache-miss procedure: a oneType symbol only ever
// answers for its single registered type; a manyTypes symbol checks its
// MRU slot first and falls back to the side table, updating MRU on a side
// table hit so the next call on the same type is a fast path again.
func (t *MethodTable) Lookup(methodID int, typeID heap.TypeID) (MethodEntry, bool) {
	sym := &t.syms[methodID]
	switch sym.Shape {
	case MethodEmpty:
		return MethodEntry{}, false
	case MethodOneType:
		if sym.OneType == typeID {
			return sym.OneEntry, true
		}
		return MethodEntry{}, false
	default: // MethodManyTypes
		if sym.MRUType == typeID {
			return sym.MRUEntry, true
		}
		entry, ok := t.table[methodKey{typeID, methodID}]
		if !ok {
			return MethodEntry{}, false
		}
		sym.MRUType = typeID
		sym.MRUEntry = entry
		return entry, true
	}
}
