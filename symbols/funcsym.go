// Package symbols implements the three parallel symbol-table registries
// described in spec.md §3 "Symbol tables" and §4.4 "Dispatch & Calls":
// function symbols, field symbols, and method symbols with the
// {empty, one-type, many-types+MRU} promotion ladder.
package symbols

import "github.com/glint-lang/glint/value"

// FuncKind distinguishes an empty slot, a user (bytecode) function, and a
// native Go function.
type FuncKind uint8

const (
	FuncNone FuncKind = iota
	FuncUser
	FuncNative
)

// NativeOneReturn is the one-return native function shape of spec.md §6:
// a free function when receiver is nil, a method when it is not.
type NativeOneReturn func(host NativeHost, receiver *value.Value, args []value.Value) value.Value

// NativeTwoReturn is the two-return native shape, methods only.
type NativeTwoReturn func(host NativeHost, receiver *value.Value, args []value.Value) (value.Value, value.Value)

// NativeHost is the facade a native function needs: value construction,
// aggregate/handle access, and release, matching spec.md §6's Host API.
// The aggregate and handle methods are an ABI extension beyond the bare
// string/panic surface spec.md describes in prose, added so native
// modules (query, db, cloud, image) can produce and consume lists, maps,
// and opaque handles without reaching into the heap package directly --
// see DESIGN.md.
type NativeHost interface {
	AllocString(s string) value.Value
	ValueAsString(v value.Value) []byte
	Release(v value.Value)
	Retain(v value.Value)
	Panic(msg string)

	// NewList and NewMap build heap aggregates from already-owned Values
	// (the callee takes ownership of one reference to each element).
	NewList(elems []value.Value) value.Value
	NewMap(keys, vals []value.Value) value.Value
	// ListElems and MapPairs read an aggregate's contents without
	// transferring ownership; ok is false if v is not that kind.
	ListElems(v value.Value) (elems []value.Value, ok bool)
	MapPairs(v value.Value) (keys, vals []value.Value, ok bool)

	// NewHandle wraps an arbitrary Go value (a *sql.DB, an s3 client, a
	// decoded image.Image) in a heap object tagged with typeID, released
	// via onRelease when its refcount reaches zero. HandleNative reads it
	// back, or returns ok=false if v does not carry typeID.
	NewHandle(typeID uint32, native any, onRelease func(any)) value.Value
	HandleNative(v value.Value, typeID uint32) (native any, ok bool)
}

// FuncEntry is one funcSyms[id] payload: {kind, payload} per spec.md §3.
type FuncEntry struct {
	Kind FuncKind

	// User function payload.
	PC        uint32
	NumLocals uint16

	// Native function payload. Exactly one of NativeOne/NativeTwo is set;
	// TwoReturn records which.
	NativeOne NativeOneReturn
	NativeTwo NativeTwoReturn
	TwoReturn bool
}

// FuncTable holds funcSyms[id] plus the globals name->id map.
type FuncTable struct {
	syms    []FuncEntry
	globals map[string]int
}

// NewFuncTable creates an empty function-symbol table.
func NewFuncTable() *FuncTable {
	return &FuncTable{globals: make(map[string]int)}
}

// Define registers a new function symbol under name and returns its id.
func (t *FuncTable) Define(name string, entry FuncEntry) int {
	id := len(t.syms)
	t.syms = append(t.syms, entry)
	if name != "" {
		t.globals[name] = id
	}
	return id
}

// Lookup resolves a name to its function-symbol id.
func (t *FuncTable) Lookup(name string) (int, bool) {
	id, ok := t.globals[name]
	return id, ok
}

// At returns the FuncEntry for id.
func (t *FuncTable) At(id int) FuncEntry {
	return t.syms[id]
}
