package symbols

import "github.com/glint-lang/glint/heap"

// FieldShape is the promotion ladder for a field symbol: empty (never
// seen), one-type (only one SmallObject type has registered the field so
// far), or dynamic (a second type has registered it, so lookup resolves
// per type on every access).
type FieldShape uint8

const (
	FieldEmpty FieldShape = iota
	FieldOneType
	FieldDynamic
)

// FieldEntry locates a named field on a given type's inline slot.
type FieldEntry struct {
	TypeID heap.TypeID
	Index  int
}

type fieldSym struct {
	Shape FieldShape
	Name  string
	One   FieldEntry
	byTyp map[heap.TypeID]int
}

// FieldTable holds fieldSyms[id], indexed by the sequential id Reserve
// hands out.
type FieldTable struct {
	syms []fieldSym
}

// NewFieldTable creates an empty field-symbol table.
func NewFieldTable() *FieldTable {
	return &FieldTable{}
}

// Reserve allocates a new field-symbol id with no bindings yet. name is
// the source field name, carried so a dispatch-table miss can fall back
// to a map-by-name lookup on the receiver (spec.md §4.3).
func (t *FieldTable) Reserve(name string) int {
	t.syms = append(t.syms, fieldSym{Name: name})
	return len(t.syms) - 1
}

// Name returns the field-symbol's source name.
func (t *FieldTable) Name(fieldID int) string {
	return t.syms[fieldID].Name
}

// AddFieldSym registers that typeID stores this field at the given inline
// index, promoting the symbol's shape as needed.
func (t *FieldTable) AddFieldSym(fieldID int, typeID heap.TypeID, index int) {
	sym := &t.syms[fieldID]
	switch sym.Shape {
	case FieldEmpty:
		sym.Shape = FieldOneType
		sym.One = FieldEntry{TypeID: typeID, Index: index}
	case FieldOneType:
		if sym.One.TypeID == typeID {
			sym.One.Index = index
			return
		}
		sym.Shape = FieldDynamic
		sym.byTyp = map[heap.TypeID]int{sym.One.TypeID: sym.One.Index, typeID: index}
	case FieldDynamic:
		sym.byTyp[typeID] = index
	}
}

// Lookup resolves fieldID against a concrete typeID to an inline slot
// index.
func (t *FieldTable) Lookup(fieldID int, typeID heap.TypeID) (int, bool) {
	sym := &t.syms[fieldID]
	switch sym.Shape {
	case FieldEmpty:
		return 0, false
	case FieldOneType:
		if sym.One.TypeID == typeID {
			return sym.One.Index, true
		}
		return 0, false
	default: // FieldDynamic
		idx, ok := sym.byTyp[typeID]
		return idx, ok
	}
}
