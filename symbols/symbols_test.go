package symbols

import (
	"testing"

	"github.com/glint-lang/glint/heap"
	"github.com/stretchr/testify/require"
)

func TestFuncTableDefineAndLookup(t *testing.T) {
	ft := NewFuncTable()
	id := ft.Define("add", FuncEntry{Kind: FuncUser, PC: 42, NumLocals: 2})

	got, ok := ft.Lookup("add")
	require.True(t, ok)
	require.Equal(t, id, got)
	require.Equal(t, uint32(42), ft.At(id).PC)
}

func TestFuncTableAnonymousEntriesSkipGlobals(t *testing.T) {
	ft := NewFuncTable()
	ft.Define("", FuncEntry{Kind: FuncUser, PC: 7})

	_, ok := ft.Lookup("")
	require.False(t, ok)
}

func TestMethodSymPromotionLadder(t *testing.T) {
	mt := NewMethodTable()
	id := mt.Reserve()
	typeA := heap.TypeID(heap.FirstUserType)
	typeB := heap.TypeID(heap.FirstUserType + 1)
	typeC := heap.TypeID(heap.FirstUserType + 2)

	_, ok := mt.Lookup(id, typeA)
	require.False(t, ok, "empty symbol must miss every type")

	mt.AddMethodSym(id, typeA, MethodEntry{Kind: MethodUser, PC: 1})
	entry, ok := mt.Lookup(id, typeA)
	require.True(t, ok)
	require.Equal(t, uint32(1), entry.PC)

	_, ok = mt.Lookup(id, typeB)
	require.False(t, ok, "oneType symbol must miss a second type")

	mt.AddMethodSym(id, typeB, MethodEntry{Kind: MethodUser, PC: 2})
	entryA, ok := mt.Lookup(id, typeA)
	require.True(t, ok, "promotion to manyTypes must preserve the original entry")
	require.Equal(t, uint32(1), entryA.PC)

	entryB, ok := mt.Lookup(id, typeB)
	require.True(t, ok)
	require.Equal(t, uint32(2), entryB.PC)

	mt.AddMethodSym(id, typeC, MethodEntry{Kind: MethodUser, PC: 3})
	_, ok = mt.Lookup(id, typeC)
	require.True(t, ok)
}

func TestMethodSymMRUFastPath(t *testing.T) {
	mt := NewMethodTable()
	id := mt.Reserve()
	typeA := heap.TypeID(heap.FirstUserType)
	typeB := heap.TypeID(heap.FirstUserType + 1)

	mt.AddMethodSym(id, typeA, MethodEntry{Kind: MethodUser, PC: 1})
	mt.AddMethodSym(id, typeB, MethodEntry{Kind: MethodUser, PC: 2})

	// Calling on typeA repeatedly should always resolve through the MRU
	// slot once it has been primed by a lookup.
	_, ok := mt.Lookup(id, typeA)
	require.True(t, ok)
	entry, ok := mt.Lookup(id, typeA)
	require.True(t, ok)
	require.Equal(t, uint32(1), entry.PC)

	// Flipping to typeB and back exercises the MRU-miss -> table-hit ->
	// MRU-update path in both directions.
	entry, ok = mt.Lookup(id, typeB)
	require.True(t, ok)
	require.Equal(t, uint32(2), entry.PC)

	entry, ok = mt.Lookup(id, typeA)
	require.True(t, ok)
	require.Equal(t, uint32(1), entry.PC)
}

func TestMethodSymRedefiningSameTypeStaysOneType(t *testing.T) {
	mt := NewMethodTable()
	id := mt.Reserve()
	typeA := heap.TypeID(heap.FirstUserType)

	mt.AddMethodSym(id, typeA, MethodEntry{Kind: MethodUser, PC: 1})
	mt.AddMethodSym(id, typeA, MethodEntry{Kind: MethodUser, PC: 99})

	entry, ok := mt.Lookup(id, typeA)
	require.True(t, ok)
	require.Equal(t, uint32(99), entry.PC)
}

func TestFieldSymPromotionAndDynamicFallback(t *testing.T) {
	ft := NewFieldTable()
	id := ft.Reserve("x")
	typeA := heap.TypeID(heap.FirstUserType)
	typeB := heap.TypeID(heap.FirstUserType + 1)

	_, ok := ft.Lookup(id, typeA)
	require.False(t, ok)

	ft.AddFieldSym(id, typeA, 0)
	idx, ok := ft.Lookup(id, typeA)
	require.True(t, ok)
	require.Equal(t, 0, idx)

	_, ok = ft.Lookup(id, typeB)
	require.False(t, ok)

	ft.AddFieldSym(id, typeB, 2)
	idxA, ok := ft.Lookup(id, typeA)
	require.True(t, ok)
	require.Equal(t, 0, idxA)

	idxB, ok := ft.Lookup(id, typeB)
	require.True(t, ok)
	require.Equal(t, 2, idxB)
}
