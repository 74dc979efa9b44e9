package vm

import (
	"testing"

	"github.com/glint-lang/glint/bytecode"
	"github.com/glint-lang/glint/op"
	"github.com/glint-lang/glint/symbols"
	"github.com/glint-lang/glint/value"
	"github.com/stretchr/testify/require"
)

func TestArithmeticPrecedenceEvaluatesLeftToRight(t *testing.T) {
	b := bytecode.NewBuilder()
	two := b.AddConst(value.InitFloat(2))
	three := b.AddConst(value.InitFloat(3))
	four := b.AddConst(value.InitFloat(4))
	// (2 + 3) * 4 == 20, left on the stack for Eval to read back.
	b.EmitU16(op.PushConst, two)
	b.EmitU16(op.PushConst, three)
	b.Emit(op.Add)
	b.EmitU16(op.PushConst, four)
	b.Emit(op.Mul)
	b.Emit(op.End)
	buf := b.Build(0)

	m := New()
	result, err := m.Eval(buf)
	require.NoError(t, err)
	require.True(t, result.IsNumber())
	require.Equal(t, 20.0, result.AsFloat())
}

func TestListIndexSupportsNegativeOffsets(t *testing.T) {
	b := bytecode.NewBuilder()
	one := b.AddConst(value.InitFloat(1))
	two := b.AddConst(value.InitFloat(2))
	three := b.AddConst(value.InitFloat(3))
	negOne := b.AddConst(value.InitFloat(-1))
	b.EmitU16(op.PushConst, one)
	b.EmitU16(op.PushConst, two)
	b.EmitU16(op.PushConst, three)
	b.EmitU16(op.PushList, 3)
	b.EmitU16(op.PushConst, negOne)
	b.Emit(op.PushIndex)
	b.Emit(op.End)
	buf := b.Build(0)

	m := New()
	result, err := m.Eval(buf)
	require.NoError(t, err)
	require.Equal(t, 3.0, result.AsFloat())
	require.Empty(t, m.Heap.AllLiveSlots())
}

// TestMapFieldFallsBackToKeyByName exercises the spec.md §4.3 fallback: a
// field symbol with no SmallObject binding for a Map receiver resolves
// against the map's own keys by name instead of panicking.
func TestMapFieldFallsBackToKeyByName(t *testing.T) {
	m := New()
	fid := m.FieldSyms.Reserve("count")

	b := bytecode.NewBuilder()
	fortyTwo := b.AddConst(value.InitFloat(42))
	b.Emit(op.PushMapEmpty)
	b.EmitU16(op.Set, 0)
	b.EmitU16(op.LoadRetain, 0)
	b.EmitU16(op.PushConst, fortyTwo)
	b.EmitU32(op.SetField, uint32(fid))
	b.EmitU16(op.Load, 0)
	b.EmitU32(op.PushField, uint32(fid))
	b.Emit(op.End)
	buf := b.Build(1)

	result, err := m.Eval(buf)
	require.NoError(t, err)
	require.True(t, result.IsNumber())
	require.Equal(t, 42.0, result.AsFloat())
}

// emitClosureHeader appends a PushClosure opcode with the multi-field
// operand layout (relPC, nParams, nCaps, nLocals) Builder's fixed-shape
// helpers don't cover. relPC must already be known (the closure body is
// emitted earlier in the buffer, reached via a leading Jump).
func emitClosureHeader(b *bytecode.Builder, relPC uint32, nParams, nCaps, nLocals uint16) {
	b.Emit(op.PushClosure)
	var raw [10]byte
	raw[0] = byte(relPC)
	raw[1] = byte(relPC >> 8)
	raw[2] = byte(relPC >> 16)
	raw[3] = byte(relPC >> 24)
	raw[4] = byte(nParams)
	raw[5] = byte(nParams >> 8)
	raw[6] = byte(nCaps)
	raw[7] = byte(nCaps >> 8)
	raw[8] = byte(nLocals)
	raw[9] = byte(nLocals >> 8)
	b.EmitRaw(raw[:]...)
}

func TestClosureCallReturnsCapturedValue(t *testing.T) {
	b := bytecode.NewBuilder()

	// Skip over the closure body at pc 0; patched once its length is known.
	jumpPos := b.PC()
	b.EmitI16(op.Jump, 0)
	bodyPC := b.PC()
	b.EmitU16(op.LoadRetain, 1) // capture slot: self(0) then capture(1)
	b.Emit(op.Ret1)
	afterBody := b.PC()
	b.PatchU16(jumpPos+1, uint16(int16(afterBody-(jumpPos+3))))

	captured := b.AddConst(value.InitFloat(42))
	b.EmitU16(op.PushConst, captured)
	emitClosureHeader(b, bodyPC, 0, 1, 2) // 0 params, 1 capture, 2 locals (self+capture)
	b.EmitU16(op.Call1, 1)
	b.Emit(op.End)

	buf := b.Build(0)

	m := New()
	result, err := m.Eval(buf)
	require.NoError(t, err)
	require.True(t, result.IsNumber())
	require.Equal(t, 42.0, result.AsFloat())
}

func TestMethodDispatchPromotesEmptyToOneTypeToManyTypes(t *testing.T) {
	m := New()
	methodID := m.MethodSyms.Reserve()

	_, ok := m.MethodSyms.Lookup(methodID, 10)
	require.False(t, ok, "an unregistered method symbol must report no match")

	m.MethodSyms.AddMethodSym(methodID, 10, symbols.MethodEntry{
		Kind: symbols.MethodNativeOne,
		NativeOne: func(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
			return value.InitFloat(1)
		},
	})
	entry, ok := m.MethodSyms.Lookup(methodID, 10)
	require.True(t, ok)
	require.Equal(t, 1.0, entry.NativeOne(m, nil, nil).AsFloat())

	// A second, distinct receiver type promotes the symbol to manyTypes;
	// both the original and new type must still resolve correctly.
	m.MethodSyms.AddMethodSym(methodID, 11, symbols.MethodEntry{
		Kind: symbols.MethodNativeOne,
		NativeOne: func(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
			return value.InitFloat(2)
		},
	})
	e1, ok1 := m.MethodSyms.Lookup(methodID, 10)
	require.True(t, ok1)
	require.Equal(t, 1.0, e1.NativeOne(m, nil, nil).AsFloat())

	e2, ok2 := m.MethodSyms.Lookup(methodID, 11)
	require.True(t, ok2)
	require.Equal(t, 2.0, e2.NativeOne(m, nil, nil).AsFloat())

	// Re-resolving type 10 after type 11 was the most-recently-used
	// exercises the side-table fallback path, not just the MRU fast path.
	e1Again, ok1Again := m.MethodSyms.Lookup(methodID, 10)
	require.True(t, ok1Again)
	require.Equal(t, 1.0, e1Again.NativeOne(m, nil, nil).AsFloat())
}
