package bytecode

import (
	"testing"

	"github.com/glint-lang/glint/op"
	"github.com/stretchr/testify/require"
)

func TestBuilderEncodesOperandsLittleEndian(t *testing.T) {
	b := NewBuilder()
	b.EmitU16(op.PushConst, 0x0102)
	buf := b.Build(0)

	require.Equal(t, byte(op.PushConst), buf.OpAt(0))
	require.Equal(t, uint16(0x0102), buf.ReadU16(1))
}

func TestBuilderEncodesSignedBranchOffsets(t *testing.T) {
	b := NewBuilder()
	b.EmitI16(op.JumpBack, -5)
	buf := b.Build(0)

	require.Equal(t, int16(-5), buf.ReadI16(1))
}

func TestBuilderAddStringRoundTrips(t *testing.T) {
	b := NewBuilder()
	v := b.AddString("hello")
	buf := b.Build(0)

	start, length := v.AsConstString()
	require.Equal(t, "hello", buf.StringAt(start, length))
}

func TestBufferIsImmutableAfterBuild(t *testing.T) {
	b := NewBuilder()
	b.Emit(op.PushTrue)
	buf := b.Build(1)

	b.Emit(op.PushFalse) // mutating the builder after Build must not affect buf
	require.Equal(t, 1, buf.OpLen())
}

func TestDebugSymForPicksNearestPrecedingPC(t *testing.T) {
	b := NewBuilder()
	b.Emit(op.PushTrue)
	b.MarkDebugSym(1, NullNodeIndex)
	b.Emit(op.PushFalse)
	b.MarkDebugSym(2, NullNodeIndex)
	buf := b.Build(0)

	sym, ok := buf.DebugSymFor(1)
	require.True(t, ok)
	require.Equal(t, uint32(1), sym.NodeIndex)

	sym, ok = buf.DebugSymFor(2)
	require.True(t, ok)
	require.Equal(t, uint32(2), sym.NodeIndex)
}

func TestStatsReportsSizes(t *testing.T) {
	b := NewBuilder()
	b.Emit(op.PushTrue)
	b.AddString("x")
	buf := b.Build(3)

	stats := buf.Stats()
	require.Equal(t, 1, stats.OpBytes)
	require.Equal(t, 1, stats.StringBytes)
	require.Equal(t, uint32(3), stats.MainLocalSize)
}
