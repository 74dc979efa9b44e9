package trace

import (
	"testing"

	"github.com/glint-lang/glint/value"
	"github.com/stretchr/testify/require"
)

func TestVMErrorFormatsKindAndMessage(t *testing.T) {
	err := OutOfMemory("heap exhausted")
	require.Equal(t, "out of memory: heap exhausted", err.Error())
}

func TestOutOfBoundsConvertsToPanic(t *testing.T) {
	err := OutOfBounds("index 5 out of range", []Frame{{Function: "bar", Line: 3, Column: 1}})
	panicked := err.ToPanic()
	require.Equal(t, KindPanic, panicked.Kind)
	require.Equal(t, err.Message, panicked.Message)
}

type fakeWalker struct {
	rets map[uint32]value.Value
	syms map[uint32]struct {
		name string
		line int
		col  int
	}
}

func (w *fakeWalker) RetInfoAt(fp uint32) value.Value { return w.rets[fp] }

func (w *fakeWalker) DebugSymFor(pc uint32) (string, int, int, bool) {
	s, ok := w.syms[pc]
	if !ok {
		return "", 0, 0, false
	}
	return s.name, s.line, s.col, true
}

func TestUnwindWalksRetInfoChainTopMostFirst(t *testing.T) {
	w := &fakeWalker{
		rets: map[uint32]value.Value{
			10: value.InitRetInfo(5, NullFramePtr, 0, false),
		},
		syms: map[uint32]struct {
			name string
			line int
			col  int
		}{
			20: {"bar", 7, 2},
			5:  {"main", 1, 1},
		},
	}

	frames, err := Unwind(w, 10, 20)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.Equal(t, "bar", frames[0].Function)
	require.Equal(t, "main", frames[1].Function)
}

func TestUnwindReturnsNoDebugSymOnGap(t *testing.T) {
	w := &fakeWalker{syms: map[uint32]struct {
		name string
		line int
		col  int
	}{}}

	_, err := Unwind(w, NullFramePtr, 99)
	require.Error(t, err)
	require.Equal(t, KindNoDebugSym, err.(*VMError).Kind)
}
