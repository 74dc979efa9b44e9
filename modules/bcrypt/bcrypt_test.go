package bcrypt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glint-lang/glint/symbols"
	"github.com/glint-lang/glint/value"
)

// fakeHost is the minimal symbols.NativeHost this package's functions
// exercise: string allocation/read, panic, and (for the Hasher method
// path) opaque handles. The aggregate methods are never called by this
// package, so they panic if hit -- a signal the function under test grew
// a new data dependency.
type fakeHost struct {
	strings []string
	handles []any
	panicked string
}

func (h *fakeHost) AllocString(s string) value.Value {
	idx := uint32(len(h.strings))
	h.strings = append(h.strings, s)
	return value.InitConstString(idx, 0)
}

func (h *fakeHost) ValueAsString(v value.Value) []byte {
	start, _ := v.AsConstString()
	return []byte(h.strings[start])
}

func (h *fakeHost) Release(value.Value) {}
func (h *fakeHost) Retain(value.Value)  {}
func (h *fakeHost) Panic(msg string)    { h.panicked = msg }

func (h *fakeHost) NewList(elems []value.Value) value.Value        { panic("unused") }
func (h *fakeHost) NewMap(keys, vals []value.Value) value.Value    { panic("unused") }
func (h *fakeHost) ListElems(v value.Value) ([]value.Value, bool)  { panic("unused") }
func (h *fakeHost) MapPairs(v value.Value) ([]value.Value, []value.Value, bool) {
	panic("unused")
}

func (h *fakeHost) NewHandle(typeID uint32, native any, onRelease func(any)) value.Value {
	id := uint64(len(h.handles))
	h.handles = append(h.handles, native)
	return value.InitPointer(id)
}

func (h *fakeHost) HandleNative(v value.Value, typeID uint32) (any, bool) {
	if !v.IsPointer() {
		return nil, false
	}
	idx := v.AsPointer()
	if idx >= uint64(len(h.handles)) {
		return nil, false
	}
	return h.handles[idx], true
}

var _ symbols.NativeHost = (*fakeHost)(nil)

func TestHashThenCompareSucceedsForCorrectPassword(t *testing.T) {
	h := &fakeHost{}
	pw := h.AllocString("hunter2")

	digest := hash(h, nil, []value.Value{pw})
	require.Empty(t, h.panicked)

	result := compare(h, nil, []value.Value{digest, pw})
	require.True(t, result.AsBool())
}

func TestCompareFailsForWrongPassword(t *testing.T) {
	h := &fakeHost{}
	pw := h.AllocString("hunter2")
	wrong := h.AllocString("wrong-password")

	digest := hash(h, nil, []value.Value{pw})
	result := compare(h, nil, []value.Value{digest, wrong})
	require.False(t, result.AsBool())
}

func TestHashRespectsExplicitCostArgument(t *testing.T) {
	h := &fakeHost{}
	pw := h.AllocString("hunter2")
	cost := value.InitFloat(4) // bcrypt.MinCost

	digest := hash(h, nil, []value.Value{pw, cost})
	require.Empty(t, h.panicked)
	result := compare(h, nil, []value.Value{digest, pw})
	require.True(t, result.AsBool())
}

func TestCompareMethodMatchesFreeFunction(t *testing.T) {
	h := &fakeHost{}
	pw := h.AllocString("hunter2")
	wrong := h.AllocString("wrong-password")

	digest := hash(h, nil, []value.Value{pw})
	hasher := newHasher(h, nil, []value.Value{digest})
	require.Empty(t, h.panicked)

	ok, errVal := compareMethod(h, &hasher, []value.Value{pw})
	require.True(t, ok.AsBool())
	require.True(t, errVal.IsNone())

	ok, errVal = compareMethod(h, &hasher, []value.Value{wrong})
	require.False(t, ok.AsBool())
	require.True(t, errVal.IsNone())
}
