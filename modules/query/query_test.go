package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glint-lang/glint/symbols"
	"github.com/glint-lang/glint/value"
)

// fakeHost is a minimal in-memory symbols.NativeHost standing in for the
// real heap-backed VM, so toGo/fromGo's aggregate handling can be tested
// without constructing a full vm.VM.
type fakeHost struct {
	strings []string
	objects []any // either []value.Value (list) or [2][]value.Value (map keys/vals)
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
func (h *fakeHost) Panic(msg string)    { panic(msg) }

func (h *fakeHost) NewList(elems []value.Value) value.Value {
	id := uint64(len(h.objects))
	h.objects = append(h.objects, append([]value.Value(nil), elems...))
	return value.InitPointer(id)
}

func (h *fakeHost) NewMap(keys, vals []value.Value) value.Value {
	id := uint64(len(h.objects))
	h.objects = append(h.objects, [2][]value.Value{keys, vals})
	return value.InitPointer(id)
}

func (h *fakeHost) ListElems(v value.Value) ([]value.Value, bool) {
	if !v.IsPointer() {
		return nil, false
	}
	elems, ok := h.objects[v.AsPointer()].([]value.Value)
	return elems, ok
}

func (h *fakeHost) MapPairs(v value.Value) (keys, vals []value.Value, ok bool) {
	if !v.IsPointer() {
		return nil, nil, false
	}
	pair, ok := h.objects[v.AsPointer()].([2][]value.Value)
	if !ok {
		return nil, nil, false
	}
	return pair[0], pair[1], true
}

func (h *fakeHost) NewHandle(typeID uint32, native any, onRelease func(any)) value.Value {
	return value.None
}

func (h *fakeHost) HandleNative(v value.Value, typeID uint32) (any, bool) {
	return nil, false
}

var _ symbols.NativeHost = (*fakeHost)(nil)

func TestToGoAndFromGoRoundTripAggregates(t *testing.T) {
	h := &fakeHost{}

	list := h.NewList([]value.Value{
		value.InitFloat(1),
		h.AllocString("two"),
		value.True,
		value.None,
	})

	decoded := toGo(h, list)
	goList, ok := decoded.([]any)
	require.True(t, ok)
	require.Equal(t, []any{1.0, "two", true, nil}, goList)

	reencoded := fromGo(h, goList)
	elems, ok := h.ListElems(reencoded)
	require.True(t, ok)
	require.Len(t, elems, 4)
	require.Equal(t, 1.0, elems[0].AsFloat())
	require.Equal(t, "two", string(h.ValueAsString(elems[1])))
	require.True(t, elems[2].AsBool())
	require.True(t, elems[3].IsNone())
}

func TestToGoDecodesMapKeysAsStrings(t *testing.T) {
	h := &fakeHost{}
	m := h.NewMap(
		[]value.Value{h.AllocString("count")},
		[]value.Value{value.InitFloat(3)},
	)

	decoded := toGo(h, m)
	goMap, ok := decoded.(map[string]any)
	require.True(t, ok)
	require.Equal(t, 3.0, goMap["count"])
}
