package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFloatRoundTrip(t *testing.T) {
	for _, f := range []float64{0, -2, 3.5, math.Inf(1), math.Inf(-1)} {
		v := InitFloat(f)
		require.True(t, v.IsNumber())
		require.Equal(t, f, v.AsFloat())
	}
}

func TestSingletons(t *testing.T) {
	require.False(t, None.IsNumber())
	require.True(t, None.IsNone())
	require.False(t, True.ToBool() == false)
	require.True(t, True.AsBool())
	require.False(t, False.AsBool())
}

func TestToBool(t *testing.T) {
	require.False(t, None.ToBool())
	require.False(t, False.ToBool())
	require.True(t, True.ToBool())
	require.False(t, InitFloat(0).ToBool())
	require.True(t, InitFloat(1).ToBool())
	require.True(t, InitFloat(-1).ToBool())
}

func TestPointerRoundTrip(t *testing.T) {
	p := InitPointer(1 << 30)
	require.True(t, p.IsPointer())
	require.Equal(t, uint64(1<<30), p.AsPointer())
}

func TestConstStringRoundTrip(t *testing.T) {
	s := InitConstString(1234, 56)
	require.True(t, s.IsString())
	start, length := s.AsConstString()
	require.Equal(t, uint32(1234), start)
	require.Equal(t, uint32(56), length)
}

func TestRetInfoRoundTrip(t *testing.T) {
	r := InitRetInfo(4096, 12, 1, true)
	pc, fp, req, cont := r.AsRetInfo()
	require.Equal(t, uint32(4096), pc)
	require.Equal(t, uint32(12), fp)
	require.Equal(t, uint8(1), req)
	require.True(t, cont)
}

type fakePool struct{ s string }

func (p fakePool) StringAt(start, length uint32) string { return p.s }

func TestToFloatCoercion(t *testing.T) {
	require.Equal(t, float64(0), None.ToFloat(nil))
	require.Equal(t, float64(1), True.ToFloat(nil))
	require.Equal(t, float64(0), False.ToFloat(nil))
	s := InitConstString(0, 3)
	require.Equal(t, float64(42), s.ToFloat(fakePool{"42"}))
	require.Equal(t, float64(0), s.ToFloat(fakePool{"not-a-number"}))
}

func TestToFloatPanicsOnPointer(t *testing.T) {
	p := InitPointer(1)
	require.Panics(t, func() { p.ToFloat(nil) })
}

func TestBoxedSpaceDoesNotCollideWithRealNaN(t *testing.T) {
	nan := InitFloat(math.NaN())
	require.True(t, nan.IsNumber())
	require.True(t, math.IsNaN(nan.AsFloat()))
}
