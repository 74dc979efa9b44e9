package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfoKnownOpcodes(t *testing.T) {
	info := GetInfo(PushConst)
	require.Equal(t, "PUSH_CONST", info.Name)
	require.Equal(t, 2, info.OperandWidth)
}

func TestGetInfoVariableWidthOpcodes(t *testing.T) {
	require.Equal(t, VariableWidth, GetInfo(SetInitN).OperandWidth)
	require.Equal(t, VariableWidth, GetInfo(PushStructInitSmall).OperandWidth)
}

func TestGetInfoZeroOperandOpcodes(t *testing.T) {
	for _, c := range []Code{PushTrue, PushFalse, PushNone, Add, Sub, Eq, Ret0, Ret1, End} {
		require.Equal(t, 0, GetInfo(c).OperandWidth, GetInfo(c).Name)
	}
}
