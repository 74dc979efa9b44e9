package bytecode

import "github.com/glint-lang/glint/value"

// copyBytes returns a copy of the given byte slice.
func copyBytes(src []byte) []byte {
	if src == nil {
		return nil
	}
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}

// copyValues returns a copy of the given Value slice.
func copyValues(src []value.Value) []value.Value {
	if src == nil {
		return nil
	}
	dst := make([]value.Value, len(src))
	copy(dst, src)
	return dst
}

// copyDebugSyms returns a copy of the given debug-table slice.
func copyDebugSyms(src []DebugSym) []DebugSym {
	if src == nil {
		return nil
	}
	dst := make([]DebugSym, len(src))
	copy(dst, src)
	return dst
}
