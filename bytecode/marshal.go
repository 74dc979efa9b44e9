package bytecode

import (
	"bytes"
	"encoding/gob"

	"github.com/glint-lang/glint/value"
)

// wireBuffer is Buffer's on-disk shape. A compiler producing Buffers is
// out of scope (spec.md §1), so this is the only path by which a host
// program gets a Buffer onto disk and back: build one with Builder, call
// Marshal, and hand the bytes to whatever persists or ships them.
type wireBuffer struct {
	Ops           []byte
	Consts        []value.Value
	StrBuf        []byte
	DebugTable    []DebugSym
	MainLocalSize uint32
}

// Marshal encodes b into a portable byte slice.
func (b *Buffer) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	w := wireBuffer{
		Ops:           b.ops,
		Consts:        b.consts,
		StrBuf:        b.strBuf,
		DebugTable:    b.debugTable,
		MainLocalSize: b.mainLocalSize,
	}
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a Buffer previously produced by Marshal.
func Unmarshal(data []byte) (*Buffer, error) {
	var w wireBuffer
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return nil, err
	}
	return NewBuffer(BufferParams{
		Ops:           w.Ops,
		Consts:        w.Consts,
		StrBuf:        w.StrBuf,
		DebugTable:    w.DebugTable,
		MainLocalSize: w.MainLocalSize,
	}), nil
}
