package bytecode

import "github.com/glint-lang/glint/value"

// NullNodeIndex marks a DebugSym whose frameNodeIndex belongs to the main
// frame rather than any user function, per spec.md §6.
const NullNodeIndex = ^uint32(0)

// DebugSym is one debug-table entry, mapping a program counter to the
// compiler's AST so a panic unwind can recover source locations.
type DebugSym struct {
	PC             uint32
	NodeIndex      uint32
	FrameNodeIndex uint32 // NullNodeIndex marks the main frame
}

// Buffer is the bytecode buffer the host hands the VM: a flat op stream,
// a constant pool, a backing string arena, and a debug table, plus the
// main frame's local-slot count. It is immutable after construction.
type Buffer struct {
	ops           []byte
	consts        []value.Value
	strBuf        []byte
	debugTable    []DebugSym
	mainLocalSize uint32
}

// BufferParams holds the inputs to NewBuffer.
type BufferParams struct {
	Ops           []byte
	Consts        []value.Value
	StrBuf        []byte
	DebugTable    []DebugSym
	MainLocalSize uint32
}

// NewBuffer builds an immutable Buffer, copying every input slice so the
// caller's mutations afterward cannot be observed by the VM.
func NewBuffer(p BufferParams) *Buffer {
	return &Buffer{
		ops:           copyBytes(p.Ops),
		consts:        copyValues(p.Consts),
		strBuf:        copyBytes(p.StrBuf),
		debugTable:    copyDebugSyms(p.DebugTable),
		mainLocalSize: p.MainLocalSize,
	}
}

// OpAt returns the byte at the given program counter.
func (b *Buffer) OpAt(pc uint32) byte { return b.ops[pc] }

// OpLen returns the length of the instruction stream.
func (b *Buffer) OpLen() int { return len(b.ops) }

// ReadU16 decodes a little-endian uint16 immediate operand at pc.
func (b *Buffer) ReadU16(pc uint32) uint16 {
	return uint16(b.ops[pc]) | uint16(b.ops[pc+1])<<8
}

// ReadI16 decodes a little-endian int16 immediate operand (a branch
// offset) at pc.
func (b *Buffer) ReadI16(pc uint32) int16 {
	return int16(b.ReadU16(pc))
}

// ReadU32 decodes a little-endian uint32 immediate operand (a symbol id
// or relative PC) at pc.
func (b *Buffer) ReadU32(pc uint32) uint32 {
	return uint32(b.ops[pc]) | uint32(b.ops[pc+1])<<8 |
		uint32(b.ops[pc+2])<<16 | uint32(b.ops[pc+3])<<24
}

// ConstantAt returns the constant pool entry at idx.
func (b *Buffer) ConstantAt(idx uint16) value.Value { return b.consts[idx] }

// ConstantCount returns the number of entries in the constant pool.
func (b *Buffer) ConstantCount() int { return len(b.consts) }

// StringAt returns the backing bytes of a ConstString span as a string,
// satisfying value.StringPool.
func (b *Buffer) StringAt(start, length uint32) string {
	return string(b.strBuf[start : start+length])
}

// StringBytesAt returns a copy of the bytes of a ConstString span, so a
// caller may keep or modify the result without touching the Buffer.
func (b *Buffer) StringBytesAt(start, length uint32) []byte {
	return append([]byte(nil), b.strBuf[start:start+length]...)
}

// MainLocalSize returns the number of stack slots the main frame reserves.
func (b *Buffer) MainLocalSize() uint32 { return b.mainLocalSize }

// DebugSymFor performs the linear scan spec.md §4.5 calls for: the
// nearest debug-table entry whose pc is <= the queried pc. The table is
// expected to be small, so a linear scan (rather than a binary search
// over a structure that must additionally be kept sorted by the
// compiler) matches the source's own approach.
func (b *Buffer) DebugSymFor(pc uint32) (DebugSym, bool) {
	var best DebugSym
	found := false
	for _, sym := range b.debugTable {
		if sym.PC <= pc && (!found || sym.PC > best.PC) {
			best = sym
			found = true
		}
	}
	return best, found
}

// Stats summarizes this Buffer's size for auditing purposes.
func (b *Buffer) Stats() Stats {
	return Stats{
		OpBytes:       len(b.ops),
		ConstantCount: len(b.consts),
		StringBytes:   len(b.strBuf),
		DebugSymCount: len(b.debugTable),
		MainLocalSize: b.mainLocalSize,
	}
}
