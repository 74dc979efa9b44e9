package bytecode

import (
	"encoding/binary"

	"github.com/glint-lang/glint/op"
	"github.com/glint-lang/glint/value"
)

// Builder assembles a Buffer one opcode at a time. It exists so tests and
// native-facing tooling can hand-construct bytecode without a compiler,
// which is an external collaborator per spec.md §1.
type Builder struct {
	ops        []byte
	consts     []value.Value
	strBuf     []byte
	debugTable []DebugSym
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// PC returns the offset the next emitted opcode will land at.
func (b *Builder) PC() uint32 { return uint32(len(b.ops)) }

// Emit appends an opcode with no immediate operands.
func (b *Builder) Emit(c op.Code) *Builder {
	b.ops = append(b.ops, byte(c))
	return b
}

// EmitU16 appends an opcode followed by a little-endian uint16 operand.
func (b *Builder) EmitU16(c op.Code, operand uint16) *Builder {
	b.ops = append(b.ops, byte(c))
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], operand)
	b.ops = append(b.ops, buf[:]...)
	return b
}

// EmitI16 appends an opcode followed by a little-endian int16 operand
// (a branch offset).
func (b *Builder) EmitI16(c op.Code, operand int16) *Builder {
	return b.EmitU16(c, uint16(operand))
}

// EmitU32 appends an opcode followed by a little-endian uint32 operand.
func (b *Builder) EmitU32(c op.Code, operand uint32) *Builder {
	b.ops = append(b.ops, byte(c))
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], operand)
	b.ops = append(b.ops, buf[:]...)
	return b
}

// EmitU32U16 appends an opcode followed by a uint32 then a uint16
// operand (the callSym/callObjSym/pushField shapes).
func (b *Builder) EmitU32U16(c op.Code, a uint32, n uint16) *Builder {
	b.EmitU32(c, a)
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], n)
	b.ops = append(b.ops, buf[:]...)
	return b
}

// EmitRaw appends raw already-encoded bytes, for variable-width opcodes
// (setInitN, pushStructInitSmall) whose shape this Builder does not wrap
// individually.
func (b *Builder) EmitRaw(bs ...byte) *Builder {
	b.ops = append(b.ops, bs...)
	return b
}

// AddConst appends v to the constant pool and returns its index.
func (b *Builder) AddConst(v value.Value) uint16 {
	idx := uint16(len(b.consts))
	b.consts = append(b.consts, v)
	return idx
}

// AddString appends s to the string arena and returns a ConstString
// Value pointing at it.
func (b *Builder) AddString(s string) value.Value {
	start := uint32(len(b.strBuf))
	b.strBuf = append(b.strBuf, s...)
	return value.InitConstString(start, uint32(len(s)))
}

// MarkDebugSym appends a debug-table entry at the current pc: the offset
// just past the most recently emitted instruction, which is the pc the VM
// holds (at a panic, or as a saved return address) once that instruction
// has been decoded.
func (b *Builder) MarkDebugSym(nodeIndex, frameNodeIndex uint32) *Builder {
	b.debugTable = append(b.debugTable, DebugSym{
		PC:             b.PC(),
		NodeIndex:      nodeIndex,
		FrameNodeIndex: frameNodeIndex,
	})
	return b
}

// PatchU16 overwrites a previously-emitted little-endian uint16 operand at
// byte offset pos, for backpatching a forward branch target once its
// destination pc is known.
func (b *Builder) PatchU16(pos uint32, val uint16) {
	binary.LittleEndian.PutUint16(b.ops[pos:pos+2], val)
}

// PatchU32 overwrites a previously-emitted little-endian uint32 operand.
func (b *Builder) PatchU32(pos uint32, val uint32) {
	binary.LittleEndian.PutUint32(b.ops[pos:pos+4], val)
}

// Build finalizes the Buffer with the given main-frame local-slot count.
func (b *Builder) Build(mainLocalSize uint32) *Buffer {
	return NewBuffer(BufferParams{
		Ops:           b.ops,
		Consts:        b.consts,
		StrBuf:        b.strBuf,
		DebugTable:    b.debugTable,
		MainLocalSize: mainLocalSize,
	})
}
