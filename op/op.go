// Package op defines the opcodes executed by the glint virtual machine's
// dispatch loop.
package op

// Code is a single opcode byte. The bytecode buffer's ops field is a flat
// []byte of opcode bytes interleaved with opcode-specific immediate
// operand bytes (see Info.OperandWidth).
type Code byte

const (
	Invalid Code = 0

	// Literals / load.
	PushTrue    Code = 1
	PushFalse   Code = 2
	PushNone    Code = 3
	PushConst   Code = 4 // idx uint16
	Load        Code = 5 // slot uint16
	LoadRetain  Code = 6 // slot uint16
	Set         Code = 7 // slot uint16
	ReleaseSet  Code = 8 // slot uint16
	SetInitN    Code = 9 // count uint16, then count*uint16 slots

	// Arithmetic.
	Add        Code = 20
	Sub        Code = 21
	Sub1       Code = 22 // a uint16, b uint16 -- direct slot-to-slot fast path
	Sub2       Code = 23 // a uint16, b uint16
	Mul        Code = 24
	Div        Code = 25
	Mod        Code = 26
	Pow        Code = 27
	Neg        Code = 28
	Not        Code = 29
	BitwiseAnd Code = 30

	// Comparison.
	Eq  Code = 40
	Neq Code = 41
	Lt  Code = 42
	Gt  Code = 43
	Le  Code = 44
	Ge  Code = 45

	// Branching.
	Jump             Code = 50 // off int16
	JumpBack         Code = 51 // off int16
	JumpCond         Code = 52 // off int16
	JumpNotCond      Code = 53 // off int16
	JumpCondKeep     Code = 54 // off int16
	JumpNotCondKeep  Code = 55 // off int16

	// Aggregates.
	PushList           Code = 60 // n uint16
	PushMapEmpty       Code = 61
	PushMap            Code = 62 // n uint16, constIdx uint16
	PushStructInitSmall Code = 63 // sid uint32, n uint16, then n*uint16 field offsets
	PushSlice          Code = 64

	// Indexing.
	PushIndex        Code = 70
	PushReverseIndex Code = 71
	SetIndex         Code = 72

	// Fields.
	PushField                     Code = 80 // fid uint32
	PushFieldRetain               Code = 81 // fid uint32
	PushFieldParentRelease        Code = 82 // fid uint32
	PushFieldRetainParentRelease  Code = 83 // fid uint32
	SetField                      Code = 84 // fid uint32
	ReleaseSetField               Code = 85 // fid uint32

	// Calls.
	Call0       Code = 90 // n uint16
	Call1       Code = 91 // n uint16
	CallSym0    Code = 92 // fid uint32, n uint16
	CallSym1    Code = 93 // fid uint32, n uint16
	CallObjSym0 Code = 94 // mid uint32, n uint16
	CallObjSym1 Code = 95 // mid uint32, n uint16

	// Closures & lambdas.
	PushLambda  Code = 100 // relPC uint32, nParams uint16, nLocals uint16
	PushClosure Code = 101 // relPC uint32, nParams uint16, nCaps uint16, nLocals uint16

	// Iteration.
	ForIter  Code = 110 // slot uint16, endOff int16
	ForRange Code = 111 // slot uint16, endOff int16

	// Returns.
	Ret0 Code = 120
	Ret1 Code = 121
	End  Code = 122
)

// OperandWidth describes how an opcode's immediate operands are encoded:
// a fixed byte count, or VariableWidth when the width depends on a count
// field in the operands (SetInitN's first operand, PushStructInitSmall's
// second).
const VariableWidth = -1

// Info describes one opcode: its mnemonic and immediate operand width in
// bytes (not counting the opcode byte itself).
type Info struct {
	Code          Code
	Name          string
	OperandWidth  int
}

var infos = make([]Info, 256)

func init() {
	table := []Info{
		{PushTrue, "PUSH_TRUE", 0},
		{PushFalse, "PUSH_FALSE", 0},
		{PushNone, "PUSH_NONE", 0},
		{PushConst, "PUSH_CONST", 2},
		{Load, "LOAD", 2},
		{LoadRetain, "LOAD_RETAIN", 2},
		{Set, "SET", 2},
		{ReleaseSet, "RELEASE_SET", 2},
		{SetInitN, "SET_INIT_N", VariableWidth},

		{Add, "ADD", 0},
		{Sub, "SUB", 0},
		{Sub1, "SUB1", 4},
		{Sub2, "SUB2", 4},
		{Mul, "MUL", 0},
		{Div, "DIV", 0},
		{Mod, "MOD", 0},
		{Pow, "POW", 0},
		{Neg, "NEG", 0},
		{Not, "NOT", 0},
		{BitwiseAnd, "BITWISE_AND", 0},

		{Eq, "EQ", 0},
		{Neq, "NEQ", 0},
		{Lt, "LT", 0},
		{Gt, "GT", 0},
		{Le, "LE", 0},
		{Ge, "GE", 0},

		{Jump, "JUMP", 2},
		{JumpBack, "JUMP_BACK", 2},
		{JumpCond, "JUMP_COND", 2},
		{JumpNotCond, "JUMP_NOT_COND", 2},
		{JumpCondKeep, "JUMP_COND_KEEP", 2},
		{JumpNotCondKeep, "JUMP_NOT_COND_KEEP", 2},

		{PushList, "PUSH_LIST", 2},
		{PushMapEmpty, "PUSH_MAP_EMPTY", 0},
		{PushMap, "PUSH_MAP", 4},
		{PushStructInitSmall, "PUSH_STRUCT_INIT_SMALL", VariableWidth},
		{PushSlice, "PUSH_SLICE", 0},

		{PushIndex, "PUSH_INDEX", 0},
		{PushReverseIndex, "PUSH_REVERSE_INDEX", 0},
		{SetIndex, "SET_INDEX", 0},

		{PushField, "PUSH_FIELD", 4},
		{PushFieldRetain, "PUSH_FIELD_RETAIN", 4},
		{PushFieldParentRelease, "PUSH_FIELD_PARENT_RELEASE", 4},
		{PushFieldRetainParentRelease, "PUSH_FIELD_RETAIN_PARENT_RELEASE", 4},
		{SetField, "SET_FIELD", 4},
		{ReleaseSetField, "RELEASE_SET_FIELD", 4},

		{Call0, "CALL0", 2},
		{Call1, "CALL1", 2},
		{CallSym0, "CALL_SYM0", 6},
		{CallSym1, "CALL_SYM1", 6},
		{CallObjSym0, "CALL_OBJ_SYM0", 6},
		{CallObjSym1, "CALL_OBJ_SYM1", 6},

		{PushLambda, "PUSH_LAMBDA", 8},
		{PushClosure, "PUSH_CLOSURE", 10},

		{ForIter, "FOR_ITER", 4},
		{ForRange, "FOR_RANGE", 4},

		{Ret0, "RET0", 0},
		{Ret1, "RET1", 0},
		{End, "END", 0},
	}
	for _, i := range table {
		infos[i.Code] = i
	}
}

// GetInfo returns the Info describing op.
func GetInfo(op Code) Info {
	return infos[op]
}
