// Package vm implements the switch-dispatched interpreter loop described
// in spec.md §4.3-§4.5: a single contiguous value stack doubling as the
// call stack via in-band RetInfo frames, reference-counted heap objects,
// and polymorphic-inline-cache method/field/function dispatch.
package vm

import (
	"github.com/glint-lang/glint/bytecode"
	"github.com/glint-lang/glint/heap"
	"github.com/glint-lang/glint/symbols"
	"github.com/glint-lang/glint/trace"
	"github.com/glint-lang/glint/value"
)

// minStackSlots is the initial value-stack reservation spec.md §5
// requires ("pre-sizes the value stack (>=512 slots)").
const minStackSlots = 512

// mainFramePtr is the value stack slot reserved for the main frame's
// RetInfo. Every local-access opcode addresses a local at
// framePtr+1+slot, so the main frame needs a real (if never returned-to)
// RetInfo slot at a small, 16-bit-safe address the same way a called
// frame does -- unlike trace.NullFramePtr, this value is never used as
// a "no more frames" sentinel, and it is never stored back into a
// caller's prevFramePtr since main has no caller.
const mainFramePtr = 0

// Observer receives step/call/return/heap-growth notifications from the
// dispatch loop. A nil Observer is the default (silent); hosts that want
// structured logging implement this and wire it through SetObserver. This
// mirrors the teacher's nil-observer-by-default convention.
type Observer interface {
	OnStep(pc uint32, code byte)
	OnCall(funcPC uint32, numArgs int)
	OnReturn(framePtr uint32)
	OnHeapGrow(pageCount int)
	OnCycleCollect(foundCycle bool)
}

// VM is the interpreter core: heap, symbol tables, and the value stack.
// It is bound to one Buffer per eval call and is not safe for concurrent
// use, per spec.md §5.
type VM struct {
	Heap       *heap.Heap
	FuncSyms   *symbols.FuncTable
	FieldSyms  *symbols.FieldTable
	MethodSyms *symbols.MethodTable

	stack    []value.Value
	top      uint32
	framePtr uint32
	pc       uint32

	buf          *bytecode.Buffer
	panicMsg     string
	pendingPanic bool
	observer     Observer
}

// New constructs a VM bound to a fresh heap and empty symbol tables,
// pre-sizing the stack per spec.md §5's resource-lifecycle contract.
func New() *VM {
	return &VM{
		Heap:       heap.New(),
		FuncSyms:   symbols.NewFuncTable(),
		FieldSyms:  symbols.NewFieldTable(),
		MethodSyms: symbols.NewMethodTable(),
		stack:      make([]value.Value, minStackSlots),
		framePtr:   mainFramePtr,
	}
}

// SetObserver installs a logging/metrics hook. Pass nil to go silent
// again.
func (vm *VM) SetObserver(o Observer) { vm.observer = o }

func (vm *VM) notifyHeapGrowth() {
	if vm.observer != nil {
		vm.observer.OnHeapGrow(vm.Heap.PageCount())
	}
}

// reset clears panic state and rewinds the stack/frame pointer for a new
// eval call without freeing heap pages, per spec.md §5 ("Between runs,
// eval clears panicMsg, resets the stack, and rebinds to the new
// bytecode buffer without freeing heap pages").
func (vm *VM) reset(buf *bytecode.Buffer) {
	vm.buf = buf
	vm.panicMsg = ""
	vm.pendingPanic = false
	vm.pc = 0
	vm.framePtr = mainFramePtr
	vm.top = mainFramePtr + 1 + buf.MainLocalSize()
	if uint32(len(vm.stack)) < vm.top+2 {
		vm.growStackTo(vm.top + 2)
	}
	vm.stack[mainFramePtr] = value.InitRetInfo(0, trace.NullFramePtr, 0, false)
	for i := uint32(mainFramePtr + 1); i < vm.top; i++ {
		vm.stack[i] = value.None
	}
}

// Eval binds buf and runs the dispatch loop to completion, returning the
// single result Value left on the stack (in the slot just past main's
// locals) or None if the
// program produced none. A caller must Release the returned Value when
// done with it, per spec.md §6.
func (vm *VM) Eval(buf *bytecode.Buffer) (value.Value, error) {
	vm.reset(buf)
	if err := vm.evalLoopGrowStack(); err != nil {
		return value.None, err
	}
	resultSlot := mainFramePtr + 1 + buf.MainLocalSize()
	if vm.top == resultSlot+1 {
		return vm.stack[resultSlot], nil
	}
	return value.None, nil
}

// PanicMsg returns the message recorded by the most recent Panic, or "".
func (vm *VM) PanicMsg() string { return vm.panicMsg }

// CheckMemory runs the cycle-detector sweep over the live heap. Exposed
// purely as a debugging hook per spec.md §4.2; eval never calls it
// automatically. An installed Observer receives OnCycleCollect with
// whether the sweep found a cycle.
func (vm *VM) CheckMemory() bool {
	ok := vm.Heap.CheckMemory()
	if vm.observer != nil {
		vm.observer.OnCycleCollect(!ok)
	}
	return ok
}

// StackTrace materializes the current call chain via trace.Unwind,
// satisfying trace.FrameWalker by delegating pc->(name,line,col)
// resolution to the bound Buffer's debug table.
func (vm *VM) StackTrace() ([]trace.Frame, error) {
	return trace.Unwind(vm, vm.framePtr, vm.pc)
}

// RetInfoAt implements trace.FrameWalker.
func (vm *VM) RetInfoAt(framePtr uint32) value.Value {
	return vm.stack[framePtr]
}

// DebugSymFor implements trace.FrameWalker, resolving a pc to a function
// name and source position via the bound Buffer's debug table. "main" is
// synthesized when the covering entry's FrameNodeIndex is
// bytecode.NullNodeIndex.
func (vm *VM) DebugSymFor(pc uint32) (string, int, int, bool) {
	sym, ok := vm.buf.DebugSymFor(pc)
	if !ok {
		return "", 0, 0, false
	}
	if sym.FrameNodeIndex == bytecode.NullNodeIndex {
		return "main", int(sym.NodeIndex), 0, true
	}
	return functionNameForNode(sym.FrameNodeIndex), int(sym.NodeIndex), 0, true
}

// functionNameForNode is a placeholder for the name table a real compiler
// would hand the VM alongside the debug table; spec.md's ByteCodeBuffer
// contract carries only node indices, so without a compiler-supplied name
// table a synthetic name is the best available default.
func functionNameForNode(frameNodeIndex uint32) string {
	return "fn"
}
