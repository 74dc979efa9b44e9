package vm

import (
	"fmt"

	"github.com/glint-lang/glint/heap"
	"github.com/glint-lang/glint/symbols"
	"github.com/glint-lang/glint/trace"
	"github.com/glint-lang/glint/value"
)

// calleeInfo is what a value-callee (Lambda or Closure) resolves to: the
// entry point plus the frame layout the call site must build.
type calleeInfo struct {
	funcPC     uint32
	numParams  uint16
	numLocals  uint16
	captures   []value.Value // non-nil only for Closures
}

func (vm *VM) resolveCallee(callee value.Value) (calleeInfo, bool) {
	if !callee.IsPointer() {
		return calleeInfo{}, false
	}
	obj := vm.Heap.Get(callee.AsPointer())
	switch obj.TypeID {
	case heap.LambdaType:
		pc, numParams, numLocals := obj.LambdaInfo()
		return calleeInfo{funcPC: pc, numParams: numParams, numLocals: numLocals}, true
	case heap.ClosureType:
		pc, numParams, numCaptured, numLocals := obj.ClosureInfo()
		caps := make([]value.Value, numCaptured)
		for i := uint16(0); i < numCaptured; i++ {
			caps[i] = obj.CapturedAt(i)
		}
		return calleeInfo{funcPC: pc, numParams: numParams, numLocals: numLocals, captures: caps}, true
	default:
		return calleeInfo{}, false
	}
}

// enterValueCall builds a new frame for call0/call1: n is the total
// operand count including the trailing callee slot. The callee value
// itself is preserved as local slot numParams (the params shift up one
// slot so the frame's first slot can hold the RetInfo), giving the callee
// body a zero-lookup self-reference -- the same slot a method body would
// read as its receiver.
func (vm *VM) enterValueCall(n uint16, requiredReturns uint8) error {
	total := uint32(n)
	if total == 0 {
		return vm.panicf("call requires at least a callee operand")
	}
	calleeVal := vm.stack[vm.top-1]
	info, ok := vm.resolveCallee(calleeVal)
	if !ok {
		return vm.panicf("value is not callable")
	}
	numParams := uint32(info.numParams)
	if numParams != total-1 {
		return vm.panicf("wrong number of arguments: got %d, want %d", total-1, numParams)
	}

	extra := uint32(1) + uint32(len(info.captures)) // preserved callee + captures
	frameSlots := uint32(info.numLocals) + 1          // +1 for RetInfo
	if !vm.ensureCapacity(frameSlots + extra) {
		return errStackOverflow
	}

	newFramePtr := vm.top - total
	// Shift params up by one slot to make room for RetInfo at slot 0.
	for i := int32(numParams) - 1; i >= 0; i-- {
		vm.stack[newFramePtr+1+uint32(i)] = vm.stack[newFramePtr+uint32(i)]
	}
	vm.stack[newFramePtr+1+numParams] = calleeVal // preserved self/receiver

	base := newFramePtr + 1 + numParams + 1
	for i, cap := range info.captures {
		vm.stack[base+uint32(i)] = cap
		vm.Heap.Retain(cap)
	}
	nextFree := base + uint32(len(info.captures))
	totalLocals := newFramePtr + 1 + uint32(info.numLocals)
	for addr := nextFree; addr < totalLocals; addr++ {
		vm.stack[addr] = value.None
	}

	vm.stack[newFramePtr] = value.InitRetInfo(vm.pc, vm.framePtr, requiredReturns, true)
	vm.framePtr = newFramePtr
	vm.pc = info.funcPC
	vm.top = totalLocals
	if vm.observer != nil {
		vm.observer.OnCall(info.funcPC, int(numParams))
	}
	return nil
}

// enterSymCall builds a new frame for callSym0/1 and callObjSym0/1: n is
// the actual argument count (no trailing callee slot, since the callee
// is resolved statically by id).
func (vm *VM) enterSymCall(entry symbols.FuncEntry, n uint16, requiredReturns uint8) error {
	total := uint32(n)
	frameSlots := uint32(entry.NumLocals) + 1
	if !vm.ensureCapacity(frameSlots) {
		return errStackOverflow
	}
	newFramePtr := vm.top - total
	for i := int32(total) - 1; i >= 0; i-- {
		vm.stack[newFramePtr+1+uint32(i)] = vm.stack[newFramePtr+uint32(i)]
	}
	totalLocals := newFramePtr + 1 + uint32(entry.NumLocals)
	for addr := newFramePtr + 1 + total; addr < totalLocals; addr++ {
		vm.stack[addr] = value.None
	}
	vm.stack[newFramePtr] = value.InitRetInfo(vm.pc, vm.framePtr, requiredReturns, true)
	vm.framePtr = newFramePtr
	vm.pc = entry.PC
	vm.top = totalLocals
	if vm.observer != nil {
		vm.observer.OnCall(entry.PC, int(total))
	}
	return nil
}

// enterMethodFrame is enterSymCall's counterpart for user-defined methods
// resolved through MethodTable: total includes the trailing receiver
// operand (mirroring enterValueCall's preserved-callee slot), so it lands
// at local index total-1 once shifted -- the method body's self/receiver
// reference.
func (vm *VM) enterMethodFrame(entry symbols.MethodEntry, total uint32, requiredReturns uint8) error {
	frameSlots := uint32(entry.NumLocals) + 1
	if !vm.ensureCapacity(frameSlots) {
		return errStackOverflow
	}
	newFramePtr := vm.top - total
	for i := int32(total) - 1; i >= 0; i-- {
		vm.stack[newFramePtr+1+uint32(i)] = vm.stack[newFramePtr+uint32(i)]
	}
	totalLocals := newFramePtr + 1 + uint32(entry.NumLocals)
	for addr := newFramePtr + 1 + total; addr < totalLocals; addr++ {
		vm.stack[addr] = value.None
	}
	vm.stack[newFramePtr] = value.InitRetInfo(vm.pc, vm.framePtr, requiredReturns, true)
	vm.framePtr = newFramePtr
	vm.pc = entry.PC
	vm.top = totalLocals
	if vm.observer != nil {
		vm.observer.OnCall(entry.PC, int(total))
	}
	return nil
}

// popStackFrame reconciles the number of values the returning frame
// produced against the RetInfo's required-return-count, per spec.md
// §4.3, then restores pc and framePtr. Every local slot the frame owned
// (params, preserved self/callee, captures, true locals) is released
// before the frame disappears, except the one slot carrying the return
// value forward -- a function that wants to hand a local back to its
// caller must have retained it first (LoadRetain), since plain Load only
// produces a borrowed copy that this blanket release would otherwise
// invalidate.
func (vm *VM) popStackFrame(numProduced int) bool {
	ret := vm.stack[vm.framePtr]
	retPC, prevFramePtr, required, cont := ret.AsRetInfo()

	frameStart := vm.framePtr + 1
	oldTop := vm.top
	keepSlot := oldTop // oldTop means "no slot to keep"
	if numProduced == 1 {
		keepSlot = oldTop - 1
	}
	for addr := frameStart; addr < oldTop; addr++ {
		if addr == keepSlot {
			continue
		}
		vm.Heap.Release(vm.stack[addr])
	}

	switch {
	case numProduced == int(required):
		if required == 1 {
			vm.stack[vm.framePtr] = vm.stack[keepSlot]
			vm.top = vm.framePtr + 1
		} else {
			vm.top = vm.framePtr
		}
	case numProduced == 0 && required == 1:
		vm.growStackTo(vm.framePtr + 1)
		vm.stack[vm.framePtr] = value.None
		vm.top = vm.framePtr + 1
	case numProduced == 1 && required == 0:
		vm.Heap.Release(vm.stack[keepSlot])
		vm.top = vm.framePtr
	}

	vm.pc = retPC
	vm.framePtr = prevFramePtr
	if vm.observer != nil {
		vm.observer.OnReturn(prevFramePtr)
	}
	return cont
}

func (vm *VM) panicf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	vm.panicMsg = msg
	frames, unwindErr := vm.StackTrace()
	if unwindErr != nil {
		return unwindErr
	}
	return trace.Panic(msg, frames)
}
