package vm

import (
	"github.com/glint-lang/glint/heap"
	"github.com/glint-lang/glint/value"
)

// execForIter drives a single step of a for-in loop over a List, Map, or
// String bound to local slot `slot`. Like Python's FOR_ITER, the opcode
// itself is the loop head: each time control reaches it, it either pushes
// the next element and falls into the body at bodyPC, or -- once the
// cursor is exhausted -- resets the cursor and jumps past the body to
// endPC. The body is ordinary bytecode ending in a JumpBack to this same
// instruction; no separate recursive dispatch is needed since the flat
// loop in evalLoop already revisits the instruction on each iteration.
func (vm *VM) execForIter(slot uint16, bodyPC, endPC uint32) error {
	collVal := vm.stack[vm.framePtr+1+uint32(slot)]
	if !collVal.IsPointer() {
		return vm.panicf("for-in requires an iterable value")
	}
	obj := vm.Heap.Get(collVal.AsPointer())

	var length int
	switch obj.TypeID {
	case heap.ListType:
		length = len(obj.ListData())
	case heap.MapType:
		length = obj.MapLen()
	case heap.StringType:
		length = len(obj.StringBytes())
	default:
		return vm.panicf("value is not iterable")
	}

	cursor := obj.IterCursor()
	if cursor >= length {
		obj.SetIterCursor(0)
		vm.pc = endPC
		return nil
	}
	obj.SetIterCursor(cursor + 1)

	switch obj.TypeID {
	case heap.ListType:
		elem := obj.ListData()[cursor]
		vm.Heap.Retain(elem)
		vm.push(elem)
	case heap.MapType:
		key := obj.MapKeys()[cursor]
		vm.Heap.Retain(key)
		vm.push(key)
	case heap.StringType:
		b := obj.StringBytes()[cursor]
		v, err := vm.Heap.NewString([]byte{b})
		if err != nil {
			return vm.outOfMemory(err)
		}
		vm.push(v)
	}
	vm.pc = bodyPC
	return nil
}

// execForRange drives a counted loop. The compiler reserves three
// consecutive locals starting at `slot` -- current, limit, step -- and
// initializes them before the first visit to this opcode; each visit
// checks the bound (direction determined by step's sign), and either
// pushes the current counter and advances into the body, or jumps past it
// once the bound is reached.
func (vm *VM) execForRange(slot uint16, bodyPC, endPC uint32) error {
	base := vm.framePtr + 1 + uint32(slot)
	current := vm.stack[base].AsFloat()
	limit := vm.stack[base+1].AsFloat()
	step := vm.stack[base+2].AsFloat()

	inBounds := current < limit
	if step < 0 {
		inBounds = current > limit
	}
	if !inBounds {
		vm.pc = endPC
		return nil
	}

	vm.push(value.InitFloat(current))
	vm.stack[base] = value.InitFloat(current + step)
	vm.pc = bodyPC
	return nil
}
