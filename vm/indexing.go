package vm

import (
	"github.com/glint-lang/glint/heap"
	"github.com/glint-lang/glint/value"
)

// normalizeIndex applies Python-style negative indexing against length,
// returning false if the result still falls outside [0, length).
func normalizeIndex(i int, length int) (int, bool) {
	if i < 0 {
		i += length
	}
	return i, i >= 0 && i < length
}

// execIndex handles pushIndex/pushReverseIndex: pops (index, collection)
// and pushes the resolved element. reverse indexes from the end, matching
// a negative-literal index folded at compile time into its own opcode.
func (vm *VM) execIndex(reverse bool) error {
	idxVal := vm.pop()
	coll := vm.pop()
	if !idxVal.IsNumber() {
		return vm.panicf("index must be a number")
	}
	idx := int(idxVal.AsFloat())
	if reverse {
		idx = -idx
		idxVal = value.InitFloat(-idxVal.AsFloat())
	}

	if !coll.IsPointer() {
		return vm.panicf("value is not indexable")
	}
	obj := vm.Heap.Get(coll.AsPointer())
	switch obj.TypeID {
	case heap.ListType:
		data := obj.ListData()
		i, ok := normalizeIndex(idx, len(data))
		if !ok {
			return vm.panicf("list index out of range")
		}
		elem := data[i]
		vm.Heap.Retain(elem)
		vm.push(elem)
	case heap.StringType:
		data := obj.StringBytes()
		i, ok := normalizeIndex(idx, len(data))
		if !ok {
			return vm.panicf("string index out of range")
		}
		v, err := vm.Heap.NewString([]byte{data[i]})
		if err != nil {
			return vm.outOfMemory(err)
		}
		vm.push(v)
	case heap.MapType:
		v, ok := obj.MapGet(idxVal)
		if !ok {
			return vm.panicf("key not found")
		}
		vm.Heap.Retain(v)
		vm.push(v)
	default:
		return vm.panicf("value is not indexable")
	}
	vm.Heap.Release(coll)
	return nil
}

// execSetIndex handles setIndex: pops (value, index, collection) and
// stores value at the resolved position. The collection keeps the stack
// value's ownership (no retain); any value it displaces is released.
func (vm *VM) execSetIndex() error {
	newVal := vm.pop()
	idxVal := vm.pop()
	coll := vm.pop()
	if !coll.IsPointer() {
		return vm.panicf("value does not support index assignment")
	}
	obj := vm.Heap.Get(coll.AsPointer())
	switch obj.TypeID {
	case heap.ListType:
		if !idxVal.IsNumber() {
			return vm.panicf("index must be a number")
		}
		data := obj.ListData()
		i, ok := normalizeIndex(int(idxVal.AsFloat()), len(data))
		if !ok {
			return vm.panicf("list index out of range")
		}
		vm.Heap.Release(data[i])
		data[i] = newVal
	case heap.MapType:
		if old, ok := obj.MapGet(idxVal); ok {
			vm.Heap.Release(old)
		}
		obj.MapSet(idxVal, newVal)
	default:
		return vm.panicf("value does not support index assignment")
	}
	vm.Heap.Release(coll)
	return nil
}

// execSlice handles pushSlice: pops (end, start, collection) and pushes a
// freshly-allocated sub-collection. None for either bound means "to the
// edge" (start defaults to 0, end to length).
func (vm *VM) execSlice() error {
	endVal := vm.pop()
	startVal := vm.pop()
	coll := vm.pop()
	if !coll.IsPointer() {
		return vm.panicf("value is not sliceable")
	}
	obj := vm.Heap.Get(coll.AsPointer())

	var length int
	switch obj.TypeID {
	case heap.ListType:
		length = len(obj.ListData())
	case heap.StringType:
		length = len(obj.StringBytes())
	default:
		return vm.panicf("value is not sliceable")
	}

	start := 0
	if !startVal.IsNone() {
		start = int(startVal.AsFloat())
		if start < 0 {
			start += length
		}
	}
	end := length
	if !endVal.IsNone() {
		end = int(endVal.AsFloat())
		if end < 0 {
			end += length
		}
	}
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if end < start {
		end = start
	}

	switch obj.TypeID {
	case heap.ListType:
		data := obj.ListData()[start:end]
		elems := make([]value.Value, len(data))
		for i, v := range data {
			vm.Heap.Retain(v)
			elems[i] = v
		}
		v, err := vm.Heap.NewList(elems)
		if err != nil {
			return vm.outOfMemory(err)
		}
		vm.push(v)
	case heap.StringType:
		data := obj.StringBytes()[start:end]
		v, err := vm.Heap.NewString(append([]byte(nil), data...))
		if err != nil {
			return vm.outOfMemory(err)
		}
		vm.push(v)
	}
	vm.Heap.Release(coll)
	return nil
}
