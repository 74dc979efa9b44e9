package vm

import (
	"bytes"

	"github.com/glint-lang/glint/heap"
	"github.com/glint-lang/glint/op"
	"github.com/glint-lang/glint/value"
)

// mapFieldLookup is the map-by-name fallback spec.md §4.3 requires when a
// field-symbol dispatch misses (shape dynamic or never seen) and the
// receiver is a Map: scan its keys for one whose string content matches
// the field's source name, since a Map's keys carry no relation to the
// field-symbol id space a SmallObject's inline slots do.
func (vm *VM) mapFieldLookup(obj *heap.HeapObject, name string) (key, val value.Value, ok bool) {
	for _, k := range obj.MapKeys() {
		if bytes.Equal(vm.ValueAsString(k), []byte(name)) {
			v, ok := obj.MapGet(k)
			return k, v, ok
		}
	}
	return value.None, value.None, false
}

// execField handles the four pushField variants. All pop the parent
// object and push the resolved field value; the Retain/ParentRelease
// suffixes control the two independent refcount adjustments a compiler
// can fuse into the single opcode to avoid a separate retain/release pair:
// Retain bumps the field value's count before it leaves the object (for
// reads that keep the parent alive), ParentRelease additionally drops the
// parent's own count once its last field access is done.
func (vm *VM) execField(code op.Code, fieldID uint32) error {
	parent := vm.pop()
	if !parent.IsPointer() {
		return vm.panicf("field access on a non-object value")
	}
	obj := vm.Heap.Get(parent.AsPointer())
	var fieldVal value.Value
	if idx, ok := vm.FieldSyms.Lookup(int(fieldID), obj.TypeID); ok {
		fieldVal = obj.Fields()[idx]
	} else if obj.TypeID == heap.MapType {
		_, v, ok := vm.mapFieldLookup(obj, vm.FieldSyms.Name(int(fieldID)))
		if !ok {
			return vm.panicf("missing field symbol")
		}
		fieldVal = v
	} else {
		return vm.panicf("missing field symbol")
	}

	switch code {
	case op.PushFieldRetain, op.PushFieldRetainParentRelease:
		vm.Heap.Retain(fieldVal)
	}
	vm.push(fieldVal)
	switch code {
	case op.PushFieldParentRelease, op.PushFieldRetainParentRelease:
		vm.Heap.Release(parent)
	}
	return nil
}

// execSetField handles setField/releaseSetField: both pop (newValue,
// parent) in that order and store newValue at the field's inline slot.
// releaseSetField additionally releases the value being overwritten,
// matching the compiler's choice to fuse the two when the old value's
// ownership is known to end here.
func (vm *VM) execSetField(code op.Code, fieldID uint32) error {
	newVal := vm.pop()
	parent := vm.pop()
	if !parent.IsPointer() {
		return vm.panicf("field assignment on a non-object value")
	}
	obj := vm.Heap.Get(parent.AsPointer())
	idx, ok := vm.FieldSyms.Lookup(int(fieldID), obj.TypeID)
	if !ok {
		if obj.TypeID == heap.MapType {
			name := vm.FieldSyms.Name(int(fieldID))
			key, old, found := vm.mapFieldLookup(obj, name)
			if !found {
				key = vm.AllocString(name)
			} else if code == op.ReleaseSetField {
				vm.Heap.Release(old)
			}
			obj.MapSet(key, newVal)
			vm.Heap.Release(parent)
			return nil
		}
		return vm.panicf("missing field symbol")
	}
	fields := obj.Fields()
	if code == op.ReleaseSetField {
		vm.Heap.Release(fields[idx])
	}
	fields[idx] = newVal
	vm.Heap.Release(parent)
	return nil
}
