package vm

import (
	"github.com/glint-lang/glint/heap"
	"github.com/glint-lang/glint/value"
)

// VM implements symbols.NativeHost so that native functions and methods
// registered in FuncSyms/MethodSyms can allocate, inspect, and panic
// through the same heap and trace machinery user bytecode uses.

// AllocString copies s into a fresh heap String object.
func (vm *VM) AllocString(s string) value.Value {
	v, err := vm.Heap.NewString([]byte(s))
	if err != nil {
		vm.Panic(err.Error())
		return value.None
	}
	return v
}

// ValueAsString returns the byte contents of a string-shaped Value,
// whether it is a constant-pool ConstString or a heap String object.
func (vm *VM) ValueAsString(v value.Value) []byte {
	if v.IsString() {
		start, length := v.AsConstString()
		return vm.buf.StringBytesAt(start, length)
	}
	if v.IsPointer() {
		obj := vm.Heap.Get(v.AsPointer())
		if obj.TypeID == heap.StringType {
			return obj.StringBytes()
		}
	}
	return nil
}

// Release and Retain delegate straight to the heap.
func (vm *VM) Release(v value.Value) { vm.Heap.Release(v) }
func (vm *VM) Retain(v value.Value)  { vm.Heap.Retain(v) }

// Panic flags the running native call as having failed. Unlike user
// bytecode's panicf (which returns immediately with a *trace.VMError),
// a native function is plain Go code with a normal return signature, so
// it cannot hand the VM an error value directly -- it calls host.Panic
// and then returns whatever zero value its signature requires. The
// dispatch loop checks pendingPanic immediately after the native call
// returns and converts it into a real VMError at that point.
func (vm *VM) Panic(msg string) {
	vm.panicMsg = msg
	vm.pendingPanic = true
}

// NewList and NewMap build heap aggregates on behalf of a native module
// (e.g. query.search decoding a JMESPath result tree back into Values).
func (vm *VM) NewList(elems []value.Value) value.Value {
	v, err := vm.Heap.NewList(elems)
	if err != nil {
		vm.Panic(err.Error())
		return value.None
	}
	return v
}

func (vm *VM) NewMap(keys, vals []value.Value) value.Value {
	v, err := vm.Heap.NewMap(keys, vals)
	if err != nil {
		vm.Panic(err.Error())
		return value.None
	}
	return v
}

// ListElems and MapPairs give a native module read access to an
// aggregate's contents without transferring ownership of any element.
func (vm *VM) ListElems(v value.Value) ([]value.Value, bool) {
	if !v.IsPointer() {
		return nil, false
	}
	obj := vm.Heap.Get(v.AsPointer())
	if obj.TypeID != heap.ListType {
		return nil, false
	}
	return obj.ListData(), true
}

func (vm *VM) MapPairs(v value.Value) (keys, vals []value.Value, ok bool) {
	if !v.IsPointer() {
		return nil, nil, false
	}
	obj := vm.Heap.Get(v.AsPointer())
	if obj.TypeID != heap.MapType {
		return nil, nil, false
	}
	keys = obj.MapKeys()
	vals = make([]value.Value, len(keys))
	for i, k := range keys {
		val, _ := obj.MapGet(k)
		vals[i] = val
	}
	return keys, vals, true
}

// NewHandle and HandleNative let a native module stash an opaque Go value
// (a *pgx.Conn, an s3 client, a decoded image.Image) behind a heap object
// tagged with a module-owned TypeID, so it participates in the ordinary
// refcounting/release lifecycle every other heap object does.
func (vm *VM) NewHandle(typeID uint32, native any, onRelease func(any)) value.Value {
	v, err := vm.Heap.NewNativeHandle(heap.TypeID(typeID), native, onRelease)
	if err != nil {
		vm.Panic(err.Error())
		return value.None
	}
	return v
}

func (vm *VM) HandleNative(v value.Value, typeID uint32) (native any, ok bool) {
	if !v.IsPointer() {
		return nil, false
	}
	obj := vm.Heap.Get(v.AsPointer())
	if obj.TypeID != heap.TypeID(typeID) {
		return nil, false
	}
	return obj.Native(), true
}
