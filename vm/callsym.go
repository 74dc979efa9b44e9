package vm

import (
	"github.com/glint-lang/glint/heap"
	"github.com/glint-lang/glint/symbols"
	"github.com/glint-lang/glint/value"
)

// execCallSym dispatches callSym0/callSym1: fid is a resolved function-
// symbol id (not a name -- name lookup already happened when the id was
// compiled in), n is the argument count on the stack. Native functions run
// inline with no VM frame; user functions build one via enterSymCall.
func (vm *VM) execCallSym(fid uint32, n uint16, hasReturn bool) error {
	entry := vm.FuncSyms.At(int(fid))
	switch entry.Kind {
	case symbols.FuncNone:
		return vm.panicf("Missing function symbol")
	case symbols.FuncNative:
		return vm.callNativeFunc(entry, n, hasReturn)
	default: // FuncUser
		required := uint8(0)
		if hasReturn {
			required = 1
		}
		return vm.enterSymCall(entry, n, required)
	}
}

// execCallObjSym dispatches callObjSym0/callObjSym1: mid is a method-
// symbol id, n is the total operand count including the trailing receiver.
// The receiver's concrete type drives MethodTable's promotion-ladder
// lookup described in spec.md §4.4.
func (vm *VM) execCallObjSym(mid uint32, n uint16, hasReturn bool) error {
	if n == 0 {
		return vm.panicf("method call requires a receiver operand")
	}
	receiver := vm.stack[vm.top-1]
	typeID, err := vm.receiverTypeID(receiver)
	if err != nil {
		return err
	}
	entry, ok := vm.MethodSyms.Lookup(int(mid), typeID)
	if !ok {
		return vm.panicf("missing method symbol")
	}
	required := uint8(0)
	if hasReturn {
		required = 1
	}
	switch entry.Kind {
	case symbols.MethodNativeOne, symbols.MethodNativeTwo:
		return vm.callNativeMethod(entry, n, hasReturn)
	default: // MethodUser
		return vm.enterMethodFrame(entry, uint32(n), required)
	}
}

func (vm *VM) receiverTypeID(receiver value.Value) (heap.TypeID, error) {
	if receiver.IsString() {
		return heap.StringType, nil
	}
	if !receiver.IsPointer() {
		return 0, vm.panicf("receiver has no methods")
	}
	return vm.Heap.Get(receiver.AsPointer()).TypeID, nil
}

// callNativeFunc runs a free native function inline: pops its n arguments
// (leaving the stack exactly as a user function's return would), invokes
// the Go closure, and pushes the result iff hasReturn.
func (vm *VM) callNativeFunc(entry symbols.FuncEntry, n uint16, hasReturn bool) error {
	args := append([]value.Value(nil), vm.stack[vm.top-uint32(n):vm.top]...)
	vm.top -= uint32(n)
	if vm.observer != nil {
		vm.observer.OnCall(entry.PC, int(n))
	}

	var result value.Value
	if entry.TwoReturn {
		var errVal value.Value
		result, errVal = entry.NativeTwo(vm, nil, args)
		if !errVal.IsNone() {
			return vm.panicf("%s", string(vm.ValueAsString(errVal)))
		}
	} else {
		result = entry.NativeOne(vm, nil, args)
	}
	if vm.pendingPanic {
		return vm.convertPendingPanic()
	}
	if hasReturn {
		vm.push(result)
	} else {
		vm.Heap.Release(result)
	}
	return nil
}

// callNativeMethod mirrors callNativeFunc but passes the receiver pointer
// separately, matching NativeOneReturn/NativeTwoReturn's (host, receiver,
// args) shape.
func (vm *VM) callNativeMethod(entry symbols.MethodEntry, n uint16, hasReturn bool) error {
	total := uint32(n)
	receiver := vm.stack[vm.top-1]
	args := append([]value.Value(nil), vm.stack[vm.top-total:vm.top-1]...)
	vm.top -= total
	if vm.observer != nil {
		vm.observer.OnCall(entry.PC, int(total))
	}

	var result value.Value
	switch entry.Kind {
	case symbols.MethodNativeTwo:
		var errVal value.Value
		result, errVal = entry.NativeTwo(vm, &receiver, args)
		if !errVal.IsNone() {
			vm.Heap.Release(receiver)
			return vm.panicf("%s", string(vm.ValueAsString(errVal)))
		}
	default:
		result = entry.NativeOne(vm, &receiver, args)
	}
	vm.Heap.Release(receiver)
	if vm.pendingPanic {
		return vm.convertPendingPanic()
	}
	if hasReturn {
		vm.push(result)
	} else {
		vm.Heap.Release(result)
	}
	return nil
}

// convertPendingPanic turns a host.Panic() flag raised inside a native
// call into a real *trace.VMError, matching user-bytecode panicf's
// unwind-and-report behavior.
func (vm *VM) convertPendingPanic() error {
	vm.pendingPanic = false
	return vm.panicf("%s", vm.panicMsg)
}
