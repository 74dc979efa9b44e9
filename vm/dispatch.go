package vm

import (
	"math"

	"github.com/glint-lang/glint/heap"
	"github.com/glint-lang/glint/op"
	"github.com/glint-lang/glint/trace"
	"github.com/glint-lang/glint/value"
)

// evalLoopGrowStack is the outer driver spec.md §4.3 describes: it
// re-enters evalLoop whenever the inner loop signals errStackOverflow,
// growing the stack by one slot each time. Because evalLoop never holds a
// native pointer into vm.stack across an iteration boundary, growth is
// always safe to perform between retries.
func (vm *VM) evalLoopGrowStack() error {
	for {
		err := vm.evalLoop()
		if err == errStackOverflow {
			vm.growStackByOne()
			if vm.observer != nil {
				vm.observer.OnHeapGrow(vm.Heap.PageCount())
			}
			continue
		}
		return err
	}
}

// evalLoop is the switch-dispatched evaluator over ops[pc]. It returns
// nil on normal `end`, errStackOverflow to request a grow-and-retry, or a
// *trace.VMError on Panic/OutOfMemory/NoDebugSym.
func (vm *VM) evalLoop() error {
	buf := vm.buf
	for {
		if vm.observer != nil {
			vm.observer.OnStep(vm.pc, buf.OpAt(vm.pc))
		}
		code := op.Code(buf.OpAt(vm.pc))
		switch code {

		case op.PushTrue:
			vm.pc++
			vm.push(value.True)

		case op.PushFalse:
			vm.pc++
			vm.push(value.False)

		case op.PushNone:
			vm.pc++
			vm.push(value.None)

		case op.PushConst:
			idx := buf.ReadU16(vm.pc + 1)
			vm.pc += 3
			vm.push(buf.ConstantAt(idx))

		case op.Load:
			slot := buf.ReadU16(vm.pc + 1)
			vm.pc += 3
			vm.push(vm.stack[vm.framePtr+1+uint32(slot)])

		case op.LoadRetain:
			slot := buf.ReadU16(vm.pc + 1)
			vm.pc += 3
			v := vm.stack[vm.framePtr+1+uint32(slot)]
			vm.Heap.Retain(v)
			vm.push(v)

		case op.Set:
			slot := buf.ReadU16(vm.pc + 1)
			vm.pc += 3
			vm.stack[vm.framePtr+1+uint32(slot)] = vm.pop()

		case op.ReleaseSet:
			slot := buf.ReadU16(vm.pc + 1)
			vm.pc += 3
			addr := vm.framePtr + 1 + uint32(slot)
			vm.Heap.Release(vm.stack[addr])
			vm.stack[addr] = vm.pop()

		case op.SetInitN:
			count := buf.ReadU16(vm.pc + 1)
			vm.pc += 3
			for i := uint16(0); i < count; i++ {
				slot := buf.ReadU16(vm.pc)
				vm.pc += 2
				vm.stack[vm.framePtr+1+uint32(slot)] = value.None
			}

		case op.Add:
			vm.pc++
			if err := vm.binOp(opAdd); err != nil {
				return err
			}
		case op.Sub:
			vm.pc++
			if err := vm.binOp(opSub); err != nil {
				return err
			}
		case op.Sub1, op.Sub2:
			a := buf.ReadU16(vm.pc + 1)
			b := buf.ReadU16(vm.pc + 3)
			vm.pc += 5
			av := vm.stack[vm.framePtr+1+uint32(a)]
			bv := vm.stack[vm.framePtr+1+uint32(b)]
			result, ok := vm.binArith(av, bv, opSub)
			if !ok {
				return vm.panicf("cannot subtract these operand types")
			}
			vm.push(result)
		case op.Mul:
			vm.pc++
			if err := vm.binOp(opMul); err != nil {
				return err
			}
		case op.Div:
			vm.pc++
			if err := vm.binOp(opDiv); err != nil {
				return err
			}
		case op.Mod:
			vm.pc++
			if err := vm.binOp(opMod); err != nil {
				return err
			}
		case op.Pow:
			vm.pc++
			if err := vm.binOp(powFloat); err != nil {
				return err
			}
		case op.Neg:
			vm.pc++
			v := vm.pop()
			if !v.IsNumber() {
				return vm.panicf("cannot negate a non-number")
			}
			vm.push(value.InitFloat(-v.AsFloat()))
		case op.Not:
			vm.pc++
			v := vm.pop()
			vm.push(value.InitBool(!v.ToBool()))
		case op.BitwiseAnd:
			vm.pc++
			b := vm.pop()
			a := vm.pop()
			if !a.IsNumber() || !b.IsNumber() {
				return vm.panicf("bitwise-and requires numeric operands")
			}
			vm.push(value.InitFloat(float64(int64(a.AsFloat()) & int64(b.AsFloat()))))

		case op.Eq, op.Neq, op.Lt, op.Gt, op.Le, op.Ge:
			vm.pc++
			if err := vm.cmpDispatch(code); err != nil {
				return err
			}

		case op.Jump:
			off := buf.ReadI16(vm.pc + 1)
			vm.pc = uint32(int32(vm.pc+3) + int32(off))
		case op.JumpBack:
			off := buf.ReadI16(vm.pc + 1)
			vm.pc = uint32(int32(vm.pc+3) - int32(off))
		case op.JumpCond:
			off := buf.ReadI16(vm.pc + 1)
			vm.pc += 3
			if vm.pop().ToBool() {
				vm.pc = uint32(int32(vm.pc) + int32(off))
			}
		case op.JumpNotCond:
			off := buf.ReadI16(vm.pc + 1)
			vm.pc += 3
			if !vm.pop().ToBool() {
				vm.pc = uint32(int32(vm.pc) + int32(off))
			}
		case op.JumpCondKeep:
			off := buf.ReadI16(vm.pc + 1)
			vm.pc += 3
			if vm.peek(0).ToBool() {
				vm.pc = uint32(int32(vm.pc) + int32(off))
			} else {
				vm.pop()
			}
		case op.JumpNotCondKeep:
			off := buf.ReadI16(vm.pc + 1)
			vm.pc += 3
			if !vm.peek(0).ToBool() {
				vm.pc = uint32(int32(vm.pc) + int32(off))
			} else {
				vm.pop()
			}

		case op.PushList:
			n := buf.ReadU16(vm.pc + 1)
			vm.pc += 3
			elems := make([]value.Value, n)
			copy(elems, vm.stack[vm.top-uint32(n):vm.top])
			vm.top -= uint32(n)
			v, err := vm.Heap.NewList(elems)
			if err != nil {
				return vm.outOfMemory(err)
			}
			vm.push(v)

		case op.PushMapEmpty:
			vm.pc++
			v, err := vm.Heap.NewMap(nil, nil)
			if err != nil {
				return vm.outOfMemory(err)
			}
			vm.push(v)

		case op.PushMap:
			n := buf.ReadU16(vm.pc + 1)
			_ = buf.ReadU16(vm.pc + 3) // constIdx: reserved for interned key table, unused by hand-built test bytecode
			vm.pc += 5
			vals := make([]value.Value, n)
			copy(vals, vm.stack[vm.top-uint32(n):vm.top])
			vm.top -= uint32(n)
			keys := make([]value.Value, n/2)
			values := make([]value.Value, n/2)
			for i := uint16(0); i < n/2; i++ {
				keys[i] = vals[2*i]
				values[i] = vals[2*i+1]
			}
			v, err := vm.Heap.NewMap(keys, values)
			if err != nil {
				return vm.outOfMemory(err)
			}
			vm.push(v)

		case op.PushStructInitSmall:
			sid := buf.ReadU32(vm.pc + 1)
			n := buf.ReadU16(vm.pc + 5)
			offsetsPC := vm.pc + 7
			vm.pc = offsetsPC + uint32(n)*2
			vals := make([]value.Value, n)
			copy(vals, vm.stack[vm.top-uint32(n):vm.top])
			vm.top -= uint32(n)
			fields := [heap.MaxInlineFields]value.Value{value.None, value.None, value.None, value.None}
			for i := uint16(0); i < n; i++ {
				offset := buf.ReadU16(offsetsPC + uint32(i)*2)
				fields[offset] = vals[i]
			}
			v, err := vm.Heap.NewSmallObject(heap.TypeID(sid), fields[:])
			if err != nil {
				return vm.outOfMemory(err)
			}
			vm.push(v)

		case op.PushSlice:
			vm.pc++
			if err := vm.execSlice(); err != nil {
				return err
			}

		case op.PushIndex:
			vm.pc++
			if err := vm.execIndex(false); err != nil {
				return err
			}
		case op.PushReverseIndex:
			vm.pc++
			if err := vm.execIndex(true); err != nil {
				return err
			}
		case op.SetIndex:
			vm.pc++
			if err := vm.execSetIndex(); err != nil {
				return err
			}

		case op.PushField, op.PushFieldRetain, op.PushFieldParentRelease, op.PushFieldRetainParentRelease:
			fid := buf.ReadU32(vm.pc + 1)
			vm.pc += 5
			if err := vm.execField(code, fid); err != nil {
				return err
			}
		case op.SetField, op.ReleaseSetField:
			fid := buf.ReadU32(vm.pc + 1)
			vm.pc += 5
			if err := vm.execSetField(code, fid); err != nil {
				return err
			}

		case op.Call0, op.Call1:
			n := buf.ReadU16(vm.pc + 1)
			vm.pc += 3
			required := uint8(0)
			if code == op.Call1 {
				required = 1
			}
			if err := vm.enterValueCall(n, required); err != nil {
				if err == errStackOverflow {
					vm.pc -= 3 // redo this call once the stack has grown
				}
				return err
			}
		case op.CallSym0, op.CallSym1:
			fid := buf.ReadU32(vm.pc + 1)
			n := buf.ReadU16(vm.pc + 5)
			vm.pc += 7
			if err := vm.execCallSym(fid, n, code == op.CallSym1); err != nil {
				if err == errStackOverflow {
					vm.pc -= 7
				}
				return err
			}
		case op.CallObjSym0, op.CallObjSym1:
			mid := buf.ReadU32(vm.pc + 1)
			n := buf.ReadU16(vm.pc + 5)
			vm.pc += 7
			if err := vm.execCallObjSym(mid, n, code == op.CallObjSym1); err != nil {
				if err == errStackOverflow {
					vm.pc -= 7
				}
				return err
			}

		case op.PushLambda:
			relPC := buf.ReadU32(vm.pc + 1)
			nParams := buf.ReadU16(vm.pc + 5)
			nLocals := buf.ReadU16(vm.pc + 7)
			vm.pc += 9
			v, err := vm.Heap.NewLambda(relPC, nParams, nLocals)
			if err != nil {
				return vm.outOfMemory(err)
			}
			vm.push(v)

		case op.PushClosure:
			relPC := buf.ReadU32(vm.pc + 1)
			nParams := buf.ReadU16(vm.pc + 5)
			nCaps := buf.ReadU16(vm.pc + 7)
			nLocals := buf.ReadU16(vm.pc + 9)
			vm.pc += 11
			caps := make([]value.Value, nCaps)
			copy(caps, vm.stack[vm.top-uint32(nCaps):vm.top])
			vm.top -= uint32(nCaps)
			v, err := vm.Heap.NewClosure(relPC, nParams, nLocals, caps)
			if err != nil {
				return vm.outOfMemory(err)
			}
			vm.push(v)

		case op.ForIter:
			slot := buf.ReadU16(vm.pc + 1)
			endOff := buf.ReadI16(vm.pc + 3)
			bodyPC := vm.pc + 5
			endPC := uint32(int32(vm.pc+5) + int32(endOff))
			if err := vm.execForIter(slot, bodyPC, endPC); err != nil {
				return err
			}

		case op.ForRange:
			slot := buf.ReadU16(vm.pc + 1)
			endOff := buf.ReadI16(vm.pc + 3)
			bodyPC := vm.pc + 5
			endPC := uint32(int32(vm.pc+5) + int32(endOff))
			if err := vm.execForRange(slot, bodyPC, endPC); err != nil {
				return err
			}

		case op.Ret0:
			if !vm.popStackFrame(0) {
				return nil
			}
		case op.Ret1:
			rv := vm.pop()
			vm.push(rv)
			if !vm.popStackFrame(1) {
				return nil
			}

		case op.End:
			return nil

		default:
			return vm.panicf("invalid opcode %d at pc %d", code, vm.pc)
		}
	}
}

func (vm *VM) binOp(apply func(x, y float64) float64) error {
	b := vm.pop()
	a := vm.pop()
	result, ok := vm.binArith(a, b, apply)
	if !ok {
		return vm.panicf("unsupported operand types for arithmetic")
	}
	vm.push(result)
	return nil
}

func (vm *VM) cmpDispatch(code op.Code) error {
	var cop cmpOp
	switch code {
	case op.Eq:
		cop = cmpEq
	case op.Neq:
		cop = cmpNeq
	case op.Lt:
		cop = cmpLt
	case op.Gt:
		cop = cmpGt
	case op.Le:
		cop = cmpLe
	case op.Ge:
		cop = cmpGe
	}
	b := vm.pop()
	a := vm.pop()
	result, ok := vm.compare(a, b, cop)
	if !ok {
		return vm.panicf("unsupported operand types for comparison")
	}
	vm.push(value.InitBool(result))
	return nil
}

func powFloat(x, y float64) float64 {
	return math.Pow(x, y)
}

// outOfMemory converts a heap allocation failure into the VM's panic
// state, matching spec.md's OutOfMemory recovery kind.
func (vm *VM) outOfMemory(err error) error {
	vm.panicMsg = err.Error()
	return trace.OutOfMemory(err.Error())
}
