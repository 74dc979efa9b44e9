package vm

import "github.com/glint-lang/glint/value"

// numericOperand coerces v to a float64 for the arithmetic fallback path:
// bool -> 1/0, none -> 0, string -> parsed (or 0), anything else panics.
// The fast path (isNumber && isNumber) never reaches this function.
func (vm *VM) numericOperand(v value.Value) (float64, bool) {
	if v.IsNumber() {
		return v.AsFloat(), true
	}
	tag, ok := v.GetTag()
	if !ok {
		return 0, false
	}
	switch tag {
	case value.TagNone, value.TagFalse:
		return 0, true
	case value.TagTrue:
		return 1, true
	case value.TagConstString:
		return v.ToFloat(vm.buf), true
	default:
		return 0, false
	}
}

// binArith implements the add/sub/mul/div/mod/pow fallback coercion
// table. mod deliberately does not replicate the source's asymmetric
// sign-dependent oversight for boolean/none operands (see DESIGN.md):
// every operand, regardless of operator, coerces through the same 0/1/
// parsed table.
func (vm *VM) binArith(a, b value.Value, apply func(x, y float64) float64) (value.Value, bool) {
	if a.IsNumber() && b.IsNumber() {
		return value.InitFloat(apply(a.AsFloat(), b.AsFloat())), true
	}
	af, ok := vm.numericOperand(a)
	if !ok {
		return value.None, false
	}
	bf, ok := vm.numericOperand(b)
	if !ok {
		return value.None, false
	}
	return value.InitFloat(apply(af, bf)), true
}

func opAdd(x, y float64) float64 { return x + y }
func opSub(x, y float64) float64 { return x - y }
func opMul(x, y float64) float64 { return x * y }
func opDiv(x, y float64) float64 { return x / y }
func opMod(x, y float64) float64 {
	// Truncated remainder, computed by hand: the result takes the sign of
	// x.
	q := float64(int64(x / y))
	return x - q*y
}

// cmpOp selects which of the eq/neq/lt/gt/le/ge opcodes compare evaluates.
type cmpOp int

const (
	cmpEq cmpOp = iota
	cmpNeq
	cmpLt
	cmpGt
	cmpLe
	cmpGe
)

// compare implements the heterogeneous comparison fallback: number-number
// is direct, string-string is byte equality (order by byte value for
// lt/gt/le/ge), pointer-pointer is identity, and all other pairs compare
// via the numeric coercion table.
func (vm *VM) compare(a, b value.Value, op cmpOp) (bool, bool) {
	if a.IsNumber() && b.IsNumber() {
		return compareFloats(a.AsFloat(), b.AsFloat(), op), true
	}
	if a.IsString() && b.IsString() {
		as, al := a.AsConstString()
		bs, bl := b.AsConstString()
		sa := vm.buf.StringAt(as, al)
		sb := vm.buf.StringAt(bs, bl)
		switch op {
		case cmpEq:
			return sa == sb, true
		case cmpNeq:
			return sa != sb, true
		case cmpLt:
			return sa < sb, true
		case cmpGt:
			return sa > sb, true
		case cmpLe:
			return sa <= sb, true
		case cmpGe:
			return sa >= sb, true
		}
	}
	if a.IsPointer() && b.IsPointer() {
		ident := a.AsPointer() == b.AsPointer()
		switch op {
		case cmpEq:
			return ident, true
		case cmpNeq:
			return !ident, true
		default:
			return false, false // ordering undefined for pointer identity
		}
	}
	af, ok := vm.numericOperand(a)
	if !ok {
		return false, false
	}
	bf, ok := vm.numericOperand(b)
	if !ok {
		return false, false
	}
	return compareFloats(af, bf, op), true
}

func compareFloats(a, b float64, op cmpOp) bool {
	switch op {
	case cmpEq:
		return a == b
	case cmpNeq:
		return a != b
	case cmpLt:
		return a < b
	case cmpGt:
		return a > b
	case cmpLe:
		return a <= b
	case cmpGe:
		return a >= b
	}
	return false
}
