package vm

import "github.com/glint-lang/glint/value"

// errStackOverflow is a sentinel returned by the inner dispatch loop when
// a call-entry point finds the stack too small for the callee's locals.
// evalLoopGrowStack catches it, grows the stack by one slot, and resumes
// from the same pc/framePtr/top — the instruction that overflowed has not
// yet mutated any state, so re-entry safely redoes it. Growth is safe in
// Go because the dispatch loop only ever addresses the stack through
// vm.stack[idx]; no native pointer into the backing array survives a
// reallocation.
type stackOverflowSignal struct{}

func (stackOverflowSignal) Error() string { return "stack overflow" }

var errStackOverflow = stackOverflowSignal{}

// growStackTo enlarges the stack to at least n slots.
func (vm *VM) growStackTo(n uint32) {
	if uint32(len(vm.stack)) >= n {
		return
	}
	grown := make([]value.Value, n)
	copy(grown, vm.stack)
	for i := len(vm.stack); i < len(grown); i++ {
		grown[i] = value.None
	}
	vm.stack = grown
}

// growStackByOne enlarges the stack by exactly one slot, matching
// spec.md §4.3's "enlarges the stack by one slot and resumes".
func (vm *VM) growStackByOne() {
	vm.stack = append(vm.stack, value.None)
}

// ensureCapacity checks that the stack can hold through address top+n-1
// without growing; call-entry opcodes check this before committing any
// state mutation and signal errStackOverflow if it fails.
func (vm *VM) ensureCapacity(n uint32) bool {
	return vm.top+n <= uint32(len(vm.stack))
}

// push appends a Value at top and advances top. Callers at hot paths that
// already checked ensureCapacity may call this directly; opcodes that
// cannot statically bound growth (pushList with large n, etc.) should
// prefer growStackTo first.
func (vm *VM) push(v value.Value) {
	if vm.top >= uint32(len(vm.stack)) {
		vm.growStackByOne()
	}
	vm.stack[vm.top] = v
	vm.top++
}

// pop removes and returns the top Value.
func (vm *VM) pop() value.Value {
	vm.top--
	return vm.stack[vm.top]
}

// peek returns the Value n slots below top without removing it (n=0 is
// the top-most value).
func (vm *VM) peek(n uint32) value.Value {
	return vm.stack[vm.top-1-n]
}
