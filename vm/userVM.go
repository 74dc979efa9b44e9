package vm

import (
	"github.com/glint-lang/glint/bytecode"
	"github.com/glint-lang/glint/symbols"
	"github.com/glint-lang/glint/trace"
	"github.com/glint-lang/glint/value"
)

// UserVM is the embedding-host facade of spec.md §6: a thin wrapper
// around VM that holds one bytecode Buffer at a time (Compile replaces it) and
// exposes the handful of operations an embedder needs -- init, eval,
// value release, string marshaling, and postmortem diagnostics -- without
// handing out the VM's internal stack/frame state.
type UserVM struct {
	vm  *VM
	buf *bytecode.Buffer
}

// Init constructs a fresh UserVM. Unlike Eval, which takes a Buffer
// directly, this matches the embedding lifecycle where a host calls Init
// once and then Compile/Eval repeatedly against whatever program it loads.
func Init() *UserVM {
	return &UserVM{vm: New()}
}

// Compile accepts a pre-built Buffer (the bytecode compiler producing one
// is out of scope here; hosts that have their own frontend construct a
// Buffer via bytecode.Builder and hand it to Compile directly).
func (u *UserVM) Compile(buf *bytecode.Buffer) {
	u.buf = buf
}

// Eval runs the compiled program to completion and returns its result.
func (u *UserVM) Eval() (value.Value, error) {
	if u.buf == nil {
		return value.None, trace.NoDebugSym(0)
	}
	return u.vm.Eval(u.buf)
}

// Release returns a Value's heap reference, if any, to the pool.
func (u *UserVM) Release(v value.Value) { u.vm.Heap.Release(v) }

// Retain bumps a Value's heap reference count, if any.
func (u *UserVM) Retain(v value.Value) { u.vm.Heap.Retain(v) }

// AllocString copies s into a fresh heap String Value.
func (u *UserVM) AllocString(s string) value.Value { return u.vm.AllocString(s) }

// ValueAsString returns the byte contents of a string-shaped Value.
func (u *UserVM) ValueAsString(v value.Value) []byte { return u.vm.ValueAsString(v) }

// GetStackTrace materializes the call chain active at the moment the last
// eval stopped (on panic, or mid-debug single-step).
func (u *UserVM) GetStackTrace() ([]trace.Frame, error) { return u.vm.StackTrace() }

// GetPanicMsg returns the message recorded by the most recent panic, or
// "" if the last eval completed normally.
func (u *UserVM) GetPanicMsg() string { return u.vm.PanicMsg() }

// CheckMemory runs the cycle-detector diagnostic sweep over the live heap.
func (u *UserVM) CheckMemory() bool { return u.vm.CheckMemory() }

// SetTrace installs an Observer for step/call/return/heap-growth
// notifications, or clears it when o is nil.
func (u *UserVM) SetTrace(o Observer) { u.vm.SetObserver(o) }

// FuncSyms, FieldSyms, and MethodSyms expose the symbol tables so native
// modules can register their functions/methods/fields before the first
// Eval.
func (u *UserVM) FuncSyms() *symbols.FuncTable     { return u.vm.FuncSyms }
func (u *UserVM) FieldSyms() *symbols.FieldTable   { return u.vm.FieldSyms }
func (u *UserVM) MethodSyms() *symbols.MethodTable { return u.vm.MethodSyms }

// Deinit releases the UserVM's heap and symbol tables. Once called, the
// UserVM must not be used again.
func (u *UserVM) Deinit() {
	u.vm = nil
	u.buf = nil
}
