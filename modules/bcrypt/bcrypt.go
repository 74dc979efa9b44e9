// Package bcrypt wires golang.org/x/crypto/bcrypt into the VM's native
// function ABI, giving scripts password hashing without a compiler-level
// builtin. Grounded on the teacher's modules/bcrypt package (same
// dependency, same two-function surface), rebuilt against this VM's
// NativeOneReturn/NativeTwoReturn ABI instead of risor's object.Object
// calling convention.
package bcrypt

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/glint-lang/glint/heap"
	"github.com/glint-lang/glint/symbols"
	"github.com/glint-lang/glint/value"
)

// DefaultCost mirrors bcrypt.DefaultCost; scripts that don't pass a cost
// argument get this.
const DefaultCost = bcrypt.DefaultCost

// HasherTypeID is this module's reserved heap TypeID for the "Hasher"
// SmallObject bcrypt_compare doubles as a method on (see DESIGN.md's
// module TypeID registry).
const HasherTypeID heap.TypeID = 9

// CompareMethodID is the method-symbol id "compare" is registered under
// once Register has run, so an embedding host's bytecode can reference it
// in a callObjSym operand the same way it'd reference any other method.
var CompareMethodID int

// Register defines "bcrypt_hash" and "bcrypt_compare" as free functions
// in funcs, and additionally registers "compare" as a HasherTypeID method
// in methods -- the worked example of a native function doubling as a
// callObjSym target, exercising the method table's empty->oneType
// promotion alongside the pure free-function path.
func Register(funcs *symbols.FuncTable, methods *symbols.MethodTable) {
	funcs.Define("bcrypt_hash", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: hash,
	})
	funcs.Define("bcrypt_compare", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: compare,
	})
	funcs.Define("bcrypt_hasher", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: newHasher,
	})

	CompareMethodID = methods.Reserve()
	methods.AddMethodSym(CompareMethodID, HasherTypeID, symbols.MethodEntry{
		Kind:      symbols.MethodNativeTwo,
		NativeTwo: compareMethod,
	})
}

func hash(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	if len(args) < 1 {
		host.Panic("bcrypt_hash requires a password argument")
		return value.None
	}
	password := host.ValueAsString(args[0])
	cost := DefaultCost
	if len(args) > 1 && args[1].IsNumber() {
		cost = int(args[1].AsFloat())
	}
	digest, err := bcrypt.GenerateFromPassword(password, cost)
	if err != nil {
		host.Panic(err.Error())
		return value.None
	}
	return host.AllocString(string(digest))
}

func compare(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	if len(args) < 2 {
		host.Panic("bcrypt_compare requires a hash and a password argument")
		return value.None
	}
	digest := host.ValueAsString(args[0])
	password := host.ValueAsString(args[1])
	err := bcrypt.CompareHashAndPassword(digest, password)
	return value.InitBool(err == nil)
}

// newHasher wraps a digest string (as produced by hash) in a HasherTypeID
// handle, giving scripts a receiver to call "compare" on as a method
// instead of passing the digest as bcrypt_compare's first argument.
func newHasher(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	if len(args) < 1 {
		host.Panic("bcrypt_hasher requires a digest argument")
		return value.None
	}
	digest := string(host.ValueAsString(args[0]))
	return host.NewHandle(uint32(HasherTypeID), digest, nil)
}

// compareMethod is "compare" registered on HasherTypeID: same check as
// the free-function compare, but reading its digest from the receiver
// handle instead of from args[0].
func compareMethod(host symbols.NativeHost, receiver *value.Value, args []value.Value) (value.Value, value.Value) {
	if receiver == nil {
		host.Panic("compare requires a Hasher receiver")
		return value.None, value.None
	}
	native, ok := host.HandleNative(*receiver, uint32(HasherTypeID))
	if !ok {
		host.Panic("receiver is not a Hasher")
		return value.None, value.None
	}
	if len(args) < 1 {
		host.Panic("compare requires a password argument")
		return value.None, value.None
	}
	digest := native.(string)
	password := host.ValueAsString(args[0])
	err := bcrypt.CompareHashAndPassword([]byte(digest), password)
	return value.InitBool(err == nil), value.None
}
