// Package uuid wires github.com/gofrs/uuid into the native function ABI.
// Grounded on the overall pack's convention (risor's modules/uuid-shaped
// modules wrap a single third-party identifier library behind a couple
// of free functions); this module has no direct teacher file to adapt
// since the teacher's copy of the pack did not carry a uuid module, so
// it is built fresh against the same Register(funcs)/NativeOneReturn
// shape every other module in this tree uses.
package uuid

import (
	"github.com/gofrs/uuid"

	"github.com/glint-lang/glint/symbols"
	"github.com/glint-lang/glint/value"
)

// Register defines "uuid_v4" and "uuid_parse" in funcs.
func Register(funcs *symbols.FuncTable) {
	funcs.Define("uuid_v4", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: v4,
	})
	funcs.Define("uuid_parse", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: parse,
	})
}

func v4(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	id, err := uuid.NewV4()
	if err != nil {
		host.Panic(err.Error())
		return value.None
	}
	return host.AllocString(id.String())
}

func parse(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	if len(args) < 1 {
		host.Panic("uuid_parse requires a string argument")
		return value.None
	}
	id, err := uuid.FromString(string(host.ValueAsString(args[0])))
	if err != nil {
		host.Panic(err.Error())
		return value.None
	}
	return host.AllocString(id.String())
}
