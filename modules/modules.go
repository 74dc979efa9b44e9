// Package modules aggregates every native module's Register call behind
// one entry point, so an embedding host (cmd/glintvm, or any other Go
// program linking this VM) wires the whole domain stack with one call
// instead of importing each module individually.
package modules

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/glint-lang/glint/modules/bcrypt"
	"github.com/glint-lang/glint/modules/cloud"
	"github.com/glint-lang/glint/modules/db"
	"github.com/glint-lang/glint/modules/image"
	"github.com/glint-lang/glint/modules/query"
	"github.com/glint-lang/glint/modules/uuid"
	"github.com/glint-lang/glint/symbols"
)

// registrar pairs a module's name (for error reporting) with a closure
// that runs its Register call against the two symbol tables every
// module shares access to.
type registrar struct {
	name string
	fn   func(*symbols.FuncTable, *symbols.MethodTable)
}

// RegisterAll defines every native module's functions (and, for bcrypt,
// its one method) in funcs/methods. A module whose Register call panics
// (its backing driver's init touching a missing credential file, a bad
// DSN, etc.) does not abort the others -- the failure is recovered and
// aggregated into one *multierror.Error, so an embedding host that links
// many native modules learns about every broken one in a single call
// instead of stopping at the first.
func RegisterAll(funcs *symbols.FuncTable, methods *symbols.MethodTable) error {
	modules := []registrar{
		{"bcrypt", bcrypt.Register},
		{"db", func(f *symbols.FuncTable, _ *symbols.MethodTable) { db.Register(f) }},
		{"cloud", func(f *symbols.FuncTable, _ *symbols.MethodTable) { cloud.Register(f) }},
		{"image", func(f *symbols.FuncTable, _ *symbols.MethodTable) { image.Register(f) }},
		{"query", func(f *symbols.FuncTable, _ *symbols.MethodTable) { query.Register(f) }},
		{"uuid", func(f *symbols.FuncTable, _ *symbols.MethodTable) { uuid.Register(f) }},
	}

	var errs error
	for _, m := range modules {
		if err := registerSafely(m, funcs, methods); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}

func registerSafely(m registrar, funcs *symbols.FuncTable, methods *symbols.MethodTable) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("module %q: %v", m.name, r)
		}
	}()
	m.fn(funcs, methods)
	return nil
}
