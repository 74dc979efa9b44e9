package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/glint-lang/glint/bytecode"
	"github.com/glint-lang/glint/modules"
	"github.com/glint-lang/glint/trace"
	"github.com/glint-lang/glint/value"
	"github.com/glint-lang/glint/vm"
)

// errReported marks an error whose message has already been written to
// stderr by a formatter (reportPanic's colorized VMError dump), so the
// root command's own top-level error handler doesn't print it a second
// time in a plainer form.
var errReported = errors.New("glintvm: error already reported")

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <buffer.gbc>",
		Short: "Evaluate a compiled bytecode buffer to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := loadBuffer(args[0])
			if err != nil {
				return err
			}

			u := vm.Init()
			if err := modules.RegisterAll(u.FuncSyms(), u.MethodSyms()); err != nil {
				return fmt.Errorf("registering native modules: %w", err)
			}
			u.Compile(buf)

			result, err := u.Eval()
			if err != nil {
				return reportPanic(cmd, u, err)
			}
			fmt.Println(stringifyValue(u, result))
			return nil
		},
	}
}

func loadBuffer(path string) (*bytecode.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	buf, err := bytecode.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	log.Debug().Str("path", path).Interface("stats", buf.Stats()).Msg("loaded bytecode buffer")
	return buf, nil
}

func reportPanic(cmd *cobra.Command, u *vm.UserVM, evalErr error) error {
	var vmErr *trace.VMError
	if !errors.As(evalErr, &vmErr) {
		return evalErr
	}
	noColor, _ := cmd.Flags().GetBool("no-color")
	formatter := trace.NewFormatter()
	if noColor {
		formatter.UseColor = false
	}
	fmt.Fprint(os.Stderr, formatter.Format(vmErr))
	return errReported
}

// stringifyValue renders a scalar result for the CLI's stdout. Aggregate
// results (lists/maps/closures) print their heap pointer id rather than
// a recursive dump -- a debugger-grade pretty-printer is a frontend
// concern the VM core itself has no business owning.
func stringifyValue(u *vm.UserVM, v value.Value) string {
	switch {
	case v.IsNumber():
		return fmt.Sprintf("%g", v.AsFloat())
	case v.IsNone():
		return "none"
	case v.IsString():
		return string(u.ValueAsString(v))
	case v.IsPointer():
		return fmt.Sprintf("<object %d>", v.AsPointer())
	default:
		return fmt.Sprintf("%v", v.ToBool())
	}
}
