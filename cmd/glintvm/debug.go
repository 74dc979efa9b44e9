package main

import (
	"fmt"
	"os"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/spf13/cobra"

	"github.com/glint-lang/glint/modules"
	"github.com/glint-lang/glint/op"
	"github.com/glint-lang/glint/vm"
)

// stepObserver prints each opcode/call/return as it fires and blocks
// between steps on a keypress, giving a terminal-based single-step
// debugger over the dispatch loop without any change to the VM itself.
type stepObserver struct{ halt bool }

func (s *stepObserver) OnStep(pc uint32, code byte) {
	fmt.Printf("  pc=%-6d %s\n", pc, op.GetInfo(op.Code(code)).Name)
	s.waitForKey()
}

func (s *stepObserver) OnCall(funcPC uint32, numArgs int) {
	fmt.Printf("  -> call pc=%d args=%d\n", funcPC, numArgs)
}

func (s *stepObserver) OnReturn(framePtr uint32) {
	fmt.Printf("  <- return framePtr=%d\n", framePtr)
}

func (s *stepObserver) OnHeapGrow(pageCount int) {
	fmt.Printf("  (heap grew to %d pages)\n", pageCount)
}

func (s *stepObserver) OnCycleCollect(foundCycle bool) {
	fmt.Printf("  (cycle sweep: found=%v)\n", foundCycle)
}

func (s *stepObserver) waitForKey() {
	if s.halt {
		return
	}
	fmt.Print("  [enter] step  [q] run to completion  ")
	err := keyboard.Listen(func(key keys.Key) (stop bool, err error) {
		switch key.Code {
		case keys.RuneKey:
			if key.String() == "q" {
				s.halt = true
			}
			return true, nil
		case keys.Enter, keys.Space:
			return true, nil
		case keys.CtrlC, keys.Escape:
			os.Exit(130)
		}
		return false, nil
	})
	if err != nil {
		s.halt = true
	}
	fmt.Println()
}

func newDebugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug <buffer.gbc>",
		Short: "Single-step a compiled bytecode buffer, printing each opcode",
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
			u.SetTrace(&stepObserver{})

			result, err := u.Eval()
			if err != nil {
				return reportPanic(cmd, u, err)
			}
			fmt.Println(stringifyValue(u, result))
			return nil
		},
	}
}
