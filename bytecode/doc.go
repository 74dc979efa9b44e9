// Package bytecode defines the immutable buffer the host hands the
// virtual machine to execute: a flat instruction stream, a constant pool,
// a backing string arena, and a debug table for stack-trace
// reconstruction.
//
// This package defines the output of compilation: pure data that can be
// built once and shared across VM instances. Nothing in this package
// knows how to produce that data (compilation is out of scope here) or
// how to execute it (that lives in package vm).
//
// # Key Types
//
//   - [Buffer]: the bytecode buffer itself ({ops, consts, strBuf, debugTable, mainLocalSize})
//   - [DebugSym]: one debug-table entry, mapping a pc to a source AST node
//
// # Immutability
//
// A Buffer is immutable after construction: NewBuffer copies its input
// slices, and nothing in this package exposes a mutable view of them.
package bytecode
