package bytecode

// Stats contains size statistics about a compiled Buffer, useful for
// auditing a script before execution.
type Stats struct {
	// OpBytes is the size in bytes of the flat instruction stream.
	OpBytes int

	// ConstantCount is the number of entries in the constant pool.
	ConstantCount int

	// StringBytes is the size of the backing string arena.
	StringBytes int

	// DebugSymCount is the number of debug-table entries.
	DebugSymCount int

	// MainLocalSize is the number of stack slots reserved for the main
	// frame.
	MainLocalSize uint32
}
