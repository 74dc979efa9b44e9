package trace

import "github.com/glint-lang/glint/value"

// FrameWalker abstracts the pieces of VM/stack state the unwinder needs,
// so this package does not import vm (which imports trace for error
// construction) and create a cycle.
type FrameWalker interface {
	// RetInfoAt returns the RetInfo Value stored at framePtr.
	RetInfoAt(framePtr uint32) value.Value
	// DebugSymFor returns the function name and (line, col) a saved pc
	// resolves to, or ok=false if the debug table has no covering entry.
	DebugSymFor(pc uint32) (functionName string, line, col int, ok bool)
}

// NullFramePtr marks the outermost (main) frame, whose RetInfo has no
// previous frame pointer to continue to. value.InitRetInfo packs the
// previous-frame-pointer field into 16 bits (see DESIGN.md), so the
// sentinel is the max value that field can actually hold rather than
// ^uint32(0) -- using the wider value would get silently truncated on
// the first round trip through a real RetInfo Value and would never
// compare equal again.
const NullFramePtr = uint32(0xFFFF)

// Unwind walks in-band RetInfo Values starting at framePtr, mapping each
// saved pc through DebugSymFor to build a top-most-first stack trace.
// DebugSymFor is responsible for synthesizing "main" as the function name
// when the covering debug entry's frameNodeIndex marks the main frame
// (per spec.md §6).
func Unwind(w FrameWalker, framePtr uint32, currentPC uint32) ([]Frame, error) {
	var frames []Frame

	name, line, col, ok := w.DebugSymFor(currentPC)
	if !ok {
		return nil, NoDebugSym(currentPC)
	}
	frames = append(frames, Frame{Function: name, Line: line, Column: col})

	fp := framePtr
	for fp != NullFramePtr {
		ret := w.RetInfoAt(fp)
		pc, prevFP, _, _ := ret.AsRetInfo()

		name, line, col, ok := w.DebugSymFor(pc)
		if !ok {
			return nil, NoDebugSym(pc)
		}
		frames = append(frames, Frame{Function: name, Line: line, Column: col})
		fp = prevFP
	}
	return frames, nil
}
