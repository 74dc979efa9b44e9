// Package heap implements the slab-allocated, reference-counted object
// heap described in spec.md §3 and §4.2: fixed-size object slots packed
// into pages, threaded through an intrusive free-span list.
package heap

import "github.com/glint-lang/glint/value"

// TypeID identifies the kind of a HeapObject. The first five ids are
// reserved for the built-in kinds; user-defined SmallObject types start
// at FirstUserType.
type TypeID uint32

// NullID marks a slot as a member of a free span; no live object may use
// this typeId.
const NullID TypeID = 0

// Built-in type ids, reserved per spec.md §3 "Type descriptor".
const (
	ListType TypeID = iota + 1
	MapType
	ClosureType
	LambdaType
	StringType
)

// FirstUserType is the first typeId available for user-defined struct
// types (the SmallObject layout).
const FirstUserType TypeID = 6

// SentinelType marks the permanently-reserved first slot of every page.
// It is deliberately outside the user-type range so it can never be
// allocated to a live object.
const SentinelType TypeID = 0xFFFFFFFF

// NoSlot is the null slot id, used as the empty free-list head and the
// terminating free-span "next" link.
const NoSlot uint64 = ^uint64(0)

// SlotsPerPage is the number of object slots in a page (~62 KiB at the
// nominal 40-byte slot size described in spec.md §3 "HeapPage").
const SlotsPerPage = 1600

// MaxInlineFields is the number of inline Value slots available to a
// SmallObject (spec.md: "user-defined record with ≤4 fields").
const MaxInlineFields = 4

// MaxInlineCaptures is the number of captured values a Closure stores
// inline before spilling to a heap-allocated slice. spec.md's Open
// Questions note that the source panics above 3 captures; this
// implementation instead spills (see DESIGN.md).
const MaxInlineCaptures = 3

// HeapObject is the uniform 40-byte-conceptual slot every page slot
// holds. Its first field is always TypeID, so any reader can branch on
// object kind without further indirection, matching spec.md §3.
//
// Only the fields relevant to TypeID are meaningful at any given time;
// this mirrors the source's tagged C union using a flat Go struct, since
// Go has no unions.
type HeapObject struct {
	TypeID TypeID
	RC     int32

	// FreeSpan fields. spanLen and spanNext are valid at a span's start
	// slot; spanStart (the back-pointer) is valid at a span's tail slot.
	// For a length-1 span, start == tail, so all three are valid there.
	spanLen  uint32
	spanNext uint64
	spanStart uint64

	// List
	listData []value.Value
	listIter int

	// Map. Backed by a Go map for lookup, plus a key slice that records
	// insertion order so for-range iteration is deterministic.
	mapData map[value.Value]value.Value
	mapKeys []value.Value // insertion order, for deterministic for-range

	// String
	strBytes []byte

	// Lambda
	lambdaPC        uint32
	lambdaNumParams uint16
	lambdaNumLocals uint16

	// Closure
	closureFuncPC      uint32
	closureNumParams   uint16
	closureNumCaptured uint16
	closureNumLocals   uint16
	closureCaptured    [MaxInlineCaptures]value.Value
	closureSpill       []value.Value // used when numCaptured > MaxInlineCaptures

	// SmallObject (also doubles as a generic "fields" holder for native
	// modules' opaque handles, e.g. a DB connection handle).
	fields    [MaxInlineFields]value.Value
	native    any        // non-Value payload for native-handle SmallObjects (e.g. a pgx.Conn)
	onRelease func(any) // invoked with native just before the slot is freed, if set
}

// IsFreeSpan reports whether this slot currently belongs to the free list.
func (o *HeapObject) IsFreeSpan() bool { return o.TypeID == NullID }

// SlotID packs a page index and in-page offset into the flat id stored
// inside Pointer-tagged Values.
func SlotID(page, offset int) uint64 {
	return uint64(page)*SlotsPerPage + uint64(offset)
}

// SplitSlotID recovers the page index and in-page offset from a flat id.
func SplitSlotID(id uint64) (page, offset int) {
	return int(id / SlotsPerPage), int(id % SlotsPerPage)
}
