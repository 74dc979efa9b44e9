package heap

import "fmt"

// ErrOutOfMemory is returned when the heap cannot grow further (a host
// may set a page-count ceiling; by default the heap grows without bound
// until the process runs out of memory).
type ErrOutOfMemory struct{ Requested int }

func (e *ErrOutOfMemory) Error() string {
	return fmt.Sprintf("heap: out of memory growing by %d pages", e.Requested)
}

// Heap is the slab allocator: a set of fixed-size pages of HeapObject
// slots, threaded through an intrusive free-span list, per spec.md §4.2.
type Heap struct {
	pages    [][]HeapObject
	freeHead uint64
	maxPages int // 0 means unbounded
}

// New creates an empty heap with no pages allocated yet. The first call
// to AllocObject triggers initial page growth.
func New() *Heap {
	return &Heap{freeHead: NoSlot}
}

// SetMaxPages bounds the heap's growth; AllocObject returns ErrOutOfMemory
// once that bound would be exceeded. Zero (the default) means unbounded.
func (h *Heap) SetMaxPages(n int) { h.maxPages = n }

// PageCount returns the number of pages currently allocated.
func (h *Heap) PageCount() int { return len(h.pages) }

func (h *Heap) slot(id uint64) *HeapObject {
	page, offset := SplitSlotID(id)
	return &h.pages[page][offset]
}

// growBy allocates n new pages, reserves slot 0 of each as the sentinel,
// and links the remainder of each page onto the free list as one span.
func (h *Heap) growBy(n int) error {
	if h.maxPages > 0 && len(h.pages)+n > h.maxPages {
		return &ErrOutOfMemory{Requested: n}
	}
	for i := 0; i < n; i++ {
		pageIndex := len(h.pages)
		page := make([]HeapObject, SlotsPerPage)
		page[0] = HeapObject{TypeID: SentinelType, RC: 1}
		h.pages = append(h.pages, page)

		spanStart := SlotID(pageIndex, 1)
		spanLen := uint32(SlotsPerPage - 1)
		start := h.slot(spanStart)
		start.TypeID = NullID
		start.spanLen = spanLen
		start.spanNext = h.freeHead
		tail := h.slot(SlotID(pageIndex, SlotsPerPage-1))
		tail.TypeID = NullID
		tail.spanStart = spanStart
		h.freeHead = spanStart
	}
	return nil
}

// AllocObject returns one uninitialized slot. The caller must write the
// full payload, including TypeID and RC=1, before the slot is considered
// live. Implements the allocation protocol of spec.md §4.2 exactly:
// grow when exhausted, pop a length-1 span directly, or split a longer
// span off its head.
func (h *Heap) AllocObject() (uint64, *HeapObject, error) {
	if h.freeHead == NoSlot {
		growth := 1
		if len(h.pages) > 0 {
			growth = int(float64(len(h.pages))*1.5 + 0.999999)
			if growth < 1 {
				growth = 1
			}
		}
		if err := h.growBy(growth); err != nil {
			return 0, nil, err
		}
	}

	head := h.freeHead
	headObj := h.slot(head)
	if headObj.spanLen == 1 {
		h.freeHead = headObj.spanNext
	} else {
		newStart := head + 1
		newLen := headObj.spanLen - 1
		newHeader := h.slot(newStart)
		newHeader.TypeID = NullID
		newHeader.spanLen = newLen
		newHeader.spanNext = headObj.spanNext
		tailID := newStart + uint64(newLen) - 1
		h.slot(tailID).spanStart = newStart
		h.freeHead = newStart
	}
	*headObj = HeapObject{} // clear span bookkeeping before handing to caller
	return head, headObj, nil
}

// FreeObject returns a slot to the free pool, coalescing with an
// adjacent free span on its left when present, per spec.md §4.2.
func (h *Heap) FreeObject(id uint64) {
	page, offset := SplitSlotID(id)
	if offset > 0 {
		left := &h.pages[page][offset-1]
		if left.IsFreeSpan() {
			spanStartID := left.spanStart
			spanStart := h.slot(spanStartID)
			spanStart.spanLen++
			obj := h.slot(id)
			*obj = HeapObject{TypeID: NullID, spanStart: spanStartID}
			return
		}
	}
	obj := h.slot(id)
	*obj = HeapObject{TypeID: NullID, spanLen: 1, spanNext: h.freeHead, spanStart: id}
	h.freeHead = id
}

// Get returns the live object at id. Callers must not call Get for a
// slot currently on the free list.
func (h *Heap) Get(id uint64) *HeapObject {
	return h.slot(id)
}

// FreeSpanCount walks the free list and counts entries; used by tests to
// validate the "one span per maximal run of adjacent free slots"
// invariant and the "free-list is loop-free" invariant (a set of visited
// slots detects a cycle instead of looping forever).
func (h *Heap) FreeSpanCount() (count int, looped bool) {
	seen := make(map[uint64]bool)
	id := h.freeHead
	for id != NoSlot {
		if seen[id] {
			return count, true
		}
		seen[id] = true
		count++
		id = h.slot(id).spanNext
	}
	return count, false
}

// AllLiveSlots returns the slot ids of every currently-allocated (non-free,
// non-sentinel) object, for use by the cycle detector and diagnostics.
func (h *Heap) AllLiveSlots() []uint64 {
	var ids []uint64
	for p := range h.pages {
		for o := 1; o < SlotsPerPage; o++ {
			obj := &h.pages[p][o]
			if obj.TypeID != NullID && obj.TypeID != SentinelType {
				ids = append(ids, SlotID(p, o))
			}
		}
	}
	return ids
}
