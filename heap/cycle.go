package heap

// CheckMemory builds a graph over all currently-live slots, performs a
// DFS with entered/visited marks, records any object reached via a
// re-entered back-edge as a cycle root, then force-releases each
// strongly-connected island rooted there. It returns true iff no cycle
// was found. This is a debugging/testing hook per spec.md §4.2, not a
// scheduled collector: production code using closures with mutual
// captures must still break cycles manually (weak references or
// explicit unlinking).
func (h *Heap) CheckMemory() bool {
	entered := make(map[uint64]bool)
	visited := make(map[uint64]bool)
	var roots []uint64

	var visit func(id uint64)
	visit = func(id uint64) {
		if visited[id] {
			return
		}
		if entered[id] {
			roots = append(roots, id)
			return
		}
		entered[id] = true
		obj := h.slot(id)
		for _, child := range obj.ChildValues() {
			if child.IsPointer() {
				visit(child.AsPointer())
			}
		}
		entered[id] = false
		visited[id] = true
	}

	for _, id := range h.AllLiveSlots() {
		visit(id)
	}
	if len(roots) == 0 {
		return true
	}

	// Collect the full island reachable from each root: every node that
	// cycle-freeing must reclaim together, since their mutual Values
	// cannot be naively Release()'d one at a time without a slot being
	// re-entered mid-teardown.
	island := make(map[uint64]bool)
	var collect func(id uint64)
	collect = func(id uint64) {
		if island[id] {
			return
		}
		island[id] = true
		for _, child := range h.slot(id).ChildValues() {
			if child.IsPointer() {
				collect(child.AsPointer())
			}
		}
	}
	for _, root := range roots {
		collect(root)
	}

	// Any reference the island holds on an object OUTSIDE the island is
	// a real external reference and must still be released normally.
	for id := range island {
		for _, child := range h.slot(id).ChildValues() {
			if child.IsPointer() && !island[child.AsPointer()] {
				h.Release(child)
			}
		}
	}

	// The island's internal cross-references are discarded wholesale:
	// reassigning each slot drops its Go-level slice/map fields (Go's
	// own GC reclaims those), and FreeObject returns the slot itself.
	for id := range island {
		h.FreeObject(id)
	}
	return false
}
