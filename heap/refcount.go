package heap

import "github.com/glint-lang/glint/value"

// Retain increments the reference count of v if it is a pointer; no-op
// otherwise.
func (h *Heap) Retain(v value.Value) {
	if !v.IsPointer() {
		return
	}
	h.slot(v.AsPointer()).RC++
}

// Release decrements the reference count of v if it is a pointer. At
// zero, it dispatches on TypeID to the kind-specific destructor (which
// recursively releases child values and frees owned buffers) and then
// returns the slot to the free pool.
func (h *Heap) Release(v value.Value) {
	if !v.IsPointer() {
		return
	}
	id := v.AsPointer()
	obj := h.slot(id)
	obj.RC--
	if obj.RC > 0 {
		return
	}
	h.destroy(id, obj)
}

func (h *Heap) destroy(id uint64, obj *HeapObject) {
	switch obj.TypeID {
	case ListType:
		for _, elem := range obj.listData {
			h.Release(elem)
		}
		obj.listData = nil
	case MapType:
		for _, k := range obj.mapKeys {
			h.Release(k)
			h.Release(obj.mapData[k])
		}
		obj.mapData = nil
		obj.mapKeys = nil
	case StringType:
		obj.strBytes = nil
	case LambdaType:
		// no child references
	case ClosureType:
		for i := uint16(0); i < obj.closureNumCaptured && i < MaxInlineCaptures; i++ {
			h.Release(obj.closureCaptured[i])
		}
		for _, c := range obj.closureSpill {
			h.Release(c)
		}
		obj.closureSpill = nil
	default: // SmallObject (user type) or a native-handle object
		for _, f := range obj.fields {
			h.Release(f)
		}
		if obj.onRelease != nil {
			obj.onRelease(obj.native)
			obj.onRelease = nil
		}
		obj.native = nil
	}
	h.FreeObject(id)
}

// ChildValues returns the Values directly reachable from obj, used by the
// cycle detector to build its reachability graph without duplicating the
// per-kind switch in destroy.
func (o *HeapObject) ChildValues() []value.Value {
	switch o.TypeID {
	case ListType:
		return append([]value.Value(nil), o.listData...)
	case MapType:
		out := make([]value.Value, 0, len(o.mapKeys)*2)
		for _, k := range o.mapKeys {
			out = append(out, k, o.mapData[k])
		}
		return out
	case ClosureType:
		out := make([]value.Value, 0, int(o.closureNumCaptured))
		for i := uint16(0); i < o.closureNumCaptured && i < MaxInlineCaptures; i++ {
			out = append(out, o.closureCaptured[i])
		}
		out = append(out, o.closureSpill...)
		return out
	case StringType, LambdaType:
		return nil
	default:
		return append([]value.Value(nil), o.fields[:]...)
	}
}
