package heap

import "github.com/glint-lang/glint/value"

// NewList allocates a List object owning elems (elems' references are
// transferred to the list; callers must not release them separately).
func (h *Heap) NewList(elems []value.Value) (value.Value, error) {
	id, obj, err := h.AllocObject()
	if err != nil {
		return 0, err
	}
	obj.TypeID = ListType
	obj.RC = 1
	obj.listData = elems
	return value.InitPointer(id), nil
}

// NewMap allocates a Map object from parallel key/value slices (insertion
// order preserved for for-range iteration determinism).
func (h *Heap) NewMap(keys, values []value.Value) (value.Value, error) {
	id, obj, err := h.AllocObject()
	if err != nil {
		return 0, err
	}
	obj.TypeID = MapType
	obj.RC = 1
	obj.mapData = make(map[value.Value]value.Value, len(keys))
	obj.mapKeys = make([]value.Value, 0, len(keys))
	for i, k := range keys {
		if _, exists := obj.mapData[k]; !exists {
			obj.mapKeys = append(obj.mapKeys, k)
		}
		obj.mapData[k] = values[i]
	}
	return value.InitPointer(id), nil
}

// NewString allocates a String object owning buf.
func (h *Heap) NewString(buf []byte) (value.Value, error) {
	id, obj, err := h.AllocObject()
	if err != nil {
		return 0, err
	}
	obj.TypeID = StringType
	obj.RC = 1
	obj.strBytes = buf
	return value.InitPointer(id), nil
}

// NewLambda allocates a Lambda object (a plain function value with no
// captures).
func (h *Heap) NewLambda(funcPC uint32, numParams, numLocals uint16) (value.Value, error) {
	id, obj, err := h.AllocObject()
	if err != nil {
		return 0, err
	}
	obj.TypeID = LambdaType
	obj.RC = 1
	obj.lambdaPC = funcPC
	obj.lambdaNumParams = numParams
	obj.lambdaNumLocals = numLocals
	return value.InitPointer(id), nil
}

// NewClosure allocates a Closure, storing up to MaxInlineCaptures
// captured values inline and spilling the rest to a heap slice (see
// DESIGN.md for the Open Question this resolves).
func (h *Heap) NewClosure(funcPC uint32, numParams, numLocals uint16, captured []value.Value) (value.Value, error) {
	id, obj, err := h.AllocObject()
	if err != nil {
		return 0, err
	}
	obj.TypeID = ClosureType
	obj.RC = 1
	obj.closureFuncPC = funcPC
	obj.closureNumParams = numParams
	obj.closureNumLocals = numLocals
	obj.closureNumCaptured = uint16(len(captured))
	n := len(captured)
	if n > MaxInlineCaptures {
		n = MaxInlineCaptures
	}
	copy(obj.closureCaptured[:n], captured[:n])
	if len(captured) > MaxInlineCaptures {
		obj.closureSpill = append([]value.Value(nil), captured[MaxInlineCaptures:]...)
	}
	return value.InitPointer(id), nil
}

// CapturedAt returns the i'th captured value of a Closure, transparently
// reading from inline storage or the spill slice.
func (o *HeapObject) CapturedAt(i uint16) value.Value {
	if i < MaxInlineCaptures {
		return o.closureCaptured[i]
	}
	return o.closureSpill[i-MaxInlineCaptures]
}

// NewSmallObject allocates a user-defined struct of up to MaxInlineFields
// fields.
func (h *Heap) NewSmallObject(typeID TypeID, fields []value.Value) (value.Value, error) {
	id, obj, err := h.AllocObject()
	if err != nil {
		return 0, err
	}
	obj.TypeID = typeID
	obj.RC = 1
	copy(obj.fields[:], fields)
	return value.InitPointer(id), nil
}

// NewNativeHandle allocates a SmallObject-shaped slot carrying an opaque
// native payload (e.g. a *sql.DB), used by native modules to hand the
// script a reference-counted handle through the ordinary heap/ABI.
func (h *Heap) NewNativeHandle(typeID TypeID, native any, onRelease func(any)) (value.Value, error) {
	id, obj, err := h.AllocObject()
	if err != nil {
		return 0, err
	}
	obj.TypeID = typeID
	obj.RC = 1
	obj.native = native
	obj.onRelease = onRelease
	return value.InitPointer(id), nil
}

// Native returns the opaque payload stored by NewNativeHandle.
func (o *HeapObject) Native() any { return o.native }

// ListData exposes a List's backing slice for the interpreter's index,
// slice, and append opcodes.
func (o *HeapObject) ListData() []value.Value { return o.listData }

// SetListData replaces a List's backing slice (used by append/setIndex).
func (o *HeapObject) SetListData(data []value.Value) { o.listData = data }

// IterCursor and SetIterCursor hold the position forIter has reached in a
// List, Map or String.
func (o *HeapObject) IterCursor() int        { return o.listIter }
func (o *HeapObject) SetIterCursor(i int)     { o.listIter = i }

// MapGet, MapSet, MapKeys expose Map contents.
func (o *HeapObject) MapGet(k value.Value) (value.Value, bool) {
	v, ok := o.mapData[k]
	return v, ok
}

func (o *HeapObject) MapSet(k, v value.Value) {
	if _, exists := o.mapData[k]; !exists {
		o.mapKeys = append(o.mapKeys, k)
	}
	o.mapData[k] = v
}

func (o *HeapObject) MapKeys() []value.Value { return o.mapKeys }
func (o *HeapObject) MapLen() int            { return len(o.mapKeys) }

// StringBytes exposes a String's backing buffer.
func (o *HeapObject) StringBytes() []byte { return o.strBytes }

// LambdaInfo returns a Lambda's call metadata.
func (o *HeapObject) LambdaInfo() (pc uint32, numParams, numLocals uint16) {
	return o.lambdaPC, o.lambdaNumParams, o.lambdaNumLocals
}

// ClosureInfo returns a Closure's call metadata.
func (o *HeapObject) ClosureInfo() (pc uint32, numParams, numCaptured, numLocals uint16) {
	return o.closureFuncPC, o.closureNumParams, o.closureNumCaptured, o.closureNumLocals
}

// Fields exposes a SmallObject's inline field slots.
func (o *HeapObject) Fields() *[MaxInlineFields]value.Value { return &o.fields }
