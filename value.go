// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package trampoline

// Erased represents a type-erased value flowing through the node graph.
// The core never inspects it; concrete types are recovered only by the
// caller's own callbacks and vtables.
type Erased = any

// ValueVtable is the caller-supplied pair of operations needed to manage a
// [UserValue]'s lifetime. Copy must produce an independently destructible
// payload; Destroy releases one. The core never calls Destroy with a nil
// data pointer — it only ever destroys values it was given ownership of.
type ValueVtable struct {
	Copy    func(data any) any
	Destroy func(data any)
}

// UserValue is an opaque payload owned by the node graph: a data pointer
// (represented as [Erased] since the core never inspects it) plus the
// vtable that knows how to copy and destroy it.
//
// UserValue is a value type; the zero UserValue (nil Vtable) is never
// destroyed or copied — callers must supply a Vtable whenever Data holds
// anything that needs releasing.
type UserValue struct {
	Data   Erased
	Vtable *ValueVtable
}

// Copy returns an independently destructible duplicate of v.
func (v UserValue) Copy() UserValue {
	if v.Vtable == nil {
		return v
	}
	return UserValue{Data: v.Vtable.Copy(v.Data), Vtable: v.Vtable}
}

// Destroy releases v's payload. A no-op when Vtable is nil.
func (v UserValue) Destroy() {
	if v.Vtable == nil {
		return
	}
	v.Vtable.Destroy(v.Data)
}

// UserTuple is an owned, fixed-size sequence of [UserValue] payloads
// sharing one vtable. It backs the Value terminal node and the operands
// of Concat.
type UserTuple struct {
	Vtable *ValueVtable
	Slots  []Erased
}

// NewUserTuple allocates a tuple of the given length with every slot
// empty (nil data). Callers populate slots with MoveInto/CopyInto before
// handing the tuple to [MakeValue].
func NewUserTuple(vtable *ValueVtable, length int) *UserTuple {
	return &UserTuple{Vtable: vtable, Slots: make([]Erased, length)}
}

// Len returns the number of slots in the tuple.
func (t *UserTuple) Len() int {
	return len(t.Slots)
}

// At returns the raw data pointer at index i without transferring
// ownership or clearing the slot.
func (t *UserTuple) At(i int) Erased {
	return t.Slots[i]
}

// CopyFrom returns an independently destructible copy of slot i. The
// slot itself is left unchanged.
func (t *UserTuple) CopyFrom(i int) UserValue {
	return UserValue{Data: t.Slots[i], Vtable: t.Vtable}.Copy()
}

// MoveFrom returns the value at slot i and clears the slot so the
// tuple's destructor no longer owns it.
func (t *UserTuple) MoveFrom(i int) UserValue {
	v := UserValue{Data: t.Slots[i], Vtable: t.Vtable}
	t.Slots[i] = nil
	return v
}

// MoveInto installs v into slot i, taking ownership without copying.
// The slot must be empty (nil); violating this is a programmer error.
func (t *UserTuple) MoveInto(i int, v UserValue) {
	t.Slots[i] = v.Data
}

// CopyInto installs an independent copy of v into slot i.
func (t *UserTuple) CopyInto(i int, v UserValue) {
	t.Slots[i] = v.Copy().Data
}

// Destroy releases every non-nil slot via the tuple's vtable.
func (t *UserTuple) Destroy() {
	if t.Vtable == nil {
		return
	}
	for i, data := range t.Slots {
		if data == nil {
			continue
		}
		t.Vtable.Destroy(data)
		t.Slots[i] = nil
	}
}
