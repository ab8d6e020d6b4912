// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package trampoline

import "testing"

// sharedIntBoxVtable is the one vtable instance every test helper uses
// for plain-int payloads, so values built independently (e.g. by two
// separate Thunk callbacks) still compare equal for Concat's vtable
// check — mirroring how a real caller shares one vtable per value kind
// rather than minting a fresh one per value.
var sharedIntBoxVtable = &ValueVtable{
	Copy:    func(data any) any { return data.(int) },
	Destroy: func(data any) {},
}

func intBoxVtable() *ValueVtable {
	return sharedIntBoxVtable
}

func TestUserTupleMoveFromClearsSlot(t *testing.T) {
	vt := intBoxVtable()
	tup := NewUserTuple(vt, 2)
	tup.MoveInto(0, UserValue{Data: 1, Vtable: vt})
	tup.MoveInto(1, UserValue{Data: 2, Vtable: vt})

	v := tup.MoveFrom(0)
	if v.Data.(int) != 1 {
		t.Fatalf("MoveFrom(0) = %v, want 1", v.Data)
	}
	if tup.At(0) != nil {
		t.Fatalf("slot 0 not cleared after MoveFrom: %v", tup.At(0))
	}
	if tup.At(1) == nil {
		t.Fatalf("slot 1 unexpectedly cleared")
	}
}

func TestUserTupleCopyFromLeavesSlot(t *testing.T) {
	vt := intBoxVtable()
	tup := NewUserTuple(vt, 1)
	tup.MoveInto(0, UserValue{Data: 42, Vtable: vt})

	v := tup.CopyFrom(0)
	if v.Data.(int) != 42 {
		t.Fatalf("CopyFrom(0) = %v, want 42", v.Data)
	}
	if tup.At(0) == nil {
		t.Fatalf("slot 0 cleared by CopyFrom, want untouched")
	}
}

func TestUserTupleLenAndDestroy(t *testing.T) {
	vt := intBoxVtable()
	tup := NewUserTuple(vt, 3)
	if tup.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tup.Len())
	}
	tup.MoveInto(0, UserValue{Data: 1, Vtable: vt})
	tup.MoveInto(2, UserValue{Data: 3, Vtable: vt})
	// slot 1 stays nil; Destroy must tolerate holes.
	tup.Destroy()
}
