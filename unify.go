// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package trampoline

// Unify retargets self in place so it represents other's result, without
// allocating a new node. After Unify, HasType(self, V) == HasType(other, V)
// for every terminal V, and HasCategory likewise.
//
// Note the Cancel test goes through HasType, which flattens other, so a
// Cancel reached through Indirection still takes the free Cancel-retype
// path below rather than being wrapped in another Indirection. The shared
// test reads other's own refcount, not its flattened target's, as the
// grounding implementation's Async_unify reads other->refcount.
//
//  1. If self is already initialised, take a temporary reference on other
//     (it may be reachable only through self) and clear self back to
//     Uninitialised; the temporary reference is dropped at the end.
//  2. If other is Cancel, retype self to Cancel — free of payload, so
//     this keeps the common case allocation-free.
//  3. Else if other is shared (refcount > 1), retype self to an
//     Indirection at other's flattened target.
//  4. Else other is solely owned: move-construct self's state from
//     other's, leaving other Uninitialised.
func Unify(self, other *Node) {
	if self == other {
		// self already represents exactly other's result; clearing self
		// first (step 1) would destroy the very state we'd then try to
		// retarget to. See DESIGN.md's Open Questions for why this guard
		// exists where the grounding C implementation has none.
		return
	}

	var protect *Node
	if _, ok := self.state.(uninitialisedState); !ok {
		Ref(other)
		protect = other
		clearToUninitialised(self)
	}

	switch {
	case HasType(other, VariantCancel):
		self.state = cancelState{}
	case other.refcount > 1:
		target := Flatten(other)
		Ref(target)
		self.state = &indirectionState{target: target}
	default:
		self.state = other.state
		other.state = uninitialisedState{}
	}

	if protect != nil {
		Unref(protect)
	}
}
