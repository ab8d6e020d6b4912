// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package trampoline

// Step evaluates self by one step and returns (next, blocked):
//
//   - (nil, nil): self made terminal progress this step and is now in a
//     Complete category; its waiters should be released.
//   - (next, nil): self has become a new unit of work that still needs
//     driving — next is usually self itself, retyped.
//   - (next, blocked): self is waiting on next; blocked (usually self)
//     must not be re-enqueued until next completes.
//
// The contract blocked != nil implies next != nil always holds.
//
// Stepping a terminal node (Cancel, Error, Value) is a no-op and returns
// (nil, nil) without mutating self.
func Step(self *Node) (next, blocked *Node) {
	switch s := self.state.(type) {
	case *indirectionState:
		return Step(Flatten(self))
	case *thunkState:
		return evalThunk(self, s)
	case *concatState:
		return evalConcat(self, s)
	case *flowState:
		return evalFlow(self, s)
	case cancelState, *errorState, *valueState:
		return nil, nil
	default:
		panic("trampoline: cannot evaluate uninitialised node")
	}
}

func evalThunk(self *Node, s *thunkState) (next, blocked *Node) {
	// A dependency-free Thunk still gets a (zero-length) tuple, never a
	// nil pointer: the callback contract is "always a tuple to read".
	tuple := NewUserTuple(nil, 0)
	if s.dep != nil {
		dep := Flatten(s.dep)
		if !HasCategory(dep, levelComplete) {
			return dep, self
		}
		if HasType(dep, VariantCancel) {
			releaseChildren(self.state)
			self.state = cancelState{}
			return nil, nil
		}
		if HasType(dep, VariantError) {
			Unify(self, dep)
			return nil, nil
		}
		tuple = dep.state.(*valueState).tuple
	}

	result := s.callback(s.context, tuple)
	Unify(self, result)
	Unref(result)
	return self, nil
}

func evalConcat(self *Node, s *concatState) (next, blocked *Node) {
	l := Flatten(s.left)
	if !HasCategory(l, levelComplete) {
		return l, self
	}
	r := Flatten(s.right)
	if !HasCategory(r, levelComplete) {
		return r, self
	}

	if HasType(l, VariantCancel) || HasType(r, VariantCancel) {
		clearToUninitialised(self)
		self.state = cancelState{}
		return nil, nil
	}
	if HasType(l, VariantError) {
		Unify(self, l)
		return nil, nil
	}
	if HasType(r, VariantError) {
		Unify(self, r)
		return nil, nil
	}

	lv := l.state.(*valueState).tuple
	rv := r.state.(*valueState).tuple
	if lv.Vtable != rv.Vtable {
		panic("trampoline: concat of values with different vtables")
	}

	out := NewUserTuple(lv.Vtable, lv.Len()+rv.Len())
	outIdx := 0
	for _, source := range [2]*Node{l, r} {
		tuple := source.state.(*valueState).tuple
		for i := 0; i < tuple.Len(); i++ {
			var v UserValue
			if source.refcount == 1 {
				v = tuple.MoveFrom(i)
			} else {
				v = tuple.CopyFrom(i)
			}
			out.MoveInto(outIdx, v)
			outIdx++
		}
	}

	releaseChildren(self.state)
	self.state = &valueState{tuple: out}
	return nil, nil
}

// decisionReached reports whether l, which is already known to have
// reached Complete, has reached the flow combinator's decision category.
func decisionReached(d decision, l *Node) bool {
	switch d {
	case decisionComplete:
		return true // the blocking gate above already required Complete
	case decisionResolved:
		return HasCategory(l, levelResolved)
	case decisionValue:
		return HasType(l, VariantValue)
	default:
		panic("trampoline: unknown decision category")
	}
}

func evalFlow(self *Node, s *flowState) (next, blocked *Node) {
	if !HasCategory(s.left, levelComplete) {
		return s.left, self
	}
	reached := decisionReached(s.decision, s.left)
	stayLeft := (s.polarity == polarityOr && reached) || (s.polarity == polarityThen && !reached)
	if stayLeft {
		Unify(self, s.left)
		return nil, nil
	}
	Unify(self, s.right)
	return self, nil
}
