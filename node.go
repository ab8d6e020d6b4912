// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package trampoline

import "sync"

// level is the ordinal category of a node variant: Uninitialised <
// Initialised < Complete < Resolved. HasCategory compares ordinals, so
// Resolved nodes automatically satisfy "has category Complete" too.
type level uint8

const (
	levelUninitialised level = iota
	levelInitialised
	levelComplete
	levelResolved
)

// Variant names the concrete shape of a node. Only the names below are
// part of the stable contract (spec §6); the ordinal values are internal.
type Variant uint8

const (
	VariantIndirection Variant = iota
	VariantThunk
	VariantConcat
	VariantCompleteThen
	VariantResolvedThen
	VariantResolvedOr
	VariantValueThen
	VariantValueOr
	VariantCancel
	VariantError
	VariantValue
)

// String returns the stable name of the variant.
func (v Variant) String() string {
	switch v {
	case VariantIndirection:
		return "indirection"
	case VariantThunk:
		return "thunk"
	case VariantConcat:
		return "concat"
	case VariantCompleteThen:
		return "complete-then"
	case VariantResolvedThen:
		return "resolved-then"
	case VariantResolvedOr:
		return "resolved-or"
	case VariantValueThen:
		return "value-then"
	case VariantValueOr:
		return "value-or"
	case VariantCancel:
		return "cancel"
	case VariantError:
		return "error"
	case VariantValue:
		return "value"
	default:
		return "unknown"
	}
}

// nodeState is the marker interface for node variant payloads. Dispatch
// uses type switches, not a tag field — nodeState is a pure marker
// interface, mirroring Frame in the teacher's defunctionalized
// continuation chain.
type nodeState interface {
	describe() (level, Variant)
}

type uninitialisedState struct{}

// An uninitialised node is none of the named variants; it reports a value
// outside the enum (String gives "unknown") so HasType never matches it.
func (uninitialisedState) describe() (level, Variant) { return levelUninitialised, ^Variant(0) }

// indirectionState forwards to another node's result. Mutated in place
// by Flatten for path compression, so it must be a pointer type.
type indirectionState struct {
	target *Node
}

func (*indirectionState) describe() (level, Variant) { return levelInitialised, VariantIndirection }

// ThunkFunc is a Thunk's callback. It receives the dependency's resolved
// tuple, or an empty tuple if the Thunk has no dependency, and returns a
// fresh, owned node that replaces the Thunk. The core takes one
// reference on the returned node and releases it after unifying.
type ThunkFunc func(context Erased, values *UserTuple) *Node

type thunkState struct {
	callback ThunkFunc
	context  Erased
	dep      *Node // nil if there is no dependency
}

func (*thunkState) describe() (level, Variant) { return levelInitialised, VariantThunk }

type concatState struct {
	left, right *Node
}

func (*concatState) describe() (level, Variant) { return levelInitialised, VariantConcat }

// decision selects which category a flow combinator watches for on its
// left child; polarity selects whether reaching it keeps left or falls
// through to right.
type decision uint8

const (
	decisionComplete decision = iota
	decisionResolved
	decisionValue
)

type polarity uint8

const (
	polarityThen polarity = iota
	polarityOr
)

type flowState struct {
	left, right *Node
	decision    decision
	polarity    polarity
	variant     Variant
}

func (f *flowState) describe() (level, Variant) { return levelInitialised, f.variant }

// cancelState is the free Cancel terminal: no payload, category Complete
// but not Resolved.
type cancelState struct{}

func (cancelState) describe() (level, Variant) { return levelComplete, VariantCancel }

type errorState struct {
	value UserValue
}

func (*errorState) describe() (level, Variant) { return levelResolved, VariantError }

type valueState struct {
	tuple *UserTuple
}

func (*valueState) describe() (level, Variant) { return levelResolved, VariantValue }

// Node is one vertex of the async computation graph: a reference-counted,
// mutable cell holding exactly one nodeState at a time. Nodes are always
// heap-allocated and shared by pointer; zero values are not valid nodes —
// use [New] or one of the Make* constructors.
type Node struct {
	refcount int
	state    nodeState
}

var nodePool = sync.Pool{New: func() any { return new(Node) }}

func acquireNode() *Node {
	n := nodePool.Get().(*Node)
	n.refcount = 1
	n.state = uninitialisedState{}
	return n
}

func recycleNode(n *Node) {
	n.state = nil
	nodePool.Put(n)
}

// New returns a fresh Uninitialised node with refcount 1.
func New() *Node {
	return acquireNode()
}

// Ref increments n's reference count.
func Ref(n *Node) {
	n.refcount++
}

// Unref decrements n's reference count, destroying its payload and
// recycling the node once the count reaches zero.
func Unref(n *Node) {
	n.refcount--
	if n.refcount == 0 {
		releaseChildren(n.state)
		recycleNode(n)
	}
}

// releaseChildren drops the references (and, for terminals, the
// payloads) owned by a node's current state. It does not touch the
// node's own refcount.
func releaseChildren(s nodeState) {
	switch st := s.(type) {
	case uninitialisedState, cancelState:
		// no owned resources
	case *indirectionState:
		Unref(st.target)
	case *thunkState:
		if st.dep != nil {
			Unref(st.dep)
		}
	case *concatState:
		Unref(st.left)
		Unref(st.right)
	case *flowState:
		Unref(st.left)
		Unref(st.right)
	case *errorState:
		st.value.Destroy()
	case *valueState:
		st.tuple.Destroy()
	default:
		panic("trampoline: unknown node state")
	}
}

// clearToUninitialised releases n's current state's owned resources and
// resets n to Uninitialised, without changing n's own refcount. Used by
// Unify before retyping an already-initialised node.
func clearToUninitialised(n *Node) {
	releaseChildren(n.state)
	n.state = uninitialisedState{}
}

// Flatten follows an Indirection chain to its terminal target, splicing
// n (and only n) to point directly at it — single-level path
// compression, matching the grounding implementation's Async_Ptr_follow: intermediate
// nodes elsewhere in the chain are left untouched and get compressed the
// next time they themselves are flattened. Returns n unchanged if n is
// not an Indirection.
func Flatten(n *Node) *Node {
	ind, ok := n.state.(*indirectionState)
	if !ok {
		return n
	}
	target := ind.target
	for {
		ti, ok := target.state.(*indirectionState)
		if !ok {
			break
		}
		next := ti.target
		Ref(next)
		Unref(target)
		target = next
	}
	ind.target = target
	return target
}

// HasType reports whether n, after flattening, is the given variant.
func HasType(n *Node, v Variant) bool {
	flat := Flatten(n)
	_, kind := flat.state.describe()
	return kind == v
}

// HasCategory reports whether n, after flattening, has at least the
// given category.
func HasCategory(n *Node, c level) bool {
	flat := Flatten(n)
	lvl, _ := flat.state.describe()
	return lvl >= c
}

// MakeCancel returns a fresh Cancel node.
func MakeCancel() *Node {
	n := acquireNode()
	n.state = cancelState{}
	return n
}

// MakeError returns a fresh Error node taking ownership of v.
func MakeError(v UserValue) *Node {
	n := acquireNode()
	n.state = &errorState{value: v}
	return n
}

// MakeValue returns a fresh Value node taking ownership of tuple.
func MakeValue(tuple *UserTuple) *Node {
	n := acquireNode()
	n.state = &valueState{tuple: tuple}
	return n
}

// MakeThunk returns a fresh Thunk node. dep may be nil for a
// dependency-free thunk; if non-nil, MakeThunk takes a reference on it.
func MakeThunk(callback ThunkFunc, context Erased, dep *Node) *Node {
	if dep != nil {
		Ref(dep)
	}
	n := acquireNode()
	n.state = &thunkState{callback: callback, context: context, dep: dep}
	return n
}

// MakeConcat returns a fresh Concat node, taking references on left and
// right.
func MakeConcat(left, right *Node) *Node {
	Ref(left)
	Ref(right)
	n := acquireNode()
	n.state = &concatState{left: left, right: right}
	return n
}

func makeFlow(left, right *Node, d decision, p polarity, v Variant) *Node {
	Ref(left)
	Ref(right)
	n := acquireNode()
	n.state = &flowState{left: left, right: right, decision: d, polarity: p, variant: v}
	return n
}

// MakeCompleteThen returns a node that runs left, then always runs right.
func MakeCompleteThen(left, right *Node) *Node {
	return makeFlow(left, right, decisionComplete, polarityThen, VariantCompleteThen)
}

// MakeResolvedThen returns a node that runs left; if left resolves
// (Value or Error), continues with right; if left is cancelled, stays
// cancelled.
func MakeResolvedThen(left, right *Node) *Node {
	return makeFlow(left, right, decisionResolved, polarityThen, VariantResolvedThen)
}

// MakeResolvedOr returns a node that runs left; if left resolves, keeps
// left; if left is cancelled, falls back to right.
func MakeResolvedOr(left, right *Node) *Node {
	return makeFlow(left, right, decisionResolved, polarityOr, VariantResolvedOr)
}

// MakeValueThen returns a node that runs left; if left is a Value,
// continues with right; if left is an Error or Cancel, stays with left.
func MakeValueThen(left, right *Node) *Node {
	return makeFlow(left, right, decisionValue, polarityThen, VariantValueThen)
}

// MakeValueOr returns a node that runs left; if left is a Value, keeps
// left; otherwise falls back to right.
func MakeValueOr(left, right *Node) *Node {
	return makeFlow(left, right, decisionValue, polarityOr, VariantValueOr)
}
