// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package trampoline

import "testing"

func TestSchedulerEnqueueDedup(t *testing.T) {
	s := NewScheduler(0)
	n := MakeCancel()

	s.Enqueue(n)
	s.Enqueue(n) // must be a no-op: n is already queued
	s.Enqueue(n)

	_, ok := s.Dequeue()
	if !ok {
		t.Fatalf("expected one dequeue to succeed")
	}
	if _, ok := s.Dequeue(); ok {
		t.Fatalf("repeated Enqueue while queued must not duplicate entries")
	}

	Unref(n) // balance the one successful Enqueue's reference
	Unref(n) // balance MakeCancel's own reference
}

func TestSchedulerBlockOnThenComplete(t *testing.T) {
	s := NewScheduler(0)
	dep := MakeCancel()
	w1 := MakeCancel()
	w2 := MakeCancel()
	w3 := MakeCancel()

	s.BlockOn(dep, w1)
	s.BlockOn(dep, w2)
	s.BlockOn(dep, w3)

	s.Complete(dep)

	order := []*Node{w1, w2, w3}
	for _, want := range order {
		got, ok := s.Dequeue()
		if !ok || got != want {
			t.Fatalf("Complete did not release waiters in insertion order")
		}
		Unref(got) // balances Enqueue's reference taken inside Complete
	}

	if _, ok := s.Dequeue(); ok {
		t.Fatalf("queue should be drained")
	}

	Unref(dep)
	Unref(w1)
	Unref(w2)
	Unref(w3)
}

func TestSchedulerCompleteOnUnblockedNodeIsNoOp(t *testing.T) {
	s := NewScheduler(0)
	n := MakeCancel()
	s.Complete(n) // nothing blocked on n
	if _, ok := s.Dequeue(); ok {
		t.Fatalf("Complete on a node with no waiters must not enqueue anything")
	}
	Unref(n)
}

func TestSchedulerCloseDrainsQueueAndBlockedMap(t *testing.T) {
	s := NewScheduler(0)
	queued := MakeCancel()
	dep := MakeCancel()
	waiter := MakeCancel()

	s.Enqueue(queued)
	s.BlockOn(dep, waiter)

	s.Close() // must Unref both queued and waiter without panicking

	Unref(queued)
	Unref(dep)
	Unref(waiter)
}
