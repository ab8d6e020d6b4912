// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package trampoline

// DefaultSchedulerCapacity is the runnable-queue capacity a fresh
// Scheduler pre-grows to, matching the grounding implementation's
// default (Async_Trampoline_Scheduler_new_with_default_capacity).
const DefaultSchedulerCapacity = 32

// Scheduler is the trampoline's FIFO runnable queue with enqueue
// deduplication, plus a blocked-on multimap from a blocking node to the
// owning references of the nodes waiting on it.
//
// Scheduler is not safe for concurrent use — the evaluator is
// single-threaded by design (spec §5).
type Scheduler struct {
	queue    RingBuffer[*Node]
	enqueued map[*Node]struct{}
	blocked  map[*Node][]*Node
}

// NewScheduler allocates a Scheduler, pre-growing its runnable queue to
// initialCapacity (ignored if <= 0).
func NewScheduler(initialCapacity int) *Scheduler {
	s := &Scheduler{
		enqueued: make(map[*Node]struct{}),
		blocked:  make(map[*Node][]*Node),
	}
	if initialCapacity > 0 {
		s.queue.Grow(initialCapacity)
	}
	return s
}

// Enqueue appends n to the runnable queue, taking an owning reference.
// A no-op if n is already queued (dedup keyed by node identity), bounding
// enqueue work even under heavy unification-driven re-activation.
func (s *Scheduler) Enqueue(n *Node) {
	if _, ok := s.enqueued[n]; ok {
		return
	}
	Ref(n)
	s.enqueued[n] = struct{}{}
	s.queue.Enqueue(n)
}

// Dequeue pops the front of the runnable queue, transferring its owning
// reference to the caller. ok is false when the queue is empty.
func (s *Scheduler) Dequeue() (n *Node, ok bool) {
	n, ok = s.queue.DequeueFront()
	if !ok {
		return nil, false
	}
	delete(s.enqueued, n)
	return n, true
}

// BlockOn records that waiter is now waiting on dep, taking an owning
// reference on waiter. A node may appear under multiple dep keys across
// its lifetime.
func (s *Scheduler) BlockOn(dep, waiter *Node) {
	Ref(waiter)
	s.blocked[dep] = append(s.blocked[dep], waiter)
}

// Complete moves every waiter blocked on n into the runnable queue, in
// insertion order, and clears n's blocked-on entry. Ownership of each
// waiter's reference transfers from the blocked-on list to the queue.
func (s *Scheduler) Complete(n *Node) {
	waiters, ok := s.blocked[n]
	if !ok {
		return
	}
	delete(s.blocked, n)
	for _, w := range waiters {
		s.Enqueue(w)
		Unref(w)
	}
}

// Close drops every reference still owned by the scheduler: queued nodes
// and every node in the blocked-on multimap. It guarantees no leaks when
// a drive loop exits early (queue error, or the caller abandoning a
// partially-driven scheduler), matching the grounding implementation's
// scheduler destructor.
func (s *Scheduler) Close() {
	for {
		n, ok := s.queue.DequeueFront()
		if !ok {
			break
		}
		Unref(n)
	}
	s.enqueued = make(map[*Node]struct{})
	for dep, waiters := range s.blocked {
		for _, w := range waiters {
			Unref(w)
		}
		delete(s.blocked, dep)
	}
}
