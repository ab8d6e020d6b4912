// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package trampoline

// RunUntilCompletion drives root to a terminal category (Cancel, Error,
// or Value) without growing the host call stack, regardless of how deep
// the node's dependency chain is. It takes ownership of one reference on
// root and returns root's terminal state flattened to its final node,
// owned by the caller (release it with Unref when done).
//
// The drive loop is a plain FIFO worklist: a node that blocks on a
// dependency is parked on the scheduler's blocked-on multimap and
// re-enqueued only once that dependency reaches Complete. This is the
// trampoline: deeply left-leaning ValueThen chains (spec §8.6) still
// resolve in a single goroutine stack frame, because each Step call
// returns instead of recursing.
func RunUntilCompletion(root *Node) *Node {
	sched := NewScheduler(DefaultSchedulerCapacity)
	defer sched.Close()

	// Enqueue takes its own reference on root; that reference is what
	// balances back out to the single reference this function returns
	// ownership of, via the Unref paired with every Dequeue below.
	sched.Enqueue(root)

	for {
		top, ok := sched.Dequeue()
		if !ok {
			break
		}

		next, blocked := Step(top)

		switch {
		case next == nil:
			// Terminal progress: top (now retyped in place) is Complete.
			// Release whatever was waiting on it and drop the worklist's
			// reference.
			sched.Complete(top)
			Unref(top)
		case blocked != nil:
			// top cannot progress until next completes. Park top on
			// next's waiter list and make sure next itself is driven —
			// Enqueue is a no-op if next is already in the runnable queue;
			// a next that is parked on another dependency is queued again,
			// and its next Step parks it again.
			sched.BlockOn(next, top)
			sched.Enqueue(next)
			Unref(top)
		default:
			// top made progress but is not yet terminal; drive next. When
			// next is another node (top forwards to it via an Indirection),
			// top waits on next so top's own waiters are released once
			// next completes.
			sched.Enqueue(next)
			if next != top {
				sched.BlockOn(next, top)
			}
			Unref(top)
		}
	}

	// Hand the caller's reference over from root to its final node.
	result := Flatten(root)
	if result != root {
		Ref(result)
		Unref(root)
	}
	return result
}
