// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package trampoline is an in-process evaluator for arbitrary-depth,
// purely user-space asynchronous computations expressed as a directed
// graph of suspended [Node]s.
//
// A [Node] is a lazy value that may depend on other nodes; [RunUntilCompletion]
// drives a node to completion without recursive host calls — the
// "trampoline" — so arbitrarily deep chains of combinators run in constant
// native stack.
//
// # Node algebra
//
// A Node is one of a closed set of variants, constructed with
// [MakeCancel], [MakeError], [MakeValue], [MakeThunk], [MakeConcat], and
// the five flow-combinator constructors ([MakeCompleteThen],
// [MakeResolvedThen], [MakeResolvedOr], [MakeValueThen], [MakeValueOr]).
// Every node carries a reference count gated by [Ref] and [Unref]; nodes
// are heap-allocated and shared by reference.
//
//   - Cancel ([MakeCancel]): cooperative abandonment, no payload.
//   - Error ([MakeError]): a resolved, failed terminal carrying a [UserValue].
//   - Value ([MakeValue]): a resolved, successful terminal carrying a [UserTuple].
//   - Thunk ([MakeThunk]): waits for an optional dependency, then invokes a
//     callback that produces the node's eventual result.
//   - Concat ([MakeConcat]): waits for two children, then produces the
//     concatenation of their tuples.
//   - The flow combinators sequence or choose between two children based
//     on a decision category and a polarity — see [MakeCompleteThen] and
//     its siblings.
//   - Indirection is an internal variant created by [Unify] when a node's
//     result is shared with another node; [Flatten] performs path
//     compression through an indirection chain.
//
// [Step] is the per-variant single-step evaluator: it transforms a node
// in place and reports the node to run next and, if the node is now
// waiting, the node it is blocked on.
//
// # Scheduler and drive loop
//
// [Scheduler] is a FIFO runnable queue with enqueue deduplication and a
// blocked-on multimap from a blocking node to its waiters.
// [RunUntilCompletion] seeds a scheduler with a root node and repeatedly
// dequeues, steps, and requeues until the queue empties, at which point
// the root has reached a terminal category (or an indirection chain to
// one).
//
// # Concurrency
//
// The evaluator is synchronous and single-threaded by design: there is
// exactly one evaluator at a time, no locks, and no I/O. Cancellation
// propagates structurally — substitute a [MakeCancel] node at a known
// edge before driving; there is no "cancel this graph" API.
//
// # Non-goals
//
// Parallelism, work-stealing, preemption, fairness beyond FIFO,
// persistence, and cycle detection are out of scope. A cyclic dependency
// graph is a caller error and may cause [RunUntilCompletion] to loop
// forever; detecting that is not this package's job.
package trampoline
