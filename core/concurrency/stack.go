// File: core/concurrency/stack.go
// Package concurrency provides the lock-free primitives backing the
// packet allocator free lists.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Multi-producer/multi-consumer Treiber stack. Safe for callers that
// migrate between workers mid-call: every mutation is a single CAS on
// the head pointer, no slot is owned by any thread.

package concurrency

import "sync/atomic"

// LockFreeStack is an MPMC LIFO free list. The zero value is ready to use.
//
// Depth is tracked with a separate atomic counter, so it lags the head
// by at most one concurrent operation. That matches what a capacity
// check needs; an exact linearized depth is deliberately not promised.
type LockFreeStack[T any] struct {
	head  atomic.Pointer[stackNode[T]]
	depth atomic.Int64
}

type stackNode[T any] struct {
	value T
	next  *stackNode[T]
}

// Push adds val to the top of the stack. Never fails.
func (s *LockFreeStack[T]) Push(val T) {
	n := &stackNode[T]{value: val}
	for {
		old := s.head.Load()
		n.next = old
		if s.head.CompareAndSwap(old, n) {
			s.depth.Add(1)
			return
		}
	}
}

// Pop removes and returns the most recently pushed value; ok is false
// when the stack is empty.
func (s *LockFreeStack[T]) Pop() (val T, ok bool) {
	for {
		old := s.head.Load()
		if old == nil {
			var zero T
			return zero, false
		}
		if s.head.CompareAndSwap(old, old.next) {
			s.depth.Add(-1)
			return old.value, true
		}
	}
}

// Depth returns the approximate number of stacked values.
func (s *LockFreeStack[T]) Depth() int {
	d := s.depth.Load()
	if d < 0 {
		return 0
	}
	return int(d)
}
