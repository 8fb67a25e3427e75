// File: queue/queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Wake policy: entries are handed to waiters directly under the queue
// lock, oldest waiter first, so no entry is ever observable by two
// consumers and no wakeup is wasted on a consumer over the limit.

package queue

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	equeue "github.com/eapache/queue"

	"github.com/momentics/hioload-iocp/api"
)

// Forever makes Remove wait indefinitely. Any negative duration does.
const Forever = time.Duration(-1)

// Queue is a blocking MPMC FIFO with a cap on concurrently active
// consumers. The zero value is not usable; construct with New.
type Queue[T any] struct {
	mu      sync.Mutex
	entries *equeue.Queue
	waiters []*waiter[T]
	active  map[int64]struct{}
	limit   int
	down    bool

	depth atomic.Int64
}

type waiter[T any] struct {
	ch  chan T // buffered 1; closed on rundown
	gid int64
}

// New creates a queue capping active consumers at limit. A limit below
// one defaults to the number of logical CPUs.
func New[T any](limit int) *Queue[T] {
	if limit < 1 {
		limit = runtime.NumCPU()
	}
	return &Queue[T]{
		entries: equeue.New(),
		active:  make(map[int64]struct{}),
		limit:   limit,
	}
}

// Insert enqueues v and wakes the oldest waiter if the active-consumer
// count is below the limit. Fails only after Rundown.
func (q *Queue[T]) Insert(v T) error {
	q.mu.Lock()
	if q.down {
		q.mu.Unlock()
		return api.ErrPortClosed
	}
	q.entries.Add(v)
	q.depth.Add(1)
	q.dispatch()
	q.mu.Unlock()
	return nil
}

// Remove dequeues one entry, blocking while the queue is empty or the
// concurrency limit throttles the caller. timeout zero polls, negative
// waits forever. Context cancellation resolves to api.ErrInterrupted
// without consuming an entry; Rundown resolves every pending wait to
// api.ErrPortClosed.
func (q *Queue[T]) Remove(ctx context.Context, timeout time.Duration) (T, error) {
	var zero T
	gid := goid()

	q.mu.Lock()
	if q.down {
		q.mu.Unlock()
		return zero, api.ErrPortClosed
	}
	// The caller is re-waiting, so it stops counting against the limit.
	delete(q.active, gid)
	w := &waiter[T]{ch: make(chan T, 1), gid: gid}
	q.waiters = append(q.waiters, w)
	q.dispatch()
	q.mu.Unlock()

	// Fast path: dispatch already delivered to this waiter.
	select {
	case v, ok := <-w.ch:
		if !ok {
			return zero, api.ErrPortClosed
		}
		return v, nil
	default:
	}

	if timeout == 0 {
		return q.abandon(w, api.ErrTimedOut)
	}

	var timer *time.Timer
	var expired <-chan time.Time
	if timeout > 0 {
		timer = time.NewTimer(timeout)
		expired = timer.C
		defer timer.Stop()
	}
	var done <-chan struct{}
	if ctx != nil {
		done = ctx.Done()
	}

	select {
	case v, ok := <-w.ch:
		if !ok {
			return zero, api.ErrPortClosed
		}
		return v, nil
	case <-done:
		return q.abandon(w, api.ErrInterrupted)
	case <-expired:
		return q.abandon(w, api.ErrTimedOut)
	}
}

// Detach drops the caller's active-consumer slot without waiting. A
// consumer that stops removing entries calls this so the limit does not
// count it forever.
func (q *Queue[T]) Detach() {
	gid := goid()
	q.mu.Lock()
	delete(q.active, gid)
	q.dispatch()
	q.mu.Unlock()
}

// ReadState returns the number of queued-and-undelivered entries
// without taking the queue lock.
func (q *Queue[T]) ReadState() int {
	d := q.depth.Load()
	if d < 0 {
		return 0
	}
	return int(d)
}

// Rundown disables the queue and returns every undelivered entry.
// Pending and future Remove calls observe api.ErrPortClosed. Safe to
// call once; later calls return nil.
func (q *Queue[T]) Rundown() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.down {
		return nil
	}
	q.down = true
	for _, w := range q.waiters {
		close(w.ch)
	}
	q.waiters = nil
	q.active = make(map[int64]struct{})

	out := make([]T, 0, q.entries.Length())
	for q.entries.Length() > 0 {
		out = append(out, q.entries.Remove().(T))
	}
	q.depth.Store(0)
	return out
}

// dispatch pairs queued entries with waiters while capacity allows.
// Caller holds q.mu.
func (q *Queue[T]) dispatch() {
	for len(q.waiters) > 0 && q.entries.Length() > 0 && len(q.active) < q.limit {
		w := q.waiters[0]
		q.waiters = q.waiters[1:]
		v := q.entries.Remove().(T)
		q.depth.Add(-1)
		q.active[w.gid] = struct{}{}
		w.ch <- v
	}
}

// abandon withdraws w from the wait list, resolving the race against a
// concurrent delivery: an entry already handed to w wins over the
// timeout or interrupt, because the dequeue committed first.
func (q *Queue[T]) abandon(w *waiter[T], cause error) (T, error) {
	var zero T
	q.mu.Lock()
	for i, cand := range q.waiters {
		if cand == w {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			q.mu.Unlock()
			return zero, cause
		}
	}
	q.mu.Unlock()

	// Not on the list: either delivered or closed by rundown.
	v, ok := <-w.ch
	if !ok {
		return zero, api.ErrPortClosed
	}
	return v, nil
}

// goid returns the calling goroutine's id, parsed from the runtime
// stack header. Used only to associate active-consumer slots with
// their consumer; never exposed.
func goid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// "goroutine 123 [running]:"
	var id int64
	for i := len("goroutine "); i < n; i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int64(c-'0')
	}
	return id
}
