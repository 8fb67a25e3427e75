// File: port/port.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Packet protocol: a queued entry is either a synthetic posted packet
// (allocator-owned) or a native record (externally owned). Exactly one
// release path runs per dequeued entry, exactly once — the allocator
// free for posted packets, the record's release hook for native ones —
// whether the entry leaves through Remove or through teardown.

package port

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-iocp/api"
	"github.com/momentics/hioload-iocp/pool"
	"github.com/momentics/hioload-iocp/queue"
)

// State is the port lifecycle phase.
type State int32

const (
	// StateActive accepts posts and removals.
	StateActive State = iota

	// StateDraining means teardown started; the queue is running down.
	StateDraining

	// StateDestroyed is terminal: every entry has been released.
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDraining:
		return "draining"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// entry is the tagged union queued on the port: exactly one of posted
// and native is non-nil.
type entry struct {
	posted *pool.Packet
	native api.NativeRecord
}

// Port coordinates producers posting completions with a bounded number
// of concurrently active consumers.
type Port struct {
	queue *queue.Queue[entry]
	pool  *pool.PacketPool
	limit int
	state atomic.Int32
}

// New creates an active port. Without options the concurrency limit is
// the number of logical CPUs and packets come from the shared pool.
func New(opts ...Option) *Port {
	p := &Port{}
	for _, o := range opts {
		o(p)
	}
	if p.limit < 1 {
		p.limit = runtime.NumCPU()
	}
	if p.pool == nil {
		p.pool = pool.Default()
	}
	p.queue = queue.New[entry](p.limit)
	return p
}

// ConcurrencyLimit returns the maximum active-consumer count.
func (p *Port) ConcurrencyLimit() int {
	return p.limit
}

// State returns the current lifecycle phase.
func (p *Port) State() State {
	return State(p.state.Load())
}

// Depth returns the queued-and-unconsumed entry count without blocking.
func (p *Port) Depth() int {
	return p.queue.ReadState()
}

// Post manufactures a synthetic completion carrying the supplied tuple
// and queues it, charging allocator quota for any heap fallback. On
// api.ErrInsufficientResources nothing is queued and no quota stays
// charged.
func (p *Port) Post(key, apc uint64, status api.Status, information uint64) error {
	return p.post(key, apc, status, information, true)
}

// PostUncharged is Post with a best-effort, uncharged heap fallback,
// for producers completing on behalf of callers that must not be
// charged quota.
func (p *Port) PostUncharged(key, apc uint64, status api.Status, information uint64) error {
	return p.post(key, apc, status, information, false)
}

func (p *Port) post(key, apc uint64, status api.Status, information uint64, chargeQuota bool) error {
	if p.State() != StateActive {
		return api.ErrPortClosed
	}
	pkt, err := p.pool.Allocate(chargeQuota)
	if err != nil {
		return err
	}
	pkt.KeyContext = key
	pkt.ApcContext = apc
	pkt.Status = status
	pkt.Information = information
	if err := p.queue.Insert(entry{posted: pkt}); err != nil {
		// Lost the race against teardown: the packet never reached the
		// queue, so it goes straight back to the allocator.
		p.pool.Free(pkt)
		return err
	}
	return nil
}

// PostNative queues a completion backed by an externally owned record.
// Ownership transfers to the port only on success; on error the caller
// keeps the record. The record's Release hook runs exactly once, when
// the completion is consumed or the port runs down.
func (p *Port) PostNative(rec api.NativeRecord) error {
	if p.State() != StateActive {
		return api.ErrPortClosed
	}
	return p.queue.Insert(entry{native: rec})
}

// Remove dequeues one completion, honoring the concurrency limit and
// the timeout (zero polls, negative waits forever). Context
// cancellation resolves the wait to api.ErrInterrupted without
// consuming an entry. The dequeue is the commit point: once an entry
// is removed its release path runs and is never rolled back.
func (p *Port) Remove(ctx context.Context, timeout time.Duration) (api.Completion, error) {
	e, err := p.queue.Remove(ctx, timeout)
	if err != nil {
		return api.Completion{}, err
	}
	return p.consume(e), nil
}

// Detach releases the caller's active-consumer slot. Consumers that
// stop removing completions call this so the concurrency limit does
// not count them forever.
func (p *Port) Detach() {
	p.queue.Detach()
}

// Rundown drains the port: pending and future Remove calls observe
// api.ErrPortClosed, every undelivered entry is released through its
// normal path with the extracted values discarded, and the port ends
// Destroyed. Called by the owning layer when the last reference drops;
// only the first call does work.
func (p *Port) Rundown() {
	if !p.state.CompareAndSwap(int32(StateActive), int32(StateDraining)) {
		return
	}
	for _, e := range p.queue.Rundown() {
		p.consume(e)
	}
	p.state.Store(int32(StateDestroyed))
}

// consume extracts the completion tuple and runs the variant's single
// release path.
func (p *Port) consume(e entry) api.Completion {
	if e.native != nil {
		c := e.native.Completion()
		e.native.Release()
		return c
	}
	c := e.posted.Completion()
	p.pool.Free(e.posted)
	return c
}
