// File: pool/packet_pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Two cache tiers plus heap fallback, modeled on per-processor lookaside
// lists: the worker tier is addressed by the CPU executing the caller at
// the moment of the call, so packets freed on one worker can be reused
// on another after migration. All free-list traffic is CAS-only.

package pool

import (
	"sync/atomic"
	"unsafe"

	"github.com/momentics/hioload-iocp/affinity"
	"github.com/momentics/hioload-iocp/api"
	"github.com/momentics/hioload-iocp/core/concurrency"
)

// DefaultMaxDepth is the per-tier free-list cap when no option overrides it.
const DefaultMaxDepth = 256

// packetCharge is the ledger charge per heap-fallback packet.
var packetCharge = int(unsafe.Sizeof(Packet{}))

// tier is one cache level: a free list and its diagnostic counter
// block. The depth cap lives on the pool so it can be retuned at
// runtime for every tier at once.
type tier struct {
	free concurrency.LockFreeStack[*Packet]

	totalAllocates atomic.Uint64
	allocateMisses atomic.Uint64
	totalFrees     atomic.Uint64
	freeMisses     atomic.Uint64
}

func (t *tier) stats(maxDepth int) api.TierStats {
	return api.TierStats{
		Depth:          t.free.Depth(),
		MaxDepth:       maxDepth,
		TotalAllocates: t.totalAllocates.Load(),
		AllocateMisses: t.allocateMisses.Load(),
		TotalFrees:     t.totalFrees.Load(),
		FreeMisses:     t.freeMisses.Load(),
	}
}

// PacketPool produces and recycles Packet instances.
type PacketPool struct {
	workers  []tier
	global   tier
	ledger   api.QuotaLedger
	maxDepth atomic.Int64

	heapPackets   atomic.Int64
	quotaCharged  atomic.Uint64
	quotaReturned atomic.Uint64
}

// Option customizes pool construction.
type Option func(*PacketPool)

// WithWorkers overrides the number of per-worker tiers. Values below 1
// collapse the worker level into a single shared tier.
func WithWorkers(n int) Option {
	return func(p *PacketPool) {
		if n < 1 {
			n = 1
		}
		p.workers = make([]tier, n)
	}
}

// WithMaxDepth caps every tier's free list at d entries.
func WithMaxDepth(d int) Option {
	return func(p *PacketPool) {
		p.SetMaxDepth(d)
	}
}

// WithLedger installs the quota ledger used by the heap fallback.
func WithLedger(l api.QuotaLedger) Option {
	return func(p *PacketPool) {
		p.ledger = l
	}
}

// NewPacketPool creates a pool with one tier per logical CPU, the
// default depth cap, and an unlimited in-memory ledger.
func NewPacketPool(opts ...Option) *PacketPool {
	p := &PacketPool{
		workers: make([]tier, affinity.Workers()),
		ledger:  NewLedger(-1),
	}
	p.maxDepth.Store(DefaultMaxDepth)
	for _, o := range opts {
		o(p)
	}
	return p
}

// MaxDepth returns the current per-tier free-list cap.
func (p *PacketPool) MaxDepth() int {
	return int(p.maxDepth.Load())
}

// SetMaxDepth retunes the per-tier free-list cap at runtime. Tiers
// already deeper than the new cap are not trimmed eagerly; they drain
// through normal allocation and stop refilling past the cap.
func (p *PacketPool) SetMaxDepth(d int) {
	if d < 0 {
		d = 0
	}
	p.maxDepth.Store(int64(d))
}

// workerTier returns the tier for the CPU executing the caller now.
func (p *PacketPool) workerTier() *tier {
	return &p.workers[affinity.CurrentWorker()%len(p.workers)]
}

// Allocate produces a packet: worker tier, then global tier, then heap.
//
// With quotaRequested the heap fallback charges the ledger first and
// fails with api.ErrInsufficientResources when the charge is refused,
// leaving no state behind. Without it the fallback is a plain
// best-effort heap allocation with no charge.
func (p *PacketPool) Allocate(quotaRequested bool) (*Packet, error) {
	lt := p.workerTier()
	lt.totalAllocates.Add(1)
	if pkt, ok := lt.free.Pop(); ok {
		return pkt, nil
	}
	lt.allocateMisses.Add(1)

	g := &p.global
	g.totalAllocates.Add(1)
	if pkt, ok := g.free.Pop(); ok {
		return pkt, nil
	}
	g.allocateMisses.Add(1)

	if quotaRequested {
		if err := p.ledger.ChargeQuota(packetCharge); err != nil {
			return nil, api.NewError(api.ErrCodeInsufficientResources,
				api.ErrInsufficientResources.Error()).
				WithContext("tier", "heap").
				WithContext("charge", packetCharge)
		}
		p.quotaCharged.Add(1)
		p.heapPackets.Add(1)
		return &Packet{quotaCharged: true}, nil
	}

	// The Go runtime either satisfies a small allocation or aborts the
	// process, so the uncharged path cannot observe pressure here.
	p.heapPackets.Add(1)
	return &Packet{}, nil
}

// Free recycles a packet: worker tier if below its cap, then global
// tier, then discard to the heap. Quota is returned exactly once, on
// whichever path retires the charge. Free never blocks and never fails.
func (p *PacketPool) Free(pkt *Packet) {
	maxDepth := p.MaxDepth()

	lt := p.workerTier()
	lt.totalFrees.Add(1)
	if lt.free.Depth() < maxDepth {
		p.retireQuota(pkt)
		pkt.reset()
		lt.free.Push(pkt)
		return
	}
	lt.freeMisses.Add(1)

	g := &p.global
	g.totalFrees.Add(1)
	if g.free.Depth() < maxDepth {
		p.retireQuota(pkt)
		pkt.reset()
		g.free.Push(pkt)
		return
	}
	g.freeMisses.Add(1)

	p.retireQuota(pkt)
	p.heapPackets.Add(-1)
}

// retireQuota returns the ledger charge if this instance carries one.
func (p *PacketPool) retireQuota(pkt *Packet) {
	if pkt.quotaCharged {
		pkt.quotaCharged = false
		p.ledger.ReturnQuota(packetCharge)
		p.quotaReturned.Add(1)
	}
}

// Stats returns a snapshot of every tier's counter block.
func (p *PacketPool) Stats() api.PacketPoolStats {
	maxDepth := p.MaxDepth()
	out := api.PacketPoolStats{
		Workers:       make([]api.TierStats, len(p.workers)),
		Global:        p.global.stats(maxDepth),
		HeapPackets:   p.heapPackets.Load(),
		QuotaCharged:  p.quotaCharged.Load(),
		QuotaReturned: p.quotaReturned.Load(),
	}
	for i := range p.workers {
		out.Workers[i] = p.workers[i].stats(maxDepth)
	}
	return out
}
