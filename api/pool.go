// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Allocator observability DTOs. The concrete packet pool lives in pool/.

package api

// TierStats is the diagnostic counter block of a single cache tier.
// Counters are maintained with atomics; under contention the snapshot is
// approximate but race-free.
type TierStats struct {
	Depth          int
	MaxDepth       int
	TotalAllocates uint64
	AllocateMisses uint64
	TotalFrees     uint64
	FreeMisses     uint64
}

// PacketPoolStats aggregates per-tier allocator statistics.
type PacketPoolStats struct {
	Workers []TierStats
	Global  TierStats

	// HeapPackets is the number of packet instances created by the heap
	// fallback and not yet discarded back to it (live or tier-cached).
	HeapPackets int64

	// QuotaCharged and QuotaReturned count ledger transactions.
	QuotaCharged  uint64
	QuotaReturned uint64
}
