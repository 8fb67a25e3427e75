// Package pool
// Author: momentics <momentics@gmail.com>
//
// Tiered packet allocator for the completion-port core. Posted packets
// are recycled through a per-worker lock-free free list, a process-wide
// free list, and a heap fallback with resource-quota accounting. The
// two cache tiers amortize allocation cost under high-frequency
// post/remove cycles; the per-tier depth cap bounds idle memory.
// See packet_pool.go and quota.go for implementation details.
package pool
