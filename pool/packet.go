// File: pool/packet.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import "github.com/momentics/hioload-iocp/api"

// Packet is a synthetic completion record, owned by the PacketPool for
// its whole life. A packet is either free (in exactly one cache tier)
// or live (held by exactly one queue entry or caller), never both.
type Packet struct {
	KeyContext  uint64
	ApcContext  uint64
	Status      api.Status
	Information uint64

	// quotaCharged records whether the heap fallback charged ledger
	// quota for this instance. Set exactly once at allocation, cleared
	// by exactly one quota return before the instance is reused or
	// discarded.
	quotaCharged bool
}

// Completion returns the completion tuple the packet carries.
func (p *Packet) Completion() api.Completion {
	return api.Completion{
		KeyContext:  p.KeyContext,
		ApcContext:  p.ApcContext,
		Status:      p.Status,
		Information: p.Information,
	}
}

// reset clears the payload fields before the packet re-enters a cache
// tier. quotaCharged must already be cleared by the quota return.
func (p *Packet) reset() {
	p.KeyContext = 0
	p.ApcContext = 0
	p.Status = 0
	p.Information = 0
}
