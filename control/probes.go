// File: control/probes.go
// Author: momentics <momentics@gmail.com>
//
// Canned probes for the completion-port core objects.

package control

import (
	"github.com/momentics/hioload-iocp/pool"
	"github.com/momentics/hioload-iocp/port"
)

// PacketPoolProbe reports the allocator's per-tier counter blocks.
func PacketPoolProbe(pp *pool.PacketPool) func() any {
	return func() any { return pp.Stats() }
}

// PortProbe reports a port's lifecycle phase, limit, and queue depth.
func PortProbe(p *port.Port) func() any {
	return func() any {
		return map[string]any{
			"state": p.State().String(),
			"limit": p.ConcurrencyLimit(),
			"depth": p.Depth(),
		}
	}
}
