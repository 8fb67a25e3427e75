// File: port/options.go
// Package port defines functional options for completion ports.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package port

import "github.com/momentics/hioload-iocp/pool"

// Option customizes port construction.
type Option func(*Port)

// WithConcurrency sets the maximum number of concurrently active
// consumers. Values below one select the number of logical CPUs.
func WithConcurrency(limit int) Option {
	return func(p *Port) {
		p.limit = limit
	}
}

// WithPool overrides the packet allocator. By default ports share the
// process-wide pool.
func WithPool(pp *pool.PacketPool) Option {
	return func(p *Port) {
		p.pool = pp
	}
}
