// File: pool/default.go
// Author: momentics <momentics@gmail.com>

package pool

import "sync"

var (
	defaultOnce sync.Once
	defaultPool *PacketPool
)

// Default returns a process-wide PacketPool so all ports recycle
// packets through the same tiers instead of fragmenting caches.
func Default() *PacketPool {
	defaultOnce.Do(func() {
		defaultPool = NewPacketPool()
	})
	return defaultPool
}
