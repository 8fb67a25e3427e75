// File: control/config.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with dynamic update and listener
// propagation, used to retune running components without restart.

package control

import (
	"sync"

	"github.com/momentics/hioload-iocp/pool"
)

// PoolMaxDepthKey holds the allocator's per-tier free-list cap.
const PoolMaxDepthKey = "pool.max_depth"

// ConfigStore is a dynamic key/value map with atomic snapshot and
// listener support. Listeners run synchronously on the updating
// goroutine, so SetConfig returns only after every component has seen
// the new values.
type ConfigStore struct {
	mu        sync.RWMutex
	config    map[string]any
	listeners []func(map[string]any)
}

// NewConfigStore initializes a new config store with empty data.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		config: make(map[string]any),
	}
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make(map[string]any, len(cs.config))
	for k, v := range cs.config {
		out[k] = v
	}
	return out
}

// SetConfig merges new values and dispatches the merged snapshot to
// every listener.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) {
	cs.mu.Lock()
	for k, v := range newCfg {
		cs.config[k] = v
	}
	snap := make(map[string]any, len(cs.config))
	for k, v := range cs.config {
		snap[k] = v
	}
	listeners := cs.listeners
	cs.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// OnReload registers a listener hook called on config changes.
func (cs *ConfigStore) OnReload(fn func(map[string]any)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

// BindPoolDepth applies PoolMaxDepthKey changes to the allocator at
// runtime. Non-integer or missing values leave the cap unchanged.
func BindPoolDepth(cs *ConfigStore, pp *pool.PacketPool) {
	cs.OnReload(func(cfg map[string]any) {
		if d, ok := cfg[PoolMaxDepthKey].(int); ok {
			pp.SetMaxDepth(d)
		}
	})
}
