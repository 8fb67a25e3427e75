// File: pool/quota.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"sync/atomic"

	"github.com/momentics/hioload-iocp/api"
)

// Ledger is an in-memory api.QuotaLedger with a fixed byte limit.
// A negative limit means unlimited. The zero value is an unlimited ledger.
type Ledger struct {
	limit int64
	used  atomic.Int64
}

// NewLedger creates a ledger capped at limit bytes; limit < 0 is unlimited.
func NewLedger(limit int64) *Ledger {
	return &Ledger{limit: limit}
}

// ChargeQuota reserves size bytes, failing atomically when the limit
// would be exceeded.
func (l *Ledger) ChargeQuota(size int) error {
	for {
		used := l.used.Load()
		next := used + int64(size)
		if l.limit >= 0 && next > l.limit {
			return api.ErrInsufficientResources
		}
		if l.used.CompareAndSwap(used, next) {
			return nil
		}
	}
}

// ReturnQuota releases size bytes previously charged.
func (l *Ledger) ReturnQuota(size int) {
	l.used.Add(-int64(size))
}

// Used returns the bytes currently charged.
func (l *Ledger) Used() int64 {
	return l.used.Load()
}

var _ api.QuotaLedger = (*Ledger)(nil)
