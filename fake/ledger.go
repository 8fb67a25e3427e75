// File: fake/ledger.go
// Author: momentics <momentics@gmail.com>

package fake

import (
	"sync/atomic"

	"github.com/momentics/hioload-iocp/api"
)

// Ledger is an api.QuotaLedger scripted for tests: it refuses every
// charge after FailAfter successful charges (negative never fails) and
// counts charge/return pairs.
type Ledger struct {
	FailAfter int64

	charges atomic.Int64
	returns atomic.Int64
}

// ChargeQuota succeeds until the scripted failure point.
func (l *Ledger) ChargeQuota(size int) error {
	for {
		n := l.charges.Load()
		if l.FailAfter >= 0 && n >= l.FailAfter {
			return api.ErrInsufficientResources
		}
		if l.charges.CompareAndSwap(n, n+1) {
			return nil
		}
	}
}

// ReturnQuota counts the return.
func (l *Ledger) ReturnQuota(size int) { l.returns.Add(1) }

// Charges returns successful charge count.
func (l *Ledger) Charges() int64 { return l.charges.Load() }

// Returns returns quota return count.
func (l *Ledger) Returns() int64 { return l.returns.Load() }

var _ api.QuotaLedger = (*Ledger)(nil)
