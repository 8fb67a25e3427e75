// File: api/quota.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// QuotaLedger accounts memory charged for heap-fallback packet
// allocations. Charge and Return calls are atomic and must pair exactly
// once per charged packet over its whole lifetime.
type QuotaLedger interface {
	// ChargeQuota reserves size bytes. Returns ErrInsufficientResources
	// when the reservation would exceed the ledger limit.
	ChargeQuota(size int) error

	// ReturnQuota releases size bytes previously charged.
	ReturnQuota(size int)
}
