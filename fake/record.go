// File: fake/record.go
// Author: momentics <momentics@gmail.com>
//
// Test doubles for the completion-port core.

package fake

import (
	"sync/atomic"

	"github.com/momentics/hioload-iocp/api"
)

// Record is an api.NativeRecord that counts release-hook invocations,
// for asserting the exactly-once release contract.
type Record struct {
	Tuple    api.Completion
	released atomic.Int32
}

// Completion returns the tuple the record carries.
func (r *Record) Completion() api.Completion { return r.Tuple }

// Release counts the hook invocation.
func (r *Record) Release() { r.released.Add(1) }

// Releases returns how many times Release ran.
func (r *Record) Releases() int { return int(r.released.Load()) }

var _ api.NativeRecord = (*Record)(nil)
