// File: api/completion.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Completion value types shared by producers and consumers.

package api

// Status is the result code carried by a completion. Zero means success;
// the core treats every other value as an opaque caller-defined code.
type Status int32

// StatusSuccess is the conventional all-good completion status.
const StatusSuccess Status = 0

// Completion is the tuple a consumer receives for one dequeued packet.
// KeyContext and ApcContext are opaque tokens round-tripped verbatim from
// the producer; Information is an opaque payload word.
type Completion struct {
	KeyContext  uint64
	ApcContext  uint64
	Status      Status
	Information uint64
}

// NativeRecord is a pre-existing asynchronous operation record owned
// outside this module. The port only reads its completion tuple and
// releases it exactly once when the completion is consumed or the port
// runs down. The allocator never touches native records.
type NativeRecord interface {
	// Completion returns the completion tuple the record carries.
	Completion() Completion

	// Release returns the record to its owner. Called exactly once per
	// record, from Remove or from teardown, never both.
	Release()
}
