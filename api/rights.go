// File: api/rights.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Rights is the access mask granted to a port handle.
type Rights uint32

const (
	// QueryState permits depth queries.
	QueryState Rights = 1 << iota

	// ModifyState permits Post and Remove.
	ModifyState
)

// AllAccess grants every defined right.
const AllAccess = QueryState | ModifyState

// Has reports whether r includes every right in want.
func (r Rights) Has(want Rights) bool {
	return r&want == want
}

// InfoClass selects what a port query returns.
type InfoClass int32

// BasicInformation is the only supported query class: the queue depth.
const BasicInformation InfoClass = 0

// BasicInformationLength is the exact byte size of the encoded basic
// information record (a little-endian uint32 depth).
const BasicInformationLength = 4

// BasicInfo is the decoded form of a basic-information query.
type BasicInfo struct {
	Depth uint32
}
