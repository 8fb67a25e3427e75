// File: facade/system.go
// Unified handle-based surface for hioload-iocp.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The System owns what the port core treats as external collaborators:
// the named-object registry, the handle table with access rights, and
// reference counting. Ports are destroyed when the last handle drops,
// which triggers the port's rundown. Handle values are never reused
// within one System.
//
// Commit-before-deliver contract: every operation is considered
// successful once its state change committed (object registered, entry
// queued, entry dequeued). Result delivery to the caller is a separate
// step that never rolls a commit back.

package facade

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/momentics/hioload-iocp/api"
	"github.com/momentics/hioload-iocp/port"
)

// Handle identifies one reference to a port within a System.
type Handle uint64

// object is one registered port plus its reference bookkeeping.
type object struct {
	port *port.Port
	name string
	// grant is the widest rights mask Open may request, fixed at Create.
	grant api.Rights
	refs  int
}

// handleEntry binds a handle to its object with the rights it carries.
type handleEntry struct {
	obj    *object
	rights api.Rights
}

// System is a registry of completion ports addressed by handles.
type System struct {
	mu      sync.Mutex
	handles map[Handle]*handleEntry
	names   map[string]*object
	next    Handle
}

// NewSystem creates an empty registry.
func NewSystem() *System {
	return &System{
		handles: make(map[Handle]*handleEntry),
		names:   make(map[string]*object),
	}
}

// Create builds a new port and returns a handle carrying rights. An
// empty name registers nothing; a non-empty name must be unused. A
// concurrency limit below one defaults to the number of logical CPUs.
// The rights given here also cap what later Open calls may request.
func (s *System) Create(name string, concurrency int, rights api.Rights, opts ...port.Option) (Handle, error) {
	p := port.New(append(opts, port.WithConcurrency(concurrency))...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if name != "" {
		if _, ok := s.names[name]; ok {
			return 0, api.ErrNameExists
		}
	}
	obj := &object{port: p, name: name, grant: rights, refs: 1}
	if name != "" {
		s.names[name] = obj
	}
	return s.insertLocked(obj, rights), nil
}

// Open resolves a named port and returns a new handle. Fails with
// api.ErrNotFound when the name is unregistered and api.ErrAccessDenied
// when rights exceed what Create granted.
func (s *System) Open(name string, rights api.Rights) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.names[name]
	if !ok {
		return 0, api.ErrNotFound
	}
	if !obj.grant.Has(rights) {
		return 0, api.ErrAccessDenied
	}
	obj.refs++
	return s.insertLocked(obj, rights), nil
}

// Close releases one handle. Dropping the last reference to a port
// runs it down, releasing every undelivered entry.
func (s *System) Close(h Handle) error {
	s.mu.Lock()
	e, ok := s.handles[h]
	if !ok {
		s.mu.Unlock()
		return api.ErrInvalidHandle
	}
	delete(s.handles, h)
	e.obj.refs--
	last := e.obj.refs == 0
	if last && e.obj.name != "" {
		delete(s.names, e.obj.name)
	}
	s.mu.Unlock()

	// Rundown outside the table lock: it may release many entries.
	if last {
		e.obj.port.Rundown()
	}
	return nil
}

// Query writes the requested information record into buf and returns
// the encoded length. Validation runs before the port is touched:
// the class must be api.BasicInformation, then buf must be exactly
// api.BasicInformationLength bytes. The record is the queue depth as a
// little-endian uint32. Requires api.QueryState.
func (s *System) Query(h Handle, class api.InfoClass, buf []byte) (int, error) {
	if class != api.BasicInformation {
		return 0, api.ErrInvalidInfoClass
	}
	if len(buf) != api.BasicInformationLength {
		return 0, api.ErrInfoLengthMismatch
	}
	p, err := s.resolve(h, api.QueryState)
	if err != nil {
		return 0, err
	}
	binary.LittleEndian.PutUint32(buf, uint32(p.Depth()))
	return api.BasicInformationLength, nil
}

// QueryBasic is Query decoded into the basic-information struct.
func (s *System) QueryBasic(h Handle) (api.BasicInfo, error) {
	var buf [api.BasicInformationLength]byte
	if _, err := s.Query(h, api.BasicInformation, buf[:]); err != nil {
		return api.BasicInfo{}, err
	}
	return api.BasicInfo{Depth: binary.LittleEndian.Uint32(buf[:])}, nil
}

// Post queues a synthetic completion on the port behind h. Requires
// api.ModifyState.
func (s *System) Post(h Handle, key, apc uint64, status api.Status, information uint64) error {
	p, err := s.resolve(h, api.ModifyState)
	if err != nil {
		return err
	}
	return p.Post(key, apc, status, information)
}

// PostNative queues a completion backed by an external record.
// Requires api.ModifyState.
func (s *System) PostNative(h Handle, rec api.NativeRecord) error {
	p, err := s.resolve(h, api.ModifyState)
	if err != nil {
		return err
	}
	return p.PostNative(rec)
}

// Remove dequeues one completion from the port behind h, honoring the
// concurrency limit and timeout. Requires api.ModifyState.
func (s *System) Remove(ctx context.Context, h Handle, timeout time.Duration) (api.Completion, error) {
	p, err := s.resolve(h, api.ModifyState)
	if err != nil {
		return api.Completion{}, err
	}
	return p.Remove(ctx, timeout)
}

// Port returns the port behind a handle, for callers integrating at
// the object layer rather than the handle layer.
func (s *System) Port(h Handle) (*port.Port, error) {
	return s.resolve(h, 0)
}

// insertLocked allocates the next handle value. Caller holds s.mu.
func (s *System) insertLocked(obj *object, rights api.Rights) Handle {
	s.next++
	h := s.next
	s.handles[h] = &handleEntry{obj: obj, rights: rights}
	return h
}

// resolve maps a handle to its port, enforcing the rights mask.
func (s *System) resolve(h Handle, need api.Rights) (*port.Port, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.handles[h]
	if !ok {
		return nil, api.ErrInvalidHandle
	}
	if !e.rights.Has(need) {
		return nil, api.ErrAccessDenied
	}
	return e.obj.port, nil
}
