//go:build !linux && !windows
// +build !linux,!windows

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for platforms without a cheap current-CPU query.
// Worker 0 is reported for every caller, which degrades the per-worker
// cache to a single shared tier but stays correct.

package affinity

import "errors"

func currentWorkerPlatform() int { return 0 }

// setAffinityPlatform is a stub for platforms where CPU affinity is not supported.
func setAffinityPlatform(cpuID int) error {
	return errors.New("affinity: not supported on this platform")
}
