//go:build linux
// +build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux implementation using getcpu(2) and sched_setaffinity(2) via
// golang.org/x/sys. Pure Go, no CGO requirement.

package affinity

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// currentWorkerPlatform returns the CPU the caller runs on right now.
func currentWorkerPlatform() int {
	var cpu, node int
	_, _, errno := unix.Syscall(unix.SYS_GETCPU,
		uintptr(unsafe.Pointer(&cpu)), uintptr(unsafe.Pointer(&node)), 0)
	if errno != 0 {
		return -1
	}
	return cpu
}

// setAffinityPlatform sets thread affinity to a given CPU for Linux.
func setAffinityPlatform(cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("affinity: sched_setaffinity failed: %w", err)
	}
	return nil
}
