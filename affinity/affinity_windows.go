//go:build windows
// +build windows

// File: affinity/affinity_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows implementation via kernel32.

package affinity

import (
	"syscall"
)

var (
	kernel32                      = syscall.NewLazyDLL("kernel32.dll")
	procGetCurrentProcessorNumber = kernel32.NewProc("GetCurrentProcessorNumber")
	procSetThreadAffinityMask     = kernel32.NewProc("SetThreadAffinityMask")
	procGetCurrentThread          = kernel32.NewProc("GetCurrentThread")
)

// currentWorkerPlatform returns the CPU the caller runs on right now.
func currentWorkerPlatform() int {
	n, _, _ := procGetCurrentProcessorNumber.Call()
	return int(n)
}

// setAffinityPlatform sets thread affinity to a given CPU for Windows.
func setAffinityPlatform(cpuID int) error {
	hThread, _, _ := procGetCurrentThread.Call()
	mask := uintptr(1) << cpuID
	ret, _, err := procSetThreadAffinityMask.Call(hThread, mask)
	if ret == 0 {
		return err
	}
	return nil
}
