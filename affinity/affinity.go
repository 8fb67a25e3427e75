// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for worker identity and CPU affinity. Platform
// implementations live in affinity_linux.go, affinity_windows.go and
// affinity_stub.go behind build tags.
//
// "Worker" is the processing unit executing the calling thread right
// now. A goroutine may observe different worker ids across consecutive
// calls; callers must treat the id as a locality hint, never as an
// ownership token.

package affinity

import "runtime"

// CurrentWorker returns the id of the CPU executing the caller at this
// instant, in [0, Workers()). On platforms without a cheap current-CPU
// query it returns 0.
func CurrentWorker() int {
	id := currentWorkerPlatform()
	if id < 0 {
		return 0
	}
	return id
}

// Workers returns the number of logical CPUs.
func Workers() int {
	return runtime.NumCPU()
}

// SetAffinity pins the current OS thread to a given logical CPU on
// supported platforms. On unsupported platforms returns an error.
func SetAffinity(cpuID int) error {
	return setAffinityPlatform(cpuID)
}
