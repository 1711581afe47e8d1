// Package sysmem samples available system memory. The pipeline uses it for
// the advisory low-memory warning and for the pre-decode footprint check on
// memory-constrained hosts.
package sysmem

import (
	"github.com/shirou/gopsutil/v3/mem"
)

// LowMemoryThreshold is the advisory floor: when available memory drops
// below it the pipeline warns but keeps going.
const LowMemoryThreshold = 100 * 1024 * 1024 // 100 MB

// Available returns the bytes of memory currently available to new
// allocations without swapping.
func Available() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}
