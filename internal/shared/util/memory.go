package util

import "runtime"

// HeapAllocMB is the live heap in whole megabytes, logged after builds.
func HeapAllocMB() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc >> 20
}
