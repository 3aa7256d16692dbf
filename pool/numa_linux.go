//go:build linux && cgo
// +build linux,cgo

// Linux NUMA-local allocation for the read-scratch pool, via libnuma.

package pool

/*
#cgo LDFLAGS: -lnuma
#include <numa.h>
#include <stdlib.h>

static void *objectd_numa_alloc(int size, int node) {
	if (numa_available() == -1) {
		return malloc(size);
	}
	return numa_alloc_onnode(size, node);
}
*/
import "C"
import "unsafe"

// numaAlloc allocates size bytes on node, or falls back to a plain
// malloc when libnuma reports NUMA as unavailable on this host.
func numaAlloc(size, node int) ([]byte, bool) {
	ptr := C.objectd_numa_alloc(C.int(size), C.int(node))
	if ptr == nil {
		return nil, false
	}
	return unsafe.Slice((*byte)(ptr), size), true
}
