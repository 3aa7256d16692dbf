//go:build windows
// +build windows

// Windows NUMA-local allocation for the read-scratch pool, via
// VirtualAllocExNuma.

package pool

import (
	"syscall"
	"unsafe"
)

const (
	memCommit     = 0x00001000
	memReserve    = 0x00002000
	pageReadWrite = 0x04
)

func numaAlloc(size, node int) ([]byte, bool) {
	kernel32 := syscall.NewLazyDLL("kernel32.dll")
	allocExNuma := kernel32.NewProc("VirtualAllocExNuma")
	currentProcess := kernel32.NewProc("GetCurrentProcess")

	hProc, _, _ := currentProcess.Call()
	ptr, _, _ := allocExNuma.Call(
		hProc,
		0,
		uintptr(size),
		uintptr(memReserve|memCommit),
		uintptr(pageReadWrite),
		uintptr(node),
	)
	if ptr == 0 {
		return nil, false
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size), true
}
