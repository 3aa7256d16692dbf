//go:build windows
// +build windows

package main

import "syscall"

// pinToCPU binds the calling OS thread to a single logical CPU via
// SetThreadAffinityMask.
func pinToCPU(cpuID int) error {
	kernel32 := syscall.NewLazyDLL("kernel32.dll")
	setMask := kernel32.NewProc("SetThreadAffinityMask")
	getThread := kernel32.NewProc("GetCurrentThread")

	hThread, _, _ := getThread.Call()
	mask := uintptr(1) << uint(cpuID)
	if ret, _, err := setMask.Call(hThread, mask); ret == 0 {
		return err
	}
	return nil
}
