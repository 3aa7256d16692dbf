//go:build (!linux && !windows) || (linux && !cgo)
// +build !linux,!windows linux,!cgo

package main

import "errors"

// pinToCPU is unavailable on platforms without a thread-affinity
// syscall.
func pinToCPU(cpuID int) error {
	return errors.New("cpu pinning is not supported on this platform")
}
