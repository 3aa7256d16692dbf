//go:build linux && cgo
// +build linux,cgo

package main

/*
#define _GNU_SOURCE
#include <sched.h>
#include <pthread.h>

static int objectd_pin_thread(int cpu) {
	cpu_set_t set;
	CPU_ZERO(&set);
	CPU_SET(cpu, &set);
	return pthread_setaffinity_np(pthread_self(), sizeof(set), &set);
}
*/
import "C"
import "fmt"

// pinToCPU binds the calling OS thread to a single logical CPU. The
// reactor's event loop runs entirely on one goroutine locked to one
// OS thread (see runtime.LockOSThread in main), so pinning that
// thread keeps it off the scheduler's migration path for the rest of
// the process's life.
func pinToCPU(cpuID int) error {
	if ret := C.objectd_pin_thread(C.int(cpuID)); ret != 0 {
		return fmt.Errorf("pthread_setaffinity_np failed, code %d", ret)
	}
	return nil
}
