// Package reactor provides the single-threaded, readiness-driven event
// loop the store core runs on: register a fd for read and/or write
// readiness bound to a callback, flip its interest set, remove it, and
// drive dispatch until stopped.
//
// Grounded on the teacher's epoll_reactor.go/reactor_linux.go pairing:
// one epoll instance, per-fd callback registration, one event processed
// per callback invocation, no reentrant callback invocation.
package reactor

import "github.com/shmring/objectd/api"

// New constructs the platform reactor. On Linux it is epoll-backed; on
// other platforms it returns an error, matching the teacher's
// reactor_stub.go pattern for unsupported platforms.
func New() (api.Reactor, error) {
	return newReactor()
}
