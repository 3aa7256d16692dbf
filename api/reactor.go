package api

// FDEvent is a bitmask of readiness conditions a file descriptor can be
// registered for.
type FDEvent uint8

const (
	EventRead FDEvent = 1 << iota
	EventWrite
)

// FDCallback is invoked by the reactor when a registered fd becomes
// ready. events reports which of the registered conditions fired.
// Callbacks run to completion; they may freely Add/Modify/Remove other
// fds, including their own, but are never invoked reentrantly from
// within themselves.
type FDCallback func(fd int, events FDEvent)

// Reactor is the event-loop glue the store core runs on: register a fd
// for readiness, flip its interest set, remove it, and drive the loop.
// Each pass of Run's loop processes one batch of readiness events,
// invoking at most one callback per ready fd per pass.
type Reactor interface {
	// AddFD registers fd for the given readiness events, bound to cb.
	AddFD(fd int, events FDEvent, cb FDCallback) error

	// ModifyFD changes the readiness events fd is registered for.
	ModifyFD(fd int, events FDEvent) error

	// RemoveFD deregisters fd. Safe to call from within a callback,
	// including the callback for fd itself.
	RemoveFD(fd int) error

	// Run blocks, dispatching callbacks, until Stop is called.
	Run() error

	// Stop causes a blocked or future Run to return.
	Stop()
}
