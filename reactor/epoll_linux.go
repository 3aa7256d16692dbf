//go:build linux
// +build linux

package reactor

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/shmring/objectd/api"
)

// epollReactor implements api.Reactor using Linux epoll. A dedicated
// eventfd is registered alongside client fds purely to wake a blocked
// epoll_wait on Stop.
type epollReactor struct {
	epfd   int
	stopFD int

	mu        sync.Mutex
	callbacks map[int]api.FDCallback

	stopOnce sync.Once
}

func newReactor() (api.Reactor, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}
	stopFD, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	r := &epollReactor{
		epfd:      epfd,
		stopFD:    stopFD,
		callbacks: make(map[int]api.FDCallback),
	}
	stopEv := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(stopFD)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, stopFD, stopEv); err != nil {
		unix.Close(epfd)
		unix.Close(stopFD)
		return nil, fmt.Errorf("epoll_ctl add stopfd: %w", err)
	}
	return r, nil
}

func toEpollMask(events api.FDEvent) uint32 {
	var mask uint32
	if events&api.EventRead != 0 {
		mask |= unix.EPOLLIN
	}
	if events&api.EventWrite != 0 {
		mask |= unix.EPOLLOUT
	}
	return mask
}

// AddFD registers fd for the given readiness events, bound to cb.
func (r *epollReactor) AddFD(fd int, events api.FDEvent, cb api.FDCallback) error {
	r.mu.Lock()
	r.callbacks[fd] = cb
	r.mu.Unlock()

	ev := &unix.EpollEvent{Events: toEpollMask(events), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		r.mu.Lock()
		delete(r.callbacks, fd)
		r.mu.Unlock()
		return fmt.Errorf("epoll_ctl add: %w", err)
	}
	return nil
}

// ModifyFD changes the readiness events fd is registered for.
func (r *epollReactor) ModifyFD(fd int, events api.FDEvent) error {
	ev := &unix.EpollEvent{Events: toEpollMask(events), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, ev); err != nil {
		return fmt.Errorf("epoll_ctl mod: %w", err)
	}
	return nil
}

// RemoveFD deregisters fd.
func (r *epollReactor) RemoveFD(fd int) error {
	r.mu.Lock()
	delete(r.callbacks, fd)
	r.mu.Unlock()

	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll_ctl del: %w", err)
	}
	return nil
}

// Run blocks, dispatching callbacks, until Stop wakes it.
func (r *epollReactor) Run() error {
	defer func() {
		unix.Close(r.epfd)
		unix.Close(r.stopFD)
	}()

	const maxEvents = 128
	events := make([]unix.EpollEvent, maxEvents)

	for {
		n, err := unix.EpollWait(r.epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("epoll_wait: %w", err)
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			if fd == r.stopFD {
				return nil
			}

			var fe api.FDEvent
			if events[i].Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
				fe |= api.EventRead
			}
			if events[i].Events&unix.EPOLLOUT != 0 {
				fe |= api.EventWrite
			}

			r.mu.Lock()
			cb, ok := r.callbacks[fd]
			r.mu.Unlock()
			if !ok {
				continue
			}
			cb(fd, fe)
		}
	}
}

// Stop causes a blocked or future Run to return.
func (r *epollReactor) Stop() {
	r.stopOnce.Do(func() {
		one := [8]byte{1}
		unix.Write(r.stopFD, one[:])
	})
}
