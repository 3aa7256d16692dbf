package store

import (
	"fmt"
	"log"

	"golang.org/x/sys/unix"

	"github.com/shmring/objectd/api"
	"github.com/shmring/objectd/protocol"
)

// connState is the per-connection accumulator for a client command-
// socket fd: no heap state beyond what the object/waiter/subscriber
// tables already hold, plus the partial-frame buffer the non-blocking
// socket forces on us (spec.md §4.F).
type connState struct {
	dec *protocol.Decoder
}

// listen binds and listens on the Unix domain socket at path, returning
// its fd in non-blocking mode, ready to be registered with the
// reactor.
func listen(path string) (int, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("socket: %w", err)
	}
	addr := &unix.SockaddrUnix{Name: path}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("bind %s: %w", path, err)
	}
	const backlog = 128
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("listen: %w", err)
	}
	return fd, nil
}

// onListenerReadable accepts every pending connection and registers
// each for read-readiness bound to the dispatcher (spec.md §4.F).
func (s *Store) onListenerReadable(fd int, _ api.FDEvent) {
	for {
		connFD, _, err := unix.Accept4(fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			log.Printf("accept: %v", err)
			return
		}
		s.conns[connFD] = &connState{dec: protocol.NewDecoder(s.cfg.MaxFrameBytes)}
		if err := s.reactor.AddFD(connFD, api.EventRead, s.onClientReadable); err != nil {
			log.Printf("register client fd %d: %v", connFD, err)
			unix.Close(connFD)
			delete(s.conns, connFD)
		}
	}
}

// onClientReadable drains whatever is available on a client fd,
// dispatching every complete frame it decodes. A zero-length read tears
// the connection down via disconnect; any other read error is fatal.
func (s *Store) onClientReadable(fd int, _ api.FDEvent) {
	cs, ok := s.conns[fd]
	if !ok {
		return
	}

	closed, err := cs.dec.ReadFD(fd)
	if err != nil {
		s.fatal(api.Fatalf(api.FatalIO, "read from client fd %d: %v", fd, err))
		return
	}

	for {
		frame, ok, err := cs.dec.Pop()
		if err != nil {
			s.fatal(api.Fatalf(api.FatalProtocol, "decode frame from fd %d: %v", fd, err))
			return
		}
		if !ok {
			break
		}
		if err := s.dispatch(fd, frame); err != nil {
			s.fatal(err)
			return
		}
	}

	if closed {
		s.disconnect(fd)
	}
}

// disconnect deregisters a client fd and frees its per-connection
// state. Pending waiter entries that reference fd are left in place,
// per the REDESIGN FLAGS decision to tolerate rather than reap.
func (s *Store) disconnect(fd int) {
	if _, ok := s.conns[fd]; !ok {
		return
	}
	delete(s.conns, fd)
	if err := s.reactor.RemoveFD(fd); err != nil {
		log.Printf("deregister client fd %d: %v", fd, err)
	}
	unix.Close(fd)
}
