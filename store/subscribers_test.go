package store

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestSubscriberTableRegisterAndHas(t *testing.T) {
	s := NewSubscriberTable()
	if s.Has(42) {
		t.Fatalf("Has: expected false before Register")
	}
	s.Register(42)
	if !s.Has(42) {
		t.Fatalf("Has: expected true after Register")
	}
	if got := s.Count(); got != 1 {
		t.Fatalf("Count = %d, want 1", got)
	}
	s.Remove(42)
	if s.Has(42) {
		t.Fatalf("Has: expected false after Remove")
	}
}

func TestSubscriberTableEnqueueAllReturnsEveryFD(t *testing.T) {
	s := NewSubscriberTable()
	s.Register(1)
	s.Register(2)
	s.Register(3)

	fds := s.EnqueueAll(testID(20))
	if len(fds) != 3 {
		t.Fatalf("EnqueueAll: got %d fds, want 3", len(fds))
	}
	for _, fd := range fds {
		if s.QueueDepth(fd) != 1 {
			t.Fatalf("QueueDepth(%d) = %d, want 1", fd, s.QueueDepth(fd))
		}
	}
}

func TestSubscriberTableDrainDeliversOverRealSocket(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	s := NewSubscriberTable()
	s.Register(fds[0])
	s.EnqueueAll(testID(21))
	s.EnqueueAll(testID(22))

	drained, err := s.Drain(fds[0])
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if !drained {
		t.Fatalf("Drain: expected drained=true, queue should have emptied into the socket buffer")
	}
	if depth := s.QueueDepth(fds[0]); depth != 0 {
		t.Fatalf("QueueDepth after drain = %d, want 0", depth)
	}

	buf := make([]byte, 40)
	n, err := unix.Read(fds[1], buf)
	if err != nil {
		t.Fatalf("read back notifications: %v", err)
	}
	if n != 40 {
		t.Fatalf("read %d bytes off the wire, want 40 (two 20-byte identifiers)", n)
	}
}

func TestSubscriberTableDrainBackpressure(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])
	if err := unix.SetsockoptInt(fds[0], unix.SOL_SOCKET, unix.SO_SNDBUF, 1024); err != nil {
		t.Fatalf("setsockopt SO_SNDBUF: %v", err)
	}

	s := NewSubscriberTable()
	s.Register(fds[0])
	for i := 0; i < 10000; i++ {
		s.EnqueueAll(testID(byte(i % 250)))
	}

	drained, err := s.Drain(fds[0])
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if drained {
		t.Fatalf("Drain: expected drained=false once the socket send buffer filled")
	}
	if depth := s.QueueDepth(fds[0]); depth == 0 {
		t.Fatalf("QueueDepth after a blocked drain: expected a nonzero backlog")
	}
}

func TestSubscriberTableDrainOnUnknownFDIsNoop(t *testing.T) {
	s := NewSubscriberTable()
	drained, err := s.Drain(999)
	if err != nil || !drained {
		t.Fatalf("Drain on unregistered fd: drained=%v err=%v, want true, nil", drained, err)
	}
}
