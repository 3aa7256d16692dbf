package protocol

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/shmring/objectd/api"
)

// SendNotification attempts to write one raw, unframed 20-byte
// identifier to a subscriber's notification fd. wouldBlock reports a
// transient EAGAIN/EWOULDBLOCK condition, the store's backpressure
// signal: the caller stops draining and waits for the next
// write-readiness event. Any other error is fatal to the subscriber
// connection, not to the whole daemon.
func SendNotification(fd int, id api.ObjectID) (wouldBlock bool, err error) {
	n, err := unix.Write(fd, id[:])
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return true, nil
		}
		return false, fmt.Errorf("write notification: %w", err)
	}
	if n != api.ObjectIDSize {
		return false, fmt.Errorf("short notification write: %d/%d bytes", n, api.ObjectIDSize)
	}
	return false, nil
}
