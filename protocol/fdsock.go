package protocol

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// WriteFrame writes a complete (type, payload) frame to fd with no
// passed descriptor, used for CONTAINS replies. Per the command-socket
// error policy, any short write is returned as an error for the caller
// to treat as fatal to that connection.
func WriteFrame(fd int, typ MessageType, payload []byte) error {
	return writeAll(fd, EncodeFrame(typ, payload))
}

// WriteFrameWithFD writes a complete frame to fd accompanied by passFD
// via SCM_RIGHTS ancillary data, used for the handle-triple replies to
// CREATE, GET and SEAL.
func WriteFrameWithFD(fd int, typ MessageType, payload []byte, passFD int) error {
	buf := EncodeFrame(typ, payload)
	rights := unix.UnixRights(passFD)
	n, err := unix.SendmsgN(fd, buf, rights, nil, 0)
	if err != nil {
		return fmt.Errorf("sendmsg: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("short sendmsg: %d/%d bytes", n, len(buf))
	}
	return nil
}

func writeAll(fd int, buf []byte) error {
	n, err := unix.Write(fd, buf)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("short write: %d/%d bytes", n, len(buf))
	}
	return nil
}

// RecvFD reads one small ancillary message from fd and returns the
// single file descriptor it carried, used by SUBSCRIBE to obtain the
// subscriber's dedicated notification socket. The client is expected
// to send the descriptor (plus a one-byte dummy payload) in its own
// sendmsg call, independent of the framed request that named the
// SUBSCRIBE message type.
func RecvFD(fd int) (int, error) {
	payload := make([]byte, 1)
	oob := make([]byte, unix.CmsgSpace(4))

	n, oobn, _, _, err := unix.Recvmsg(fd, payload, oob, 0)
	if err != nil {
		return -1, fmt.Errorf("recvmsg: %w", err)
	}
	if n == 0 {
		return -1, fmt.Errorf("recvmsg: peer closed before sending fd")
	}

	cmsgs, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return -1, fmt.Errorf("parse control message: %w", err)
	}
	if len(cmsgs) == 0 {
		return -1, fmt.Errorf("recvmsg: no control message received")
	}

	fds, err := unix.ParseUnixRights(&cmsgs[0])
	if err != nil {
		return -1, fmt.Errorf("parse unix rights: %w", err)
	}
	if len(fds) == 0 {
		return -1, fmt.Errorf("recvmsg: no fd received")
	}
	return fds[0], nil
}
