package protocol

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/shmring/objectd/pool"
)

// headerSize is the width of the (type int64, length int64) envelope
// that precedes every frame payload.
const headerSize = 16

// readChunkSize is the scratch buffer size used to drain one
// readiness event off a client fd. Frames larger than this simply
// accumulate across several reads; it bounds per-read syscall
// overhead, not frame size.
const readChunkSize = 65536

// readChunks is shared by every Decoder: the scratch buffer only ever
// holds bytes in transit from kernel to d.buf, never payload a caller
// retains, so NUMA-local reuse is safe across connections.
var readChunks = pool.NewBytePool(readChunkSize, 0)

// Frame is one decoded (type, payload) message.
type Frame struct {
	Type    MessageType
	Payload []byte
}

// Decoder accumulates bytes read from a non-blocking client fd and
// yields complete frames as they become available, buffering any
// partial frame across multiple readiness events.
//
// Grounded on the teacher's protocol/frame_codec.go "incomplete ->
// (nil, 0, nil)" accumulation pattern, generalized from a WebSocket
// frame to the store's fixed (type, length, payload) envelope.
type Decoder struct {
	buf        []byte
	maxPayload int64
}

// NewDecoder returns an empty Decoder that rejects any frame whose
// declared payload length exceeds maxPayload. maxPayload <= 0 means
// no cap.
func NewDecoder(maxPayload int64) *Decoder {
	return &Decoder{maxPayload: maxPayload}
}

// ReadFD performs one non-blocking read from fd and appends whatever
// arrived to the internal buffer. closed reports a zero-length read,
// meaning the peer has shut down its write side.
func (d *Decoder) ReadFD(fd int) (closed bool, err error) {
	tmp := readChunks.GetBuffer()
	defer readChunks.PutBuffer(tmp)

	n, err := unix.Read(fd, tmp)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return false, nil
		}
		return false, fmt.Errorf("read: %w", err)
	}
	if n == 0 {
		return true, nil
	}
	d.buf = append(d.buf, tmp[:n]...)
	return false, nil
}

// Pop removes and returns one complete frame from the buffer, if one
// is fully present. ok is false when more bytes are needed.
func (d *Decoder) Pop() (frame *Frame, ok bool, err error) {
	if len(d.buf) < headerSize {
		return nil, false, nil
	}
	typ := int64(binary.LittleEndian.Uint64(d.buf[0:8]))
	length := int64(binary.LittleEndian.Uint64(d.buf[8:16]))
	if length < 0 {
		return nil, false, fmt.Errorf("protocol: negative frame length %d", length)
	}
	if d.maxPayload > 0 && length > d.maxPayload {
		return nil, false, fmt.Errorf("protocol: frame length %d exceeds max %d", length, d.maxPayload)
	}
	total := headerSize + int(length)
	if len(d.buf) < total {
		return nil, false, nil
	}
	payload := make([]byte, length)
	copy(payload, d.buf[headerSize:total])
	d.buf = append(d.buf[:0], d.buf[total:]...)
	return &Frame{Type: MessageType(typ), Payload: payload}, true, nil
}

// EncodeFrame serializes a (type, payload) frame ready to write.
func EncodeFrame(typ MessageType, payload []byte) []byte {
	out := make([]byte, headerSize+len(payload))
	binary.LittleEndian.PutUint64(out[0:8], uint64(typ))
	binary.LittleEndian.PutUint64(out[8:16], uint64(len(payload)))
	copy(out[headerSize:], payload)
	return out
}
