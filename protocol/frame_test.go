package protocol

import (
	"bytes"
	"testing"

	"golang.org/x/sys/unix"
)

func TestFrameEncodeDecode(t *testing.T) {
	payload := []byte("hello object store")
	buf := EncodeFrame(Create, payload)

	d := NewDecoder(1 << 20)
	d.buf = append(d.buf, buf...)

	frame, ok, err := d.Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if !ok {
		t.Fatalf("Pop: expected a complete frame")
	}
	if frame.Type != Create {
		t.Fatalf("Type = %v, want %v", frame.Type, Create)
	}
	if !bytes.Equal(frame.Payload, payload) {
		t.Fatalf("Payload = %q, want %q", frame.Payload, payload)
	}

	if _, ok, err := d.Pop(); err != nil || ok {
		t.Fatalf("Pop on empty buffer: ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}

func TestFrameDecoderAccumulatesPartial(t *testing.T) {
	payload := []byte("partial frame payload")
	buf := EncodeFrame(Seal, payload)

	d := NewDecoder(1 << 20)
	d.buf = append(d.buf, buf[:headerSize+3]...)
	if _, ok, err := d.Pop(); err != nil || ok {
		t.Fatalf("Pop on short header+partial payload: ok=%v err=%v, want ok=false err=nil", ok, err)
	}

	d.buf = append(d.buf, buf[headerSize+3:]...)
	frame, ok, err := d.Pop()
	if err != nil || !ok {
		t.Fatalf("Pop after completing buffer: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(frame.Payload, payload) {
		t.Fatalf("Payload = %q, want %q", frame.Payload, payload)
	}
}

func TestFrameDecoderRejectsNegativeLength(t *testing.T) {
	d := NewDecoder(1 << 20)
	d.buf = make([]byte, headerSize)
	// length field (bytes 8:16) left as zero would be valid; force a
	// negative value by writing the sign bit.
	d.buf[15] = 0x80
	if _, _, err := d.Pop(); err == nil {
		t.Fatalf("Pop: expected error for negative length")
	}
}

func TestFrameDecoderRejectsOversizedFrame(t *testing.T) {
	d := NewDecoder(16)
	buf := EncodeFrame(Create, make([]byte, 17))
	d.buf = append(d.buf, buf...)
	if _, _, err := d.Pop(); err == nil {
		t.Fatalf("Pop: expected error for a frame exceeding the configured max payload")
	}
}

func TestFrameDecoderUncappedAcceptsAnySize(t *testing.T) {
	d := NewDecoder(0)
	buf := EncodeFrame(Create, make([]byte, 1<<17))
	d.buf = append(d.buf, buf...)
	if _, ok, err := d.Pop(); err != nil || !ok {
		t.Fatalf("Pop with no cap: ok=%v err=%v, want ok=true err=nil", ok, err)
	}
}

func TestFrameMultipleFramesInOneBuffer(t *testing.T) {
	a := EncodeFrame(Contains, []byte("a"))
	b := EncodeFrame(Get, []byte("bb"))

	d := NewDecoder(1 << 20)
	d.buf = append(d.buf, a...)
	d.buf = append(d.buf, b...)

	f1, ok, err := d.Pop()
	if err != nil || !ok || f1.Type != Contains {
		t.Fatalf("first frame: f1=%+v ok=%v err=%v", f1, ok, err)
	}
	f2, ok, err := d.Pop()
	if err != nil || !ok || f2.Type != Get {
		t.Fatalf("second frame: f2=%+v ok=%v err=%v", f2, ok, err)
	}
}

func TestReadFDNonBlockingWouldBlock(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	d := NewDecoder(1 << 20)
	closed, err := d.ReadFD(fds[0])
	if err != nil {
		t.Fatalf("ReadFD on an empty nonblocking socket: %v", err)
	}
	if closed {
		t.Fatalf("ReadFD reported closed on a socket with no data and an open peer")
	}
}

func TestReadFDDetectsPeerClose(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	defer unix.Close(fds[0])
	unix.Close(fds[1])

	d := NewDecoder(1 << 20)
	closed, err := d.ReadFD(fds[0])
	if err != nil {
		t.Fatalf("ReadFD after peer close: %v", err)
	}
	if !closed {
		t.Fatalf("ReadFD: expected closed=true after peer shutdown")
	}
}
