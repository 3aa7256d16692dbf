package protocol

import (
	"testing"

	"github.com/shmring/objectd/api"
)

func TestRequestEncodeDecodeRoundTrip(t *testing.T) {
	var id api.ObjectID
	copy(id[:], []byte("01234567890123456789"))

	in := &Request{
		ID:           id,
		DataSize:     4096,
		MetadataSize: 128,
		Addr:         [4]byte{127, 0, 0, 1},
		Port:         9999,
	}

	buf := make([]byte, RequestSize)
	if err := EncodeRequest(buf, in); err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}

	out, err := DecodeRequest(buf)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if out.ID != in.ID || out.DataSize != in.DataSize || out.MetadataSize != in.MetadataSize ||
		out.Addr != in.Addr || out.Port != in.Port {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestDecodeRequestRejectsShortBuffer(t *testing.T) {
	if _, err := DecodeRequest(make([]byte, RequestSize-1)); err == nil {
		t.Fatalf("DecodeRequest: expected error for undersized buffer")
	}
}

func TestEncodeRequestRejectsShortBuffer(t *testing.T) {
	if err := EncodeRequest(make([]byte, RequestSize-1), &Request{}); err == nil {
		t.Fatalf("EncodeRequest: expected error for undersized buffer")
	}
}
