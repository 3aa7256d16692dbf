package protocol

import "testing"

func TestReplyEncodeDecodeRoundTrip(t *testing.T) {
	in := &Reply{
		DataOffset:     0,
		MetadataOffset: 4096,
		MapSize:        8192,
		DataSize:       4096,
		MetadataSize:   128,
		HasObject:      1,
		StoreFDVal:     7,
	}

	buf := make([]byte, ReplySize)
	if err := EncodeReply(buf, in); err != nil {
		t.Fatalf("EncodeReply: %v", err)
	}

	out, err := DecodeReply(buf)
	if err != nil {
		t.Fatalf("DecodeReply: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestDecodeReplyRejectsShortBuffer(t *testing.T) {
	if _, err := DecodeReply(make([]byte, ReplySize-1)); err == nil {
		t.Fatalf("DecodeReply: expected error for undersized buffer")
	}
}
