package protocol

import (
	"encoding/binary"
	"fmt"
)

// ReplySize is the wire size, in bytes, of an encoded Reply.
const ReplySize = 8*5 + 4 + 4

// Reply is the fixed-layout reply payload for CREATE, GET, CONTAINS and
// SEAL. CREATE/GET/SEAL replies are accompanied by a passed fd via
// ancillary data; CONTAINS carries no fd and only HasObject is
// meaningful.
type Reply struct {
	DataOffset     int64
	MetadataOffset int64
	MapSize        int64
	DataSize       int64
	MetadataSize   int64
	HasObject      int32
	StoreFDVal     int32
}

// EncodeReply writes r's fixed layout into dst, which must be at least
// ReplySize bytes.
func EncodeReply(dst []byte, r *Reply) error {
	if len(dst) < ReplySize {
		return fmt.Errorf("protocol: reply buffer too small: %d < %d", len(dst), ReplySize)
	}
	off := 0
	for _, v := range []int64{r.DataOffset, r.MetadataOffset, r.MapSize, r.DataSize, r.MetadataSize} {
		binary.LittleEndian.PutUint64(dst[off:], uint64(v))
		off += 8
	}
	binary.LittleEndian.PutUint32(dst[off:], uint32(r.HasObject))
	off += 4
	binary.LittleEndian.PutUint32(dst[off:], uint32(r.StoreFDVal))
	return nil
}

// DecodeReply parses a Reply from its fixed-layout wire bytes.
func DecodeReply(src []byte) (*Reply, error) {
	if len(src) < ReplySize {
		return nil, fmt.Errorf("protocol: reply payload too small: %d < %d", len(src), ReplySize)
	}
	r := &Reply{}
	off := 0
	fields := []*int64{&r.DataOffset, &r.MetadataOffset, &r.MapSize, &r.DataSize, &r.MetadataSize}
	for _, f := range fields {
		*f = int64(binary.LittleEndian.Uint64(src[off:]))
		off += 8
	}
	r.HasObject = int32(binary.LittleEndian.Uint32(src[off:]))
	off += 4
	r.StoreFDVal = int32(binary.LittleEndian.Uint32(src[off:]))
	return r, nil
}
