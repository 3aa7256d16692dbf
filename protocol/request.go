package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/shmring/objectd/api"
)

// RequestSize is the wire size, in bytes, of an encoded Request.
const RequestSize = api.ObjectIDSize + 8 + 8 + 4 + 4

// Request is the fixed-layout request payload carried by CREATE, GET,
// CONTAINS, SEAL and DELETE frames. Addr/Port are carried for wire
// compatibility but unused by the core (transfer-to-another-store is
// out of scope).
type Request struct {
	ID           api.ObjectID
	DataSize     int64
	MetadataSize int64
	Addr         [4]byte
	Port         int32
}

// EncodeRequest writes r's fixed layout into dst, which must be at
// least RequestSize bytes.
func EncodeRequest(dst []byte, r *Request) error {
	if len(dst) < RequestSize {
		return fmt.Errorf("protocol: request buffer too small: %d < %d", len(dst), RequestSize)
	}
	off := copy(dst, r.ID[:])
	binary.LittleEndian.PutUint64(dst[off:], uint64(r.DataSize))
	off += 8
	binary.LittleEndian.PutUint64(dst[off:], uint64(r.MetadataSize))
	off += 8
	off += copy(dst[off:], r.Addr[:])
	binary.LittleEndian.PutUint32(dst[off:], uint32(r.Port))
	return nil
}

// DecodeRequest parses a Request from its fixed-layout wire bytes.
func DecodeRequest(src []byte) (*Request, error) {
	if len(src) < RequestSize {
		return nil, fmt.Errorf("protocol: request payload too small: %d < %d", len(src), RequestSize)
	}
	r := &Request{}
	off := copy(r.ID[:], src[:api.ObjectIDSize])
	r.DataSize = int64(binary.LittleEndian.Uint64(src[off:]))
	off += 8
	r.MetadataSize = int64(binary.LittleEndian.Uint64(src[off:]))
	off += 8
	off += copy(r.Addr[:], src[off:off+4])
	r.Port = int32(binary.LittleEndian.Uint32(src[off:]))
	return r, nil
}
