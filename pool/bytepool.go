// Package pool hands out the fixed-size scratch buffer the reactor's
// client-socket read path reuses on every readiness event, optionally
// backed by NUMA-local memory so a busy connection's read buffer
// stays on the core that is going to touch it.
package pool

import "sync"

// BytePool is a sync.Pool of size-byte buffers pinned to one NUMA
// node where the platform supports it. There is exactly one
// BytePool in objectd (protocol.readChunks), sized to the socket read
// chunk, so unlike the teacher's general-purpose pool this has no
// per-call size parameter or node-discovery API.
type BytePool struct {
	size int
	pool sync.Pool
}

// NewBytePool returns a pool of size-byte buffers, allocated on NUMA
// node when the platform's allocator supports it, falling back to a
// plain make() otherwise.
func NewBytePool(size, node int) *BytePool {
	return &BytePool{
		size: size,
		pool: sync.Pool{
			New: func() any {
				if buf, ok := numaAlloc(size, node); ok {
					return buf
				}
				return make([]byte, size)
			},
		},
	}
}

// GetBuffer returns a buffer from the pool, allocating a new one if
// none is idle.
func (b *BytePool) GetBuffer() []byte {
	return b.pool.Get().([]byte)
}

// PutBuffer returns buf to the pool for reuse. A buffer of the wrong
// size is dropped rather than reused, since every caller is expected
// to pass back exactly what GetBuffer gave it.
func (b *BytePool) PutBuffer(buf []byte) {
	if len(buf) != b.size {
		return
	}
	b.pool.Put(buf)
}
