// Package arena implements the shared-memory allocator the store core
// hands off object bytes through: one memfd-backed mapping per
// allocation, described to callers as a (fd, map_size, offset) triple
// peers can mmap.
//
// Grounded on the teacher's pool/bufferpool_linux.go mmap-based slab
// allocator, generalized from fixed size classes to one mapping per
// object, since the store never reuses a freed region within the
// daemon's lifetime.
package arena

import "github.com/shmring/objectd/api"

// New constructs the platform arena. On Linux it is memfd+mmap backed;
// on other platforms it returns an error, since fd passing over local
// sockets is the store's only access path and is POSIX-specific.
func New() (api.Arena, error) {
	return newArena()
}
