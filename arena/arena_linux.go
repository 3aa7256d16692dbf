//go:build linux
// +build linux

package arena

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/shmring/objectd/api"
)

// linuxArena allocates one memfd-backed mapping per object. Unlike the
// teacher's pool/bufferpool_linux.go, which rounds to 2 MiB hugepages
// for a fixed set of size classes and recycles buffers through a slab
// pool, the store never reuses a freed region within its own lifetime,
// so each allocation gets its own memfd sized to exactly what was
// requested, rounded up to a page.
type linuxArena struct {
	pageSize int64
}

func newArena() (api.Arena, error) {
	return &linuxArena{pageSize: int64(unix.Getpagesize())}, nil
}

// linuxAllocation is the bookkeeping stashed in Allocation.opaque.
type linuxAllocation struct {
	fd int
}

func (a *linuxArena) Alloc(n int64) (*api.Allocation, error) {
	if n < 0 {
		return nil, fmt.Errorf("arena: negative size %d", n)
	}

	mapSize := ((n + a.pageSize - 1) / a.pageSize) * a.pageSize
	if mapSize == 0 {
		mapSize = a.pageSize
	}

	fd, err := unix.MemfdCreate("objectd-arena", 0)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, mapSize); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ftruncate: %w", err)
	}

	alloc := &api.Allocation{
		Handle: api.HandleTriple{FD: fd, MapSize: mapSize, Offset: 0},
	}
	alloc.SetOpaque(&linuxAllocation{fd: fd})
	return alloc, nil
}

func (a *linuxArena) Describe(alloc *api.Allocation) api.HandleTriple {
	return alloc.Handle
}

func (a *linuxArena) Free(alloc *api.Allocation) error {
	la, ok := alloc.Opaque().(*linuxAllocation)
	if !ok {
		return fmt.Errorf("arena: allocation not owned by this arena")
	}
	return unix.Close(la.fd)
}
