package api

// Allocation names the bytes backing one object: a kernel file handle a
// peer process can mmap, the length of that mapping, and the offset of
// this allocation's bytes within it. The triple is stable for the
// lifetime of the allocation.
type Allocation struct {
	Handle HandleTriple

	// opaque is allocator-private bookkeeping (e.g. the data needed to
	// unmap/close on Free) that callers outside arena must not inspect.
	opaque any
}

// Opaque returns the allocator-private bookkeeping value stashed on this
// Allocation by Arena.Alloc. Only the arena implementation that produced
// the Allocation should interpret it.
func (a *Allocation) Opaque() any { return a.opaque }

// SetOpaque is used by Arena implementations to stash private bookkeeping
// on an Allocation they just produced.
func (a *Allocation) SetOpaque(v any) { a.opaque = v }

// Arena is the narrow contract the store core needs from a shared-memory
// allocator: allocate a contiguous buffer, describe the bytes that name
// it, and free it. The allocator may back allocations with multiple
// mappings; the core never assumes a single fd is reused across objects.
type Arena interface {
	// Alloc returns a new allocation of at least n bytes.
	Alloc(n int64) (*Allocation, error)

	// Describe reports the (fd, map_size, offset) triple naming the exact
	// bytes of a, such that a peer that mmaps fd at length map_size sees
	// the same bytes at offset.
	Describe(a *Allocation) HandleTriple

	// Free releases a previously allocated buffer. a must not be used
	// afterwards.
	Free(a *Allocation) error
}
