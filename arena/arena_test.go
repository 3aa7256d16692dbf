//go:build linux

package arena

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestAllocDescribeFree(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	alloc, err := a.Alloc(100)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	handle := a.Describe(alloc)

	if handle.Offset != 0 {
		t.Fatalf("Offset = %d, want 0", handle.Offset)
	}
	pageSize := int64(unix.Getpagesize())
	if handle.MapSize != pageSize {
		t.Fatalf("MapSize = %d, want one page (%d)", handle.MapSize, pageSize)
	}
	if handle.FD < 0 {
		t.Fatalf("FD = %d, want a valid descriptor", handle.FD)
	}

	if err := unix.Ftruncate(handle.FD, handle.MapSize); err != nil {
		t.Fatalf("sanity ftruncate on returned fd: %v", err)
	}

	if err := a.Free(alloc); err != nil {
		t.Fatalf("Free: %v", err)
	}
}

func TestAllocRoundsUpToPageSize(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pageSize := int64(unix.Getpagesize())

	alloc, err := a.Alloc(pageSize + 1)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	handle := a.Describe(alloc)
	if handle.MapSize != 2*pageSize {
		t.Fatalf("MapSize = %d, want %d", handle.MapSize, 2*pageSize)
	}
	a.Free(alloc)
}

func TestAllocZeroSizeGetsOnePage(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	alloc, err := a.Alloc(0)
	if err != nil {
		t.Fatalf("Alloc(0): %v", err)
	}
	handle := a.Describe(alloc)
	if handle.MapSize != int64(unix.Getpagesize()) {
		t.Fatalf("MapSize = %d, want one page", handle.MapSize)
	}
	a.Free(alloc)
}

func TestAllocRejectsNegativeSize(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.Alloc(-1); err == nil {
		t.Fatalf("Alloc(-1): expected error")
	}
}

func TestDistinctAllocationsGetDistinctFDs(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a1, err := a.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer a.Free(a1)
	a2, err := a.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer a.Free(a2)

	if a.Describe(a1).FD == a.Describe(a2).FD {
		t.Fatalf("two live allocations share fd %d", a.Describe(a1).FD)
	}
}
