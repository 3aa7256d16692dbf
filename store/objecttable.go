// Package store implements the object-store core: the object table, the
// waiters table, subscriber notification queues, the request
// dispatcher, and connection lifecycle management, all driven from a
// single reactor goroutine.
package store

import (
	"time"

	"github.com/shmring/objectd/api"
)

// ObjectTableEntry is the per-object record held in either the open or
// the sealed map. An entry is in exactly one of the two tables at any
// time (spec invariant 1).
type ObjectTableEntry struct {
	ID    api.ObjectID
	Info  api.ObjectInfo
	Alloc *api.Allocation
}

// Handle returns the (fd, map_size, offset) triple naming this entry's
// bytes.
func (e *ObjectTableEntry) Handle(arena api.Arena) api.HandleTriple {
	return arena.Describe(e.Alloc)
}

// ObjectTable holds the two independent open/sealed maps keyed by
// object identifier. It carries no locking: the reactor goroutine is
// the sole mutator and reader.
type ObjectTable struct {
	open   map[api.ObjectID]*ObjectTableEntry
	sealed map[api.ObjectID]*ObjectTableEntry
}

// NewObjectTable returns an empty object table.
func NewObjectTable() *ObjectTable {
	return &ObjectTable{
		open:   make(map[api.ObjectID]*ObjectTableEntry),
		sealed: make(map[api.ObjectID]*ObjectTableEntry),
	}
}

// FindOpen returns the open entry for id, if any.
func (t *ObjectTable) FindOpen(id api.ObjectID) (*ObjectTableEntry, bool) {
	e, ok := t.open[id]
	return e, ok
}

// FindSealed returns the sealed entry for id, if any.
func (t *ObjectTable) FindSealed(id api.ObjectID) (*ObjectTableEntry, bool) {
	e, ok := t.sealed[id]
	return e, ok
}

// InsertOpen adds e to the open table. Inserting an id that is already
// open or already sealed is the "cannot create twice" precondition
// violation spec.md §4.B calls fatal; the caller (dispatch) is
// responsible for surfacing that as an api.FatalError, InsertOpen
// itself just reports whether the id was already live.
func (t *ObjectTable) InsertOpen(e *ObjectTableEntry) (alreadyExists bool) {
	if _, open := t.open[e.ID]; open {
		return true
	}
	if _, sealed := t.sealed[e.ID]; sealed {
		return true
	}
	t.open[e.ID] = e
	return false
}

// Seal moves id from open to sealed. ok is false if id was not open,
// in which case the call is a no-op (spec.md §4.B/§4.E).
func (t *ObjectTable) Seal(id api.ObjectID) (entry *ObjectTableEntry, ok bool) {
	e, found := t.open[id]
	if !found {
		return nil, false
	}
	delete(t.open, id)
	t.sealed[id] = e
	return e, true
}

// RemoveSealed removes and returns id's sealed entry, if present.
func (t *ObjectTable) RemoveSealed(id api.ObjectID) (*ObjectTableEntry, bool) {
	e, found := t.sealed[id]
	if !found {
		return nil, false
	}
	delete(t.sealed, id)
	return e, true
}

// OpenCount and SealedCount back the control package's debug probes.
func (t *ObjectTable) OpenCount() int   { return len(t.open) }
func (t *ObjectTable) SealedCount() int { return len(t.sealed) }

func newObjectInfo(dataSize, metadataSize int64, start time.Time) api.ObjectInfo {
	return api.ObjectInfo{
		DataSize:          dataSize,
		MetadataSize:      metadataSize,
		CreateTime:        start,
		ConstructDuration: time.Since(start),
	}
}
