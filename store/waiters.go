package store

import (
	"github.com/eapache/queue"

	"github.com/shmring/objectd/api"
)

// WaitersTable maps an object identifier to the ordered sequence of
// client fds that issued GET before the object was sealed. A waiter
// may appear more than once if the same client repeats the request;
// each appearance fans out independently on seal.
//
// Backed by github.com/eapache/queue, the ring-buffer FIFO already
// declared in the teacher's go.mod but unexercised by its own
// websocket code.
type WaitersTable struct {
	byID map[api.ObjectID]*queue.Queue
}

// NewWaitersTable returns an empty waiters table.
func NewWaitersTable() *WaitersTable {
	return &WaitersTable{byID: make(map[api.ObjectID]*queue.Queue)}
}

// Add appends fd to the waiter sequence for id, creating the entry if
// this is the first waiter.
func (w *WaitersTable) Add(id api.ObjectID, fd int) {
	q, ok := w.byID[id]
	if !ok {
		q = queue.New()
		w.byID[id] = q
	}
	q.Add(fd)
}

// Take atomically removes and returns the waiter sequence for id. ok is
// false if no one was waiting.
func (w *WaitersTable) Take(id api.ObjectID) (fds []int, ok bool) {
	q, found := w.byID[id]
	if !found {
		return nil, false
	}
	delete(w.byID, id)
	fds = make([]int, 0, q.Length())
	for q.Length() > 0 {
		fds = append(fds, q.Remove().(int))
	}
	return fds, true
}
