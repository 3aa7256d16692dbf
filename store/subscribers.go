package store

import (
	"github.com/eapache/queue"

	"github.com/shmring/objectd/api"
	"github.com/shmring/objectd/protocol"
)

// SubscriberTable holds one ordered notification queue per subscriber
// fd. Ordering within a queue is the global seal order observed by
// this process; the queue is append-only except for the prefix drained
// on write-readiness.
//
// Backed by the same github.com/eapache/queue FIFO as WaitersTable.
type SubscriberTable struct {
	queues map[int]*queue.Queue
}

// NewSubscriberTable returns an empty subscriber table.
func NewSubscriberTable() *SubscriberTable {
	return &SubscriberTable{queues: make(map[int]*queue.Queue)}
}

// Register creates an empty queue for a newly attached subscriber fd.
func (s *SubscriberTable) Register(fd int) {
	s.queues[fd] = queue.New()
}

// Remove tears down fd's queue. Supplements spec.md §9 open question 4:
// the original never frees this queue on disconnect; this is the
// explicit teardown path, called from the dispatcher's subscriber
// read-readiness handler once it observes the fd closed.
func (s *SubscriberTable) Remove(fd int) {
	delete(s.queues, fd)
}

// Has reports whether fd is a registered subscriber.
func (s *SubscriberTable) Has(fd int) bool {
	_, ok := s.queues[fd]
	return ok
}

// Count is used by the SUBSCRIBE precondition check's sibling debug
// probe and by tests.
func (s *SubscriberTable) Count() int { return len(s.queues) }

// EnqueueAll appends id to every subscriber's queue and returns the set
// of fds that now have pending data, in map-iteration order (the
// per-subscriber delivery order itself is still the global seal order;
// only the order this function visits distinct subscribers is
// unspecified, matching spec.md §4.D's "across subscribers, order may
// diverge").
func (s *SubscriberTable) EnqueueAll(id api.ObjectID) []int {
	fds := make([]int, 0, len(s.queues))
	for fd, q := range s.queues {
		q.Add(id)
		fds = append(fds, fd)
	}
	return fds
}

// Drain sends as many queued identifiers on fd as possible, stopping
// on a would-block condition (the backpressure mechanism). drained
// reports whether the queue emptied, so the caller can drop write
// interest for fd until more is enqueued. err is non-nil only for a
// fatal per-subscriber I/O error (anything but EAGAIN/EWOULDBLOCK).
func (s *SubscriberTable) Drain(fd int) (drained bool, err error) {
	q, ok := s.queues[fd]
	if !ok {
		return true, nil
	}
	for q.Length() > 0 {
		id := q.Peek().(api.ObjectID)
		wouldBlock, sendErr := protocol.SendNotification(fd, id)
		if sendErr != nil {
			return false, sendErr
		}
		if wouldBlock {
			return false, nil
		}
		q.Remove()
	}
	return true, nil
}

// QueueDepth reports how many identifiers are still queued for fd;
// Store.pokeSubscriber uses it to count notifications sent.
func (s *SubscriberTable) QueueDepth(fd int) int {
	q, ok := s.queues[fd]
	if !ok {
		return 0
	}
	return q.Length()
}
