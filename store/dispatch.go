package store

import (
	"log"
	"time"

	"golang.org/x/sys/unix"

	"github.com/shmring/objectd/api"
	"github.com/shmring/objectd/protocol"
)

// dispatch decodes one framed request and performs its lifecycle
// operation, matching spec.md §4.E's switch on message type. Only a
// fatal condition is returned as an error; transient or soft failures
// (a failed delivery to some other fd) are logged and swallowed.
func (s *Store) dispatch(clientFD int, frame *protocol.Frame) error {
	switch frame.Type {
	case protocol.Create:
		return s.handleCreate(clientFD, frame.Payload)
	case protocol.Get:
		return s.handleGet(clientFD, frame.Payload)
	case protocol.Contains:
		return s.handleContains(clientFD, frame.Payload)
	case protocol.Seal:
		return s.handleSeal(clientFD, frame.Payload)
	case protocol.Delete:
		return s.handleDelete(clientFD, frame.Payload)
	case protocol.Subscribe:
		return s.handleSubscribe(clientFD)
	case protocol.Disconnect:
		s.disconnect(clientFD)
		return nil
	default:
		return api.Fatalf(api.FatalProtocol, "unknown message type %d from fd %d", int64(frame.Type), clientFD)
	}
}

func (s *Store) handleCreate(clientFD int, payload []byte) error {
	req, err := protocol.DecodeRequest(payload)
	if err != nil {
		return api.Fatalf(api.FatalProtocol, "decode CREATE: %v", err)
	}

	start := time.Now()
	alloc, err := s.arena.Alloc(req.DataSize + req.MetadataSize)
	if err != nil {
		return api.Fatalf(api.FatalAllocation, "arena alloc for %s: %v", req.ID, err)
	}

	entry := &ObjectTableEntry{
		ID:    req.ID,
		Info:  newObjectInfo(req.DataSize, req.MetadataSize, start),
		Alloc: alloc,
	}
	if alreadyExists := s.objects.InsertOpen(entry); alreadyExists {
		return api.Fatalf(api.FatalPrecondition, "cannot create object %s twice", req.ID)
	}

	s.metrics.Set("objects.created", s.objects.OpenCount()+s.objects.SealedCount())

	handle := entry.Handle(s.arena)
	reply := &protocol.Reply{
		DataOffset:     handle.Offset,
		MetadataOffset: handle.Offset + req.DataSize,
		MapSize:        handle.MapSize,
		DataSize:       req.DataSize,
		MetadataSize:   req.MetadataSize,
		StoreFDVal:     int32(handle.FD),
	}
	return s.replyWithFD(clientFD, protocol.Create, reply, handle.FD)
}

func (s *Store) handleGet(clientFD int, payload []byte) error {
	req, err := protocol.DecodeRequest(payload)
	if err != nil {
		return api.Fatalf(api.FatalProtocol, "decode GET: %v", err)
	}

	entry, found := s.objects.FindSealed(req.ID)
	if !found {
		s.waiters.Add(req.ID, clientFD)
		return nil
	}
	return s.replySealedEntry(clientFD, protocol.Get, entry)
}

func (s *Store) handleContains(clientFD int, payload []byte) error {
	req, err := protocol.DecodeRequest(payload)
	if err != nil {
		return api.Fatalf(api.FatalProtocol, "decode CONTAINS: %v", err)
	}

	reply := &protocol.Reply{}
	if _, found := s.objects.FindSealed(req.ID); found {
		reply.HasObject = 1
	}

	buf := make([]byte, protocol.ReplySize)
	if err := protocol.EncodeReply(buf, reply); err != nil {
		return api.Fatalf(api.FatalProtocol, "encode CONTAINS reply: %v", err)
	}
	if err := protocol.WriteFrame(clientFD, protocol.Contains, buf); err != nil {
		return api.Fatalf(api.FatalIO, "reply to CONTAINS on fd %d: %v", clientFD, err)
	}
	return nil
}

func (s *Store) handleSeal(clientFD int, payload []byte) error {
	req, err := protocol.DecodeRequest(payload)
	if err != nil {
		return api.Fatalf(api.FatalProtocol, "decode SEAL: %v", err)
	}

	entry, sealed := s.objects.Seal(req.ID)
	if !sealed {
		// Not open: silently ignored, per spec.md §4.B/§4.E.
		return nil
	}

	s.metrics.Set("objects.sealed", s.objects.SealedCount())

	for _, subFD := range s.subscribers.EnqueueAll(req.ID) {
		s.pokeSubscriber(subFD)
	}

	waiterFDs, any := s.waiters.Take(req.ID)
	if !any {
		return nil
	}
	for _, waiterFD := range waiterFDs {
		if err := s.replySealedEntry(waiterFD, protocol.Seal, entry); err != nil {
			// A waiter fd may have disconnected while pending; per the
			// REDESIGN FLAGS decision this is tolerated, not fatal,
			// unless it is the requesting client's own fd.
			if waiterFD == clientFD {
				return err
			}
			log.Printf("deliver SEAL notification to waiter fd %d: %v", waiterFD, err)
		}
	}
	return nil
}

func (s *Store) handleDelete(clientFD int, payload []byte) error {
	req, err := protocol.DecodeRequest(payload)
	if err != nil {
		return api.Fatalf(api.FatalProtocol, "decode DELETE: %v", err)
	}

	entry, found := s.objects.RemoveSealed(req.ID)
	if !found {
		return api.Fatalf(api.FatalPrecondition, "delete of object %s that is not sealed", req.ID)
	}
	if err := s.arena.Free(entry.Alloc); err != nil {
		return api.Fatalf(api.FatalAllocation, "arena free for %s: %v", req.ID, err)
	}
	s.deletedCount++
	s.metrics.Set("objects.deleted", s.deletedCount)
	return nil
}

func (s *Store) handleSubscribe(clientFD int) error {
	if s.objects.OpenCount() != 0 || s.objects.SealedCount() != 0 {
		return api.Fatalf(api.FatalPrecondition, "SUBSCRIBE must precede any object activity")
	}

	subFD, err := protocol.RecvFD(clientFD)
	if err != nil {
		return api.Fatalf(api.FatalProtocol, "SUBSCRIBE: receive notification fd: %v", err)
	}
	if err := unix.SetNonblock(subFD, true); err != nil {
		return api.Fatalf(api.FatalIO, "set subscriber fd %d nonblocking: %v", subFD, err)
	}

	s.subscribers.Register(subFD)
	if err := s.reactor.AddFD(subFD, api.EventRead, s.onSubscriberEvent); err != nil {
		s.subscribers.Remove(subFD)
		return api.Fatalf(api.FatalIO, "register subscriber fd %d: %v", subFD, err)
	}
	return nil
}

// replySealedEntry sends a CREATE/GET/SEAL-shaped reply describing a
// sealed entry, passing its arena fd.
func (s *Store) replySealedEntry(fd int, typ protocol.MessageType, entry *ObjectTableEntry) error {
	handle := entry.Handle(s.arena)
	reply := &protocol.Reply{
		DataOffset:     handle.Offset,
		MetadataOffset: handle.Offset + entry.Info.DataSize,
		MapSize:        handle.MapSize,
		DataSize:       entry.Info.DataSize,
		MetadataSize:   entry.Info.MetadataSize,
		HasObject:      1,
		StoreFDVal:     int32(handle.FD),
	}
	return s.replyWithFD(fd, typ, reply, handle.FD)
}

func (s *Store) replyWithFD(fd int, typ protocol.MessageType, reply *protocol.Reply, passFD int) error {
	buf := make([]byte, protocol.ReplySize)
	if err := protocol.EncodeReply(buf, reply); err != nil {
		return api.Fatalf(api.FatalProtocol, "encode %s reply: %v", typ, err)
	}
	if err := protocol.WriteFrameWithFD(fd, typ, buf, passFD); err != nil {
		return api.Fatalf(api.FatalIO, "reply to %s on fd %d: %v", typ, fd, err)
	}
	return nil
}
