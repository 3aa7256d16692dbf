package store

import (
	"fmt"
	"log"

	"golang.org/x/sys/unix"

	"github.com/shmring/objectd/api"
	"github.com/shmring/objectd/arena"
	"github.com/shmring/objectd/control"
	"github.com/shmring/objectd/reactor"
)

// Store is the aggregate object-store daemon: the reactor-driven event
// loop plus everything the dispatcher touches. There is exactly one
// goroutine ever inside Store's methods — the one running Run — so none
// of its fields carry a mutex; that single-threaded invariant is the
// same one the teacher's reactor core relies on.
type Store struct {
	cfg control.DaemonConfig

	reactor api.Reactor
	arena   api.Arena

	objects     *ObjectTable
	waiters     *WaitersTable
	subscribers *SubscriberTable

	conns map[int]*connState

	listenFD int

	debug         *control.DebugProbes
	metrics       *control.MetricsRegistry
	configs       *control.ConfigStore
	deletedCount  int64
	notifiedCount int64

	fatalErr error
}

// NewStore wires up a Store from a resolved configuration, constructing
// the platform reactor and arena (epoll/memfd on Linux; see
// reactor/reactor_stub.go and arena/arena_stub.go elsewhere).
func NewStore(cfg control.DaemonConfig) (*Store, error) {
	rx, err := reactor.New()
	if err != nil {
		return nil, fmt.Errorf("construct reactor: %w", err)
	}
	ar, err := arena.New()
	if err != nil {
		return nil, fmt.Errorf("construct arena: %w", err)
	}

	s := &Store{
		cfg:         cfg,
		reactor:     rx,
		arena:       ar,
		objects:     NewObjectTable(),
		waiters:     NewWaitersTable(),
		subscribers: NewSubscriberTable(),
		conns:       make(map[int]*connState),
		listenFD:    -1,
		debug:       control.NewDebugProbes(),
		metrics:     control.NewMetricsRegistry(),
		configs:     control.NewConfigStore(),
	}
	s.configs.SetConfig(map[string]any{"maxFrameBytes": cfg.MaxFrameBytes})
	control.RegisterReloadHook(s.reloadConfig)
	s.registerDebugProbes()
	control.RegisterPlatformProbes(s.debug)
	return s, nil
}

// reloadConfig re-reads the daemon's dynamic knobs from the config
// store. Only maxFrameBytes is adjustable after startup; the socket
// path is fixed for the process lifetime. Registered with
// control.RegisterReloadHook so a SIGHUP-triggered TriggerHotReload
// call (see cmd/objectd) picks up operator changes.
func (s *Store) reloadConfig() {
	snap := s.configs.GetSnapshot()
	if v, ok := snap["maxFrameBytes"].(int64); ok {
		s.cfg.MaxFrameBytes = v
	}
}

// Config exposes the daemon's dynamic config store, e.g. for an
// operator hook that adjusts maxFrameBytes without a restart.
func (s *Store) Config() *control.ConfigStore { return s.configs }

func (s *Store) registerDebugProbes() {
	s.debug.RegisterProbe("store.objects.open", func() any { return s.objects.OpenCount() })
	s.debug.RegisterProbe("store.objects.sealed", func() any { return s.objects.SealedCount() })
	s.debug.RegisterProbe("store.subscribers", func() any { return s.subscribers.Count() })
	s.debug.RegisterProbe("store.connections", func() any { return len(s.conns) })
	s.debug.RegisterProbe("store.metrics", func() any { return s.metrics.GetSnapshot() })
}

// Debug exposes the daemon's probe registry, e.g. for an operator CLI
// hook or a signal-triggered dump.
func (s *Store) Debug() *control.DebugProbes { return s.debug }

// Metrics exposes the daemon's counters, updated as CREATE/SEAL/DELETE
// and notification delivery occur.
func (s *Store) Metrics() *control.MetricsRegistry { return s.metrics }

// Run binds the command socket and drives the reactor until Stop is
// called or a fatal condition is raised from within a callback. It
// returns the fatal error, if any, so the caller (main) can log it and
// exit non-zero.
func (s *Store) Run() error {
	fd, err := listen(s.cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.SocketPath, err)
	}
	s.listenFD = fd
	defer unix.Close(s.listenFD)
	defer unix.Unlink(s.cfg.SocketPath)

	if err := s.reactor.AddFD(s.listenFD, api.EventRead, s.onListenerReadable); err != nil {
		return fmt.Errorf("register listener fd: %w", err)
	}

	if err := s.reactor.Run(); err != nil {
		return fmt.Errorf("reactor run: %w", err)
	}
	return s.fatalErr
}

// Stop requests a clean shutdown of the reactor loop, used by main on
// receipt of SIGTERM/SIGINT.
func (s *Store) Stop() {
	s.reactor.Stop()
}

// fatal records the first fatal error observed and stops the reactor.
// Per the error taxonomy, fatal conditions are never retried: the
// daemon logs and exits.
func (s *Store) fatal(err error) {
	if s.fatalErr == nil {
		s.fatalErr = err
	}
	log.Printf("fatal: %v", err)
	s.reactor.Stop()
}

// onSubscriberEvent handles both readiness directions registered for a
// subscriber fd: writability drains its backlog further, readability
// can only mean the peer closed its end (subscribers never send data
// on this fd), so it tears the subscription down.
func (s *Store) onSubscriberEvent(fd int, events api.FDEvent) {
	if events&api.EventWrite != 0 {
		s.pokeSubscriber(fd)
	}
	if events&api.EventRead != 0 {
		var buf [64]byte
		n, err := unix.Read(fd, buf[:])
		if n == 0 || (err != nil && err != unix.EAGAIN && err != unix.EWOULDBLOCK) {
			s.removeSubscriber(fd)
		}
	}
}

// pokeSubscriber drains as much of fd's backlog as the socket currently
// accepts and toggles write interest to match whether more remains —
// the backpressure half of spec.md §4.D.
func (s *Store) pokeSubscriber(fd int) {
	before := s.subscribers.QueueDepth(fd)
	drained, err := s.subscribers.Drain(fd)
	if err != nil {
		log.Printf("drain subscriber fd %d: %v", fd, err)
		s.removeSubscriber(fd)
		return
	}
	s.notifiedCount += int64(before - s.subscribers.QueueDepth(fd))
	s.metrics.Set("notifications.sent", s.notifiedCount)

	events := api.EventRead
	if !drained {
		events |= api.EventWrite
	}
	if err := s.reactor.ModifyFD(fd, events); err != nil {
		log.Printf("modify subscriber fd %d: %v", fd, err)
	}
}

func (s *Store) removeSubscriber(fd int) {
	s.subscribers.Remove(fd)
	if err := s.reactor.RemoveFD(fd); err != nil {
		log.Printf("deregister subscriber fd %d: %v", fd, err)
	}
	unix.Close(fd)
}
