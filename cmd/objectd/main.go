// objectd runs the shared-memory object store daemon: a single-threaded,
// event-driven process that serves CREATE/GET/CONTAINS/SEAL/DELETE and
// SUBSCRIBE requests over a Unix domain socket, handing object bytes to
// clients by passing shared-memory file descriptors.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/shmring/objectd/control"
	"github.com/shmring/objectd/store"
)

func main() {
	socketPath := flag.String("s", "", "path of the Unix domain socket to listen on (required)")
	maxFrameBytes := flag.Int64("max-frame-bytes", control.DefaultDaemonConfig().MaxFrameBytes, "largest accepted request frame, in bytes")
	shutdownTimeout := flag.Duration("shutdown-timeout", control.DefaultDaemonConfig().ShutdownTimeout, "how long to wait for the reactor to stop after a shutdown signal before forcing exit")
	pinCPU := flag.Int("pin-cpu", -1, "pin the reactor thread to this logical CPU (-1 disables pinning)")
	flag.Parse()

	if *socketPath == "" {
		log.Fatalf("objectd: -s <socket path> is required")
	}

	if *pinCPU >= 0 {
		runtime.LockOSThread()
		if err := pinToCPU(*pinCPU); err != nil {
			log.Fatalf("objectd: pin to CPU %d: %v", *pinCPU, err)
		}
	}

	cfg := control.DefaultDaemonConfig()
	cfg.SocketPath = *socketPath
	cfg.MaxFrameBytes = *maxFrameBytes
	cfg.ShutdownTimeout = *shutdownTimeout

	s, err := store.NewStore(cfg)
	if err != nil {
		log.Fatalf("objectd: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	runDone := make(chan error, 1)
	go func() { runDone <- s.Run() }()

	for {
		select {
		case err := <-runDone:
			if err != nil {
				log.Fatalf("objectd: %v", err)
			}
			logFinalState(s)
			log.Println("objectd: shutdown complete")
			return

		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				log.Printf("objectd: received SIGHUP, reloading config")
				control.TriggerHotReload()
				continue
			}
			log.Printf("objectd: received %v, stopping (grace period %s)", sig, cfg.ShutdownTimeout)
			s.Stop()
			waitForShutdown(s, runDone, cfg.ShutdownTimeout)
			return
		}
	}
}

// waitForShutdown blocks until the reactor's Run call returns or the
// shutdown grace period elapses, whichever comes first. A timeout
// here means the reactor is stuck (a callback wedged, a syscall
// blocked) and the process exits non-zero rather than hang forever.
func waitForShutdown(s *store.Store, runDone <-chan error, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case err := <-runDone:
		if err != nil {
			log.Fatalf("objectd: %v", err)
		}
		logFinalState(s)
		log.Println("objectd: shutdown complete")
	case <-ctx.Done():
		log.Fatalf("objectd: reactor did not stop within %s, forcing exit", timeout)
	}
}

// logFinalState dumps the daemon's debug probes and counters once the
// reactor has stopped cleanly, giving an operator a last look without
// needing a running process to query.
func logFinalState(s *store.Store) {
	log.Printf("objectd: final state: %v", s.Debug().Snapshot())
	log.Printf("objectd: final metrics: %v", s.Metrics().GetSnapshot())
}
