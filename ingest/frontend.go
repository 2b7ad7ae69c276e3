package ingest

import (
	"sync"

	"github.com/rs/zerolog"

	"matchcore/clock"
	"matchcore/registry"
	"matchcore/sink"
)

// Frontend is the engine frontend (C6): it owns the registry and spawns a
// Worker per accepted connection. The original engine this spec is drawn
// from detaches a bare thread per connection with nothing tracking live
// workers; Frontend supplements that with a WaitGroup so a caller can
// drain in-flight connections on shutdown. This is a process-lifecycle
// nicety only — it changes nothing about the matching or event-ordering
// guarantees.
type Frontend struct {
	Registry *registry.Registry

	clock *clock.Source
	sink  sink.EventSink
	log   zerolog.Logger

	wg sync.WaitGroup
}

// New builds a Frontend with its own registry, sharing clk and evSink
// with every book the registry creates.
func New(clk *clock.Source, evSink sink.EventSink, log zerolog.Logger) *Frontend {
	return &Frontend{
		Registry: registry.New(clk, evSink),
		clock:    clk,
		sink:     evSink,
		log:      log,
	}
}

// Accept spawns a new worker bound to src and returns immediately. The
// worker runs until end-of-stream or a read error, at which point it
// closes src and releases its resources (spec.md §4.6's state machine:
// Reading -> Dispatching -> Reading until EndOfStream | ReadError).
func (f *Frontend) Accept(src Source) {
	w := NewWorker(src, f.Registry, f.clock, f.sink, f.log)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		w.Run()
	}()
}

// Wait blocks until every accepted connection's worker has terminated.
// Used by a graceful-shutdown path; the matching core itself has no
// notion of shutdown (spec.md §5: "no client-initiated RPC cancellation").
func (f *Frontend) Wait() {
	f.wg.Wait()
}
