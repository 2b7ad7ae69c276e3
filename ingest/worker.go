package ingest

import (
	"github.com/rs/zerolog"

	"matchcore/clock"
	"matchcore/domain"
	"matchcore/registry"
	"matchcore/sink"
)

// Worker runs one connection's read-dispatch loop (C5). A Worker is
// single-threaded within itself: commands on one connection are always
// processed strictly in arrival order (spec.md §5). All sharing with
// other workers happens through the registry's guarded indices and each
// book's own lock — a Worker holds no lock across a read.
type Worker struct {
	source   Source
	registry *registry.Registry
	clock    *clock.Source
	sink     sink.EventSink
	log      zerolog.Logger
}

// NewWorker builds a Worker bound to one connection. The registry, clock,
// and sink are shared across every worker in the process.
func NewWorker(src Source, reg *registry.Registry, clk *clock.Source, evSink sink.EventSink, log zerolog.Logger) *Worker {
	return &Worker{source: src, registry: reg, clock: clk, sink: evSink, log: log.With().Str("conn", src.Label()).Logger()}
}

// Run reads and dispatches commands until end-of-stream or a read error,
// then closes the underlying connection. It blocks the calling goroutine;
// Frontend.Accept runs it in its own goroutine per connection.
func (w *Worker) Run() {
	defer w.source.Close()

	for {
		cmd, outcome, err := w.source.ReadCommand()
		switch outcome {
		case EndOfStream:
			return
		case ReadError:
			w.log.Warn().Err(err).Msg("transport error, closing connection")
			return
		}

		w.log.Debug().Stringer("type", cmd.Type).Uint32("order_id", cmd.OrderID).Msg("dispatching command")

		switch cmd.Type {
		case domain.CommandCancel:
			w.cancel(cmd.OrderID)
		case domain.CommandBuy:
			w.submit(cmd, true)
		case domain.CommandSell:
			w.submit(cmd, false)
		default:
			// spec.md §9 REDESIGN FLAG: unknown command types are rejected
			// as a transport error rather than silently treated as a sell.
			w.log.Warn().Int("type", int(cmd.Type)).Msg("unknown command type, closing connection")
			return
		}
	}
}

// cancel implements spec.md §4.5's cancel path. The id-index removal
// happens before the book lock is touched, so a concurrent matcher on the
// same book cannot re-insert this id into the index after the fact.
func (w *Worker) cancel(orderID uint32) {
	book, ok := w.registry.LookupAndRemove(orderID)
	if !ok {
		w.sink.Deleted(orderID, false, w.clock.Now())
		return
	}
	book.Cancel(orderID)
}

// submit implements spec.md §4.5's buy/sell path.
func (w *Worker) submit(cmd domain.Command, isBuy bool) {
	book := w.registry.GetOrCreate(cmd.Instrument)

	var changed []uint32
	if isBuy {
		changed = book.SubmitBuy(cmd)
	} else {
		changed = book.SubmitSell(cmd)
	}

	w.registry.ApplyChangeSet(cmd.OrderID, book, changed)
}
