// Package registry implements the book registry (C4): the pair of
// process-wide indices that route commands to the right order book and
// cancels to the right resting order.
//
// The symbol index (Registry.symbols) is read far more often than it is
// written (a new symbol is rare once the process warms up), so it follows
// the teacher engine's copy-on-write atomic.Value pattern for lock-free
// reads. The id index (Registry.ids) churns
// on every submit and cancel, so it stays a plain mutex-guarded map — a
// copy-on-write map would mean copying the whole index on every order,
// which is the opposite of what that trick buys you.
package registry

import (
	"sync"
	"sync/atomic"

	"matchcore/clock"
	"matchcore/orderbook"
	"matchcore/sink"
)

// Registry is one process-wide instance shared by every connection
// worker (spec.md §3's "Registry state (process-wide, one instance)").
type Registry struct {
	clock *clock.Source
	sink  sink.EventSink

	symbols atomic.Value // map[string]*orderbook.OrderBook, immutable

	idMu sync.Mutex
	ids  map[uint32]*orderbook.OrderBook

	createMu sync.Mutex // serializes the copy-on-write path only
}

// New returns an empty registry. clk and evSink are handed to every book
// created through it, so all books in the process share one timestamp
// source and one event sink (spec.md §5's "Event log" ordering guarantee
// depends on this).
func New(clk *clock.Source, evSink sink.EventSink) *Registry {
	r := &Registry{clock: clk, sink: evSink, ids: make(map[uint32]*orderbook.OrderBook)}
	r.symbols.Store(make(map[string]*orderbook.OrderBook))
	return r
}

// GetOrCreate returns the book for symbol, creating it on first reference
// and lazily thereafter (spec.md §4.4). The returned book is shared and
// outlives this call; its own mutex, not this registry's, guards mutation.
func (r *Registry) GetOrCreate(symbol string) *orderbook.OrderBook {
	symbols := r.symbols.Load().(map[string]*orderbook.OrderBook)
	if book, ok := symbols[symbol]; ok {
		return book
	}

	r.createMu.Lock()
	defer r.createMu.Unlock()

	// Someone may have created it while we waited for createMu.
	symbols = r.symbols.Load().(map[string]*orderbook.OrderBook)
	if book, ok := symbols[symbol]; ok {
		return book
	}

	book := orderbook.New(symbol, r.clock, r.sink)

	next := make(map[string]*orderbook.OrderBook, len(symbols)+1)
	for k, v := range symbols {
		next[k] = v
	}
	next[symbol] = book
	r.symbols.Store(next)

	return book
}

// InsertID records that orderID is resting in book.
func (r *Registry) InsertID(orderID uint32, book *orderbook.OrderBook) {
	r.idMu.Lock()
	defer r.idMu.Unlock()
	r.ids[orderID] = book
}

// RemoveID forgets orderID, e.g. because it was fully consumed or
// canceled.
func (r *Registry) RemoveID(orderID uint32) {
	r.idMu.Lock()
	defer r.idMu.Unlock()
	delete(r.ids, orderID)
}

// Lookup returns the book orderID is resting in, if any.
func (r *Registry) Lookup(orderID uint32) (*orderbook.OrderBook, bool) {
	r.idMu.Lock()
	defer r.idMu.Unlock()
	book, ok := r.ids[orderID]
	return book, ok
}

// LookupAndRemove atomically looks up and removes orderID's index entry.
// This single critical section is what makes cancel race-safe against a
// concurrent matcher that might otherwise re-resolve the id to a book
// after the removal (spec.md §4.5).
func (r *Registry) LookupAndRemove(orderID uint32) (*orderbook.OrderBook, bool) {
	r.idMu.Lock()
	defer r.idMu.Unlock()
	book, ok := r.ids[orderID]
	if ok {
		delete(r.ids, orderID)
	}
	return book, ok
}

// ApplyChangeSet implements the cross-index consistency rule of spec.md
// §4.4: for every id a submit reports as changed, the incoming order's own
// id becomes (or remains) resolvable to book, while every other id in the
// set — ids fully consumed by the match — is dropped from the index.
func (r *Registry) ApplyChangeSet(incomingID uint32, book *orderbook.OrderBook, changed []uint32) {
	r.idMu.Lock()
	defer r.idMu.Unlock()
	for _, id := range changed {
		if id == incomingID {
			r.ids[id] = book
		} else {
			delete(r.ids, id)
		}
	}
}
