// Package sink defines the event output contract (C2): a thin, ordered
// writer that the order book and connection workers call as matching
// happens. The sink performs no logic of its own; correctness of the
// emitted trace rests entirely on callers serializing calls to it in
// emission order and stamping them with strictly increasing timestamps
// from clock.Source.
package sink

// EventSink is the abstract event-output collaborator (C2). Every method
// must be atomic with respect to the others: two goroutines calling into
// the same EventSink must never interleave a single call's output.
type EventSink interface {
	// Added records a resting order coming into existence, either because
	// an incoming order had leftover quantity after matching or because it
	// found no counterparty at all.
	Added(orderID uint32, instrument string, price, count uint32, isSell bool, ts uint64)

	// Executed records a fill (partial or full) of a resting order against
	// an incoming order. execID is the resting order's own 1-based fill
	// counter.
	Executed(restingID, incomingID, execID, price, count uint32, ts uint64)

	// Deleted records the outcome of a cancel request: accepted is true
	// when a live resting order was found and removed, false when the id
	// named no resting order.
	Deleted(orderID uint32, accepted bool, ts uint64)
}
