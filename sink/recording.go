package sink

import "sync"

// EventKind distinguishes the three event shapes recorded by Recording.
type EventKind int

const (
	KindAdded EventKind = iota
	KindExecuted
	KindDeleted
)

// Record is a single captured call to an EventSink method, flattened into
// one shape so test assertions can walk a single ordered slice.
type Record struct {
	Kind       EventKind
	OrderID    uint32
	Instrument string
	Price      uint32
	Count      uint32
	IsSell     bool
	RestingID  uint32
	IncomingID uint32
	ExecID     uint32
	Accepted   bool
	Timestamp  uint64
}

// Recording is an EventSink that appends every call to an in-memory,
// mutex-guarded log, in call order. It is used by tests to assert on the
// emitted trace (spec.md §8's testable properties); it is not meant for
// production use.
type Recording struct {
	mu      sync.Mutex
	records []Record
}

// NewRecording returns an empty Recording sink.
func NewRecording() *Recording {
	return &Recording{}
}

func (r *Recording) Added(orderID uint32, instrument string, price, count uint32, isSell bool, ts uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{
		Kind: KindAdded, OrderID: orderID, Instrument: instrument,
		Price: price, Count: count, IsSell: isSell, Timestamp: ts,
	})
}

func (r *Recording) Executed(restingID, incomingID, execID, price, count uint32, ts uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{
		Kind: KindExecuted, RestingID: restingID, IncomingID: incomingID,
		ExecID: execID, Price: price, Count: count, Timestamp: ts,
	})
}

func (r *Recording) Deleted(orderID uint32, accepted bool, ts uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{
		Kind: KindDeleted, OrderID: orderID, Accepted: accepted, Timestamp: ts,
	})
}

// Records returns a snapshot copy of the events captured so far, in
// emission order.
func (r *Recording) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}
