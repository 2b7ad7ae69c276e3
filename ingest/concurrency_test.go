package ingest

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"matchcore/clock"
	"matchcore/domain"
	"matchcore/registry"
	"matchcore/sink"
)

// TestManyWorkersOneInstrumentConserveQuantity drives many connections
// worth of buy/sell traffic at a single shared instrument concurrently and
// checks the invariants of spec.md §8 hold over the resulting trace:
// strictly increasing timestamps, a gap-free per-order exec_id sequence,
// and conservation of quantity across fills.
func TestManyWorkersOneInstrumentConserveQuantity(t *testing.T) {
	rec := sink.NewRecording()
	clk := clock.New()
	reg := registry.New(clk, rec)

	const workers = 16
	const ordersPerWorker = 200
	const qtyPerOrder = uint32(10)

	var wg sync.WaitGroup
	wg.Add(workers)
	for wIdx := 0; wIdx < workers; wIdx++ {
		wIdx := wIdx
		go func() {
			defer wg.Done()
			script := make([]domain.Command, 0, ordersPerWorker)
			for i := 0; i < ordersPerWorker; i++ {
				id := uint32(wIdx*ordersPerWorker + i + 1)
				typ := domain.CommandBuy
				if i%2 == 1 {
					typ = domain.CommandSell
				}
				script = append(script, domain.Command{
					Type: typ, OrderID: id, Instrument: "ABC", Price: 100, Count: qtyPerOrder,
				})
			}
			src := &fakeSource{label: "w", script: script, final: EndOfStream}
			w := NewWorker(src, reg, clk, rec, zerolog.Nop())
			w.Run()
		}()
	}
	wg.Wait()

	records := rec.Records()

	// 1. Timestamps strictly increasing across the whole trace.
	var prevTS uint64
	for i, r := range records {
		if i > 0 {
			require.Greater(t, r.Timestamp, prevTS)
		}
		prevTS = r.Timestamp
	}

	// 2 & 3. Conservation and gap-free exec_id per resting id.
	initialCount := map[uint32]uint32{}
	filled := map[uint32]uint32{}
	execIDs := map[uint32][]uint32{}
	finalResting := map[uint32]uint32{}

	for _, r := range records {
		switch r.Kind {
		case sink.KindAdded:
			initialCount[r.OrderID] = r.Count
			finalResting[r.OrderID] = r.Count
		case sink.KindExecuted:
			filled[r.RestingID] += r.Count
			execIDs[r.RestingID] = append(execIDs[r.RestingID], r.ExecID)
			finalResting[r.RestingID] -= r.Count
		}
	}

	total := workers * ordersPerWorker
	require.Equal(t, total, len(initialCount)+countFullyMatchedWithoutRest(records))

	for id, ids := range execIDs {
		for i, e := range ids {
			require.Equal(t, uint32(i+1), e, "exec_id gap for resting id %d", id)
		}
	}

	for id, rest := range finalResting {
		require.Equal(t, initialCount[id], filled[id]+rest, "conservation violated for id %d", id)
	}
}

// countFullyMatchedWithoutRest counts incoming orders that were entirely
// consumed by matching and so never appear in an Added record.
func countFullyMatchedWithoutRest(records []sink.Record) int {
	incoming := map[uint32]bool{}
	added := map[uint32]bool{}
	for _, r := range records {
		if r.Kind == sink.KindExecuted {
			incoming[r.IncomingID] = true
		}
		if r.Kind == sink.KindAdded {
			added[r.OrderID] = true
		}
	}
	count := 0
	for id := range incoming {
		if !added[id] {
			count++
		}
	}
	return count
}
