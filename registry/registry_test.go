package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"matchcore/clock"
	"matchcore/domain"
	"matchcore/sink"
)

func newTestRegistry() (*Registry, *sink.Recording) {
	rec := sink.NewRecording()
	return New(clock.New(), rec), rec
}

func TestGetOrCreateIsLazyAndShared(t *testing.T) {
	reg, _ := newTestRegistry()

	book1 := reg.GetOrCreate("ABC")
	book2 := reg.GetOrCreate("ABC")
	require.Same(t, book1, book2)

	other := reg.GetOrCreate("XYZ")
	require.NotSame(t, book1, other)
}

func TestGetOrCreateConcurrentCallersShareOneBook(t *testing.T) {
	reg, _ := newTestRegistry()

	const n = 100
	books := make([]any, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			books[i] = reg.GetOrCreate("SAME")
		}()
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		require.Same(t, books[0], books[i])
	}
}

func TestIDIndexLifecycle(t *testing.T) {
	reg, _ := newTestRegistry()
	book := reg.GetOrCreate("ABC")

	_, ok := reg.Lookup(42)
	require.False(t, ok)

	reg.InsertID(42, book)
	got, ok := reg.Lookup(42)
	require.True(t, ok)
	require.Same(t, book, got)

	reg.RemoveID(42)
	_, ok = reg.Lookup(42)
	require.False(t, ok)
}

func TestLookupAndRemoveIsAtomic(t *testing.T) {
	reg, _ := newTestRegistry()
	book := reg.GetOrCreate("ABC")
	reg.InsertID(1, book)

	got, ok := reg.LookupAndRemove(1)
	require.True(t, ok)
	require.Same(t, book, got)

	_, ok = reg.Lookup(1)
	require.False(t, ok)

	_, ok = reg.LookupAndRemove(1)
	require.False(t, ok)
}

// ApplyChangeSet: the incoming id becomes discoverable only when it rests;
// ids reported as fully consumed lose their index entry.
func TestApplyChangeSetConsistencyRule(t *testing.T) {
	reg, _ := newTestRegistry()
	book := reg.GetOrCreate("ABC")

	reg.InsertID(10, book) // pretend 10 was resting before this submit
	reg.ApplyChangeSet(20, book, []uint32{10, 20})

	_, ok := reg.Lookup(10)
	require.False(t, ok, "fully-consumed id must be dropped")

	got, ok := reg.Lookup(20)
	require.True(t, ok, "incoming id that came to rest must be indexed")
	require.Same(t, book, got)
}

func TestApplyChangeSetPartialFillLeavesOtherIDsUntouched(t *testing.T) {
	reg, _ := newTestRegistry()
	book := reg.GetOrCreate("ABC")
	other := reg.GetOrCreate("XYZ")

	reg.InsertID(5, other)
	reg.ApplyChangeSet(20, book, nil) // incoming fully matched, nothing changed

	got, ok := reg.Lookup(5)
	require.True(t, ok)
	require.Same(t, other, got)

	_, ok = reg.Lookup(20)
	require.False(t, ok)
}
