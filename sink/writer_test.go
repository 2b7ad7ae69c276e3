package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterSinkFormatsAndFlushesInOrder(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterSink(&buf)

	w.Added(1, "ABC", 10, 100, true, 5)
	w.Executed(1, 2, 1, 10, 100, 6)
	w.Deleted(3, false, 7)
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Equal(t, []string{
		"A 1 ABC 10 100 S 5",
		"E 1 2 1 10 100 6",
		"D 3 false 7",
	}, lines)
}

func TestWriterSinkBuySideLetter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterSink(&buf)
	w.Added(1, "ABC", 10, 100, false, 1)
	require.NoError(t, w.Flush())
	require.Equal(t, "A 1 ABC 10 100 B 1\n", buf.String())
}
