package streams

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func countingSeq(n int) func(yield func(int) bool) {
	return func(yield func(int) bool) {
		for i := 0; i < n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

func findRow(t *testing.T, source string) (int, bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		snap := Snapshot()
		for i, r := range snap.Streams {
			if r.Source == source {
				return i, true
			}
		}
		time.Sleep(time.Millisecond)
	}
	return 0, false
}

func TestWrapSeqRunsToExhaustion(t *testing.T) {
	source := "stream_test.go:exhaust"
	wrapped := WrapSeq[int](countingSeq(3), source, Options{})

	var got []int
	for v := range wrapped {
		got = append(got, v)
	}
	require.Equal(t, []int{0, 1, 2}, got)

	idx, found := findRow(t, source)
	require.True(t, found)

	deadline := time.Now().Add(time.Second)
	var row = Snapshot().Streams[idx]
	for time.Now().Before(deadline) && row.State != "exhausted" {
		time.Sleep(time.Millisecond)
		row = Snapshot().Streams[idx]
	}
	require.Equal(t, "exhausted", row.State)
	require.Equal(t, uint64(3), row.ItemsYielded)
}

func TestWrapSeqEarlyBreakMarksCancelled(t *testing.T) {
	source := "stream_test.go:cancel"
	wrapped := WrapSeq[int](countingSeq(10), source, Options{})

	count := 0
	for range wrapped {
		count++
		if count == 2 {
			break
		}
	}
	require.Equal(t, 2, count)

	idx, found := findRow(t, source)
	require.True(t, found)

	deadline := time.Now().Add(time.Second)
	var row = Snapshot().Streams[idx]
	for time.Now().Before(deadline) && row.State != "cancelled" {
		time.Sleep(time.Millisecond)
		row = Snapshot().Streams[idx]
	}
	require.Equal(t, "cancelled", row.State)
}
