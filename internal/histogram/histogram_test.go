package histogram

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordAndCount(t *testing.T) {
	h := New(1, 3600_000_000_000, 3)
	for i := 1; i <= 100; i++ {
		h.Record(int64(i))
	}
	require.EqualValues(t, 100, h.Count())
	require.InDelta(t, 50.5, h.Mean(), 1.0)
}

func TestValueAtPercentileMonotonic(t *testing.T) {
	h := New(1, 1_000_000, 3)
	for i := 1; i <= 1000; i++ {
		h.Record(int64(i))
	}
	p50 := h.ValueAtPercentile(50)
	p95 := h.ValueAtPercentile(95)
	p99 := h.ValueAtPercentile(99)
	require.LessOrEqual(t, p50, p95)
	require.LessOrEqual(t, p95, p99)
	require.InDelta(t, 500, p50, 50)
	require.InDelta(t, 950, p95, 50)
}

func TestClampsOutOfRange(t *testing.T) {
	h := New(10, 100, 2)
	h.Record(1)   // clamps to 10
	h.Record(1e9) // clamps to 100
	require.EqualValues(t, 2, h.Count())
	require.EqualValues(t, 10, h.Min())
	require.EqualValues(t, 100, h.Max())
}

func TestEmptyHistogram(t *testing.T) {
	h := New(1, 100, 3)
	require.EqualValues(t, 0, h.Count())
	require.Zero(t, h.Mean())
	require.Zero(t, h.ValueAtPercentile(50))
}
