package functions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startWorker(t *testing.T, cfg Config) *Worker {
	t.Helper()
	w := New(cfg)
	go w.Run()
	return w
}

func TestIngestAndTimingSnapshot(t *testing.T) {
	w := startWorker(t, Config{RecentLogCapacity: 10})

	for i := 0; i < 5; i++ {
		w.Ingest(Sample{Name: "foo", DurationNs: int64(100 * (i + 1)), ElapsedNs: int64(i), ThreadID: 1})
	}

	snap, ok := w.QueryTimingSnapshot(context.Background(), "d", "caller")
	require.True(t, ok)
	rows := snap.Data["foo"]
	require.Len(t, rows, 1)
	require.Equal(t, uint64(5), rows[0].Calls)
	require.NotNil(t, rows[0].Total)
	require.Equal(t, float64(100+200+300+400+500), *rows[0].Total)
}

func TestCrossThreadSampleNullsAllocFields(t *testing.T) {
	w := startWorker(t, Config{RecentLogCapacity: 10})
	w.Ingest(Sample{Name: "bar", DurationNs: 10, CrossThread: true, ThreadID: 2})

	snap, ok := w.QueryAllocSnapshot(context.Background(), "d", "caller")
	require.True(t, ok)
	rows := snap.Data["bar"]
	require.Len(t, rows, 1)
	require.Nil(t, rows[0].Total)
	require.True(t, rows[0].CrossThread)
}

func TestWrapperExcludedFromAllocWhenCrossThread(t *testing.T) {
	w := startWorker(t, Config{RecentLogCapacity: 10})
	w.Ingest(Sample{Name: "main", DurationNs: 1000, Wrapper: true, CrossThread: true, ThreadID: 1})
	w.Ingest(Sample{Name: "child", DurationNs: 10, Bytes: 64, Count: 1, ThreadID: 1})

	snap, ok := w.QueryAllocSnapshot(context.Background(), "d", "caller")
	require.True(t, ok)
	_, hasWrapper := snap.Data["main"]
	require.False(t, hasWrapper, "cross-thread wrapper row must be excluded from allocation reports")
	_, hasChild := snap.Data["child"]
	require.True(t, hasChild)
}

func TestLogsRingRetainsNewestK(t *testing.T) {
	w := startWorker(t, Config{RecentLogCapacity: 3})
	for i := 0; i < 10; i++ {
		w.Ingest(Sample{Name: "ringed", DurationNs: int64(i), ElapsedNs: int64(i), ThreadID: 1})
	}

	logs, ok := w.QueryLogs(context.Background(), "ringed", FlavorTiming)
	require.True(t, ok)
	require.Len(t, logs.Logs, 3)
	require.Equal(t, float64(9), *logs.Logs[2].Value)
	require.Equal(t, float64(7), *logs.Logs[0].Value)
}

func TestShutdownDrainsAndReturnsFinalSnapshots(t *testing.T) {
	w := New(Config{RecentLogCapacity: 10})
	done := make(chan struct{})
	go func() { w.Run(); close(done) }()

	w.Ingest(Sample{Name: "last", DurationNs: 5, ThreadID: 1})

	alloc, timing := w.Shutdown("d", "caller", int64(time.Millisecond))
	<-done

	require.Contains(t, timing.Data, "last")
	require.Equal(t, "allocation", alloc.ProfilingMode)
}
