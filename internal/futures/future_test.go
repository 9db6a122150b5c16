package futures

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func findRow(t *testing.T, source string) (int, bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		snap := Snapshot()
		for i, r := range snap.Futures {
			if r.Source == source {
				return i, true
			}
		}
		time.Sleep(time.Millisecond)
	}
	return 0, false
}

func TestWrapFutureCompletesReady(t *testing.T) {
	source := "future_test.go:ready"
	wrapped := WrapFuture[int](func(ctx context.Context) (int, error) {
		return 7, nil
	}, source, Options{})

	v, err := wrapped(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, v)

	idx, found := findRow(t, source)
	require.True(t, found)

	deadline := time.Now().Add(time.Second)
	var row = Snapshot().Futures[idx]
	for time.Now().Before(deadline) && len(row.Calls) == 0 {
		time.Sleep(time.Millisecond)
		row = Snapshot().Futures[idx]
	}
	require.Len(t, row.Calls, 1)
	require.Equal(t, "ready", row.Calls[0].State)
	require.GreaterOrEqual(t, row.Calls[0].PollCount, uint64(1))
}

func TestWrapFutureContextCancelMarksCancelled(t *testing.T) {
	source := "future_test.go:cancel"
	wrapped := WrapFuture[int](func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, source, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := wrapped(ctx)
	require.Error(t, err)

	idx, found := findRow(t, source)
	require.True(t, found)

	deadline := time.Now().Add(time.Second)
	var row = Snapshot().Futures[idx]
	for time.Now().Before(deadline) && (len(row.Calls) == 0 || row.Calls[0].State == "pending") {
		time.Sleep(time.Millisecond)
		row = Snapshot().Futures[idx]
	}
	require.Len(t, row.Calls, 1)
	require.Equal(t, "cancelled", row.Calls[0].State)
}

func TestMultipleInvocationsFoldIntoOneRow(t *testing.T) {
	source := "future_test.go:fold"
	wrapped := WrapFuture[int](func(ctx context.Context) (int, error) {
		return 1, nil
	}, source, Options{})

	for i := 0; i < 3; i++ {
		_, err := wrapped(context.Background())
		require.NoError(t, err)
	}

	snap := Snapshot()
	count := 0
	for _, r := range snap.Futures {
		if r.Source == source {
			count++
		}
	}
	require.Equal(t, 1, count, "repeated invocations of the same call site must fold into one row")
}
