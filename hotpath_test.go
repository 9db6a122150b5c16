package hotpath

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("HOTPATH_METRICS_SERVER_OFF", "1")
	os.Exit(m.Run())
}

func TestStartMeasureStopClose(t *testing.T) {
	g := Start(WithCallerName("test"))
	defer func() {
		if g != nil {
			current.Store(nil)
		}
	}()

	for i := 0; i < 100; i++ {
		guard := Measure("sync_function")
		_ = make([]int, 20)
		guard.Stop()
	}

	snap, ok := QueryTimingSnapshot(context.Background())
	require.True(t, ok)
	rows := snap.Data["sync_function"]
	require.Len(t, rows, 1)
	require.Equal(t, uint64(100), rows[0].Calls)

	require.NoError(t, g.Close())
}

func TestSecondStartPanics(t *testing.T) {
	g := Start()
	defer func() {
		require.NoError(t, g.Close())
	}()

	require.Panics(t, func() {
		Start()
	})
}

func TestMeasureWithoutActiveSessionIsNoop(t *testing.T) {
	current.Store(nil)
	guard := Measure("nothing")
	require.Nil(t, guard)
	guard.Stop() // must not panic
}

func TestMeasureWithResultCapturesValue(t *testing.T) {
	g := Start()
	defer func() { require.NoError(t, g.Close()) }()

	guard := MeasureWithResult("withResult")
	guard.FinishWithResult(42)
	guard.Stop()

	logs, ok := QueryFunctionLogs(context.Background(), "withResult", true)
	require.True(t, ok)
	require.Len(t, logs.Logs, 1)
	require.NotNil(t, logs.Logs[0].Result)
	require.Equal(t, "42", *logs.Logs[0].Result)
}

func TestCrossThreadGuardNullsAllocation(t *testing.T) {
	g := Start()
	defer func() { require.NoError(t, g.Close()) }()

	var wg sync.WaitGroup
	wg.Add(1)
	var guard *Guard
	go func() {
		defer wg.Done()
		guard = Measure("crosses")
	}()
	wg.Wait()
	guard.Stop() // different goroutine from construction; OS thread may or may not differ

	snap, ok := QueryAllocSnapshot(context.Background())
	require.True(t, ok)
	if rows := snap.Data["crosses"]; len(rows) == 1 && rows[0].CrossThread {
		require.Nil(t, rows[0].Total)
	}
}

func TestConcurrentMeasureIsRaceFree(t *testing.T) {
	g := Start()
	defer func() { require.NoError(t, g.Close()) }()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guard := Measure("concurrent")
			time.Sleep(time.Microsecond)
			guard.Stop()
		}()
	}
	wg.Wait()

	snap, ok := QueryTimingSnapshot(context.Background())
	require.True(t, ok)
	require.Equal(t, uint64(50), snap.Data["concurrent"][0].Calls)
}
