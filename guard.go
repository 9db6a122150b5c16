package hotpath

import (
	"time"

	"github.com/hotpath-go/hotpath/internal/alloc"
	"github.com/hotpath-go/hotpath/internal/functions"
	"github.com/hotpath-go/hotpath/internal/tid"
)

// Guard is a scoped measurement: construction pushes a counter frame, Stop
// pops it and emits one Sample. The zero value is not meaningful; obtain
// one from Measure or MeasureAsync.
type Guard struct {
	name        string
	wrapper     bool
	async       bool
	startTime   time.Time
	startThread int64
	allocStart  alloc.Snapshot
	result      *string
	stopped     bool
}

func newGuard(name string, wrapper, async bool) *Guard {
	if activeWorker() == nil {
		return nil
	}
	g := &Guard{
		name:        name,
		wrapper:     wrapper,
		async:       async,
		startTime:   time.Now(),
		startThread: tid.OSThread(),
	}
	if !async {
		alloc.PushFrame()
		g.allocStart = alloc.Read()
	}
	return g
}

// Stop ends the measurement and emits one sample. Calling Stop on a nil
// Guard (the "no active session" case) or calling it more than once is
// safe and a no-op.
func (g *Guard) Stop() {
	if g == nil || g.stopped {
		return
	}
	g.stopped = true
	g.emit()
}

func (g *Guard) emit() {
	durationNs := time.Since(g.startTime).Nanoseconds()
	endThread := tid.OSThread()
	crossThread := endThread != g.startThread

	var bytes, count uint64
	if !g.async {
		end := alloc.Read()
		deltaBytes, deltaCount := end.Delta(g.allocStart)
		bytes, count = alloc.PopFrame(deltaBytes, deltaCount)
		alloc.AddThreadTotals(endThread, deltaBytes, deltaCount, 0, 0)
	}
	if crossThread {
		bytes, count = 0, 0
	}

	worker := activeWorker()
	if worker == nil {
		return
	}

	// Sample construction and Ingest below still allocate, and those
	// allocations land in the process-wide counters this package reads --
	// there is no per-goroutine toggle that excludes them, because a
	// sibling guard active concurrently on another goroutine would observe
	// the exact same counters regardless of any such toggle on this one.
	// In the common sequential case this overhead simply becomes part of
	// the next guard's idle-time baseline rather than its measured window.

	sample := functions.Sample{
		Name:             g.name,
		DurationNs:       durationNs,
		Bytes:            bytes,
		Count:            count,
		ThreadID:         endThread,
		ElapsedNs:        elapsedSinceStart(),
		CrossThread:      crossThread,
		Wrapper:          g.wrapper,
		UnsupportedAsync: g.async,
		Result:           g.result,
	}
	worker.Ingest(sample)
}

func elapsedSinceStart() int64 {
	g := current.Load()
	if g == nil {
		return 0
	}
	return time.Since(g.start).Nanoseconds()
}
