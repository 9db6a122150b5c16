// Package alloc is a Go-native substitute for a custom global allocator
// hook: since Go offers no supported hook into runtime.mallocgc, allocation
// attribution is instead derived from the delta of the process-wide,
// non-stop-the-world counters published by runtime/metrics, bracketed
// around each guard's lifetime against a goroutine-scoped depth-stack that
// tracks what each frame's children consumed. See DESIGN.md for the full
// rationale and its known limitations.
package alloc

import (
	"runtime/metrics"
	"sync"
	"sync/atomic"

	"github.com/hotpath-go/hotpath/internal/tid"
)

// Mode controls whether a guard's attributed total includes its
// descendants' window deltas (Cumulative, the default -- the natural
// outcome of a process-wide window measurement) or excludes them
// (Exclusive, which subtracts children's deltas back out), set once at
// startup from HOTPATH_ALLOC_SELF.
type Mode int32

const (
	Cumulative Mode = iota
	Exclusive
)

var mode atomic.Int32

// SetMode configures the process-wide fold behavior. Intended to be called
// once, at profiler startup.
func SetMode(m Mode) { mode.Store(int32(m)) }

// CurrentMode returns the active fold behavior.
func CurrentMode() Mode { return Mode(mode.Load()) }

var stacks sync.Map // int64 goroutine id -> *stack

func currentStack() *stack {
	gid := tid.Goroutine()
	if v, ok := stacks.Load(gid); ok {
		return v.(*stack)
	}
	s := &stack{}
	actual, _ := stacks.LoadOrStore(gid, s)
	return actual.(*stack)
}

// PushFrame pushes a new, zeroed frame onto the calling goroutine's
// depth-stack and returns it, along with the depth reached (1-based).
// Panics if MaxDepth would be exceeded (a programmer error: unreasonably
// deep nested measurement).
func PushFrame() (*Frame, int) {
	s := currentStack()
	f := s.push()
	return f, s.depth
}

// PopFrame pops the calling goroutine's top frame and returns the
// attributed (bytes, count) for the guard that owned it. windowBytes and
// windowCount are the caller's own runtime/metrics window delta for that
// guard's whole lifetime, measured by the caller via Read/Delta -- since
// those counters are process-wide, the window already includes whatever
// any nested, already-popped child allocated. PopFrame accounts for that
// per CurrentMode (see stack.pop) and, when the stack becomes empty, its
// goroutine-keyed entry is removed so the map does not grow unboundedly
// across goroutine churn.
func PopFrame(windowBytes, windowCount uint64) (bytes, count uint64) {
	gid := tid.Goroutine()
	v, ok := stacks.Load(gid)
	if !ok {
		return 0, 0
	}
	s := v.(*stack)
	bytes, count = s.pop(windowBytes, windowCount, CurrentMode() == Exclusive)
	if s.depth == 0 {
		stacks.Delete(gid)
	}
	return bytes, count
}

// Snapshot captures the process-wide cumulative allocation counters read
// from runtime/metrics, to be subtracted from a later Snapshot to derive a
// window's allocation delta.
type Snapshot struct {
	allocBytes, allocObjects uint64
	freeBytes, freeObjects   uint64
}

var metricSamples = []metrics.Sample{
	{Name: "/gc/heap/allocs:bytes"},
	{Name: "/gc/heap/allocs:objects"},
	{Name: "/gc/heap/frees:bytes"},
	{Name: "/gc/heap/frees:objects"},
}

// Read takes a fresh process-wide allocation Snapshot. It builds a new
// sample slice on every call, so each call makes one small heap allocation
// of its own; it does not stop the world, unlike runtime.ReadMemStats.
func Read() Snapshot {
	samples := make([]metrics.Sample, len(metricSamples))
	copy(samples, metricSamples)
	metrics.Read(samples)
	return Snapshot{
		allocBytes:   samples[0].Value.Uint64(),
		allocObjects: samples[1].Value.Uint64(),
		freeBytes:    samples[2].Value.Uint64(),
		freeObjects:  samples[3].Value.Uint64(),
	}
}

// Delta returns (bytesAllocated, objectsAllocated) observed between start
// and the receiver (which must have been read later). Saturates at zero
// instead of wrapping if a GC counter reset were ever observed.
func (end Snapshot) Delta(start Snapshot) (bytes, count uint64) {
	bytes = satSub(end.allocBytes, start.allocBytes)
	count = satSub(end.allocObjects, start.allocObjects)
	return bytes, count
}

// FreedDelta returns (bytesFreed, objectsFreed) observed between start and
// the receiver.
func (end Snapshot) FreedDelta(start Snapshot) (bytes, count uint64) {
	bytes = satSub(end.freeBytes, start.freeBytes)
	count = satSub(end.freeObjects, start.freeObjects)
	return bytes, count
}

func satSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
