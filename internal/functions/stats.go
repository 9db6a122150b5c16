package functions

import (
	"github.com/hotpath-go/hotpath/internal/histogram"
	"github.com/hotpath-go/hotpath/internal/ring"
)

// durationBounds/allocBytesBounds/allocCountBounds fix the histogram
// bounds: [1ns, 1h] duration, [1B, 1GB] bytes, [1, 1e9] counts, all at 3
// significant figures.
const (
	durationLow, durationHigh   = 1, int64(3600) * 1_000_000_000
	allocBytesLow, allocBytesHigh = 1, 1_000_000_000
	allocCountLow, allocCountHigh = 1, 1_000_000_000
	sigFigs                      = 3
)

// callRecord is one recent-call ring entry. It holds both the timing and
// allocation facets of a call; which facet is surfaced as "value" in a log
// query depends on the flavor requested (see query.go).
type callRecord struct {
	durationNs  int64
	bytes       uint64
	allocCount  uint64
	elapsedNs   int64
	threadID    int64
	result      *string
	unsupported bool // cross_thread || unsupported_async: value fields null at snapshot time
}

// funcStats is one instrumented function's accumulated state. It is owned
// exclusively by the worker goroutine and never touched concurrently -- no
// field needs a lock or an atomic.
type funcStats struct {
	name string

	callCount       uint64
	totalDurationNs uint64

	durationHist   *histogram.Histogram
	allocBytesHist *histogram.Histogram
	allocCountHist *histogram.Histogram

	hasData             bool
	wrapper              bool
	crossThread          bool
	hasUnsupportedAsync  bool

	recent *ring.Ring[callRecord]
}

func newFuncStats(name string, recentCapacity int) *funcStats {
	return &funcStats{
		name:           name,
		durationHist:   histogram.New(durationLow, durationHigh, sigFigs),
		allocBytesHist: histogram.New(allocBytesLow, allocBytesHigh, sigFigs),
		allocCountHist: histogram.New(allocCountLow, allocCountHigh, sigFigs),
		recent:         ring.New[callRecord](recentCapacity),
	}
}

// merge folds one Sample into this row.
func (fs *funcStats) merge(s Sample) {
	fs.hasData = true
	fs.callCount++
	fs.totalDurationNs += uint64(s.DurationNs)
	fs.durationHist.Record(clampDuration(s.DurationNs))

	unsupported := s.unsupported()
	if !unsupported {
		fs.allocBytesHist.Record(clampAlloc(int64(s.Bytes), allocBytesLow, allocBytesHigh))
		fs.allocCountHist.Record(clampAlloc(int64(s.Count), allocCountLow, allocCountHigh))
	}

	if s.CrossThread {
		fs.crossThread = true
	}
	if s.UnsupportedAsync {
		fs.hasUnsupportedAsync = true
	}
	if s.Wrapper {
		fs.wrapper = true
	}

	rec := callRecord{
		durationNs:  s.DurationNs,
		elapsedNs:   s.ElapsedNs,
		threadID:    s.ThreadID,
		result:      s.Result,
		unsupported: unsupported,
	}
	if !unsupported {
		rec.bytes = s.Bytes
		rec.allocCount = s.Count
	}
	fs.recent.Push(rec)
}

func clampDuration(ns int64) int64 {
	return clampRange(ns, durationLow, durationHigh)
}

func clampAlloc(v, lo, hi int64) int64 {
	return clampRange(v, lo, hi)
}

func clampRange(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
