package functions

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hotpath-go/hotpath/internal/obslog"
	"github.com/hotpath-go/hotpath/internal/snapshot"
)

// ingestCapacity bounds the sample channel. A genuinely unbounded channel
// isn't possible in Go without an allocating adapter goroutine, which
// would contradict the wait-free hot path guards run on, so instead
// capacity is generous and a full channel triggers the documented
// "transient runtime fault" drop path rather than blocking the emitting
// goroutine.
const ingestCapacity = 1 << 16

// queryTimeout is the bounded-wait a query caller tolerates before treating
// the worker as gone.
const queryTimeout = 250 * time.Millisecond

type shutdownRequest struct {
	reply chan map[string]*funcStats
}

// Worker is the L3 aggregation goroutine. The zero value is not usable;
// construct with New and start with Run.
type Worker struct {
	recentCapacity int
	exclusiveMode  bool
	start          time.Time

	ingestCh   chan Sample
	queryCh    chan any
	shutdownCh chan shutdownRequest

	dropped atomic.Uint64
}

// Config configures a new Worker, mirroring the HOTPATH_ALLOC_SELF and
// HOTPATH_RECENT_LOGS environment variables.
type Config struct {
	ExclusiveAllocMode bool
	RecentLogCapacity  int
}

func New(cfg Config) *Worker {
	if cfg.RecentLogCapacity <= 0 {
		cfg.RecentLogCapacity = 50
	}
	return &Worker{
		recentCapacity: cfg.RecentLogCapacity,
		exclusiveMode:  cfg.ExclusiveAllocMode,
		start:          time.Now(),
		ingestCh:       make(chan Sample, ingestCapacity),
		queryCh:        make(chan any, 64),
		shutdownCh:     make(chan shutdownRequest),
	}
}

// Ingest offers a sample to the worker without blocking. Returns false if
// the ingest channel is full, in which case the sample is dropped as a
// transient runtime fault rather than blocking the caller.
func (w *Worker) Ingest(s Sample) bool {
	select {
	case w.ingestCh <- s:
		return true
	default:
		w.dropped.Add(1)
		return false
	}
}

// Dropped returns the count of samples dropped due to a full ingest queue.
func (w *Worker) Dropped() uint64 { return w.dropped.Load() }

// Run owns the stats map for its entire lifetime; call it from its own
// goroutine. It returns once a shutdown request has been served.
func (w *Worker) Run() {
	stats := make(map[string]*funcStats)

	lookup := func(name string) *funcStats {
		fs, ok := stats[name]
		if !ok {
			fs = newFuncStats(name, w.recentCapacity)
			stats[name] = fs
		}
		return fs
	}

	drainIngest := func() {
		for {
			select {
			case s := <-w.ingestCh:
				lookup(s.Name).merge(s)
			default:
				return
			}
		}
	}

	for {
		select {
		case s := <-w.ingestCh:
			lookup(s.Name).merge(s)

		case q := <-w.queryCh:
			// Queries are synchronous from the caller's viewpoint but must
			// observe every sample emitted before the query was issued, so
			// drain ingestion before building the reply.
			drainIngest()
			w.answer(stats, q)

		case req := <-w.shutdownCh:
			drainIngest()
			final := stats
			req.reply <- final
			return
		}
	}
}

func (w *Worker) answer(stats map[string]*funcStats, q any) {
	switch req := q.(type) {
	case allocQuery:
		req.reply <- buildAllocSnapshot(stats, w.exclusiveMode, time.Since(w.start).Nanoseconds(), req.description, req.callerName)
	case timingQuery:
		var wrapperNs int64
		for _, fs := range stats {
			if fs.wrapper {
				wrapperNs = int64(fs.totalDurationNs)
			}
		}
		total := wrapperNs
		if total == 0 {
			total = time.Since(w.start).Nanoseconds()
		}
		req.reply <- buildTimingSnapshot(stats, total, req.realElapsedNs, req.description, req.callerName)
	case logsQuery:
		req.reply <- buildLogsSnapshot(stats, req.functionName, req.flavor)
	}
}

// QueryAllocSnapshot performs a synchronous, bounded-wait allocation
// snapshot query.
func (w *Worker) QueryAllocSnapshot(ctx context.Context, description, callerName string) (snapshot.FunctionsSnapshot, bool) {
	reply := make(chan snapshot.FunctionsSnapshot, 1)
	return doQuery(w, ctx, allocQuery{description: description, callerName: callerName, reply: reply}, reply)
}

// QueryTimingSnapshot performs a synchronous, bounded-wait timing snapshot
// query.
func (w *Worker) QueryTimingSnapshot(ctx context.Context, description, callerName string) (snapshot.FunctionsSnapshot, bool) {
	reply := make(chan snapshot.FunctionsSnapshot, 1)
	return doQuery(w, ctx, timingQuery{
		description:   description,
		callerName:    callerName,
		realElapsedNs: time.Since(w.start).Nanoseconds(),
		reply:         reply,
	}, reply)
}

// QueryLogs performs a synchronous, bounded-wait per-function log query.
func (w *Worker) QueryLogs(ctx context.Context, functionName string, flavor LogFlavor) (snapshot.FunctionLogsSnapshot, bool) {
	reply := make(chan snapshot.FunctionLogsSnapshot, 1)
	return doQuery(w, ctx, logsQuery{functionName: functionName, flavor: flavor, reply: reply}, reply)
}

// doQuery sends req on the worker's query channel and waits for a reply on
// reply, both bounded by queryTimeout, so a missing worker cannot deadlock
// a caller.
func doQuery[T any](w *Worker, ctx context.Context, req any, reply chan T) (T, bool) {
	timeout, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var zero T
	select {
	case w.queryCh <- req:
	case <-timeout.Done():
		obslog.Warn().Msg("hotpath: query dropped, worker ingest saturated")
		return zero, false
	}

	select {
	case v := <-reply:
		return v, true
	case <-timeout.Done():
		return zero, false
	}
}

// Shutdown signals the worker to drain remaining samples and stop, blocking
// until it has done so. It returns the final stats snapshot as two reports
// (allocation and timing), built from the same terminal map the worker used
// to answer its last query.
func (w *Worker) Shutdown(description, callerName string, realElapsedNs int64) (alloc, timing snapshot.FunctionsSnapshot) {
	reply := make(chan map[string]*funcStats, 1)
	w.shutdownCh <- shutdownRequest{reply: reply}
	final := <-reply

	var wrapperNs int64
	for _, fs := range final {
		if fs.wrapper {
			wrapperNs = int64(fs.totalDurationNs)
		}
	}
	total := wrapperNs
	if total == 0 {
		total = realElapsedNs
	}

	alloc = buildAllocSnapshot(final, w.exclusiveMode, total, description, callerName)
	timing = buildTimingSnapshot(final, total, realElapsedNs, description, callerName)
	return alloc, timing
}
