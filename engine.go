package hotpath

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hotpath-go/hotpath/httpapi"
	"github.com/hotpath-go/hotpath/internal/alloc"
	"github.com/hotpath-go/hotpath/internal/channels"
	"github.com/hotpath-go/hotpath/internal/functions"
	"github.com/hotpath-go/hotpath/internal/futures"
	"github.com/hotpath-go/hotpath/internal/obslog"
	"github.com/hotpath-go/hotpath/internal/snapshot"
	"github.com/hotpath-go/hotpath/internal/streams"
	"github.com/hotpath-go/hotpath/internal/threads"
)

// current is the process-wide profiler state slot. Teardown must not race
// with emission: a single atomic swap handle lets emitters do an atomic
// load and no-op if absent, while teardown performs exactly one swap back
// to nil.
var current atomic.Pointer[FunctionsGuard]

// MetricsView is the read-only value a Reporter receives at teardown.
// Close fills every field; a subsystem (channels, streams, futures) that
// was never used contributes an empty snapshot rather than nil.
type MetricsView struct {
	Alloc    snapshot.FunctionsSnapshot
	Timing   snapshot.FunctionsSnapshot
	Channels *snapshot.ChannelsSnapshot
	Streams  *snapshot.StreamsSnapshot
	Futures  *snapshot.FuturesSnapshot
}

// Reporter is the one-method capability set invoked exactly once at
// teardown with a read-only view, pure and side-effect-free with respect
// to the core.
type Reporter interface {
	Report(view MetricsView) error
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(view MetricsView) error

func (f ReporterFunc) Report(view MetricsView) error { return f(view) }

func defaultReporter() Reporter {
	return ReporterFunc(func(view MetricsView) error {
		_, err := fmt.Fprintf(os.Stdout, "hotpath: %d function(s) profiled, %d ns total wall clock\n",
			len(view.Timing.Data), view.Timing.TotalElapsedNs)
		return err
	})
}

// StartOption configures a profiling session started by Start.
type StartOption func(*startOptions)

type startOptions struct {
	cfg      Config
	reporter Reporter
	caller   string
}

// WithConfig overrides the environment-derived Config.
func WithConfig(cfg Config) StartOption {
	return func(o *startOptions) { o.cfg = cfg }
}

// WithReporter sets the final-report sink. Without this option Start falls
// back to a minimal built-in text summary.
func WithReporter(r Reporter) StartOption {
	return func(o *startOptions) { o.reporter = r }
}

// WithCallerName sets the caller_name field surfaced in function snapshots.
func WithCallerName(name string) StartOption {
	return func(o *startOptions) { o.caller = name }
}

// FunctionsGuard is the top-level profiler handle. Only one may be alive
// at a time; dropping it (via Close) is the only way to stop ingestion
// and produce the final report.
type FunctionsGuard struct {
	worker       *functions.Worker
	cfg          Config
	start        time.Time
	reporter     Reporter
	callerName   string
	threadsStop  func()
	httpSrv      *httpapi.Server
	closeOnce    sync.Once
	wrapperGuard *Guard
}

// Start begins a profiling session. It is a fatal error to call Start while
// a session is already active.
func Start(opts ...StartOption) *FunctionsGuard {
	if current.Load() != nil {
		panic("hotpath: a profiling guard is already active")
	}

	o := startOptions{cfg: LoadConfig(), reporter: defaultReporter(), caller: "main"}
	for _, apply := range opts {
		apply(&o)
	}

	obslog.Configure(o.cfg.LogLevel, nil)

	mode := alloc.Cumulative
	if o.cfg.AllocSelf {
		mode = alloc.Exclusive
	}
	alloc.SetMode(mode)

	worker := functions.New(functions.Config{
		ExclusiveAllocMode: o.cfg.AllocSelf,
		RecentLogCapacity:  o.cfg.RecentLogs,
	})
	go worker.Run()

	g := &FunctionsGuard{
		worker:     worker,
		cfg:        o.cfg,
		start:      time.Now(),
		reporter:   o.reporter,
		callerName: o.caller,
	}

	if !current.CompareAndSwap(nil, g) {
		panic("hotpath: a profiling guard is already active")
	}

	g.threadsStop = threads.Start(time.Duration(o.cfg.ThreadsIntervalMs) * time.Millisecond)
	g.wrapperGuard = newGuard("main", true, false)

	if !o.cfg.MetricsServerOff {
		srv := httpapi.New(fmt.Sprintf("127.0.0.1:%d", o.cfg.MetricsPort))
		srv.FunctionsTiming = func() (snapshot.FunctionsSnapshot, bool) {
			return QueryTimingSnapshot(context.Background())
		}
		srv.FunctionsAlloc = func() (snapshot.FunctionsSnapshot, bool) {
			return QueryAllocSnapshot(context.Background())
		}
		srv.FunctionLogs = func(name string, timing bool) (snapshot.FunctionLogsSnapshot, bool) {
			return QueryFunctionLogs(context.Background(), name, timing)
		}
		srv.Channels = channels.Snapshot
		srv.Streams = streams.Snapshot
		srv.Futures = futures.Snapshot
		srv.Start()
		g.httpSrv = srv
	}

	return g
}

// activeWorker returns the live worker, or nil if no session is active --
// the fail-closed path every Measure/MeasureAsync call checks.
func activeWorker() *functions.Worker {
	g := current.Load()
	if g == nil {
		return nil
	}
	return g.worker
}

// Close stops ingestion, waits for the worker to drain, runs the configured
// reporter, and clears the process-wide slot so a later Start call may
// succeed.
func (g *FunctionsGuard) Close() error {
	var reportErr error
	g.closeOnce.Do(func() {
		g.wrapperGuard.Stop()

		realElapsed := time.Since(g.start).Nanoseconds()
		allocSnap, timingSnap := g.worker.Shutdown("hotpath profiling session", g.callerName, realElapsed)

		if g.threadsStop != nil {
			g.threadsStop()
		}
		if g.httpSrv != nil {
			if err := g.httpSrv.Close(); err != nil {
				obslog.Warn().Err(err).Msg("hotpath: metrics http server shutdown error")
			}
		}

		channelsSnap := channels.Snapshot()
		streamsSnap := streams.Snapshot()
		futuresSnap := futures.Snapshot()
		view := MetricsView{
			Alloc:    allocSnap,
			Timing:   timingSnap,
			Channels: &channelsSnap,
			Streams:  &streamsSnap,
			Futures:  &futuresSnap,
		}
		if err := g.reporter.Report(view); err != nil {
			obslog.Error().Err(err).Msg("hotpath: reporter failed during teardown")
			reportErr = err
		}

		current.Store(nil)
	})
	return reportErr
}

// QueryAllocSnapshot answers a live allocation snapshot query against the
// active session, or ok=false if none is active.
func QueryAllocSnapshot(ctx context.Context) (snapshot.FunctionsSnapshot, bool) {
	g := current.Load()
	if g == nil {
		return snapshot.FunctionsSnapshot{}, false
	}
	return g.worker.QueryAllocSnapshot(ctx, "live snapshot", g.callerName)
}

// QueryTimingSnapshot answers a live timing snapshot query against the
// active session, or ok=false if none is active.
func QueryTimingSnapshot(ctx context.Context) (snapshot.FunctionsSnapshot, bool) {
	g := current.Load()
	if g == nil {
		return snapshot.FunctionsSnapshot{}, false
	}
	return g.worker.QueryTimingSnapshot(ctx, "live snapshot", g.callerName)
}

// QueryFunctionLogs answers a per-function log query against the active
// session, or ok=false if none is active.
func QueryFunctionLogs(ctx context.Context, functionName string, timing bool) (snapshot.FunctionLogsSnapshot, bool) {
	g := current.Load()
	if g == nil {
		return snapshot.FunctionLogsSnapshot{}, false
	}
	flavor := functions.FlavorAllocation
	if timing {
		flavor = functions.FlavorTiming
	}
	return g.worker.QueryLogs(ctx, functionName, flavor)
}
