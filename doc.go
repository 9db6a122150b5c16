// Package hotpath is an in-process profiler for multi-threaded Go programs.
// It measures function execution time, function-attributed heap
// allocations, channel/stream traffic and goroutine (future-equivalent)
// lifecycles, and exposes live snapshots over a local HTTP endpoint plus a
// final aggregated report on shutdown.
//
// A program starts exactly one profiling session with Start, instruments
// call sites with Measure or MeasureAsync, and stops the session (which
// triggers the final report) by closing the returned guard:
//
//	guard := hotpath.Start()
//	defer guard.Close()
//
//	func DoWork() {
//		defer hotpath.Measure("DoWork").Stop()
//		...
//	}
//
// Measuring return values uses the log-carrying guard variant:
//
//	func Fetch(id int) (string, error) {
//		g := hotpath.MeasureWithResult("Fetch")
//		defer g.Stop()
//		v, err := fetch(id)
//		g.FinishWithResult(v)
//		return v, err
//	}
//
// Channels, streams and futures are instrumented by wrapping them; each
// wrapper captures its own call site as the entity's source location:
//
//	work := hotpath.WrapChannel[Job](hotpath.Unbounded, 0, hotpath.WithChannelLabel("jobs"))
//	next := hotpath.WrapSeq(produceJobs())
//	fetch := hotpath.WrapFuture(fetchRemote)
package hotpath
