// Package threads is a periodic sampler (HOTPATH_THREADS_INTERVAL) that
// reads the live OS thread count and folds it together with
// internal/alloc.ThreadTotals() into a logged summary, following the
// /proc-reading style of consumption/pkg/system/proc (bufio.Scanner over
// a /proc pseudo-file, one key per line).
package threads

import (
	"time"

	"github.com/hotpath-go/hotpath/internal/alloc"
	"github.com/hotpath-go/hotpath/internal/obslog"
)

// Start launches the monitor goroutine and returns a stop function. A
// non-positive interval disables sampling (stop is then a no-op).
func Start(interval time.Duration) func() {
	if interval <= 0 {
		return func() {}
	}

	stopCh := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sample()
			case <-stopCh:
				return
			}
		}
	}()

	var stopped bool
	return func() {
		if stopped {
			return
		}
		stopped = true
		close(stopCh)
		<-done
	}
}

func sample() {
	n, err := osThreadCount()
	if err != nil {
		obslog.Debug().Err(err).Msg("hotpath: thread monitor sample failed")
		return
	}
	totals := alloc.ThreadTotals()
	obslog.Debug().
		Int("os_threads", n).
		Int("tracked_threads", len(totals)).
		Msg("hotpath: thread monitor sample")
}
