// Command hotpathdemo exercises the full hotpath profiling session end to
// end: it starts a profiler, drives a handful of instrumented functions,
// channels, streams and futures under synthetic load, and prints a final
// report through the reporter selected on the command line.
//
// Structured the way consumption/cmd/consumption/main.go lays out a cobra
// CLI: a single root command, flags bound directly to local vars, a
// signal-aware run loop, and output selection via flags rather than
// subcommands.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"

	"github.com/KimMachineGun/automemlimit/memlimit"

	"github.com/hotpath-go/hotpath"
	"github.com/hotpath-go/hotpath/internal/channels"
	"github.com/hotpath-go/hotpath/report"
)

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
	_, _ = memlimit.SetGoMemLimitWithOpts(memlimit.WithRatio(0.9))

	var (
		duration   time.Duration
		workers    int
		jsonOut    bool
		prettyJSON bool
	)

	root := &cobra.Command{
		Use:   "hotpathdemo",
		Short: "Drive a synthetic workload under the hotpath profiler",
		Long: `hotpathdemo starts an in-process profiling session, runs a small
fleet of workers that call instrumented functions, push values through an
instrumented channel, range over an instrumented stream, and await an
instrumented future, then prints a final report when the workload ends
(Ctrl-C also ends it early and still prints the report).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), duration, workers, reporterFor(jsonOut, prettyJSON))
		},
	}

	root.Flags().DurationVarP(&duration, "duration", "d", 5*time.Second, "how long to run the workload")
	root.Flags().IntVarP(&workers, "workers", "w", 4, "number of concurrent worker goroutines")
	root.Flags().BoolVar(&jsonOut, "json", false, "print the final report as compact JSON")
	root.Flags().BoolVar(&prettyJSON, "pretty-json", false, "print the final report as indented JSON")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func reporterFor(jsonOut, prettyJSON bool) hotpath.Reporter {
	switch {
	case prettyJSON:
		return report.NewPrettyJSONReporter()
	case jsonOut:
		return report.NewJSONReporter()
	default:
		return report.NewTableReporter()
	}
}

func run(ctx context.Context, duration time.Duration, workers int, reporter hotpath.Reporter) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	guard := hotpath.Start(hotpath.WithReporter(reporter), hotpath.WithCallerName("hotpathdemo"))
	defer guard.Close()

	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	jobs := hotpath.WrapChannel[int](hotpath.Unbounded, 0, hotpath.WithChannelLabel("demo-jobs"))

	producers, _ := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		i := i
		producers.Go(func() error {
			produce(ctx, jobs, i)
			return nil
		})
	}
	go func() {
		_ = producers.Wait()
		jobs.Close()
	}()
	consumerDone := make(chan struct{})
	go consume(jobs, consumerDone)

	fetchPrice := hotpath.WrapFuture(fetchPrice, hotpath.WithFutureLabel("fetch-price"))

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-consumerDone
			consumeStream()
			return nil
		case <-ticker.C:
			doWork()
			if _, err := fetchPrice(ctx); err != nil && ctx.Err() == nil {
				fmt.Fprintln(os.Stderr, "fetchPrice:", err)
			}
		}
	}
}

func doWork() {
	g := hotpath.Measure("doWork")
	defer g.Stop()
	time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
}

func fetchPrice(ctx context.Context) (float64, error) {
	select {
	case <-time.After(time.Duration(rand.Intn(3)) * time.Millisecond):
		return 42.0 + rand.Float64(), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func produce(ctx context.Context, jobs *channels.Channel[int], id int) {
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}
		g := hotpath.Measure("produce")
		jobs.Send(id*1_000_000 + i)
		g.Stop()
		time.Sleep(time.Millisecond)
	}
}

func consume(jobs *channels.Channel[int], done chan struct{}) {
	defer close(done)
	for {
		g := hotpath.Measure("consume")
		_, ok := jobs.Recv()
		g.Stop()
		if !ok {
			return
		}
	}
}

func consumeStream() {
	for v := range hotpath.WrapSeq(countdown(5), hotpath.WithStreamLabel("demo-countdown")) {
		_ = v
	}
}

func countdown(n int) func(yield func(int) bool) {
	return func(yield func(int) bool) {
		for i := n; i > 0; i-- {
			if !yield(i) {
				return
			}
		}
	}
}
