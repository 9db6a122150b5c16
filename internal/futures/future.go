package futures

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Options configures a wrapped future call site.
type Options struct {
	Label      string
	LogResults bool
}

type callOutcome[T any] struct {
	value T
	err   error
}

// WrapFuture instruments fn, returning a function with the same signature
// that drives fn to completion on a background goroutine while stepping a
// poll loop in the foreground: each loop iteration that observes fn still
// running counts as one poll, folding many invocations of the same
// call-site into one FutureStats row. Cancelling ctx marks the call
// Cancelled rather than Ready, independent of whatever error fn itself
// returns.
func WrapFuture[T any](fn func(context.Context) (T, error), source string, opts Options) func(context.Context) (T, error) {
	id := globalIDGen.Next()

	worker().ingestCh <- createdEvent{
		id:        id,
		source:    source,
		userLabel: opts.Label,
	}

	return func(ctx context.Context) (T, error) {
		callID := globalCallIDs.Next()
		worker().ingestCh <- callStartedEvent{id: id, callID: callID}

		resultCh := make(chan callOutcome[T], 1)
		go func() {
			v, err := fn(ctx)
			resultCh <- callOutcome[T]{value: v, err: err}
		}()

		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		pollCount := uint64(0)
		for {
			pollCount++
			worker().ingestCh <- pollEvent{id: id, callID: callID, pollCount: pollCount}

			select {
			case r := <-resultCh:
				state := Ready
				if errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded) {
					state = Cancelled
				}
				worker().ingestCh <- doneEvent{id: id, callID: callID, state: state, result: stringify(r.value, opts.LogResults)}
				return r.value, r.err
			case <-ctx.Done():
				var zero T
				worker().ingestCh <- doneEvent{id: id, callID: callID, state: Cancelled, result: nil}
				return zero, ctx.Err()
			case <-ticker.C:
				// still running: loop back around and poll again.
			}
		}
	}
}

func stringify[T any](v T, enabled bool) *string {
	if !enabled {
		return nil
	}
	s := fmt.Sprintf("%+v", v)
	return &s
}
