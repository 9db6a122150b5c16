package hotpath

import (
	"context"
	"fmt"
	"runtime"

	"github.com/hotpath-go/hotpath/internal/futures"
)

// FutureOption configures a future call site instrumented by WrapFuture.
type FutureOption func(*futures.Options)

// WithFutureLabel sets a stable display label for a wrapped future call
// site.
func WithFutureLabel(label string) FutureOption {
	return func(o *futures.Options) { o.Label = label }
}

// WithFutureLogging enables stringified result capture once a call
// reaches the Ready state.
func WithFutureLogging() FutureOption {
	return func(o *futures.Options) { o.LogResults = true }
}

// WrapFuture instruments fn, automatically capturing the caller's
// file:line as the call site's source location. Every invocation folds
// into the same FutureStats row; each invocation gets its own FutureCall
// record tracking poll_count and terminal state.
func WrapFuture[T any](fn func(context.Context) (T, error), opts ...FutureOption) func(context.Context) (T, error) {
	var o futures.Options
	for _, apply := range opts {
		apply(&o)
	}
	_, file, line, _ := runtime.Caller(1)
	return futures.WrapFuture[T](fn, fmt.Sprintf("%s:%d", file, line), o)
}
