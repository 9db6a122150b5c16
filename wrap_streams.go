package hotpath

import (
	"fmt"
	"iter"
	"runtime"

	"github.com/hotpath-go/hotpath/internal/streams"
)

// StreamOption configures a stream instrumented by WrapSeq.
type StreamOption func(*streams.Options)

// WithStreamLabel sets a stable display label for a wrapped stream.
func WithStreamLabel(label string) StreamOption {
	return func(o *streams.Options) { o.Label = label }
}

// WithStreamLogging enables stringified yield capture in the yield log
// ring.
func WithStreamLogging() StreamOption {
	return func(o *streams.Options) { o.LogResults = true }
}

// WrapSeq instruments seq, automatically capturing the caller's file:line
// as the stream's source location. Every value yielded by the returned
// sequence is counted and optionally logged; the terminal state
// (Exhausted or Cancelled) is recorded once iteration stops.
func WrapSeq[T any](seq iter.Seq[T], opts ...StreamOption) iter.Seq[T] {
	var o streams.Options
	for _, apply := range opts {
		apply(&o)
	}
	if o.TypeName == "" {
		o.TypeName = fmt.Sprintf("%T", *new(T))
	}
	_, file, line, _ := runtime.Caller(1)
	return streams.WrapSeq[T](seq, fmt.Sprintf("%s:%d", file, line), o)
}
