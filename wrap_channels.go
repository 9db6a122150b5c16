package hotpath

import (
	"fmt"
	"runtime"

	"github.com/hotpath-go/hotpath/internal/channels"
)

// ChannelKind selects a wrapped channel's proxy/capacity semantics.
type ChannelKind = channels.Kind

const (
	Unbounded = channels.Unbounded
	Bounded   = channels.Bounded
	Oneshot   = channels.Oneshot
)

// ChannelOption configures a channel constructed by WrapChannel.
type ChannelOption func(*channels.Options)

// WithChannelLabel sets a stable display label, overriding the default
// "file:line"/"file:line-N" auto label.
func WithChannelLabel(label string) ChannelOption {
	return func(o *channels.Options) { o.Label = label }
}

// WithChannelLogging enables stringified payload capture in the sent/
// received log rings.
func WithChannelLogging() ChannelOption {
	return func(o *channels.Options) { o.LogResults = true }
}

// WithChannelTypeName overrides the type name surfaced in snapshots,
// otherwise derived from T via fmt's %T verb.
func WithChannelTypeName(name string) ChannelOption {
	return func(o *channels.Options) { o.TypeName = name }
}

// WrapChannel instruments a new channel of the given kind, automatically
// capturing the caller's file:line as its source location. Bounded and
// Oneshot kinds require an explicit positive capacity; Unbounded ignores
// it. See internal/channels for the forwarding-proxy implementation.
func WrapChannel[T any](kind ChannelKind, capacity int, opts ...ChannelOption) *channels.Channel[T] {
	var o channels.Options
	for _, apply := range opts {
		apply(&o)
	}
	_, file, line, _ := runtime.Caller(1)
	return channels.New[T](kind, capacity, fmt.Sprintf("%s:%d", file, line), o)
}
