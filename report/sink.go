package report

import (
	"io"

	"github.com/hotpath-go/hotpath"
)

// SinkReporter adapts any io.Writer user sink into a Reporter by
// delegating formatting to an inner Reporter and capturing its output.
// Exists for the "user-provided sink" reporter kind -- most users will just
// implement hotpath.Reporter directly, but this covers the common "I
// already have an io.Writer" case without requiring a new type per
// destination.
type SinkReporter struct {
	inner func(io.Writer) hotpath.Reporter
	dest  io.Writer
}

// NewSinkReporter builds a Reporter that renders with the reporter factory
// fn, writing to dest instead of the factory's own default.
func NewSinkReporter(dest io.Writer, fn func(io.Writer) hotpath.Reporter) *SinkReporter {
	return &SinkReporter{inner: fn, dest: dest}
}

func (s *SinkReporter) Report(view hotpath.MetricsView) error {
	return s.inner(s.dest).Report(view)
}

// ForConfig selects the reporter kind the HOTPATH_JSON flag and explicit
// preference imply: JSON takes priority when forced, otherwise the
// caller's preferred kind.
func ForConfig(forceJSON bool, preferred hotpath.Reporter) hotpath.Reporter {
	if forceJSON {
		return NewJSONReporter()
	}
	if preferred != nil {
		return preferred
	}
	return NewTableReporter()
}
