// Package futures implements future/task instrumentation. Go has no polled
// Future type, so a wrapped async call is driven by a small stepping loop
// that re-checks a result channel on an interval, counting each iteration
// as one poll -- the closest idiomatic analogue of a polled future, with
// context.Context cancellation standing in for an explicit waker.
package futures

import "time"

// pollInterval bounds how often the driver loop re-polls a still-pending
// call. Real completions signal immediately via the result channel; this
// only governs how quickly poll_count accrues for a call that is genuinely
// still running.
const pollInterval = 2 * time.Millisecond

// State is one future call's lifecycle state.
type State int

const (
	Pending State = iota
	Suspended
	Ready
	Cancelled
)

func (s State) String() string {
	switch s {
	case Suspended:
		return "suspended"
	case Ready:
		return "ready"
	case Cancelled:
		return "cancelled"
	default:
		return "pending"
	}
}
