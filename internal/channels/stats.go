package channels

import "github.com/hotpath-go/hotpath/internal/ring"

// channelStats is one instrumented channel's accumulated state, owned
// exclusively by the collector goroutine.
type channelStats struct {
	id             uint64
	source         string
	label          string
	hasCustomLabel bool
	kind           Kind
	capacity       int
	state          State
	sent           uint64
	received       uint64
	typeName       string
	typeSize       uint64
	iter           int

	sentLog     *ring.Ring[logEntry]
	receivedLog *ring.Ring[logEntry]
}

// queued reports max(0, sent - received - 1). The "-1" accounts for the
// proxy's own extra in-flight slot, which doubles the effective buffer of
// a small bounded channel by one element.
func (cs *channelStats) queued() uint64 {
	diff := int64(cs.sent) - int64(cs.received) - 1
	if diff < 0 {
		return 0
	}
	return uint64(diff)
}
