package futures

import "github.com/hotpath-go/hotpath/internal/ring"

// callRecord is one invocation of a wrapped future, pushed onto its
// futureStats' ring at start and mutated in place by later poll/done
// events until the call completes.
type callRecord struct {
	callID    uint64
	state     State
	pollCount uint64
	result    *string
}

// futureStats is one call-site's accumulated state, owned exclusively by
// the collector goroutine. Many invocations of the same wrapped function
// fold into one row, per spec.
type futureStats struct {
	id             uint64
	source         string
	label          string
	hasCustomLabel bool
	iter           int
	totalPolls     uint64

	calls       *ring.Ring[*callRecord]
	activeCalls map[uint64]*callRecord
}
