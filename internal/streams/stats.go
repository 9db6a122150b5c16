package streams

import "github.com/hotpath-go/hotpath/internal/ring"

// streamStats is one wrapped stream's accumulated state, owned exclusively
// by the collector goroutine.
type streamStats struct {
	id             uint64
	source         string
	label          string
	hasCustomLabel bool
	iter           int
	state          State
	itemsYielded   uint64
	typeName       string

	yieldLog *ring.Ring[logEntry]
}
