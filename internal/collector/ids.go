package collector

import "sync/atomic"

// IDGenerator hands out monotonic 64-bit ids shared across every instance
// of one entity kind (channels, streams, futures each get their own
// generator).
type IDGenerator struct {
	next atomic.Uint64
}

// Next returns the next id, starting at 1 (0 stays reserved, mirroring
// ThreadId's "zero means unset" convention).
func (g *IDGenerator) Next() uint64 {
	return g.next.Add(1)
}
