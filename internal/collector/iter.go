// Package collector holds the small pieces shared by every L4 collector
// (channels, streams, futures): the iter-disambiguator counter and the
// display-label rule, reused identically by all three kinds.
package collector

import "fmt"

// IterTracker hands out 0-based iter values per source location. It is
// owned by a single collector goroutine and needs no locking.
type IterTracker struct {
	counts map[string]int
}

func NewIterTracker() *IterTracker {
	return &IterTracker{counts: make(map[string]int)}
}

// Next returns how many entities already exist at source, then increments.
func (t *IterTracker) Next(source string) int {
	n := t.counts[source]
	t.counts[source]++
	return n
}

// Label implements the iteration disambiguation display rule: a user label
// is used verbatim; otherwise source is used, with "-{iter+1}" appended
// when iter > 0.
func Label(userLabel, source string, iter int) (label string, hasCustomLabel bool) {
	if userLabel != "" {
		return userLabel, true
	}
	if iter > 0 {
		return fmt.Sprintf("%s-%d", source, iter+1), false
	}
	return source, false
}
