package streams

import (
	"fmt"
	"iter"
)

// Options configures a wrapped stream.
type Options struct {
	Label      string
	LogResults bool
	TypeName   string
}

// WrapSeq instruments an iter.Seq[T], the Go 1.23+ range-over-func shape
// that stands in for a polled async stream: every yielded value is counted
// and optionally logged, and the terminal state (Exhausted if the sequence
// runs to completion, Cancelled if the consuming range breaks early) is
// recorded once iteration stops. source should be a "file:line" string
// identifying the call site.
func WrapSeq[T any](seq iter.Seq[T], source string, opts Options) iter.Seq[T] {
	return func(yield func(T) bool) {
		id := globalIDGen.Next()

		typeName := opts.TypeName
		if typeName == "" {
			typeName = fmt.Sprintf("%T", *new(T))
		}

		worker().ingestCh <- createdEvent{
			id:        id,
			source:    source,
			userLabel: opts.Label,
			typeName:  typeName,
		}

		cancelled := false
		seq(func(v T) bool {
			worker().ingestCh <- yieldedEvent{id: id, payload: stringify(v, opts.LogResults)}
			cont := yield(v)
			if !cont {
				cancelled = true
			}
			return cont
		})

		if cancelled {
			worker().ingestCh <- cancelledEvent{id: id}
		} else {
			worker().ingestCh <- exhaustedEvent{id: id}
		}
	}
}

func stringify[T any](v T, enabled bool) *string {
	if !enabled {
		return nil
	}
	s := fmt.Sprintf("%+v", v)
	return &s
}
