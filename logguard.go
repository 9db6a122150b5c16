package hotpath

import "fmt"

// MeasureWithResult starts a log-carrying guard: call FinishWithResult
// before Stop, or let Stop run without it.
func MeasureWithResult(name string) *Guard {
	return Measure(name)
}

// FinishWithResult captures a truncated, stringified form of v. It is
// strictly opt-in -- omitting this call costs nothing on the hot path.
// Calling it more than once keeps only the last value; calling it after
// Stop has no effect.
func (g *Guard) FinishWithResult(v any) {
	if g == nil || g.stopped {
		return
	}
	s := truncateResult(fmt.Sprintf("%+v", v), resultTruncateLimit())
	g.result = &s
}

func resultTruncateLimit() int {
	cur := current.Load()
	if cur == nil {
		return 256
	}
	if cur.cfg.ResultTruncateChars <= 0 {
		return 256
	}
	return cur.cfg.ResultTruncateChars
}

// truncateResult bounds s to at most limit runes, cutting at a rune
// boundary so multi-byte glyphs are never split.
func truncateResult(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
