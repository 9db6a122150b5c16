//go:build !hotpath_off

package hotpath

// Measure starts a plain measurement guard for name. Safe to call with no
// active profiling session: Stop becomes a no-op in that case, so
// instrumentation never crashes the host program.
func Measure(name string) *Guard {
	return newGuard(name, false, false)
}

// MeasureAsync starts a measurement guard for a call driven by a
// cooperative/polling task runtime whose execution may migrate between OS
// threads mid-flight. Its sample is always marked unsupported_async: no
// allocation attribution is attempted because Go's goroutine scheduler
// provides no thread-pinning guarantee across suspension points.
func MeasureAsync(name string) *Guard {
	return newGuard(name, false, true)
}
