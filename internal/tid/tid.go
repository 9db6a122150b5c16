// Package tid provides cheap goroutine and OS-thread identification.
//
// Go has no per-thread local storage API and goroutines are scheduled
// cooperatively across OS threads (the M:N scheduler), so "thread-local"
// storage is translated to "goroutine-local" (internal/alloc's frame
// stacks), while the OS thread id is still read directly for cross-thread
// detection -- reading it twice (guard construction, guard destruction)
// and comparing is a cheap (one syscall on Linux) migration detector.
package tid

import "github.com/petermattis/goid"

// Goroutine returns the identifier of the calling goroutine, sourced from
// the well-known petermattis/goid package, which reads runtime.g.goid
// directly via a linkname trick instead of parsing runtime.Stack output.
func Goroutine() int64 {
	return goid.Get()
}

// OSThread returns the OS-level thread identifier the calling goroutine is
// currently running on. Its value MAY change between two calls made by the
// same goroutine if the goroutine blocks and the runtime resumes it on a
// different OS thread in between -- that volatility is exactly what
// Guard uses to detect a cross-thread sample.
func OSThread() int64 {
	return osThread()
}
