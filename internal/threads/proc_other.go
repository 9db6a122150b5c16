//go:build !linux

package threads

import "runtime"

// osThreadCount has no portable non-cgo equivalent outside Linux's /proc;
// the goroutine count is reported instead as a documented approximation
// (it tracks scheduling pressure, if not true OS thread count).
func osThreadCount() (int, error) {
	return runtime.NumGoroutine(), nil
}
