//go:build !linux

package tid

import "github.com/petermattis/goid"

// Non-Linux platforms have no portable, lock-free syscall equivalent to
// gettid(2) exposed by golang.org/x/sys/unix. Rather than shell out to cgo
// (which would cost portability and allocation-free guarantees), the
// goroutine id is reused as a pseudo OS-thread id: it will never produce a
// spurious cross-thread detection (a given goroutine always reports the
// same value), but it also means true OS-thread migration cannot be
// observed on these platforms -- cross_thread there degrades to "always
// false", an accepted platform gap.
func osThread() int64 {
	return goid.Get()
}
