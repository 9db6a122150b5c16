//go:build linux

package tid

import "golang.org/x/sys/unix"

// On Linux the real kernel thread id is available cheaply via gettid(2)
// through golang.org/x/sys/unix.
func osThread() int64 {
	return int64(unix.Gettid())
}
