//go:build linux

package threads

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// osThreadCount reads the "Threads:" line of /proc/self/status, the same
// /proc key=value-per-line shape ja7ad-consumption's proc package parses
// for cgroup and IO counters.
func osThreadCount() (int, error) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "Threads:") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				return strconv.Atoi(fields[1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, nil
}
