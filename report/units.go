// Package report provides the final-report reporters: a human-readable
// ANSI table, compact and pretty JSON, and a user-pluggable sink, all
// implementing the root package's Reporter capability. Table rendering
// uses text/tabwriter; coloring respects NO_COLOR via mattn/go-isatty and
// mattn/go-colorable.
package report

import "fmt"

// FormatDuration renders ns using the unit ladder: ns/µs/ms/s, two
// decimals, threshold 1000 per unit.
func FormatDuration(ns float64) string {
	units := []struct {
		suffix string
		size   float64
	}{
		{"ns", 1},
		{"µs", 1e3},
		{"ms", 1e6},
		{"s", 1e9},
	}
	chosen := units[0]
	for _, u := range units {
		if ns/u.size >= 1 {
			chosen = u
		}
	}
	return fmt.Sprintf("%.2f%s", ns/chosen.size, chosen.suffix)
}

// FormatBytes renders bytes using the B/KB/MB/GB/TB ladder, one decimal,
// threshold 1024.
func FormatBytes(bytes float64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	v := bytes
	idx := 0
	for v >= 1024 && idx < len(units)-1 {
		v /= 1024
		idx++
	}
	return fmt.Sprintf("%.1f%s", v, units[idx])
}

// FormatPercent renders a 0..10000 basis-point integer as "xx.yy%".
func FormatPercent(basisPoints int) string {
	return fmt.Sprintf("%.2f%%", float64(basisPoints)/100)
}
