package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/hotpath-go/hotpath"
	"github.com/hotpath-go/hotpath/internal/snapshot"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// ansi color codes, used only when coloring is enabled.
const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiCyan  = "\x1b[36m"
	ansiDim   = "\x1b[2m"
)

// TableReporter renders a human table for the timing and allocation
// snapshots, ANSI-coloured unless NO_COLOR is set or the destination isn't
// a terminal.
type TableReporter struct {
	Out io.Writer // defaults to a colorable stdout wrapper if nil
}

func NewTableReporter() *TableReporter {
	return &TableReporter{Out: colorable.NewColorableStdout()}
}

func (r *TableReporter) Report(view hotpath.MetricsView) error {
	out := r.Out
	if out == nil {
		out = colorable.NewColorableStdout()
	}
	color := shouldColor(out)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, header("Timing", color))
	writeFunctionTable(w, view.Timing, color, FormatDuration)

	fmt.Fprintln(w)
	fmt.Fprintln(w, header("Allocations", color))
	writeFunctionTable(w, view.Alloc, color, FormatBytes)

	return w.Flush()
}

func header(title string, color bool) string {
	if !color {
		return "== " + title + " =="
	}
	return ansiBold + ansiCyan + "== " + title + " ==" + ansiReset
}

func writeFunctionTable(w io.Writer, snap snapshot.FunctionsSnapshot, color bool, formatValue func(float64) string) {
	names := make([]string, 0, len(snap.Data))
	for name := range snap.Data {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "NAME\tCALLS\tAVG\tTOTAL\t%%\n")
	for _, name := range names {
		for _, row := range snap.Data[name] {
			avg := "-"
			total := "-"
			pct := "-"
			if row.Avg != nil {
				avg = formatValue(*row.Avg)
			}
			if row.Total != nil {
				total = formatValue(*row.Total)
			}
			if row.PercentTotal != nil {
				pct = FormatPercent(*row.PercentTotal)
			}
			label := name
			if row.Unsupported && color {
				label = ansiDim + name + " (unsupported)" + ansiReset
			} else if row.Unsupported {
				label = name + " (unsupported)"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", label, row.Calls, avg, total, pct)
		}
	}
}

func shouldColor(out io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, ok := out.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
