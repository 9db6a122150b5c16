package functions

import (
	"sort"

	"github.com/hotpath-go/hotpath/internal/snapshot"
)

// LogFlavor selects which facet of a callRecord a log query surfaces as
// "value".
type LogFlavor int

const (
	FlavorTiming LogFlavor = iota
	FlavorAllocation
)

type allocQuery struct {
	description string
	callerName  string
	reply       chan snapshot.FunctionsSnapshot
}

type timingQuery struct {
	description string
	callerName  string
	realElapsedNs int64
	reply       chan snapshot.FunctionsSnapshot
}

type logsQuery struct {
	functionName string
	flavor       LogFlavor
	reply        chan snapshot.FunctionLogsSnapshot
}

func buildAllocSnapshot(stats map[string]*funcStats, exclusiveMode bool, totalElapsedNs int64, description, callerName string) snapshot.FunctionsSnapshot {
	rows := make([]*funcStats, 0, len(stats))
	for _, fs := range stats {
		if !fs.hasData {
			continue
		}
		// cross-thread wrapper rows are excluded from allocation reports:
		// their bytes are meaningless.
		if fs.wrapper && fs.crossThread {
			continue
		}
		rows = append(rows, fs)
	}

	sort.Slice(rows, func(i, j int) bool {
		bi, bj := rows[i].allocBytesHist.Sum(), rows[j].allocBytesHist.Sum()
		if bi != bj {
			return bi > bj
		}
		return rows[i].name < rows[j].name
	})

	denominator := allocDenominator(rows, exclusiveMode)

	out := make(map[string][]snapshot.FunctionRow, len(rows))
	for _, fs := range rows {
		out[fs.name] = []snapshot.FunctionRow{functionRowAlloc(fs, denominator)}
	}

	return snapshot.FunctionsSnapshot{
		ProfilingMode:  "allocation",
		TotalElapsedNs: totalElapsedNs,
		Description:    description,
		CallerName:     callerName,
		Percentiles:    snapshot.Percentiles,
		Data:           out,
	}
}

// allocDenominator implements the percentage rule: cumulative mode sums
// all reported rows; exclusive mode uses the wrapper's total (falling back
// to the row sum if the wrapper is absent or was itself excluded for
// being cross-thread).
func allocDenominator(rows []*funcStats, exclusiveMode bool) float64 {
	var sum float64
	var wrapperTotal float64
	var haveWrapper bool
	for _, fs := range rows {
		v := fs.allocBytesHist.Sum()
		sum += v
		if fs.wrapper {
			wrapperTotal = v
			haveWrapper = true
		}
	}
	if exclusiveMode && haveWrapper {
		return wrapperTotal
	}
	return sum
}

func buildTimingSnapshot(stats map[string]*funcStats, wrapperElapsedNs int64, realElapsedNs int64, description, callerName string) snapshot.FunctionsSnapshot {
	rows := make([]*funcStats, 0, len(stats))
	for _, fs := range stats {
		if fs.hasData {
			rows = append(rows, fs)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		ti, tj := rows[i].totalDurationNs, rows[j].totalDurationNs
		if ti != tj {
			return ti > tj
		}
		return rows[i].name < rows[j].name
	})

	denominator := float64(realElapsedNs)
	for _, fs := range rows {
		if fs.wrapper {
			denominator = float64(fs.totalDurationNs)
			break
		}
	}

	out := make(map[string][]snapshot.FunctionRow, len(rows))
	for _, fs := range rows {
		out[fs.name] = []snapshot.FunctionRow{functionRowTiming(fs, denominator)}
	}

	return snapshot.FunctionsSnapshot{
		ProfilingMode:  "timing",
		TotalElapsedNs: wrapperElapsedNs,
		Description:    description,
		CallerName:     callerName,
		Percentiles:    snapshot.Percentiles,
		Data:           out,
	}
}

func functionRowAlloc(fs *funcStats, denominator float64) snapshot.FunctionRow {
	row := snapshot.FunctionRow{
		Name:        fs.name,
		Calls:       fs.callCount,
		Wrapper:     fs.wrapper,
		CrossThread: fs.crossThread,
		Unsupported: fs.hasUnsupportedAsync,
	}
	if fs.hasUnsupportedAsync || fs.allocBytesHist.Count() == 0 {
		return row
	}
	total := fs.allocBytesHist.Sum()
	avg := total / float64(fs.allocBytesHist.Count())
	row.Avg = &avg
	row.Total = &total
	pct := snapshot.BasisPoints(total, denominator)
	row.PercentTotal = &pct
	row.Percentiles = percentileValues(fs.allocBytesHist)
	return row
}

func functionRowTiming(fs *funcStats, denominator float64) snapshot.FunctionRow {
	total := float64(fs.totalDurationNs)
	avg := total / float64(fs.callCount)
	pct := snapshot.BasisPoints(total, denominator)
	return snapshot.FunctionRow{
		Name:         fs.name,
		Calls:        fs.callCount,
		Avg:          &avg,
		Total:        &total,
		PercentTotal: &pct,
		Percentiles:  percentileValues(fs.durationHist),
		Wrapper:      fs.wrapper,
		CrossThread:  fs.crossThread,
		Unsupported:  fs.hasUnsupportedAsync,
	}
}

func percentileValues(h interface {
	ValueAtPercentile(float64) int64
}) []*float64 {
	out := make([]*float64, len(snapshot.Percentiles))
	for i, p := range snapshot.Percentiles {
		v := float64(h.ValueAtPercentile(p))
		out[i] = &v
	}
	return out
}

func buildLogsSnapshot(stats map[string]*funcStats, name string, flavor LogFlavor) snapshot.FunctionLogsSnapshot {
	fs, ok := stats[name]
	if !ok {
		return snapshot.FunctionLogsSnapshot{FunctionName: name}
	}
	entries := fs.recent.Slice()
	logs := make([]snapshot.FunctionLogEntry, len(entries))
	for i, rec := range entries {
		logs[i] = functionLogEntry(rec, flavor)
	}
	return snapshot.FunctionLogsSnapshot{
		FunctionName: name,
		Count:        fs.callCount,
		Logs:         logs,
	}
}

func functionLogEntry(rec callRecord, flavor LogFlavor) snapshot.FunctionLogEntry {
	e := snapshot.FunctionLogEntry{
		ElapsedNs: rec.elapsedNs,
		Tid:       rec.threadID,
		Result:    rec.result,
	}
	if rec.unsupported {
		return e
	}
	switch flavor {
	case FlavorTiming:
		v := float64(rec.durationNs)
		e.Value = &v
	case FlavorAllocation:
		v := float64(rec.bytes)
		e.Value = &v
		c := rec.allocCount
		e.AllocCount = &c
	}
	return e
}
