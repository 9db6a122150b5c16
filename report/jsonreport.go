package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joeycumines/go-utilpkg/jsonenc"

	"github.com/hotpath-go/hotpath"
	"github.com/hotpath-go/hotpath/internal/snapshot"
)

// safeFloat64 marshals through jsonenc's finite/NaN/Inf-aware float
// appender instead of encoding/json's, which rejects a non-finite float64
// outright (json: unsupported value: NaN) rather than emitting something a
// reader can still parse. Matches jsonenc's own convention: quoted "NaN"/
// "Infinity"/"-Infinity" for non-finite values, a plain JSON number
// otherwise.
type safeFloat64 float64

func (f safeFloat64) MarshalJSON() ([]byte, error) {
	return jsonenc.AppendFloat64(nil, float64(f)), nil
}

func safeFloatPtr(f *float64) *safeFloat64 {
	if f == nil {
		return nil
	}
	sf := safeFloat64(*f)
	return &sf
}

// wireFunctionRow mirrors snapshot.FunctionRow with its float fields routed
// through safeFloat64 so Avg/Percentiles/Total can never fail to marshal.
type wireFunctionRow struct {
	Name         string         `json:"name"`
	Calls        uint64         `json:"calls"`
	Avg          *safeFloat64   `json:"avg"`
	Percentiles  []*safeFloat64 `json:"percentiles"`
	Total        *safeFloat64   `json:"total"`
	PercentTotal *int           `json:"percent_total"`
	Unsupported  bool           `json:"unsupported,omitempty"`
	CrossThread  bool           `json:"cross_thread,omitempty"`
	Wrapper      bool           `json:"wrapper,omitempty"`
}

// wireFunctionsSnapshot mirrors snapshot.FunctionsSnapshot, the only
// snapshot shape carrying floats (timing averages/percentiles, allocation
// averages/percentiles); the channel/stream/future shapes are all-integer
// and pass through encoding/json unmodified.
type wireFunctionsSnapshot struct {
	ProfilingMode  string                       `json:"profiling_mode"`
	TotalElapsedNs int64                        `json:"total_elapsed_ns"`
	Description    string                       `json:"description"`
	CallerName     string                       `json:"caller_name"`
	Percentiles    []safeFloat64                `json:"percentiles"`
	Data           map[string][]wireFunctionRow `json:"data"`
}

func toWireFunctionsSnapshot(s snapshot.FunctionsSnapshot) wireFunctionsSnapshot {
	percentiles := make([]safeFloat64, len(s.Percentiles))
	for i, p := range s.Percentiles {
		percentiles[i] = safeFloat64(p)
	}

	data := make(map[string][]wireFunctionRow, len(s.Data))
	for name, rows := range s.Data {
		wireRows := make([]wireFunctionRow, len(rows))
		for i, row := range rows {
			wirePercentiles := make([]*safeFloat64, len(row.Percentiles))
			for j, p := range row.Percentiles {
				wirePercentiles[j] = safeFloatPtr(p)
			}
			wireRows[i] = wireFunctionRow{
				Name:         row.Name,
				Calls:        row.Calls,
				Avg:          safeFloatPtr(row.Avg),
				Percentiles:  wirePercentiles,
				Total:        safeFloatPtr(row.Total),
				PercentTotal: row.PercentTotal,
				Unsupported:  row.Unsupported,
				CrossThread:  row.CrossThread,
				Wrapper:      row.Wrapper,
			}
		}
		data[name] = wireRows
	}

	return wireFunctionsSnapshot{
		ProfilingMode:  s.ProfilingMode,
		TotalElapsedNs: s.TotalElapsedNs,
		Description:    s.Description,
		CallerName:     s.CallerName,
		Percentiles:    percentiles,
		Data:           data,
	}
}

// wireView is the JSON document shape for both JSONReporter and
// PrettyJSONReporter: structurally identical to the snapshot types each
// provider returns, except Timing/Alloc route their floats through
// safeFloat64.
type wireView struct {
	Timing   wireFunctionsSnapshot `json:"timing"`
	Alloc    wireFunctionsSnapshot `json:"alloc"`
	Channels any                   `json:"channels,omitempty"`
	Streams  any                   `json:"streams,omitempty"`
	Futures  any                   `json:"futures,omitempty"`
}

func toWireView(view hotpath.MetricsView) wireView {
	return wireView{
		Timing:   toWireFunctionsSnapshot(view.Timing),
		Alloc:    toWireFunctionsSnapshot(view.Alloc),
		Channels: view.Channels,
		Streams:  view.Streams,
		Futures:  view.Futures,
	}
}

// JSONReporter emits a single compact JSON document.
type JSONReporter struct {
	Out io.Writer
}

func NewJSONReporter() *JSONReporter { return &JSONReporter{Out: os.Stdout} }

func (r *JSONReporter) Report(view hotpath.MetricsView) error {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	b, err := json.Marshal(toWireView(view))
	if err != nil {
		return fmt.Errorf("hotpath/report: marshal json: %w", err)
	}
	_, err = out.Write(append(b, '\n'))
	return err
}

// PrettyJSONReporter emits the same document, indented.
type PrettyJSONReporter struct {
	Out io.Writer
}

func NewPrettyJSONReporter() *PrettyJSONReporter { return &PrettyJSONReporter{Out: os.Stdout} }

func (r *PrettyJSONReporter) Report(view hotpath.MetricsView) error {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	b, err := json.MarshalIndent(toWireView(view), "", "  ")
	if err != nil {
		return fmt.Errorf("hotpath/report: marshal json: %w", err)
	}
	_, err = out.Write(append(b, '\n'))
	return err
}
