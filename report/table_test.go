package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hotpath-go/hotpath"
	"github.com/hotpath-go/hotpath/internal/snapshot"
)

func TestTableReporterRendersRows(t *testing.T) {
	var buf bytes.Buffer
	r := &TableReporter{Out: &buf}

	avg := 123.0
	total := 456.0
	pct := 5000
	view := hotpath.MetricsView{
		Timing: snapshot.FunctionsSnapshot{
			Data: map[string][]snapshot.FunctionRow{
				"foo": {{Name: "foo", Calls: 3, Avg: &avg, Total: &total, PercentTotal: &pct}},
			},
		},
		Alloc: snapshot.FunctionsSnapshot{},
	}

	if err := r.Report(view); err != nil {
		t.Fatalf("Report: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "foo") {
		t.Errorf("expected output to contain function name, got: %s", out)
	}
	if !strings.Contains(out, "Timing") {
		t.Errorf("expected output to contain section header, got: %s", out)
	}
}

func TestJSONReporterRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	r := &JSONReporter{Out: &buf}
	if err := r.Report(hotpath.MetricsView{}); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !strings.Contains(buf.String(), `"timing"`) {
		t.Errorf("expected compact json output, got: %s", buf.String())
	}
}
