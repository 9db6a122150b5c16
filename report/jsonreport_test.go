package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/hotpath-go/hotpath"
	"github.com/hotpath-go/hotpath/internal/snapshot"
)

func TestJSONReporterHandlesNonFiniteFloats(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)
	negInf := math.Inf(-1)

	view := hotpath.MetricsView{
		Timing: snapshot.FunctionsSnapshot{
			Percentiles: []float64{nan},
			Data: map[string][]snapshot.FunctionRow{
				"foo": {{
					Name:        "foo",
					Calls:       0,
					Avg:         &nan,
					Percentiles: []*float64{&inf, &negInf},
					Total:       &inf,
				}},
			},
		},
	}

	var buf bytes.Buffer
	r := &JSONReporter{Out: &buf}
	if err := r.Report(view); err != nil {
		t.Fatalf("Report returned an error instead of sanitizing non-finite floats: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"NaN"`, `"Infinity"`, `"-Infinity"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %s, got: %s", want, out)
		}
	}
}

func TestPrettyJSONReporterHandlesNonFiniteFloats(t *testing.T) {
	nan := math.NaN()
	view := hotpath.MetricsView{
		Alloc: snapshot.FunctionsSnapshot{
			Data: map[string][]snapshot.FunctionRow{
				"foo": {{Name: "foo", Avg: &nan}},
			},
		},
	}

	var buf bytes.Buffer
	r := &PrettyJSONReporter{Out: &buf}
	if err := r.Report(view); err != nil {
		t.Fatalf("Report returned an error instead of sanitizing non-finite floats: %v", err)
	}
	if !strings.Contains(buf.String(), `"NaN"`) {
		t.Errorf("expected pretty output to contain \"NaN\", got: %s", buf.String())
	}
}
