package snapshot

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBasisPoints(t *testing.T) {
	tests := map[string]struct {
		part, whole float64
		want        int
	}{
		"half":        {part: 1, whole: 2, want: 5000},
		"all":         {part: 2, whole: 2, want: 10000},
		"none":        {part: 0, whole: 2, want: 0},
		"zero whole":  {part: 5, whole: 0, want: 0},
		"negative":    {part: -1, whole: 2, want: 0},
		"rounds down": {part: 1, whole: 3, want: 3333},
		"rounds up":   {part: 2, whole: 3, want: 6667},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := BasisPoints(tt.part, tt.whole)
			if got != tt.want {
				t.Fatalf("BasisPoints(%v, %v) = %d, want %d", tt.part, tt.whole, got, tt.want)
			}
		})
	}
}

func TestFunctionRowShapeIsStable(t *testing.T) {
	avg := 1.5
	total := 10.0
	pct := 100
	want := FunctionRow{
		Name:        "foo",
		Calls:       4,
		Avg:         &avg,
		Percentiles: []*float64{&avg, &total},
		Total:       &total,
		PercentTotal: &pct,
	}
	got := FunctionRow{
		Name:        "foo",
		Calls:       4,
		Avg:         &avg,
		Percentiles: []*float64{&avg, &total},
		Total:       &total,
		PercentTotal: &pct,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("FunctionRow mismatch (-want +got):\n%s", diff)
	}
}
