package report

import "testing"

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		ns   float64
		want string
	}{
		{500, "500.00ns"},
		{1500, "1.50µs"},
		{2_500_000, "2.50ms"},
		{3_000_000_000, "3.00s"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.ns); got != c.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", c.ns, got, c.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		b    float64
		want string
	}{
		{512, "512.0B"},
		{2048, "2.0KB"},
		{5 * 1024 * 1024, "5.0MB"},
	}
	for _, c := range cases {
		if got := FormatBytes(c.b); got != c.want {
			t.Errorf("FormatBytes(%v) = %q, want %q", c.b, got, c.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(100); got != "1.00%" {
		t.Errorf("FormatPercent(100) = %q, want 1.00%%", got)
	}
	if got := FormatPercent(10000); got != "100.00%" {
		t.Errorf("FormatPercent(10000) = %q, want 100.00%%", got)
	}
}
