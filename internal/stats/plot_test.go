package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestPlotPercent(t *testing.T) {
	var buf bytes.Buffer
	err := PlotPercent(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{0, 50, 100, 50, 0}},
		{Name: "B", Values: []float64{100, 100}},
		{Name: "Empty"},
	}, 12, 4, false)
	if err != nil {
		t.Fatalf("PlotPercent failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Legend:") || strings.Contains(out, "Empty") {
		t.Fatalf("expected legend without empty series:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected title, 4 rows, legend; got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "100% | ") || !strings.HasPrefix(lines[4], "  0% | ") {
		t.Fatalf("unexpected axis labels: %q %q", lines[1], lines[4])
	}
	for _, row := range lines[1:5] {
		if got := runewidth.StringWidth(row); got != 7+12 {
			t.Fatalf("unexpected row width %d for %q", got, row)
		}
	}
}

func TestPlotPercentNothingToPlot(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotPercent(&buf, "Empty", nil, 10, 3, false); err != nil {
		t.Fatalf("PlotPercent failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := PlotWidthFor(80); got != 80-7 {
		t.Fatalf("expected width 73, got %d", got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestResample(t *testing.T) {
	if got := resample([]float64{1, 3}, 3); got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("unexpected stretch: %v", got)
	}
	if got := resample([]float64{1, 3, 5, 7}, 2); got[0] != 2 || got[1] != 6 {
		t.Fatalf("unexpected shrink: %v", got)
	}
	if got := resample(nil, 4); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}
