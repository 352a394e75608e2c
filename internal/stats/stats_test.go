package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/tuivocab/internal/model"
)

func TestFormatElapsed(t *testing.T) {
	cases := map[int]string{
		0:     "00:00:00",
		59:    "00:00:59",
		61:    "00:01:01",
		3600:  "01:00:00",
		86399: "23:59:59",
		-4:    "00:00:00",
	}
	for in, want := range cases {
		if got := FormatElapsed(in); got != want {
			t.Fatalf("FormatElapsed(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if out := MovingAverage([]float64{1, 2}, 0); out[1] != 2 {
		t.Fatalf("expected copy for window 0, got %v", out)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 100}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{5, 5, 5}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
}

func TestHardestTerms(t *testing.T) {
	aggs := []model.TermAggregate{
		{Term: "cat", Correct: 3, Incorrect: 1},
		{Term: "dog", Correct: 0, Incorrect: 2},
		{Term: "owl", Correct: 0, Incorrect: 5},
		{Term: "eel", Correct: 1, Incorrect: 0},
	}
	top := HardestTerms(aggs, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(top))
	}
	if top[0].Term != "owl" || top[1].Term != "dog" || top[2].Term != "cat" {
		t.Fatalf("unexpected order: %+v", top)
	}
	if aggs[0].Term != "cat" {
		t.Fatalf("input must not be reordered")
	}
}

func TestRenderSummary(t *testing.T) {
	rounds := []model.RoundAggregate{
		{SessionID: "a", ElapsedSeconds: 30, Correct: 1, Total: 2},
		{SessionID: "a", ElapsedSeconds: 90, Correct: 2, Total: 2},
		{SessionID: "b", ElapsedSeconds: 45, Correct: 0, Total: 1},
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, rounds); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Sessions: 2",
		"Rounds: 3",
		"Words graded: 5",
		"Accuracy: 60.00%",
		"Best round: 100.00%",
		"Training time: 00:02:15",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if !strings.Contains(buf.String(), "No rounds found.") {
		t.Fatalf("unexpected empty summary %q", buf.String())
	}
}

func TestRenderTermTableTruncatesLongTerms(t *testing.T) {
	long := "to take something with a grain of salt"
	aggs := []model.TermAggregate{
		{Term: long, Correct: 1, Incorrect: 3},
		{Term: "cat", Correct: 4},
	}
	var buf bytes.Buffer
	if err := RenderTermTable(&buf, "Hardest terms", aggs, 0); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, long) {
		t.Fatalf("expected long term to be truncated:\n%s", out)
	}
	if !strings.Contains(out, "to take something with …") {
		t.Fatalf("expected truncated term with ellipsis:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	if len(lines) < 3 || !strings.HasPrefix(lines[2], "to take") {
		t.Fatalf("expected hardest term first:\n%s", out)
	}
}
