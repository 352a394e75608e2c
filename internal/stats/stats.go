// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/tuivocab/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Accuracy returns the share of correct answers in [0, 1]. An empty round counts as 0.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// FormatElapsed renders a second count as HH:MM:SS.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	last := len(sparkChars) - 1
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[min(max(idx, 0), last)])
	}
	return b.String()
}

// sessionTime sums the final clock reading of every training session in rounds.
func sessionTime(rounds []model.RoundAggregate) (sessions, seconds int) {
	latest := map[string]int{}
	for _, r := range rounds {
		if v, ok := latest[r.SessionID]; !ok || r.ElapsedSeconds > v {
			latest[r.SessionID] = r.ElapsedSeconds
		}
	}
	for _, s := range latest {
		seconds += s
	}
	return len(latest), seconds
}

// RenderSummary prints a summary for graded rounds.
func RenderSummary(w io.Writer, rounds []model.RoundAggregate) error {
	if len(rounds) == 0 {
		_, err := fmt.Fprintln(w, "No rounds found.")
		return err
	}
	var correct, total int
	best := 0.0
	accs := make([]float64, len(rounds))
	for i, r := range rounds {
		correct += r.Correct
		total += r.Total
		accs[i] = Accuracy(r.Correct, r.Total) * 100
		best = math.Max(best, accs[i])
	}
	sessions, seconds := sessionTime(rounds)

	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", sessions),
		fmt.Sprintf("Rounds: %d", len(rounds)),
		fmt.Sprintf("Words graded: %d", total),
		fmt.Sprintf("Accuracy: %.2f%%", Accuracy(correct, total)*100),
		fmt.Sprintf("Best round: %.2f%%", best),
		fmt.Sprintf("Training time: %s", FormatElapsed(seconds)),
		fmt.Sprintf("Trend: [%s]", Sparkline(accs)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurve prints the accuracy curve with its moving average.
func RenderCurve(w io.Writer, rounds []model.RoundAggregate, window, totalWidth, height int, useColor bool) error {
	if len(rounds) == 0 {
		return nil
	}
	accs := make([]float64, len(rounds))
	for i, r := range rounds {
		accs[i] = Accuracy(r.Correct, r.Total) * 100
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotPercent(w, "Accuracy per Round", []Series{
		{Name: "Round", Values: accs},
		{Name: fmt.Sprintf("Average of %d", max(window, 1)), Values: MovingAverage(accs, window)},
	}, width, height, useColor)
}

// MaxTermWidth caps the term column so long phrases do not push the counts off screen.
const MaxTermWidth = 24

// RenderTermTable prints the hardest terms first.
func RenderTermTable(w io.Writer, title string, aggs []model.TermAggregate, top int) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No term stats found.")
		return err
	}
	rows := HardestTerms(aggs, top)
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	headers := []string{"Term", "Accuracy", "Correct", "Missed"}
	tableRows := make([][]string, 0, len(rows))
	for _, agg := range rows {
		tableRows = append(tableRows, []string{
			truncateCell(agg.Term, MaxTermWidth),
			fmt.Sprintf("%.2f%%", termAccuracy(agg)*100),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		})
	}
	for _, line := range formatTable(headers, tableRows, map[int]bool{1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// HardestTerms orders terms by lowest accuracy, then most misses, and keeps the first n.
// A non-positive n keeps all terms.
func HardestTerms(aggs []model.TermAggregate, n int) []model.TermAggregate {
	out := make([]model.TermAggregate, len(aggs))
	copy(out, aggs)
	sort.Slice(out, func(i, j int) bool {
		ai, aj := termAccuracy(out[i]), termAccuracy(out[j])
		if ai != aj {
			return ai < aj
		}
		if out[i].Incorrect != out[j].Incorrect {
			return out[i].Incorrect > out[j].Incorrect
		}
		return out[i].Term < out[j].Term
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

func termAccuracy(agg model.TermAggregate) float64 {
	return Accuracy(agg.Correct, agg.Correct+agg.Incorrect)
}
