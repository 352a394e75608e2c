package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuivocab/internal/model"
)

// reviewItem is one graded term shown after a batch is submitted.
type reviewItem struct {
	pair    model.WordPair
	answer  string
	correct bool
}

func buildReview(pairs []model.WordPair, answers map[string]string, outcomes []model.TermOutcome) []reviewItem {
	verdicts := make(map[string]bool, len(outcomes))
	for _, o := range outcomes {
		verdicts[o.Term] = o.Correct
	}
	items := make([]reviewItem, 0, len(pairs))
	for _, p := range pairs {
		items = append(items, reviewItem{
			pair:    p,
			answer:  answers[p.Term],
			correct: verdicts[p.Term],
		})
	}
	return items
}

// renderReview lists each term with its verdict. Wrong answers also show the expected definition.
func renderReview(items []reviewItem, width int) string {
	var lines []string
	for _, item := range items {
		mark, style := "✓", correctStyle
		text := item.pair.Term + ": " + item.answer
		if !item.correct {
			mark, style = "✗", incorrectStyle
			answer := item.answer
			if answer == "" {
				answer = "(blank)"
			}
			text = item.pair.Term + ": " + answer + " → " + item.pair.Definition
		}
		for i, line := range wrapText(text, width-2) {
			prefix := "  "
			if i == 0 {
				prefix = mark + " "
			}
			lines = append(lines, style.Render(prefix+line))
		}
	}
	return strings.Join(lines, "\n")
}

// wrapText breaks s into lines no wider than width terminal cells, preferring
// to break at spaces and splitting words that do not fit on their own.
func wrapText(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}
	var lines []string
	var line []rune
	lineWidth := 0
	lastSpace := -1
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		rw := runewidth.RuneWidth(r)
		if lineWidth+rw > width && len(line) > 0 {
			if lastSpace > 0 {
				lines = append(lines, string(line[:lastSpace]))
				line = append([]rune{}, line[lastSpace+1:]...)
			} else {
				lines = append(lines, string(line))
				line = nil
			}
			lineWidth = runewidth.StringWidth(string(line))
			lastSpace = lastSpaceIndex(line)
			continue
		}
		line = append(line, r)
		lineWidth += rw
		if r == ' ' {
			lastSpace = len(line) - 1
		}
		i++
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}

func lastSpaceIndex(line []rune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i] == ' ' {
			return i
		}
	}
	return -1
}
