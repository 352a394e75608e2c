// Package grader scores submitted answers against a batch.
package grader

import "github.com/verte-zerg/tuivocab/internal/model"

// Score counts exact, case-sensitive matches between answers and definitions.
// A term without an answer counts as incorrect.
func Score(batch []model.WordPair, answers map[string]string) model.Score {
	score := model.Score{Total: len(batch)}
	for _, pair := range batch {
		if isCorrect(pair, answers) {
			score.Correct++
		}
	}
	return score
}

// Outcomes returns the per-term verdicts for a batch in batch order.
func Outcomes(batch []model.WordPair, answers map[string]string) []model.TermOutcome {
	out := make([]model.TermOutcome, 0, len(batch))
	for _, pair := range batch {
		out = append(out, model.TermOutcome{Term: pair.Term, Correct: isCorrect(pair, answers)})
	}
	return out
}

func isCorrect(pair model.WordPair, answers map[string]string) bool {
	answer, ok := answers[pair.Term]
	return ok && answer == pair.Definition
}
