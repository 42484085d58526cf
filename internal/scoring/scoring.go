// Package scoring implements the scoring calculator for finished sessions.
package scoring

import (
	"math"

	"quest-quiz-service/internal/models"
)

// Per-question contributions.
const (
	FullCredit   = 1.0
	HintedCredit = 0.5
)

// Result is the derived score for one session. Computed once when a session
// enters summary; never recomputed afterward.
type Result struct {
	Total   float64 `json:"total"`
	Max     int     `json:"max"`
	Percent int     `json:"percent"`
}

// Score derives the session score from the recorded answers. Each item
// contributes 1 for an unhinted correct answer, 0.5 for a hinted correct
// answer, and 0 otherwise (including unanswered items).
func Score(items []models.QuestionItem, answers map[string]models.AnswerRecord) Result {
	result := Result{Max: len(items)}

	for _, item := range items {
		record, ok := answers[item.ID]
		if !ok || record.IsCorrect == nil || !*record.IsCorrect {
			continue
		}
		if record.UsedHint {
			result.Total += HintedCredit
		} else {
			result.Total += FullCredit
		}
	}

	if result.Max > 0 {
		result.Percent = int(math.Round(result.Total / float64(result.Max) * 100))
	}
	return result
}
