package scoring

import (
	"math"
	"testing"

	"quest-quiz-service/internal/models"
)

func items(ids ...string) []models.QuestionItem {
	out := make([]models.QuestionItem, len(ids))
	for i, id := range ids {
		out[i] = models.QuestionItem{ID: id}
	}
	return out
}

func answer(questionID string, correct, usedHint bool) models.AnswerRecord {
	chosen := "x"
	return models.AnswerRecord{
		QuestionID: questionID,
		ChosenID:   &chosen,
		IsCorrect:  &correct,
		UsedHint:   usedHint,
	}
}

func TestScore(t *testing.T) {
	testCases := []struct {
		name            string
		items           []models.QuestionItem
		answers         map[string]models.AnswerRecord
		expectedTotal   float64
		expectedMax     int
		expectedPercent int
	}{
		{
			"all correct without hints",
			items("q1", "q2"),
			map[string]models.AnswerRecord{
				"q1": answer("q1", true, false),
				"q2": answer("q2", true, false),
			},
			2, 2, 100,
		},
		{
			"single correct answer",
			items("q1"),
			map[string]models.AnswerRecord{"q1": answer("q1", true, false)},
			1, 1, 100,
		},
		{
			// Partial credit: a hinted correct answer is worth exactly 0.5.
			"hinted correct answer",
			items("q1"),
			map[string]models.AnswerRecord{"q1": answer("q1", true, true)},
			0.5, 1, 50,
		},
		{
			"unanswered questions score zero",
			items("q1", "q2", "q3"),
			map[string]models.AnswerRecord{"q1": answer("q1", true, false)},
			1, 3, 33,
		},
		{
			"incorrect answers score zero even with hint",
			items("q1"),
			map[string]models.AnswerRecord{"q1": answer("q1", false, true)},
			0, 1, 0,
		},
		{
			"hint requested but never answered scores zero",
			items("q1"),
			map[string]models.AnswerRecord{
				"q1": {QuestionID: "q1", UsedHint: true},
			},
			0, 1, 0,
		},
		{
			"mixed contributions round the percent",
			items("q1", "q2", "q3"),
			map[string]models.AnswerRecord{
				"q1": answer("q1", true, false),
				"q2": answer("q2", true, true),
				"q3": answer("q3", false, false),
			},
			1.5, 3, 50,
		},
		{
			"no items",
			nil,
			nil,
			0, 0, 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Score(tc.items, tc.answers)

			if math.Abs(result.Total-tc.expectedTotal) > 0.001 {
				t.Errorf("Total = %.2f, expected %.2f", result.Total, tc.expectedTotal)
			}
			if result.Max != tc.expectedMax {
				t.Errorf("Max = %d, expected %d", result.Max, tc.expectedMax)
			}
			if result.Percent != tc.expectedPercent {
				t.Errorf("Percent = %d, expected %d", result.Percent, tc.expectedPercent)
			}

			// Bounds hold for every case.
			if result.Total < 0 || result.Total > float64(result.Max) {
				t.Errorf("Total %.2f outside [0, %d]", result.Total, result.Max)
			}
			if result.Percent < 0 || result.Percent > 100 {
				t.Errorf("Percent %d outside [0, 100]", result.Percent)
			}
		})
	}
}
