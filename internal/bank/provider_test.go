package bank

import (
	"testing"

	"quest-quiz-service/internal/models"
)

func testPool() []models.QuestionItem {
	return []models.QuestionItem{
		{
			ID: "ref1", Subject: "Math", Topic: "Fractions", Type: models.TypeMultipleChoice,
			Choices:       []models.Choice{{ID: "a"}, {ID: "b"}},
			CorrectAnswer: "a", Difficulty: 1,
		},
		{
			ID: "ref2", Subject: "Math", Topic: "Decimals and Fractions", Type: models.TypeMultipleChoice,
			Choices:       []models.Choice{{ID: "a"}, {ID: "b"}},
			CorrectAnswer: "b", Difficulty: 3,
		},
		{
			ID: "ref3", Subject: "Math", Topic: "Geometry", Type: models.TypeTrueFalse,
			CorrectAnswer: models.ChoiceTrue, Difficulty: 5,
		},
		{
			ID: "ref4", Subject: "Science", Topic: "Biology", Type: models.TypeMultipleChoice,
			Choices:       []models.Choice{{ID: "a"}, {ID: "b"}},
			CorrectAnswer: "a", Difficulty: 2,
		},
		{
			// Broken item: correct answer not among choices. Must never be selected.
			ID: "bad1", Subject: "Math", Topic: "Fractions", Type: models.TypeMultipleChoice,
			Choices:       []models.Choice{{ID: "a"}},
			CorrectAnswer: "z", Difficulty: 1,
		},
	}
}

func ids(items []models.QuestionItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestSelectQuestions(t *testing.T) {
	provider := NewProvider(testPool())

	testCases := []struct {
		name              string
		subject, topic    string
		count, difficulty int
		expectedIDs       []string
	}{
		{
			// One matching item in the pool yields a one-item session.
			"subject topic and difficulty",
			"Math", "Fractions", 2, 1,
			[]string{"ref1"},
		},
		{
			"topic match is case-insensitive substring",
			"Math", "fract", 5, 3,
			[]string{"ref1", "ref2"},
		},
		{
			"difficulty ceiling excludes harder items",
			"Math", "", 5, 3,
			[]string{"ref1", "ref2"},
		},
		{
			"count truncates in pool order",
			"Math", "", 1, 5,
			[]string{"ref1"},
		},
		{
			// No item matches topic+difficulty, but the subject has items:
			// fall back to subject alone, dropping both constraints.
			"fallback to subject only",
			"Math", "Algebra", 5, 1,
			[]string{"ref1", "ref2", "ref3"},
		},
		{
			"unknown subject yields empty",
			"History", "", 5, 5,
			nil,
		},
		{
			"count larger than pool returns what is available",
			"Science", "", 10, 5,
			[]string{"ref4"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := provider.SelectQuestions(tc.subject, tc.topic, tc.count, tc.difficulty)
			if len(got) != len(tc.expectedIDs) {
				t.Fatalf("Expected %d items %v, got %d %v", len(tc.expectedIDs), tc.expectedIDs, len(got), ids(got))
			}
			for i, id := range tc.expectedIDs {
				if got[i].ID != id {
					t.Errorf("Item %d: expected %q, got %q", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestSelectQuestionsIsDeterministic(t *testing.T) {
	provider := NewProvider(testPool())

	first := provider.SelectQuestions("Math", "", 5, 5)
	for i := 0; i < 10; i++ {
		again := provider.SelectQuestions("Math", "", 5, 5)
		if len(again) != len(first) {
			t.Fatalf("Run %d: expected %d items, got %d", i, len(first), len(again))
		}
		for j := range first {
			if again[j].ID != first[j].ID {
				t.Fatalf("Run %d: ordering changed at %d: %q vs %q", i, j, first[j].ID, again[j].ID)
			}
		}
	}
}

func TestInvalidItemsAreDropped(t *testing.T) {
	provider := NewProvider(testPool())

	if provider.PoolSize() != 4 {
		t.Errorf("Expected 4 usable items, got %d", provider.PoolSize())
	}
	for _, item := range provider.SelectQuestions("Math", "Fractions", 10, 5) {
		if item.ID == "bad1" {
			t.Error("Item with dangling correct answer must not be selectable")
		}
	}
}

func TestTrueFalseItemsAreNormalized(t *testing.T) {
	provider := NewProvider(testPool())

	items := provider.SelectQuestions("Math", "Geometry", 1, 5)
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if len(items[0].Choices) != 2 {
		t.Fatalf("Expected canonical true/false pair, got %d choices", len(items[0].Choices))
	}
	if items[0].Choices[0].ID != models.ChoiceTrue || items[0].Choices[1].ID != models.ChoiceFalse {
		t.Errorf("Unexpected canonical choices: %+v", items[0].Choices)
	}
}

func TestDistribution(t *testing.T) {
	provider := NewProvider(testPool())

	counts := provider.Distribution("Math")
	if counts[1] != 1 || counts[3] != 1 || counts[5] != 1 {
		t.Errorf("Unexpected distribution: %v", counts)
	}
	if counts[2] != 0 {
		t.Errorf("Expected no difficulty-2 Math items, got %d", counts[2])
	}
}
