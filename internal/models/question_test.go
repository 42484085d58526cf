package models

import (
	"testing"
)

func TestNormalizeChoices(t *testing.T) {
	testCases := []struct {
		name            string
		question        QuestionItem
		expectedChoices []string
	}{
		{
			"true_false without explicit choices gets canonical pair",
			QuestionItem{ID: "q1", Type: TypeTrueFalse},
			[]string{ChoiceTrue, ChoiceFalse},
		},
		{
			"true_false with explicit choices keeps them",
			QuestionItem{ID: "q2", Type: TypeTrueFalse, Choices: []Choice{{ID: "yes"}, {ID: "no"}}},
			[]string{"yes", "no"},
		},
		{
			"multiple_choice is untouched",
			QuestionItem{ID: "q3", Type: TypeMultipleChoice, Choices: []Choice{{ID: "a"}, {ID: "b"}, {ID: "c"}}},
			[]string{"a", "b", "c"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.question.NormalizeChoices()

			if len(tc.question.Choices) != len(tc.expectedChoices) {
				t.Fatalf("Expected %d choices, got %d", len(tc.expectedChoices), len(tc.question.Choices))
			}
			for i, id := range tc.expectedChoices {
				if tc.question.Choices[i].ID != id {
					t.Errorf("Choice %d: expected id %q, got %q", i, id, tc.question.Choices[i].ID)
				}
			}
		})
	}
}

func TestAccepts(t *testing.T) {
	single := QuestionItem{
		Type:          TypeMultipleChoice,
		Choices:       []Choice{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		CorrectAnswer: "b",
	}
	if !single.Accepts("b") {
		t.Error("Expected single correct answer to be accepted")
	}
	if single.Accepts("a") {
		t.Error("Expected wrong choice to be rejected")
	}

	set := QuestionItem{
		Type:            TypeMultipleChoice,
		Choices:         []Choice{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		CorrectAnswer:   "a",
		AcceptedAnswers: []string{"b", "c"},
	}
	if !set.Accepts("b") || !set.Accepts("c") {
		t.Error("Expected members of the accepted set to be accepted")
	}
	// The set takes precedence over the single id when both are present.
	if set.Accepts("a") {
		t.Error("Expected non-member to be rejected even when it matches the single id")
	}
}

func TestValid(t *testing.T) {
	testCases := []struct {
		name     string
		question QuestionItem
		valid    bool
	}{
		{
			"correct answer references existing choice",
			QuestionItem{Type: TypeMultipleChoice, Choices: []Choice{{ID: "a"}, {ID: "b"}}, CorrectAnswer: "a"},
			true,
		},
		{
			"correct answer references missing choice",
			QuestionItem{Type: TypeMultipleChoice, Choices: []Choice{{ID: "a"}, {ID: "b"}}, CorrectAnswer: "z"},
			false,
		},
		{
			"true_false accepts canonical ids without explicit choices",
			QuestionItem{Type: TypeTrueFalse, CorrectAnswer: ChoiceTrue},
			true,
		},
		{
			"multiple_choice without choices is invalid",
			QuestionItem{Type: TypeMultipleChoice, CorrectAnswer: "a"},
			false,
		},
		{
			"accepted set member missing from choices is invalid",
			QuestionItem{Type: TypeMultipleChoice, Choices: []Choice{{ID: "a"}}, AcceptedAnswers: []string{"a", "b"}},
			false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.question.Valid(); got != tc.valid {
				t.Errorf("Valid() = %v, expected %v", got, tc.valid)
			}
		})
	}
}

func TestTotalTimeSeconds(t *testing.T) {
	testCases := []struct {
		name     string
		config   SessionConfig
		expected int
	}{
		{"untimed is zero", SessionConfig{QuestionCount: 5}, 0},
		{"five questions", SessionConfig{QuestionCount: 5, TimedModeEnabled: true}, 150},
		{"floor of thirty seconds", SessionConfig{QuestionCount: 0, TimedModeEnabled: true}, 30},
		{"single question still gets thirty", SessionConfig{QuestionCount: 1, TimedModeEnabled: true}, 30},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.config.TotalTimeSeconds(); got != tc.expected {
				t.Errorf("TotalTimeSeconds() = %d, expected %d", got, tc.expected)
			}
		})
	}
}

func TestConfigNormalize(t *testing.T) {
	cfg := SessionConfig{QuestionCount: 40, DifficultyCeiling: 9}
	cfg.Normalize()
	if cfg.QuestionCount != MaxQuestionCount {
		t.Errorf("Expected question count clamped to %d, got %d", MaxQuestionCount, cfg.QuestionCount)
	}
	if cfg.DifficultyCeiling != MaxDifficulty {
		t.Errorf("Expected difficulty clamped to %d, got %d", MaxDifficulty, cfg.DifficultyCeiling)
	}

	zero := SessionConfig{}
	zero.Normalize()
	if zero.QuestionCount != DefaultQuestionCount {
		t.Errorf("Expected default question count %d, got %d", DefaultQuestionCount, zero.QuestionCount)
	}
	if zero.DifficultyCeiling != MaxDifficulty {
		t.Errorf("Expected default difficulty %d, got %d", MaxDifficulty, zero.DifficultyCeiling)
	}
}
