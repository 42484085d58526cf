package models

import "strings"

// Question types supported by the session engine.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
)

// Canonical choice ids for true/false questions.
const (
	ChoiceTrue  = "true"
	ChoiceFalse = "false"
)

type Choice struct {
	ID   string `bson:"id" json:"id"`
	Text string `bson:"text" json:"text"`
}

// QuestionItem is one entry of the reference pool. Items are immutable once
// handed to a session; the engine only ever reads them.
type QuestionItem struct {
	ID              string   `bson:"_id,omitempty" json:"id"`
	Subject         string   `bson:"subject" json:"subject"`
	Topic           string   `bson:"topic" json:"topic"`
	Type            string   `bson:"type" json:"type"`
	Stem            string   `bson:"stem" json:"stem"`
	Choices         []Choice `bson:"choices" json:"choices"`
	CorrectAnswer   string   `bson:"correct_answer" json:"correct_answer"`
	AcceptedAnswers []string `bson:"accepted_answers,omitempty" json:"accepted_answers,omitempty"`
	Explanation     string   `bson:"explanation" json:"explanation"`
	Hint            string   `bson:"hint" json:"hint"`
	Difficulty      int      `bson:"difficulty" json:"difficulty"`
	Status          string   `bson:"status,omitempty" json:"status,omitempty"`
}

// NormalizeChoices fills in the canonical true/false pair when a true_false
// question carries no explicit choice list, so downstream code always sees a
// populated Choices slice regardless of question type.
func (q *QuestionItem) NormalizeChoices() {
	if q.Type == TypeTrueFalse && len(q.Choices) == 0 {
		q.Choices = []Choice{
			{ID: ChoiceTrue, Text: "True"},
			{ID: ChoiceFalse, Text: "False"},
		}
	}
}

// HasChoice reports whether id names one of the question's choices.
func (q *QuestionItem) HasChoice(id string) bool {
	for _, c := range q.Choices {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Accepts reports whether choiceID is a correct answer. A question may carry
// either a single correct id or a set of accepted ids; when the set is
// present it takes precedence.
func (q *QuestionItem) Accepts(choiceID string) bool {
	if len(q.AcceptedAnswers) > 0 {
		for _, id := range q.AcceptedAnswers {
			if id == choiceID {
				return true
			}
		}
		return false
	}
	return choiceID == q.CorrectAnswer
}

// HasHint reports whether the question has hint text to offer.
func (q *QuestionItem) HasHint() bool {
	return strings.TrimSpace(q.Hint) != ""
}

// Valid checks the pool invariant: the correct answer (and every accepted
// answer) must reference an id present in the normalized choice list.
func (q *QuestionItem) Valid() bool {
	q.NormalizeChoices()
	if len(q.Choices) == 0 {
		return false
	}
	if len(q.AcceptedAnswers) > 0 {
		for _, id := range q.AcceptedAnswers {
			if !q.HasChoice(id) {
				return false
			}
		}
		return true
	}
	return q.HasChoice(q.CorrectAnswer)
}
