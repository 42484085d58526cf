// Package verify implements answer verification. The verifier is a
// pluggable capability: the session engine only depends on the interface,
// and the shipped implementation is deterministic over the question data.
package verify

import (
	"context"

	"quest-quiz-service/internal/models"
)

// FallbackExplanation is returned when a question has no stored explanation.
// Verification never fails for a missing explanation.
const FallbackExplanation = "Answer reviewed."

// Verdict is the outcome of verifying one submitted choice.
type Verdict struct {
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation"`
}

// Verifier checks a submitted choice against a question. Implementations
// must be stateless and must not record anything; recording the verdict is
// the session controller's job.
type Verifier interface {
	Verify(ctx context.Context, question *models.QuestionItem, choiceID string) (Verdict, error)
}

// Local verifies answers directly against the question's correct-answer
// data. Deterministic per question, no side effects, never errors.
type Local struct{}

func NewLocal() Local {
	return Local{}
}

func (Local) Verify(_ context.Context, question *models.QuestionItem, choiceID string) (Verdict, error) {
	explanation := question.Explanation
	if explanation == "" {
		explanation = FallbackExplanation
	}
	return Verdict{
		IsCorrect:   question.Accepts(choiceID),
		Explanation: explanation,
	}, nil
}
