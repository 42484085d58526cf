package bank

import (
	"context"
	"fmt"

	"quest-quiz-service/internal/repository"
)

// PoolSource loads the reference pool from storage and wraps it in a
// Provider. The pool is re-read per session start so freshly authored
// questions become selectable without a restart, while the provider handed
// to a session stays frozen for that attempt.
type PoolSource struct {
	Questions *repository.QuestionRepository
}

func NewPoolSource(questions *repository.QuestionRepository) *PoolSource {
	return &PoolSource{Questions: questions}
}

// LoadProvider fetches all active pool items in stable (id) order.
func (s *PoolSource) LoadProvider(ctx context.Context) (*Provider, error) {
	items, err := s.Questions.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}
	return NewProvider(items), nil
}
