package service

import (
	"context"
	"fmt"
	"strings"

	"quest-quiz-service/internal/models"
	"quest-quiz-service/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

type QuestionService struct {
	Repo *repository.QuestionRepository
}

func NewQuestionService(repo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{Repo: repo}
}

// ListQuestions returns the active pool, optionally narrowed to a subject.
func (s *QuestionService) ListQuestions(ctx context.Context, subject string) ([]models.QuestionItem, error) {
	items, err := s.Repo.FindActive(ctx)
	if err != nil || subject == "" {
		return items, err
	}
	filtered := make([]models.QuestionItem, 0, len(items))
	for _, item := range items {
		if strings.EqualFold(item.Subject, subject) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

func (s *QuestionService) GetQuestion(ctx context.Context, id string) (*models.QuestionItem, error) {
	return s.Repo.FindByID(ctx, id)
}

// CreateQuestion validates the pool invariant before the item becomes
// selectable: the correct answer must name a real choice.
func (s *QuestionService) CreateQuestion(ctx context.Context, question *models.QuestionItem) error {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	if !question.Valid() {
		return fmt.Errorf("question %s: correct answer does not reference a choice", question.ID)
	}
	return s.Repo.Create(ctx, question)
}

func (s *QuestionService) UpdateQuestion(ctx context.Context, id string, update bson.M) error {
	return s.Repo.Update(ctx, id, update)
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}
