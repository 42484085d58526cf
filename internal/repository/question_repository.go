package repository

import (
	"context"

	"quest-quiz-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type QuestionRepository struct {
	Col *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{Col: db.Collection("questions")}
}

// FindActive returns every non-deleted pool item in stable id order. The
// stable order is what makes bank selection reproducible across calls.
func (r *QuestionRepository) FindActive(ctx context.Context) ([]models.QuestionItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.Col.Find(ctx, bson.M{"status": bson.M{"$ne": "deleted"}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []models.QuestionItem
	for cur.Next(ctx) {
		var q models.QuestionItem
		if err := cur.Decode(&q); err != nil {
			return nil, err
		}
		items = append(items, q)
	}
	return items, cur.Err()
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.QuestionItem, error) {
	var question models.QuestionItem
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepository) Create(ctx context.Context, question *models.QuestionItem) error {
	_, err := r.Col.InsertOne(ctx, question)
	return err
}

func (r *QuestionRepository) Update(ctx context.Context, id string, update bson.M) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

// Delete soft-deletes so already-running sessions keep their frozen items.
func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": "deleted"}})
	return err
}
