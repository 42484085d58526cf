package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"quest-quiz-service/internal/models"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCacheTTL = 30 * time.Minute

// SessionRepository persists session snapshots in mongo with an optional
// redis read-through cache for the hot status path. Cache may be nil.
type SessionRepository struct {
	Col   *mongo.Collection
	Cache *redis.Client
}

func NewSessionRepository(db *mongo.Database, cache *redis.Client) *SessionRepository {
	return &SessionRepository{Col: db.Collection("sessions"), Cache: cache}
}

// Save upserts the snapshot and refreshes the cache entry.
func (r *SessionRepository) Save(ctx context.Context, session *models.QuizSession) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.Col.ReplaceOne(ctx, bson.M{"_id": session.ID}, session, opts)
	if err != nil {
		return err
	}
	r.cacheSet(ctx, session)
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.QuizSession, error) {
	if session := r.cacheGet(ctx, id); session != nil {
		return session, nil
	}

	var session models.QuizSession
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&session); err != nil {
		return nil, err
	}
	r.cacheSet(ctx, &session)
	return &session, nil
}

// FindByUser lists a learner's sessions, newest first.
func (r *SessionRepository) FindByUser(ctx context.Context, userID string, limit int64) ([]models.QuizSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: -1}}).SetLimit(limit)
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var sessions []models.QuizSession
	for cur.Next(ctx) {
		var s models.QuizSession
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, cur.Err()
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if r.Cache != nil {
		r.Cache.Del(ctx, sessionCacheKey(id))
	}
	_, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func sessionCacheKey(id string) string {
	return "quest:session:" + id
}

func (r *SessionRepository) cacheGet(ctx context.Context, id string) *models.QuizSession {
	if r.Cache == nil {
		return nil
	}
	data, err := r.Cache.Get(ctx, sessionCacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Session cache read failed: %v", err)
		}
		return nil
	}
	var session models.QuizSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil
	}
	return &session
}

func (r *SessionRepository) cacheSet(ctx context.Context, session *models.QuizSession) {
	if r.Cache == nil {
		return
	}
	data, err := json.Marshal(session)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, sessionCacheKey(session.ID), data, sessionCacheTTL).Err(); err != nil {
		log.Printf("Session cache write failed: %v", err)
	}
}
