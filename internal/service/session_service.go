package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"quest-quiz-service/internal/bank"
	"quest-quiz-service/internal/engine"
	"quest-quiz-service/internal/models"
	"quest-quiz-service/internal/repository"
	"quest-quiz-service/internal/verify"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no live or persisted session matches
// the requested id.
var ErrSessionNotFound = errors.New("session not found")

// Reporter publishes session lifecycle events. Satisfied by
// event.EventPublisher; nil disables reporting.
type Reporter interface {
	Publish(eventType string, payload interface{}) error
	PublishCompletion(ev models.CompletionEvent) error
}

// liveSession pairs a controller with the identity it was started for.
type liveSession struct {
	controller *engine.Controller
	userID     string
	token      string
}

// SessionService owns the registry of live session controllers — one per
// learner attempt — and mirrors their state into storage on every change.
type SessionService struct {
	mu   sync.RWMutex
	live map[string]*liveSession

	Repo         *repository.SessionRepository
	QuestionRepo *repository.QuestionRepository
	ResultRepo   *repository.ResultRepository

	pool     *bank.PoolSource
	verifier verify.Verifier
	clock    engine.Clock
	reporter Reporter
}

// NewSessionService wires the session orchestrator. A nil verifier falls
// back to the deterministic local verifier, a nil clock to the system
// clock, and a nil reporter disables event publishing.
func NewSessionService(
	repo *repository.SessionRepository,
	questionRepo *repository.QuestionRepository,
	resultRepo *repository.ResultRepository,
	verifier verify.Verifier,
	clock engine.Clock,
	reporter Reporter,
) *SessionService {
	if verifier == nil {
		verifier = verify.NewLocal()
	}
	if clock == nil {
		clock = engine.SystemClock()
	}
	return &SessionService{
		live:         make(map[string]*liveSession),
		Repo:         repo,
		QuestionRepo: questionRepo,
		ResultRepo:   resultRepo,
		pool:         bank.NewPoolSource(questionRepo),
		verifier:     verifier,
		clock:        clock,
		reporter:     reporter,
	}
}

// StartSession creates a controller for a new attempt and starts it. The
// reference pool is loaded fresh so newly authored questions are eligible,
// then frozen into the attempt.
func (s *SessionService) StartSession(ctx context.Context, userID string, cfg models.SessionConfig) (*models.QuizSession, error) {
	provider, err := s.pool.LoadProvider(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	token := uuid.NewString()

	var controller *engine.Controller
	listener := engine.ListenerFunc(func(summary engine.Summary) {
		s.handleCompletion(id, userID, token, controller, summary)
	})
	controller = engine.NewController(provider, s.verifier, s.clock, listener)

	if err := controller.Start(cfg); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.live[id] = &liveSession{controller: controller, userID: userID, token: token}
	s.mu.Unlock()

	session := snapshotToSession(id, userID, token, controller.Snapshot())
	if err := s.Repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

// SubmitAnswer forwards the choice to the session's controller and persists
// the updated snapshot when the verdict was applied.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID, questionID, choiceID string) (engine.AnswerOutcome, error) {
	ls, err := s.lookup(sessionID)
	if err != nil {
		return engine.AnswerOutcome{}, err
	}

	outcome, err := ls.controller.SelectChoice(ctx, questionID, choiceID)
	if err != nil {
		return engine.AnswerOutcome{}, err
	}
	if outcome.Applied {
		s.persist(ctx, sessionID, ls)
	}
	return outcome, nil
}

// RequestHint marks the question as hinted and returns the hint text.
func (s *SessionService) RequestHint(ctx context.Context, sessionID, questionID string) (string, error) {
	ls, err := s.lookup(sessionID)
	if err != nil {
		return "", err
	}

	hint, err := ls.controller.RequestHint(questionID)
	if err != nil {
		return "", err
	}
	if hint != "" {
		s.persist(ctx, sessionID, ls)
	}
	return hint, nil
}

// Navigate moves the current question pointer and returns the new index.
func (s *SessionService) Navigate(ctx context.Context, sessionID string, forward bool) (int, error) {
	ls, err := s.lookup(sessionID)
	if err != nil {
		return 0, err
	}

	var index int
	if forward {
		index, err = ls.controller.Next()
	} else {
		index, err = ls.controller.Previous()
	}
	if err != nil {
		return 0, err
	}
	s.persist(ctx, sessionID, ls)
	return index, nil
}

// FinishSession completes the attempt on explicit learner action. The
// completion listener handles result persistence and event reporting.
func (s *SessionService) FinishSession(_ context.Context, sessionID string) (engine.Summary, error) {
	ls, err := s.lookup(sessionID)
	if err != nil {
		return engine.Summary{}, err
	}
	return ls.controller.Finish()
}

// ResetSession discards the attempt and returns the controller to setup,
// ready for a new start under the same session id.
func (s *SessionService) ResetSession(ctx context.Context, sessionID string) error {
	ls, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	ls.controller.Reset()
	s.persist(ctx, sessionID, ls)
	return nil
}

// StartAttempt starts a new attempt for a session that is back in setup
// after a reset. A fresh controller over a freshly loaded pool replaces the
// discarded attempt; the generation bump at reset already invalidated any
// callbacks still pending for it.
func (s *SessionService) StartAttempt(ctx context.Context, sessionID string, cfg models.SessionConfig) (*models.QuizSession, error) {
	ls, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if ls.controller.Stage() != engine.StageSetup {
		return nil, engine.ErrInvalidStateTransition
	}

	provider, err := s.pool.LoadProvider(ctx)
	if err != nil {
		return nil, err
	}

	var controller *engine.Controller
	listener := engine.ListenerFunc(func(summary engine.Summary) {
		s.handleCompletion(sessionID, ls.userID, ls.token, controller, summary)
	})
	controller = engine.NewController(provider, s.verifier, s.clock, listener)
	if err := controller.Start(cfg); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.live[sessionID] = &liveSession{controller: controller, userID: ls.userID, token: ls.token}
	s.mu.Unlock()

	session := snapshotToSession(sessionID, ls.userID, ls.token, controller.Snapshot())
	if err := s.Repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

// GetSession returns the live snapshot when the controller is resident, or
// the persisted snapshot otherwise.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*models.QuizSession, error) {
	s.mu.RLock()
	ls, ok := s.live[sessionID]
	s.mu.RUnlock()
	if ok {
		return snapshotToSession(sessionID, ls.userID, ls.token, ls.controller.Snapshot()), nil
	}

	session, err := s.Repo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// ListUserSessions returns a learner's recent sessions, newest first.
func (s *SessionService) ListUserSessions(ctx context.Context, userID string, limit int64) ([]models.QuizSession, error) {
	return s.Repo.FindByUser(ctx, userID, limit)
}

// DeleteSession evicts the live controller and removes the stored snapshot.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	ls, ok := s.live[sessionID]
	if ok {
		ls.controller.Reset()
		delete(s.live, sessionID)
	}
	s.mu.Unlock()

	return s.Repo.Delete(ctx, sessionID)
}

// GetPoolInfo reports the question distribution for a subject.
func (s *SessionService) GetPoolInfo(ctx context.Context, subject string) (map[string]interface{}, error) {
	provider, err := s.pool.LoadProvider(ctx)
	if err != nil {
		return nil, err
	}
	distribution := provider.Distribution(subject)
	byDifficulty := make(map[string]int, len(distribution))
	for level, count := range distribution {
		byDifficulty[fmt.Sprintf("difficulty_%d", level)] = count
	}
	return map[string]interface{}{
		"subject":       subject,
		"pool_size":     provider.PoolSize(),
		"by_difficulty": byDifficulty,
	}, nil
}

func (s *SessionService) lookup(sessionID string) (*liveSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ls, ok := s.live[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ls, nil
}

func (s *SessionService) persist(ctx context.Context, sessionID string, ls *liveSession) {
	session := snapshotToSession(sessionID, ls.userID, ls.token, ls.controller.Snapshot())
	if err := s.Repo.Save(ctx, session); err != nil {
		log.Printf("Failed to persist session %s: %v", sessionID, err)
	}
}

// handleCompletion runs exactly once per finished attempt, from Finish or
// from the countdown goroutine, so it uses its own context.
func (s *SessionService) handleCompletion(sessionID, userID, token string, controller *engine.Controller, summary engine.Summary) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snap := controller.Snapshot()
	session := snapshotToSession(sessionID, userID, token, snap)
	if err := s.Repo.Save(ctx, session); err != nil {
		log.Printf("Failed to persist finished session %s: %v", sessionID, err)
	}

	completionType := models.CompletionManual
	if summary.TimedOut {
		completionType = models.CompletionTimedOut
	}
	result := &models.QuizResult{
		ID:                uuid.NewString(),
		SessionID:         sessionID,
		UserID:            userID,
		Subject:           snap.Config.Subject,
		Topic:             snap.Config.Topic,
		Total:             summary.Score.Total,
		Max:               summary.Score.Max,
		Percent:           summary.Score.Percent,
		QuestionsAnswered: summary.QuestionsAnswered,
		HintsUsed:         summary.HintsUsed,
		TimedOut:          summary.TimedOut,
		CompletionType:    completionType,
		CreatedAt:         summary.FinishedAt,
	}
	if err := s.ResultRepo.Create(ctx, result); err != nil {
		log.Printf("Failed to store result for session %s: %v", sessionID, err)
	}

	if s.reporter != nil {
		err := s.reporter.PublishCompletion(models.CompletionEvent{
			SessionID:         sessionID,
			UserID:            userID,
			QuestionsAnswered: summary.QuestionsAnswered,
			Total:             summary.Score.Total,
			Max:               summary.Score.Max,
			Percent:           summary.Score.Percent,
			UsedHints:         summary.HintsUsed,
			TimedOut:          summary.TimedOut,
		})
		if err != nil {
			log.Printf("Failed to report completion for session %s: %v", sessionID, err)
		}
	}
}

// snapshotToSession maps the engine's state into the persisted document.
func snapshotToSession(id, userID, token string, snap engine.Snapshot) *models.QuizSession {
	session := &models.QuizSession{
		ID:               id,
		UserID:           userID,
		SessionToken:     token,
		Stage:            string(snap.Stage),
		Config:           snap.Config,
		Items:            snap.Items,
		CurrentIndex:     snap.CurrentIndex,
		Answers:          snap.Answers,
		RemainingSeconds: snap.RemainingSeconds,
		Generation:       snap.Generation,
		StartTime:        snap.StartedAt,
	}
	if snap.Summary != nil {
		end := snap.Summary.FinishedAt
		session.EndTime = &end
		session.FinalScore = snap.Summary.Score.Total
		session.Percent = snap.Summary.Score.Percent
		session.CompletionType = models.CompletionManual
		if snap.Summary.TimedOut {
			session.CompletionType = models.CompletionTimedOut
		}
	}
	return session
}
