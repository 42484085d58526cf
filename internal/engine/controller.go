// Package engine implements the session controller for one quiz attempt:
// the Setup -> Active -> Summary state machine, the countdown for timed
// mode, and the stale-verdict guard around asynchronous verification.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quest-quiz-service/internal/models"
	"quest-quiz-service/internal/scoring"
	"quest-quiz-service/internal/verify"
)

// Controller orchestrates a single learner attempt. One controller owns one
// session's state exclusively; there is no state shared across attempts.
//
// The timer and user-initiated calls are concurrent event sources, so every
// state access goes through the mutex, and effects of in-flight
// verification calls are tagged with the generation counter captured at
// dispatch time.
type Controller struct {
	mu       sync.Mutex
	source   QuestionSource
	verifier verify.Verifier
	clock    Clock
	listener Listener

	generation uint64
	state      sessionState
	stopTimer  context.CancelFunc
}

type sessionState struct {
	stage     Stage
	cfg       models.SessionConfig
	items     []models.QuestionItem
	index     int
	answers   map[string]models.AnswerRecord
	timed     bool
	remaining int
	startedAt time.Time
	summary   *Summary
}

func newSetupState() sessionState {
	return sessionState{
		stage:   StageSetup,
		answers: make(map[string]models.AnswerRecord),
	}
}

// NewController creates a controller in the setup stage. A nil clock falls
// back to the system clock; a nil listener disables completion callbacks.
func NewController(source QuestionSource, verifier verify.Verifier, clock Clock, listener Listener) *Controller {
	if clock == nil {
		clock = SystemClock()
	}
	return &Controller{
		source:   source,
		verifier: verifier,
		clock:    clock,
		listener: listener,
		state:    newSetupState(),
	}
}

// Start transitions Setup -> Active. The question set is fixed here for the
// whole attempt; in timed mode the countdown budget is derived once and
// never recomputed. An empty selection keeps the session in Setup and
// reports ErrNoQuestionsAvailable.
func (c *Controller) Start(cfg models.SessionConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.stage != StageSetup {
		return ErrInvalidStateTransition
	}

	cfg.Normalize()
	items := c.source.SelectQuestions(cfg.Subject, cfg.Topic, cfg.QuestionCount, cfg.DifficultyCeiling)
	if len(items) == 0 {
		return ErrNoQuestionsAvailable
	}

	c.state = sessionState{
		stage:     StageActive,
		cfg:       cfg,
		items:     items,
		answers:   make(map[string]models.AnswerRecord),
		timed:     cfg.TimedModeEnabled,
		remaining: cfg.TotalTimeSeconds(),
		startedAt: c.clock.Now(),
	}

	if c.state.timed {
		ctx, cancel := context.WithCancel(context.Background())
		c.stopTimer = cancel
		go c.countdown(ctx, c.generation)
	}
	return nil
}

// SelectChoice verifies the submitted choice and records the verdict.
// Re-selecting a different choice for the same question overwrites the
// previous verdict (last write wins) while preserving the hint flag.
//
// The verification call runs outside the lock. If the session completes or
// is reset while the call is in flight, the late verdict is discarded
// silently: Applied is false and nothing is recorded.
func (c *Controller) SelectChoice(ctx context.Context, questionID, choiceID string) (AnswerOutcome, error) {
	c.mu.Lock()
	if c.state.stage != StageActive {
		c.mu.Unlock()
		return AnswerOutcome{}, ErrInvalidStateTransition
	}
	item := c.findItemLocked(questionID)
	if item == nil {
		c.mu.Unlock()
		return AnswerOutcome{}, ErrUnknownQuestion
	}
	gen := c.generation
	question := *item
	c.mu.Unlock()

	verdict, err := c.verifier.Verify(ctx, &question, choiceID)
	if err != nil {
		// Leave the answer record unchanged; the caller may retry or skip.
		return AnswerOutcome{}, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen || c.state.stage != StageActive {
		return AnswerOutcome{}, nil
	}

	record := c.state.answers[questionID]
	record.QuestionID = questionID
	chosen := choiceID
	correct := verdict.IsCorrect
	now := c.clock.Now()
	record.ChosenID = &chosen
	record.IsCorrect = &correct
	record.AnsweredAt = &now
	c.state.answers[questionID] = record

	return AnswerOutcome{Applied: true, IsCorrect: verdict.IsCorrect, Explanation: verdict.Explanation}, nil
}

// RequestHint marks the question's answer record as hinted and returns the
// hint text. No-op (empty hint, nil error) when the question has no hint or
// hints are disabled for this session. The flag never transitions back.
func (c *Controller) RequestHint(questionID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.stage != StageActive {
		return "", ErrInvalidStateTransition
	}
	item := c.findItemLocked(questionID)
	if item == nil {
		return "", ErrUnknownQuestion
	}
	if !c.state.cfg.HintsEnabled || !item.HasHint() {
		return "", nil
	}

	record := c.state.answers[questionID]
	record.QuestionID = questionID
	record.UsedHint = true
	c.state.answers[questionID] = record

	return item.Hint, nil
}

// Next advances the current question pointer, clamped to the last item.
func (c *Controller) Next() (int, error) {
	return c.move(1)
}

// Previous moves the current question pointer back, clamped to zero.
func (c *Controller) Previous() (int, error) {
	return c.move(-1)
}

func (c *Controller) move(delta int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.stage != StageActive {
		return 0, ErrInvalidStateTransition
	}
	index := c.state.index + delta
	if index < 0 {
		index = 0
	}
	if max := len(c.state.items) - 1; index > max {
		index = max
	}
	c.state.index = index
	return index, nil
}

// Finish transitions Active -> Summary on explicit learner action, allowed
// at any index; unanswered questions simply score as incorrect.
func (c *Controller) Finish() (Summary, error) {
	c.mu.Lock()
	if c.state.stage != StageActive {
		c.mu.Unlock()
		return Summary{}, ErrInvalidStateTransition
	}
	summary := c.finishLocked(false)
	c.mu.Unlock()

	c.notify(summary)
	return summary, nil
}

// Reset discards the current attempt entirely and returns to a fresh Setup.
// Bumping the generation cancels the countdown and invalidates any verdicts
// still in flight for the discarded attempt.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.generation++
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
	c.state = newSetupState()
	c.mu.Unlock()
}

// Tick advances the countdown by one second and forces completion when it
// reaches zero. Production ticks come from the internal countdown loop;
// tests call Tick directly to simulate time. A tick outside a timed active
// session is a no-op.
func (c *Controller) Tick() {
	c.mu.Lock()
	done := c.tickLocked()
	c.mu.Unlock()

	if done != nil {
		c.notify(*done)
	}
}

// Stage returns the current lifecycle stage.
func (c *Controller) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.stage
}

// Generation returns the current attempt's generation counter.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Summary returns the finished session's summary, or false before Summary.
func (c *Controller) Summary() (Summary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.summary == nil {
		return Summary{}, false
	}
	return *c.state.summary, true
}

// Snapshot copies the current state for persistence and status reads.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Stage:        c.state.stage,
		Config:       c.state.cfg,
		Items:        make([]models.QuestionItem, len(c.state.items)),
		CurrentIndex: c.state.index,
		Answers:      make(map[string]models.AnswerRecord, len(c.state.answers)),
		Generation:   c.generation,
		StartedAt:    c.state.startedAt,
	}
	copy(snap.Items, c.state.items)
	for id, record := range c.state.answers {
		snap.Answers[id] = record
	}
	if c.state.timed && c.state.stage != StageSetup {
		remaining := c.state.remaining
		snap.RemainingSeconds = &remaining
	}
	if c.state.summary != nil {
		summary := *c.state.summary
		snap.Summary = &summary
	}
	return snap
}

// countdown drives one tick per second while the attempt it was started for
// is still the current generation and still active. It stops cleanly the
// instant the session leaves Active so a stray tick can never force a
// second transition.
func (c *Controller) countdown(ctx context.Context, gen uint64) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.clock.After(time.Second):
			c.mu.Lock()
			if c.generation != gen || c.state.stage != StageActive {
				c.mu.Unlock()
				return
			}
			done := c.tickLocked()
			c.mu.Unlock()

			if done != nil {
				c.notify(*done)
				return
			}
		}
	}
}

func (c *Controller) tickLocked() *Summary {
	if c.state.stage != StageActive || !c.state.timed {
		return nil
	}
	c.state.remaining--
	if c.state.remaining > 0 {
		return nil
	}
	c.state.remaining = 0
	summary := c.finishLocked(true)
	return &summary
}

// finishLocked performs the terminal transition to Summary and computes the
// score exactly once. Callers must hold the lock and deliver the returned
// summary to the listener after releasing it.
func (c *Controller) finishLocked(timedOut bool) Summary {
	c.state.stage = StageSummary
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}

	answered, hints := 0, 0
	for _, record := range c.state.answers {
		if record.Answered() {
			answered++
		}
		if record.UsedHint {
			hints++
		}
	}

	summary := Summary{
		Score:             scoring.Score(c.state.items, c.state.answers),
		QuestionsAnswered: answered,
		HintsUsed:         hints,
		TimedOut:          timedOut,
		FinishedAt:        c.clock.Now(),
	}
	c.state.summary = &summary
	return summary
}

func (c *Controller) findItemLocked(questionID string) *models.QuestionItem {
	for i := range c.state.items {
		if c.state.items[i].ID == questionID {
			return &c.state.items[i]
		}
	}
	return nil
}

func (c *Controller) notify(summary Summary) {
	if c.listener != nil {
		c.listener.SessionCompleted(summary)
	}
}
