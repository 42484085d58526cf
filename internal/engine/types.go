package engine

import (
	"errors"
	"time"

	"quest-quiz-service/internal/models"
	"quest-quiz-service/internal/scoring"
)

// Stage identifies where a session is in its lifecycle.
type Stage string

const (
	StageSetup   Stage = models.StageSetup
	StageActive  Stage = models.StageActive
	StageSummary Stage = models.StageSummary
)

// Error taxonomy returned by controller methods. Invalid operations are
// no-ops that report an error; they never mutate state or panic.
var (
	// ErrNoQuestionsAvailable: the bank returned an empty set at start.
	// Recoverable by changing subject/topic and starting again.
	ErrNoQuestionsAvailable = errors.New("no questions available for the requested subject")
	// ErrInvalidStateTransition: the operation is not valid in the current
	// stage. Callers should re-check the stage before retrying.
	ErrInvalidStateTransition = errors.New("operation not valid in current session stage")
	// ErrVerificationFailed wraps verifier transport errors. The answer
	// record is left unchanged so the caller can retry or skip.
	ErrVerificationFailed = errors.New("answer verification failed")
	// ErrUnknownQuestion: the question id is not part of this session.
	ErrUnknownQuestion = errors.New("question is not part of this session")
)

// Clock abstracts wall time and the countdown tick source so tests can
// simulate time instead of sleeping. No ambient timers: the controller owns
// its tick loop through this interface.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock returns the real-time clock used in production.
func SystemClock() Clock { return systemClock{} }

// Summary is the immutable outcome of a finished session.
type Summary struct {
	Score             scoring.Result `json:"score"`
	QuestionsAnswered int            `json:"questions_answered"`
	HintsUsed         int            `json:"hints_used"`
	TimedOut          bool           `json:"timed_out"`
	FinishedAt        time.Time      `json:"finished_at"`
}

// AnswerOutcome reports what happened to a submitted choice. Applied is
// false when the verdict arrived for a stale generation or after the
// session left the active stage; such verdicts are discarded silently.
type AnswerOutcome struct {
	Applied     bool   `json:"applied"`
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation"`
}

// Listener receives the summary exactly once when a session completes,
// whether by explicit finish or by timer expiry.
type Listener interface {
	SessionCompleted(summary Summary)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(summary Summary)

func (f ListenerFunc) SessionCompleted(summary Summary) { f(summary) }

// QuestionSource supplies the ordered question set at session start.
// Implementations must be deterministic for identical inputs.
type QuestionSource interface {
	SelectQuestions(subject, topic string, count, difficultyCeiling int) []models.QuestionItem
}

// Snapshot is a copy of the controller's current state, safe to hold after
// the controller moves on.
type Snapshot struct {
	Stage            Stage                          `json:"stage"`
	Config           models.SessionConfig           `json:"config"`
	Items            []models.QuestionItem          `json:"items"`
	CurrentIndex     int                            `json:"current_index"`
	Answers          map[string]models.AnswerRecord `json:"answers"`
	RemainingSeconds *int                           `json:"remaining_seconds,omitempty"`
	Generation       uint64                         `json:"generation"`
	StartedAt        time.Time                      `json:"started_at"`
	Summary          *Summary                       `json:"summary,omitempty"`
}
