package models

import "time"

// Session stages.
const (
	StageSetup   = "setup"
	StageActive  = "active"
	StageSummary = "summary"
)

// Completion types recorded when a session reaches summary.
const (
	CompletionManual   = "manual_finish"
	CompletionTimedOut = "timed_out"
)

// Bounds applied by SessionConfig.Normalize.
const (
	MinQuestionCount     = 1
	MaxQuestionCount     = 15
	DefaultQuestionCount = 5
	MaxDifficulty        = 5
	SecondsPerQuestion   = 30
	MinTotalTimeSeconds  = 30
)

type LearnerProfile struct {
	Age   int    `bson:"age" json:"age"`
	Level string `bson:"level" json:"level"`
}

// SessionConfig is fixed once at setup time and never changes for the
// lifetime of an attempt.
type SessionConfig struct {
	Subject           string         `bson:"subject" json:"subject"`
	Topic             string         `bson:"topic" json:"topic"`
	QuestionCount     int            `bson:"question_count" json:"question_count"`
	DifficultyCeiling int            `bson:"difficulty_ceiling" json:"difficulty_ceiling"`
	HintsEnabled      bool           `bson:"hints_enabled" json:"hints_enabled"`
	TimedModeEnabled  bool           `bson:"timed_mode_enabled" json:"timed_mode_enabled"`
	LearnerProfile    LearnerProfile `bson:"learner_profile" json:"learner_profile"`
}

// Normalize clamps the configurable knobs into their allowed ranges and
// fills defaults for zero values.
func (c *SessionConfig) Normalize() {
	if c.QuestionCount == 0 {
		c.QuestionCount = DefaultQuestionCount
	}
	if c.QuestionCount < MinQuestionCount {
		c.QuestionCount = MinQuestionCount
	}
	if c.QuestionCount > MaxQuestionCount {
		c.QuestionCount = MaxQuestionCount
	}
	if c.DifficultyCeiling < 1 || c.DifficultyCeiling > MaxDifficulty {
		c.DifficultyCeiling = MaxDifficulty
	}
}

// TotalTimeSeconds derives the fixed countdown budget for timed mode:
// max(30, questionCount * 30). Zero when timed mode is off.
func (c SessionConfig) TotalTimeSeconds() int {
	if !c.TimedModeEnabled {
		return 0
	}
	total := c.QuestionCount * SecondsPerQuestion
	if total < MinTotalTimeSeconds {
		total = MinTotalTimeSeconds
	}
	return total
}

// QuizSession is the persisted snapshot of one attempt. The live state
// machine owns the authoritative copy; this document mirrors it so status
// reads survive a restart.
type QuizSession struct {
	ID               string                  `bson:"_id,omitempty" json:"id"`
	UserID           string                  `bson:"user_id" json:"user_id"`
	SessionToken     string                  `bson:"session_token" json:"session_token"`
	Stage            string                  `bson:"stage" json:"stage"`
	Config           SessionConfig           `bson:"config" json:"config"`
	Items            []QuestionItem          `bson:"items" json:"items"`
	CurrentIndex     int                     `bson:"current_index" json:"current_index"`
	Answers          map[string]AnswerRecord `bson:"answers" json:"answers"`
	RemainingSeconds *int                    `bson:"remaining_seconds,omitempty" json:"remaining_seconds,omitempty"`
	Generation       uint64                  `bson:"generation" json:"generation"`
	StartTime        time.Time               `bson:"start_time" json:"start_time"`
	EndTime          *time.Time              `bson:"end_time,omitempty" json:"end_time,omitempty"`
	CompletionType   string                  `bson:"completion_type,omitempty" json:"completion_type,omitempty"`
	FinalScore       float64                 `bson:"final_score" json:"final_score"`
	Percent          int                     `bson:"percent" json:"percent"`
}
