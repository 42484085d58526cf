package models

import "time"

// QuizResult is the immutable record written once when a session reaches
// summary. The displayed score for a finished session never changes.
type QuizResult struct {
	ID                string    `bson:"_id,omitempty" json:"id"`
	SessionID         string    `bson:"session_id" json:"session_id"`
	UserID            string    `bson:"user_id" json:"user_id"`
	Subject           string    `bson:"subject" json:"subject"`
	Topic             string    `bson:"topic" json:"topic"`
	Total             float64   `bson:"total" json:"total"`
	Max               int       `bson:"max" json:"max"`
	Percent           int       `bson:"percent" json:"percent"`
	QuestionsAnswered int       `bson:"questions_answered" json:"questions_answered"`
	HintsUsed         int       `bson:"hints_used" json:"hints_used"`
	TimedOut          bool      `bson:"timed_out" json:"timed_out"`
	CompletionType    string    `bson:"completion_type" json:"completion_type"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
}

// CompletionEvent is the payload reported to the progress/XP subsystem when
// a session completes.
type CompletionEvent struct {
	SessionID         string  `json:"session_id"`
	UserID            string  `json:"user_id"`
	QuestionsAnswered int     `json:"questions_answered"`
	Total             float64 `json:"total"`
	Max               int     `json:"max"`
	Percent           int     `json:"percent"`
	UsedHints         int     `json:"used_hints"`
	TimedOut          bool    `json:"timed_out"`
}
