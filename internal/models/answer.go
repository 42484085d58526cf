package models

import "time"

// AnswerRecord tracks one question's interaction state within a session.
// ChosenID and IsCorrect stay nil until an answer is verified; both may be
// overwritten by re-answering (last write wins) while the session is active.
// UsedHint only ever transitions false to true.
type AnswerRecord struct {
	QuestionID string     `bson:"question_id" json:"question_id"`
	ChosenID   *string    `bson:"chosen_id" json:"chosen_id"`
	IsCorrect  *bool      `bson:"is_correct" json:"is_correct"`
	UsedHint   bool       `bson:"used_hint" json:"used_hint"`
	AnsweredAt *time.Time `bson:"answered_at,omitempty" json:"answered_at,omitempty"`
}

// Answered reports whether a verified answer has been recorded.
func (r AnswerRecord) Answered() bool {
	return r.ChosenID != nil && r.IsCorrect != nil
}
