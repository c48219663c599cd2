package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EvaluationOutcome keeps "graded wrong" apart from "not graded at all".
type EvaluationOutcome string

const (
	OutcomeCorrect      EvaluationOutcome = "correct"
	OutcomeIncorrect    EvaluationOutcome = "incorrect"
	OutcomeNotEvaluated EvaluationOutcome = "not_evaluated"
)

// Answer is the latest response to one question within one attempt.
// IsCorrect and PointsEarned are null whenever Evaluation is not_evaluated.
type Answer struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	AttemptID  uint   `json:"attempt_id" gorm:"not null;uniqueIndex:idx_answers_attempt_question"`
	QuestionID uint   `json:"question_id" gorm:"not null;uniqueIndex:idx_answers_attempt_question;index"`
	AnswerText string `json:"answer_text" gorm:"type:text;not null"`

	Evaluation   EvaluationOutcome   `json:"evaluation" gorm:"size:20;not null;default:not_evaluated"`
	IsCorrect    *bool               `json:"is_correct"`
	PointsEarned decimal.NullDecimal `json:"points_earned" gorm:"type:numeric(8,2)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Answer) TableName() string {
	return "answers"
}
