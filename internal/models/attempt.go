package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AttemptState string

const (
	AttemptInProgress AttemptState = "in_progress"
	AttemptCompleted  AttemptState = "completed"
)

// QuizAttempt is one student's single pass through one quiz. MaxScore is
// captured when the attempt starts; TotalScore and CompletedAt are written
// together, exactly once, when it completes.
type QuizAttempt struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	QuizID    uint `json:"quiz_id" gorm:"not null;index"`
	StudentID uint `json:"student_id" gorm:"not null;index"`

	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	CompletedAt *time.Time `json:"completed_at"`

	MaxScore   decimal.Decimal     `json:"max_score" gorm:"type:numeric(8,2);not null"`
	TotalScore decimal.NullDecimal `json:"total_score" gorm:"type:numeric(8,2)"`

	// Relations
	Quiz    Quiz     `json:"-" gorm:"foreignKey:QuizID"`
	Student User     `json:"-" gorm:"foreignKey:StudentID"`
	Answers []Answer `json:"-" gorm:"foreignKey:AttemptID"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

func (a *QuizAttempt) State() AttemptState {
	if a.CompletedAt != nil {
		return AttemptCompleted
	}
	return AttemptInProgress
}

func (a *QuizAttempt) IsCompleted() bool {
	return a.State() == AttemptCompleted
}

// Percentage returns total/max*100 rounded to two places, or zero while the
// attempt is open or the quiz carried no points.
func (a *QuizAttempt) Percentage() decimal.Decimal {
	if !a.TotalScore.Valid || a.MaxScore.IsZero() {
		return decimal.Zero
	}
	return a.TotalScore.Decimal.Div(a.MaxScore).Mul(decimal.NewFromInt(100)).Round(2)
}
