package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventAttemptStarted   EventType = "attempt.started"
	EventAnswerSubmitted  EventType = "attempt.answer_submitted"
	EventAttemptCompleted EventType = "attempt.completed"
)

const (
	EventSource  = "quiz-service"
	EventVersion = "1.0"
)

// Event is the envelope published for every attempt lifecycle change.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    EventSource,
		Version:   EventVersion,
		Data:      data,
	}
}

type AttemptStartedEvent struct {
	AttemptID uint            `json:"attempt_id"`
	QuizID    uint            `json:"quiz_id"`
	StudentID uint            `json:"student_id"`
	MaxScore  decimal.Decimal `json:"max_score"`
	StartedAt time.Time       `json:"started_at"`
}

type AnswerSubmittedEvent struct {
	AttemptID    uint                `json:"attempt_id"`
	QuestionID   uint                `json:"question_id"`
	Evaluation   string              `json:"evaluation"`
	PointsEarned decimal.NullDecimal `json:"points_earned"`
}

type AttemptCompletedEvent struct {
	AttemptID     uint            `json:"attempt_id"`
	QuizID        uint            `json:"quiz_id"`
	StudentID     uint            `json:"student_id"`
	TotalScore    decimal.Decimal `json:"total_score"`
	MaxScore      decimal.Decimal `json:"max_score"`
	AnswerCount   int             `json:"answer_count"`
	PendingReview int             `json:"pending_review"`
	CompletedAt   time.Time       `json:"completed_at"`
}
