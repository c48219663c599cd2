package services

import (
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/shopspring/decimal"
)

// ===== USER =====

type CreateUserRequest struct {
	Email string          `json:"email" validate:"required,email,max=255"`
	Name  string          `json:"name" validate:"required,max=100"`
	Role  models.UserRole `json:"role" validate:"required,user_role"`
}

// ===== QUIZ =====

type CreateQuizRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	TeacherID   uint    `json:"teacher_id" validate:"required"`
}

// UpdateQuizRequest changes only the fields that are set.
type UpdateQuizRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsPublished *bool   `json:"is_published"`
}

// ===== QUESTION =====

// CreateQuestionRequest carries a question in its row form; the shape rules
// for each type are checked by the question validator. A nil OrderIndex
// appends the question after the last one.
type CreateQuestionRequest struct {
	Type           models.QuestionType `json:"type" validate:"required,question_type"`
	QuestionText   string              `json:"question_text" validate:"required"`
	Options        []string            `json:"options"`
	ExpectedAnswer *string             `json:"expected_answer"`
	Points         decimal.Decimal     `json:"points"`
	OrderIndex     *int                `json:"order_index" validate:"omitempty,gte=0"`
}

// ===== ATTEMPT =====

type StartAttemptRequest struct {
	QuizID    uint `json:"quiz_id" validate:"required"`
	StudentID uint `json:"student_id" validate:"required"`
}

// SubmitAnswerRequest requires answer_text to be present; an empty string is
// a valid answer.
type SubmitAnswerRequest struct {
	QuestionID uint    `json:"question_id" validate:"required"`
	AnswerText *string `json:"answer_text" validate:"required"`
}

// ===== RESPONSES =====

// AttemptResponse adds the derived state and percentage to a stored attempt.
type AttemptResponse struct {
	*models.QuizAttempt
	State      models.AttemptState `json:"state"`
	Percentage decimal.Decimal     `json:"percentage"`
}

func NewAttemptResponse(attempt *models.QuizAttempt) *AttemptResponse {
	return &AttemptResponse{
		QuizAttempt: attempt,
		State:       attempt.State(),
		Percentage:  attempt.Percentage(),
	}
}

type AttemptWithAnswers struct {
	Attempt *models.QuizAttempt `json:"attempt"`
	Answers []*models.Answer    `json:"answers"`
}
