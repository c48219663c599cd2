package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

// ===== SERVICE INTERFACES =====

// AttemptService is the attempt ledger: it owns the lifecycle of quiz
// attempts and the answers recorded against them.
type AttemptService interface {
	Start(ctx context.Context, req *StartAttemptRequest) (*models.QuizAttempt, error)
	SubmitAnswer(ctx context.Context, attemptID uint, req *SubmitAnswerRequest) (*models.Answer, error)
	Complete(ctx context.Context, attemptID uint) (*models.QuizAttempt, error)

	GetWithAnswers(ctx context.Context, attemptID uint) (*AttemptWithAnswers, error)
	ListForStudent(ctx context.Context, studentID uint, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error)
	ListForQuiz(ctx context.Context, quizID uint, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error)
}

type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest) (*models.Quiz, error)
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest) (*models.Quiz, error)
	List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error)
}

type QuestionService interface {
	Create(ctx context.Context, quizID uint, req *CreateQuestionRequest) (*models.Question, error)
	ListByQuiz(ctx context.Context, quizID uint) ([]*models.Question, error)
}

type UserService interface {
	Create(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error)
}

type ExportService interface {
	// ExportQuizResults writes an XLSX workbook with one row per attempt.
	ExportQuizResults(ctx context.Context, quizID uint, w io.Writer) error
}

// ServiceManager hands the HTTP layer every service it needs.
type ServiceManager interface {
	Attempt() AttemptService
	Quiz() QuizService
	Question() QuestionService
	User() UserService
	Export() ExportService
	Health(ctx context.Context) error
}
