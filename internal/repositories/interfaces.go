package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrAttemptAlreadyCompleted is returned when a completion lost the race
	// against another completion of the same attempt.
	ErrAttemptAlreadyCompleted = errors.New("attempt already completed")
)

// Repository aggregates the per-entity repositories. Every method on them
// takes an optional tx; pass the handle given to WithTransaction to run
// inside that transaction, or nil to use the pool.
type Repository interface {
	User() UserRepository
	Quiz() QuizRepository
	Question() QuestionRepository
	Attempt() AttemptRepository
	Answer() AnswerRepository

	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Ping(ctx context.Context) error
	Close() error
}

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role   *models.UserRole `json:"role"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type QuizFilters struct {
	TeacherID   *uint      `json:"teacher_id"`
	IsPublished *bool      `json:"is_published"`
	DateFrom    *time.Time `json:"date_from"`
	DateTo      *time.Time `json:"date_to"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
	SortBy      string     `json:"sort_by"`    // "created_at", "title"
	SortOrder   string     `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	StudentID *uint                `json:"student_id"`
	QuizID    *uint                `json:"quiz_id"`
	State     *models.AttemptState `json:"state"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "started_at", "completed_at", "total_score"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

// ===== ERROR HELPERS =====

func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports a unique constraint violation. The DB handle must
// be opened with TranslateError enabled.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
