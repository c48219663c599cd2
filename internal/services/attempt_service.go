package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/grading"
	"github.com/SAP-F-2025/quiz-service/internal/metrics"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type attemptService struct {
	repo      repositories.Repository
	catalog   QuestionCatalog
	users     UserDirectory
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator
	now       func() time.Time
}

func NewAttemptService(
	repo repositories.Repository,
	catalog QuestionCatalog,
	users UserDirectory,
	publisher events.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	validator *validator.Validator,
) AttemptService {
	return &attemptService{
		repo:      repo,
		catalog:   catalog,
		users:     users,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		ops:       NewServiceLogger(logger, "attempt"),
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, req *StartAttemptRequest) (attempt *models.QuizAttempt, err error) {
	op := s.ops.Start(ctx, "start_attempt")
	defer func() {
		var id uint
		if attempt != nil {
			id = attempt.ID
		}
		op.LogResult(id, "attempt", err)
	}()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz, err := s.catalog.GetQuizPublicationState(ctx, req.QuizID)
	if err != nil {
		return nil, err
	}
	if !quiz.Exists {
		return nil, NewNotFoundError("quiz", req.QuizID)
	}
	if !quiz.IsPublished {
		return nil, NewPreconditionError("quiz_published", "quiz is not published", map[string]interface{}{
			"quiz_id": req.QuizID,
		})
	}

	user, err := s.users.GetUserRole(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if !user.Exists {
		return nil, NewNotFoundError("user", req.StudentID)
	}
	if user.Role != models.RoleStudent {
		return nil, NewPreconditionError("student_role", "only students can start attempts", map[string]interface{}{
			"user_id": req.StudentID,
			"role":    user.Role,
		})
	}

	questions, err := s.catalog.GetQuestionsForQuiz(ctx, req.QuizID)
	if err != nil {
		return nil, err
	}

	attempt = &models.QuizAttempt{
		QuizID:    req.QuizID,
		StudentID: req.StudentID,
		StartedAt: s.now(),
		MaxScore:  grading.MaxScore(questions),
	}
	if err := s.repo.Attempt().Create(ctx, nil, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.metrics.ObserveAttemptStarted()
	s.publish(ctx, events.EventAttemptStarted, events.AttemptStartedEvent{
		AttemptID: attempt.ID,
		QuizID:    attempt.QuizID,
		StudentID: attempt.StudentID,
		MaxScore:  attempt.MaxScore,
		StartedAt: attempt.StartedAt,
	})

	return attempt, nil
}

// SubmitAnswer grades the answer and stores it, replacing any earlier answer
// to the same question. The attempt row stays locked from the state check to
// the write so a concurrent completion cannot slip in between.
func (s *attemptService) SubmitAnswer(ctx context.Context, attemptID uint, req *SubmitAnswerRequest) (answer *models.Answer, err error) {
	op := s.ops.Start(ctx, "submit_answer")
	defer func() { op.LogResult(attemptID, "attempt", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		return nil, s.attemptLookupError(attemptID, err)
	}
	if attempt.IsCompleted() {
		return nil, NewConflictError("attempt", attemptID, "attempt is already completed")
	}

	question, err := s.catalog.GetQuestion(ctx, req.QuestionID)
	if err != nil {
		return nil, err
	}

	evaluation := grading.Evaluate(question, *req.AnswerText)

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		locked, err := s.repo.Attempt().GetByIDForUpdate(ctx, tx, attemptID)
		if err != nil {
			return s.attemptLookupError(attemptID, err)
		}
		if locked.IsCompleted() {
			return NewConflictError("attempt", attemptID, "attempt is already completed")
		}

		row := &models.Answer{
			AttemptID:  attemptID,
			QuestionID: req.QuestionID,
			AnswerText: *req.AnswerText,
		}
		evaluation.Apply(row)

		if err := s.repo.Answer().Upsert(ctx, tx, row); err != nil {
			return fmt.Errorf("failed to save answer: %w", err)
		}

		stored, err := s.repo.Answer().GetByAttemptAndQuestion(ctx, tx, attemptID, req.QuestionID)
		if err != nil {
			return fmt.Errorf("failed to reload answer: %w", err)
		}
		answer = stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveAnswer(evaluation.Outcome.String())
	s.publish(ctx, events.EventAnswerSubmitted, events.AnswerSubmittedEvent{
		AttemptID:    attemptID,
		QuestionID:   answer.QuestionID,
		Evaluation:   string(answer.Evaluation),
		PointsEarned: answer.PointsEarned,
	})

	return answer, nil
}

// Complete totals the recorded answers and closes the attempt. Answers still
// awaiting manual grading contribute nothing to the total.
func (s *attemptService) Complete(ctx context.Context, attemptID uint) (attempt *models.QuizAttempt, err error) {
	op := s.ops.Start(ctx, "complete_attempt")
	defer func() { op.LogResult(attemptID, "attempt", err) }()

	var answerCount, pending int

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		locked, err := s.repo.Attempt().GetByIDForUpdate(ctx, tx, attemptID)
		if err != nil {
			return s.attemptLookupError(attemptID, err)
		}
		if locked.IsCompleted() {
			return NewConflictError("attempt", attemptID, "attempt is already completed")
		}

		answers, err := s.repo.Answer().GetByAttempt(ctx, tx, attemptID)
		if err != nil {
			return fmt.Errorf("failed to load answers: %w", err)
		}

		total := grading.Aggregate(answers)
		completedAt := s.now()

		if err := s.repo.Attempt().CompleteAttempt(ctx, tx, attemptID, completedAt, total); err != nil {
			if errors.Is(err, repositories.ErrAttemptAlreadyCompleted) {
				return NewConflictError("attempt", attemptID, "attempt is already completed")
			}
			return fmt.Errorf("failed to complete attempt: %w", err)
		}

		locked.CompletedAt = &completedAt
		locked.TotalScore = decimal.NewNullDecimal(total)
		attempt = locked

		answerCount = len(answers)
		for _, a := range answers {
			if a.Evaluation == models.OutcomeNotEvaluated {
				pending++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveAttemptCompleted()
	s.publish(ctx, events.EventAttemptCompleted, events.AttemptCompletedEvent{
		AttemptID:     attempt.ID,
		QuizID:        attempt.QuizID,
		StudentID:     attempt.StudentID,
		TotalScore:    attempt.TotalScore.Decimal,
		MaxScore:      attempt.MaxScore,
		AnswerCount:   answerCount,
		PendingReview: pending,
		CompletedAt:   *attempt.CompletedAt,
	})

	return attempt, nil
}

// ===== QUERIES =====

func (s *attemptService) GetWithAnswers(ctx context.Context, attemptID uint) (*AttemptWithAnswers, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		return nil, s.attemptLookupError(attemptID, err)
	}

	answers, err := s.repo.Answer().GetByAttempt(ctx, nil, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers: %w", err)
	}

	return &AttemptWithAnswers{Attempt: attempt, Answers: answers}, nil
}

// ListForStudent returns the student's attempts, newest first unless the
// filters say otherwise. An unknown student simply has no attempts.
func (s *attemptService) ListForStudent(ctx context.Context, studentID uint, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	attempts, total, err := s.repo.Attempt().GetByStudent(ctx, nil, studentID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, total, nil
}

func (s *attemptService) ListForQuiz(ctx context.Context, quizID uint, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	attempts, total, err := s.repo.Attempt().GetByQuiz(ctx, nil, quizID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, total, nil
}

// ===== HELPERS =====

func (s *attemptService) attemptLookupError(attemptID uint, err error) error {
	if repositories.IsNotFoundError(err) {
		return NewNotFoundError("attempt", attemptID)
	}
	return fmt.Errorf("failed to get attempt: %w", err)
}

// publish runs after the state change is committed, so a failure is logged
// and not returned.
func (s *attemptService) publish(ctx context.Context, eventType events.EventType, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		s.logger.Error("Failed to publish attempt event",
			"event_type", eventType,
			"error", err)
	}
}
