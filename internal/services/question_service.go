package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/shopspring/decimal"
)

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *questionService) Create(ctx context.Context, quizID uint, req *CreateQuestionRequest) (*models.Question, error) {
	s.logger.Info("Creating question", "quiz_id", quizID, "type", req.Type)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Quiz().GetByID(ctx, nil, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("quiz", quizID)
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	question := &models.Question{
		QuizID:         quizID,
		Type:           req.Type,
		QuestionText:   req.QuestionText,
		ExpectedAnswer: req.ExpectedAnswer,
		Points:         req.Points,
	}
	if err := question.SetOptions(req.Options); err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	if req.OrderIndex != nil {
		question.OrderIndex = *req.OrderIndex
	} else {
		next, err := s.repo.Question().GetNextOrder(ctx, nil, quizID)
		if err != nil {
			return nil, fmt.Errorf("failed to get next order: %w", err)
		}
		question.OrderIndex = next
	}

	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return nil, err
	}

	existing, err := s.repo.Question().GetByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz questions: %w", err)
	}
	current := decimal.Zero
	for _, q := range existing {
		current = current.Add(q.Points)
	}
	if err := s.validator.Question().ValidateQuizTotal(current, question.Points); err != nil {
		return nil, err
	}

	taken, err := s.repo.Question().ExistsByOrder(ctx, nil, quizID, question.OrderIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to check question order: %w", err)
	}
	if taken {
		return nil, NewConflictError("quiz", quizID, fmt.Sprintf("order_index %d is already used", question.OrderIndex))
	}

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("quiz", quizID, fmt.Sprintf("order_index %d is already used", question.OrderIndex))
		}
		s.logger.Error("Failed to create question", "quiz_id", quizID, "error", err)
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created", "question_id", question.ID, "quiz_id", quizID)
	return question, nil
}

func (s *questionService) ListByQuiz(ctx context.Context, quizID uint) ([]*models.Question, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, nil, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("quiz", quizID)
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	questions, err := s.repo.Question().GetByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}
