package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

// QuestionCatalog is the read-only view of quizzes and questions the attempt
// ledger depends on.
type QuestionCatalog interface {
	// GetQuestionsForQuiz returns the quiz's questions in order_index order.
	GetQuestionsForQuiz(ctx context.Context, quizID uint) ([]models.QuestionDefinition, error)
	// GetQuestion returns a *NotFoundError when the question does not exist.
	GetQuestion(ctx context.Context, questionID uint) (models.QuestionDefinition, error)
	GetQuizPublicationState(ctx context.Context, quizID uint) (models.PublicationState, error)
}

// RoleLookup is the answer to "who is this user": Exists is false when the
// id is unknown, in which case Role is empty.
type RoleLookup struct {
	Exists bool            `json:"exists"`
	Role   models.UserRole `json:"role"`
}

type UserDirectory interface {
	GetUserRole(ctx context.Context, userID uint) (RoleLookup, error)
}

type repositoryCatalog struct {
	repo repositories.Repository
}

// NewRepositoryCatalog serves the catalog straight from the repositories.
// Question lists are cached by the question repository itself.
func NewRepositoryCatalog(repo repositories.Repository) QuestionCatalog {
	return &repositoryCatalog{repo: repo}
}

func (c *repositoryCatalog) GetQuestionsForQuiz(ctx context.Context, quizID uint) ([]models.QuestionDefinition, error) {
	questions, err := c.repo.Question().GetByQuiz(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions for quiz %d: %w", quizID, err)
	}

	definitions := make([]models.QuestionDefinition, 0, len(questions))
	for _, q := range questions {
		def, err := q.Definition()
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, def)
	}
	return definitions, nil
}

func (c *repositoryCatalog) GetQuestion(ctx context.Context, questionID uint) (models.QuestionDefinition, error) {
	question, err := c.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("question", questionID)
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question.Definition()
}

func (c *repositoryCatalog) GetQuizPublicationState(ctx context.Context, quizID uint) (models.PublicationState, error) {
	quiz, err := c.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return models.PublicationState{}, nil
		}
		return models.PublicationState{}, fmt.Errorf("failed to get quiz: %w", err)
	}
	return models.PublicationState{Exists: true, IsPublished: quiz.IsPublished}, nil
}

type repositoryDirectory struct {
	repo repositories.Repository
}

func NewRepositoryDirectory(repo repositories.Repository) UserDirectory {
	return &repositoryDirectory{repo: repo}
}

func (d *repositoryDirectory) GetUserRole(ctx context.Context, userID uint) (RoleLookup, error) {
	user, err := d.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return RoleLookup{}, nil
		}
		return RoleLookup{}, fmt.Errorf("failed to get user: %w", err)
	}
	return RoleLookup{Exists: true, Role: user.Role}, nil
}
