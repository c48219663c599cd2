package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/metrics"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

type serviceManager struct {
	repo     repositories.Repository
	attempt  AttemptService
	quiz     QuizService
	question QuestionService
	user     UserService
	export   ExportService
}

// NewServiceManager wires every service onto one repository. The attempt
// ledger reads quizzes and users through the repository-backed catalog.
func NewServiceManager(
	repo repositories.Repository,
	publisher events.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	validator *validator.Validator,
) ServiceManager {
	return &serviceManager{
		repo: repo,
		attempt: NewAttemptService(
			repo,
			NewRepositoryCatalog(repo),
			NewRepositoryDirectory(repo),
			publisher,
			m,
			logger,
			validator,
		),
		quiz:     NewQuizService(repo, logger, validator),
		question: NewQuestionService(repo, logger, validator),
		user:     NewUserService(repo, logger, validator),
		export:   NewExportService(repo, logger),
	}
}

func (m *serviceManager) Attempt() AttemptService   { return m.attempt }
func (m *serviceManager) Quiz() QuizService         { return m.quiz }
func (m *serviceManager) Question() QuestionService { return m.question }
func (m *serviceManager) User() UserService         { return m.user }
func (m *serviceManager) Export() ExportService     { return m.export }

func (m *serviceManager) Health(ctx context.Context) error {
	return m.repo.Ping(ctx)
}
