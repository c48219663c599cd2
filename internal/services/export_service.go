package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet    = "Results"
	exportPageSize  = 100
	exportTimestamp = "2006-01-02 15:04:05"
)

var resultHeaders = []string{
	"Attempt ID", "Student ID", "Student Name", "Student Email", "State",
	"Started At", "Completed At", "Total Score", "Max Score", "Percentage",
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *exportService) ExportQuizResults(ctx context.Context, quizID uint, w io.Writer) error {
	if _, err := s.repo.Quiz().GetByID(ctx, nil, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("quiz", quizID)
		}
		return fmt.Errorf("failed to get quiz: %w", err)
	}

	attempts, err := s.allAttempts(ctx, quizID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := make([]interface{}, len(resultHeaders))
	for i, header := range resultHeaders {
		headers[i] = header
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write Excel header: %w", err)
	}

	students := make(map[uint]*models.User)
	for i, attempt := range attempts {
		student, err := s.student(ctx, students, attempt.StudentID)
		if err != nil {
			return err
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address Excel row: %w", err)
		}
		row := resultRow(attempt, student)
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write Excel row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Quiz results exported", "quiz_id", quizID, "attempts", len(attempts))
	return nil
}

func (s *exportService) allAttempts(ctx context.Context, quizID uint) ([]*models.QuizAttempt, error) {
	var all []*models.QuizAttempt
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.repo.Attempt().GetByQuiz(ctx, nil, quizID, repositories.AttemptFilters{
			Limit:     exportPageSize,
			Offset:    offset,
			SortBy:    "started_at",
			SortOrder: "asc",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list attempts: %w", err)
		}
		all = append(all, page...)
		if len(page) < exportPageSize || int64(len(all)) >= total {
			return all, nil
		}
	}
}

func (s *exportService) student(ctx context.Context, seen map[uint]*models.User, id uint) (*models.User, error) {
	if user, ok := seen[id]; ok {
		return user, nil
	}
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	seen[id] = user
	return user, nil
}

func resultRow(attempt *models.QuizAttempt, student *models.User) []interface{} {
	var name, email string
	if student != nil {
		name, email = student.Name, student.Email
	}

	var completedAt, totalScore, percentage interface{}
	if attempt.IsCompleted() {
		completedAt = attempt.CompletedAt.Format(exportTimestamp)
		totalScore = attempt.TotalScore.Decimal.InexactFloat64()
		percentage = attempt.Percentage().InexactFloat64()
	}

	return []interface{}{
		attempt.ID,
		attempt.StudentID,
		name,
		email,
		string(attempt.State()),
		attempt.StartedAt.Format(exportTimestamp),
		completedAt,
		totalScore,
		attempt.MaxScore.InexactFloat64(),
		percentage,
	}
}
