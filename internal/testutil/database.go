// Package testutil opens throwaway databases for tests.
package testutil

import (
	"testing"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB returns a migrated in-memory SQLite database. It holds a single
// connection, so concurrent transactions queue up behind each other.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.QuizAttempt{},
		&models.Answer{},
	))
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: email, Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateQuiz(t *testing.T, db *gorm.DB, teacherID uint, published bool) *models.Quiz {
	t.Helper()
	quiz := &models.Quiz{Title: "Capitals", TeacherID: teacherID, IsPublished: published}
	require.NoError(t, db.Omit("Teacher", "Questions").Create(quiz).Error)
	return quiz
}

// CreateQuestion stores a question; key may be nil and options only apply to
// multiple choice.
func CreateQuestion(t *testing.T, db *gorm.DB, quizID uint, order int, kind models.QuestionType, points string, key *string, options ...string) *models.Question {
	t.Helper()
	question := &models.Question{
		QuizID:         quizID,
		Type:           kind,
		QuestionText:   "Question " + string(kind),
		ExpectedAnswer: key,
		Points:         decimal.RequireFromString(points),
		OrderIndex:     order,
	}
	if len(options) > 0 {
		require.NoError(t, question.SetOptions(options))
	}
	require.NoError(t, db.Create(question).Error)
	return question
}

func StringPtr(s string) *string { return &s }
