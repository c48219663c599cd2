package services

import (
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-service/internal/testutil"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCatalogServices(t *testing.T) (QuizService, QuestionService, UserService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	logger := discardLogger()
	repo := postgres.NewRepository(db, nil, time.Minute, logger)
	v := validator.New()
	return NewQuizService(repo, logger, v), NewQuestionService(repo, logger, v), NewUserService(repo, logger, v), db
}

func TestQuizService_Create(t *testing.T) {
	quizzes, _, _, db := newCatalogServices(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "teacher@example.com", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "student@example.com", models.RoleStudent)

	t.Run("teacher creates a draft", func(t *testing.T) {
		quiz, err := quizzes.Create(ctx, &CreateQuizRequest{Title: "Capitals", TeacherID: teacher.ID})
		require.NoError(t, err)
		assert.NotZero(t, quiz.ID)
		assert.False(t, quiz.IsPublished)
	})

	t.Run("student cannot create", func(t *testing.T) {
		_, err := quizzes.Create(ctx, &CreateQuizRequest{Title: "Capitals", TeacherID: student.ID})
		assert.True(t, IsPrecondition(err))
	})

	t.Run("unknown teacher", func(t *testing.T) {
		_, err := quizzes.Create(ctx, &CreateQuizRequest{Title: "Capitals", TeacherID: 9999})
		assert.True(t, IsNotFound(err))
	})

	t.Run("title is required", func(t *testing.T) {
		_, err := quizzes.Create(ctx, &CreateQuizRequest{TeacherID: teacher.ID})
		assert.True(t, IsValidation(err))
	})
}

func TestQuizService_UpdateAndGet(t *testing.T) {
	quizzes, _, _, db := newCatalogServices(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "teacher@example.com", models.RoleTeacher)
	quiz := testutil.CreateQuiz(t, db, teacher.ID, false)
	testutil.CreateQuestion(t, db, quiz.ID, 1, models.TrueFalse, "1", testutil.StringPtr("true"))
	testutil.CreateQuestion(t, db, quiz.ID, 0, models.Essay, "2", nil)

	published := true
	updated, err := quizzes.Update(ctx, quiz.ID, &UpdateQuizRequest{IsPublished: &published})
	require.NoError(t, err)
	assert.True(t, updated.IsPublished)
	assert.Equal(t, "Capitals", updated.Title)

	got, err := quizzes.GetByID(ctx, quiz.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPublished)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, models.Essay, got.Questions[0].Type)

	_, err = quizzes.Update(ctx, 9999, &UpdateQuizRequest{IsPublished: &published})
	assert.True(t, IsNotFound(err))

	_, err = quizzes.GetByID(ctx, 9999)
	assert.True(t, IsNotFound(err))

	isPublished := true
	list, total, err := quizzes.List(ctx, repositories.QuizFilters{IsPublished: &isPublished})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
}

func TestQuestionService_Create(t *testing.T) {
	_, questions, _, db := newCatalogServices(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "teacher@example.com", models.RoleTeacher)
	quiz := testutil.CreateQuiz(t, db, teacher.ID, false)

	t.Run("appends when order is omitted", func(t *testing.T) {
		first, err := questions.Create(ctx, quiz.ID, &CreateQuestionRequest{
			Type:           models.MultipleChoice,
			QuestionText:   "Capital of France?",
			Options:        []string{"Paris", "Lyon"},
			ExpectedAnswer: testutil.StringPtr("Paris"),
			Points:         decimal.RequireFromString("2.5"),
		})
		require.NoError(t, err)
		assert.Equal(t, 0, first.OrderIndex)

		options, err := first.OptionList()
		require.NoError(t, err)
		assert.Equal(t, []string{"Paris", "Lyon"}, options)

		second, err := questions.Create(ctx, quiz.ID, &CreateQuestionRequest{
			Type:         models.Essay,
			QuestionText: "Describe Paris.",
			Points:       decimal.NewFromInt(5),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, second.OrderIndex)
	})

	t.Run("order must be unique within the quiz", func(t *testing.T) {
		order := 0
		_, err := questions.Create(ctx, quiz.ID, &CreateQuestionRequest{
			Type:           models.TrueFalse,
			QuestionText:   "Paris is in France.",
			ExpectedAnswer: testutil.StringPtr("true"),
			Points:         decimal.NewFromInt(1),
			OrderIndex:     &order,
		})
		assert.True(t, IsConflict(err))
	})

	t.Run("shape is validated", func(t *testing.T) {
		_, err := questions.Create(ctx, quiz.ID, &CreateQuestionRequest{
			Type:           models.TrueFalse,
			QuestionText:   "Paris is in France.",
			ExpectedAnswer: testutil.StringPtr("yes"),
			Points:         decimal.NewFromInt(1),
		})
		assert.True(t, IsValidation(err))
	})

	t.Run("unknown quiz", func(t *testing.T) {
		_, err := questions.Create(ctx, 9999, &CreateQuestionRequest{
			Type:         models.Essay,
			QuestionText: "Anything",
			Points:       decimal.NewFromInt(1),
		})
		assert.True(t, IsNotFound(err))
	})

	t.Run("listed in order", func(t *testing.T) {
		list, err := questions.ListByQuiz(ctx, quiz.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, models.MultipleChoice, list[0].Type)
		assert.Equal(t, models.Essay, list[1].Type)

		_, err = questions.ListByQuiz(ctx, 9999)
		assert.True(t, IsNotFound(err))
	})
}

func TestQuestionService_CreateRejectsQuizTotalOverflow(t *testing.T) {
	_, questions, _, db := newCatalogServices(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "teacher@example.com", models.RoleTeacher)
	quiz := testutil.CreateQuiz(t, db, teacher.ID, false)

	essay := func(points string) *CreateQuestionRequest {
		return &CreateQuestionRequest{
			Type:         models.Essay,
			QuestionText: "Discuss.",
			Points:       decimal.RequireFromString(points),
		}
	}

	_, err := questions.Create(ctx, quiz.ID, essay("600000"))
	require.NoError(t, err)

	_, err = questions.Create(ctx, quiz.ID, essay("400000"))
	assert.True(t, IsValidation(err))

	_, err = questions.Create(ctx, quiz.ID, essay("399999.99"))
	require.NoError(t, err)

	list, err := questions.ListByQuiz(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUserService(t *testing.T) {
	_, _, users, _ := newCatalogServices(t)
	ctx := context.Background()

	created, err := users.Create(ctx, &CreateUserRequest{Email: "Ada@Example.com", Name: "Ada", Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", created.Email)

	_, err = users.Create(ctx, &CreateUserRequest{Email: "ada@example.com", Name: "Ada again", Role: models.RoleTeacher})
	assert.True(t, IsConflict(err))

	_, err = users.Create(ctx, &CreateUserRequest{Email: "bob@example.com", Name: "Bob", Role: "admin"})
	assert.True(t, IsValidation(err))

	got, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	_, err = users.GetByID(ctx, 9999)
	assert.True(t, IsNotFound(err))

	role := models.RoleStudent
	list, total, err := users.List(ctx, repositories.UserFilters{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
}
