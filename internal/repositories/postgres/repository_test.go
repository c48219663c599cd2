package postgres

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRepository(t *testing.T) (repositories.Repository, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewRepository(db, nil, time.Minute, logger), db
}

func TestUserPostgreSQL(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	user := &models.User{Email: "ada@example.com", Name: "Ada", Role: models.RoleStudent}
	require.NoError(t, repo.User().Create(ctx, nil, user))
	require.NotZero(t, user.ID)

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.User().GetByID(ctx, nil, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", got.Email)
		assert.True(t, got.IsStudent())
	})

	t.Run("missing user is not found", func(t *testing.T) {
		_, err := repo.User().GetByID(ctx, nil, 9999)
		assert.True(t, repositories.IsNotFoundError(err))
	})

	t.Run("duplicate email", func(t *testing.T) {
		exists, err := repo.User().ExistsByEmail(ctx, nil, "ada@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		err = repo.User().Create(ctx, nil, &models.User{Email: "ada@example.com", Name: "Other", Role: models.RoleTeacher})
		assert.True(t, repositories.IsDuplicateError(err))
	})

	t.Run("list by role", func(t *testing.T) {
		require.NoError(t, repo.User().Create(ctx, nil, &models.User{Email: "t@example.com", Name: "T", Role: models.RoleTeacher}))
		role := models.RoleTeacher
		users, total, err := repo.User().List(ctx, nil, repositories.UserFilters{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, users, 1)
		assert.Equal(t, models.RoleTeacher, users[0].Role)
	})
}

func TestQuizPostgreSQL(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "teacher@example.com", models.RoleTeacher)

	quiz := &models.Quiz{Title: "Geography", TeacherID: teacher.ID}
	require.NoError(t, repo.Quiz().Create(ctx, nil, quiz))

	testutil.CreateQuestion(t, db, quiz.ID, 2, models.ShortAnswer, "1", testutil.StringPtr("b"))
	testutil.CreateQuestion(t, db, quiz.ID, 1, models.ShortAnswer, "1", testutil.StringPtr("a"))

	t.Run("questions preload in order", func(t *testing.T) {
		got, err := repo.Quiz().GetByIDWithQuestions(ctx, nil, quiz.ID)
		require.NoError(t, err)
		require.Len(t, got.Questions, 2)
		assert.Equal(t, 1, got.Questions[0].OrderIndex)
		assert.Equal(t, 2, got.Questions[1].OrderIndex)
	})

	t.Run("update publishes", func(t *testing.T) {
		quiz.IsPublished = true
		require.NoError(t, repo.Quiz().Update(ctx, nil, quiz))

		got, err := repo.Quiz().GetByID(ctx, nil, quiz.ID)
		require.NoError(t, err)
		assert.True(t, got.IsPublished)
	})

	t.Run("list filters on publication", func(t *testing.T) {
		require.NoError(t, repo.Quiz().Create(ctx, nil, &models.Quiz{Title: "Draft", TeacherID: teacher.ID}))

		published := true
		quizzes, total, err := repo.Quiz().List(ctx, nil, repositories.QuizFilters{IsPublished: &published})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, quizzes, 1)
		assert.Equal(t, "Geography", quizzes[0].Title)
	})
}

func TestQuestionPostgreSQL(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "teacher@example.com", models.RoleTeacher)
	quiz := testutil.CreateQuiz(t, db, teacher.ID, false)

	next, err := repo.Question().GetNextOrder(ctx, nil, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	q := &models.Question{
		QuizID:       quiz.ID,
		Type:         models.MultipleChoice,
		QuestionText: "Pick B",
		Points:       decimal.RequireFromString("2.5"),
		OrderIndex:   0,
	}
	require.NoError(t, q.SetOptions([]string{"A", "B"}))
	q.ExpectedAnswer = testutil.StringPtr("B")
	require.NoError(t, repo.Question().Create(ctx, nil, q))

	t.Run("round trips options and points", func(t *testing.T) {
		got, err := repo.Question().GetByID(ctx, nil, q.ID)
		require.NoError(t, err)
		options, err := got.OptionList()
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, options)
		assert.True(t, decimal.RequireFromString("2.5").Equal(got.Points))
	})

	t.Run("order is unique per quiz", func(t *testing.T) {
		exists, err := repo.Question().ExistsByOrder(ctx, nil, quiz.ID, 0)
		require.NoError(t, err)
		assert.True(t, exists)

		next, err := repo.Question().GetNextOrder(ctx, nil, quiz.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, next)

		dup := &models.Question{QuizID: quiz.ID, Type: models.Essay, QuestionText: "dup", Points: decimal.NewFromInt(1), OrderIndex: 0}
		assert.True(t, repositories.IsDuplicateError(repo.Question().Create(ctx, nil, dup)))
	})
}

func TestAttemptPostgreSQL_CompleteAttempt(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "teacher@example.com", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "student@example.com", models.RoleStudent)
	quiz := testutil.CreateQuiz(t, db, teacher.ID, true)

	attempt := &models.QuizAttempt{
		QuizID:    quiz.ID,
		StudentID: student.ID,
		StartedAt: time.Now(),
		MaxScore:  decimal.NewFromInt(20),
	}
	require.NoError(t, repo.Attempt().Create(ctx, nil, attempt))

	locked, err := repo.Attempt().GetByIDForUpdate(ctx, nil, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AttemptInProgress, locked.State())
	assert.False(t, locked.TotalScore.Valid)

	require.NoError(t, repo.Attempt().CompleteAttempt(ctx, nil, attempt.ID, time.Now(), decimal.RequireFromString("16")))

	got, err := repo.Attempt().GetByID(ctx, nil, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AttemptCompleted, got.State())
	require.True(t, got.TotalScore.Valid)
	assert.True(t, decimal.NewFromInt(16).Equal(got.TotalScore.Decimal))

	err = repo.Attempt().CompleteAttempt(ctx, nil, attempt.ID, time.Now(), decimal.Zero)
	assert.ErrorIs(t, err, repositories.ErrAttemptAlreadyCompleted)

	t.Run("list by state", func(t *testing.T) {
		open := &models.QuizAttempt{QuizID: quiz.ID, StudentID: student.ID, StartedAt: time.Now(), MaxScore: decimal.NewFromInt(20)}
		require.NoError(t, repo.Attempt().Create(ctx, nil, open))

		state := models.AttemptInProgress
		attempts, total, err := repo.Attempt().GetByStudent(ctx, nil, student.ID, repositories.AttemptFilters{State: &state})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, attempts, 1)
		assert.Equal(t, open.ID, attempts[0].ID)

		all, total, err := repo.Attempt().GetByQuiz(ctx, nil, quiz.ID, repositories.AttemptFilters{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, all, 2)
	})
}

func TestAnswerPostgreSQL_Upsert(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "teacher@example.com", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "student@example.com", models.RoleStudent)
	quiz := testutil.CreateQuiz(t, db, teacher.ID, true)
	question := testutil.CreateQuestion(t, db, quiz.ID, 0, models.ShortAnswer, "10", testutil.StringPtr("Paris"))

	attempt := &models.QuizAttempt{QuizID: quiz.ID, StudentID: student.ID, StartedAt: time.Now(), MaxScore: decimal.NewFromInt(10)}
	require.NoError(t, repo.Attempt().Create(ctx, nil, attempt))

	correct := true
	first := &models.Answer{
		AttemptID:    attempt.ID,
		QuestionID:   question.ID,
		AnswerText:   "Paris",
		Evaluation:   models.OutcomeCorrect,
		IsCorrect:    &correct,
		PointsEarned: decimal.NewNullDecimal(decimal.NewFromInt(10)),
	}
	require.NoError(t, repo.Answer().Upsert(ctx, nil, first))

	wrong := false
	second := &models.Answer{
		AttemptID:    attempt.ID,
		QuestionID:   question.ID,
		AnswerText:   "Lyon",
		Evaluation:   models.OutcomeIncorrect,
		IsCorrect:    &wrong,
		PointsEarned: decimal.NewNullDecimal(decimal.Zero),
	}
	require.NoError(t, repo.Answer().Upsert(ctx, nil, second))

	count, err := repo.Answer().CountByAttempt(ctx, nil, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := repo.Answer().GetByAttemptAndQuestion(ctx, nil, attempt.ID, question.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lyon", got.AnswerText)
	assert.Equal(t, models.OutcomeIncorrect, got.Evaluation)
	require.NotNil(t, got.IsCorrect)
	assert.False(t, *got.IsCorrect)
	require.True(t, got.PointsEarned.Valid)
	assert.True(t, got.PointsEarned.Decimal.IsZero())
}

func TestRepository_WithTransactionRollsBack(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	err := repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := repo.User().Create(ctx, tx, &models.User{Email: "rb@example.com", Name: "RB", Role: models.RoleStudent}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	exists, err := repo.User().ExistsByEmail(ctx, nil, "rb@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, repo.Ping(ctx))
}
