package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db       *gorm.DB
	cache    cache.CacheService
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewQuestionPostgreSQL(db *gorm.DB, questionCache cache.CacheService, cacheTTL time.Duration, logger *slog.Logger) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:       db,
		cache:    questionCache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func quizQuestionsKey(quizID uint) string {
	return fmt.Sprintf("quiz:%d:questions", quizID)
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return err
	}
	q.invalidate(ctx, question.QuizID)
	return nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := q.getDB(tx)
	var question models.Question
	if err := db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// GetByQuiz reads through the question cache when one is configured. Cache
// failures are logged and fall back to the database.
func (q *QuestionPostgreSQL) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.Question, error) {
	var questions []*models.Question
	if q.cache != nil {
		err := q.cache.Get(ctx, quizQuestionsKey(quizID), &questions)
		if err == nil {
			return questions, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			q.logger.Warn("Question cache read failed", "quiz_id", quizID, "error", err)
		}
	}

	db := q.getDB(tx)
	questions = nil
	if err := db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("order_index ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}

	if q.cache != nil {
		if err := q.cache.Set(ctx, quizQuestionsKey(quizID), questions, q.cacheTTL); err != nil {
			q.logger.Warn("Question cache write failed", "quiz_id", quizID, "error", err)
		}
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) ExistsByOrder(ctx context.Context, tx *gorm.DB, quizID uint, orderIndex int) (bool, error) {
	db := q.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("quiz_id = ? AND order_index = ?", quizID, orderIndex).
		Count(&count).Error
	return count > 0, err
}

func (q *QuestionPostgreSQL) GetNextOrder(ctx context.Context, tx *gorm.DB, quizID uint) (int, error) {
	db := q.getDB(tx)
	var maxOrder sql.NullInt64
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("quiz_id = ?", quizID).
		Select("MAX(order_index)").
		Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	if !maxOrder.Valid {
		return 0, nil
	}
	return int(maxOrder.Int64) + 1, nil
}

func (q *QuestionPostgreSQL) invalidate(ctx context.Context, quizID uint) {
	if q.cache == nil {
		return
	}
	if err := q.cache.Delete(ctx, quizQuestionsKey(quizID)); err != nil {
		q.logger.Warn("Question cache invalidation failed", "quiz_id", quizID, "error", err)
	}
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}
