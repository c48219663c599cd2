package grading

import (
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/shopspring/decimal"
)

// Aggregate sums the points earned across answers. Ungraded answers count as
// zero. The sum is exact, so the order of answers never matters.
func Aggregate(answers []*models.Answer) decimal.Decimal {
	total := decimal.Zero
	for _, a := range answers {
		if a == nil || !a.PointsEarned.Valid {
			continue
		}
		total = total.Add(a.PointsEarned.Decimal)
	}
	return total
}

// MaxScore is the best total achievable for the given questions.
func MaxScore(questions []models.QuestionDefinition) decimal.Decimal {
	total := decimal.Zero
	for _, q := range questions {
		total = total.Add(q.Weight())
	}
	return total
}
