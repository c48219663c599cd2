// Package grading scores submitted answers and totals attempts.
package grading

import (
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/shopspring/decimal"
)

type Outcome int

const (
	NotEvaluated Outcome = iota
	Correct
	Incorrect
)

func (o Outcome) String() string {
	return string(o.Persisted())
}

// Persisted maps the outcome onto the value stored in answers.evaluation.
func (o Outcome) Persisted() models.EvaluationOutcome {
	switch o {
	case Correct:
		return models.OutcomeCorrect
	case Incorrect:
		return models.OutcomeIncorrect
	default:
		return models.OutcomeNotEvaluated
	}
}

// Evaluation is the result of grading one answer. Points is only meaningful
// when Outcome is Correct or Incorrect.
type Evaluation struct {
	Outcome Outcome
	Points  decimal.Decimal
}

// Evaluate grades text against def. Objective questions compare their key to
// the submission ignoring case and surrounding whitespace; anything else, or
// an objective question missing its key, is left for manual review.
func Evaluate(def models.QuestionDefinition, submitted string) Evaluation {
	objective, ok := def.(models.ObjectiveQuestion)
	if !ok {
		return Evaluation{Outcome: NotEvaluated}
	}
	expected, ok := objective.ExpectedAnswer()
	if !ok {
		return Evaluation{Outcome: NotEvaluated}
	}

	if Matches(expected, submitted) {
		return Evaluation{Outcome: Correct, Points: def.Weight()}
	}
	return Evaluation{Outcome: Incorrect, Points: decimal.Zero}
}

// Matches is the comparison rule used for every objective question type.
func Matches(expected, submitted string) bool {
	return strings.EqualFold(strings.TrimSpace(expected), strings.TrimSpace(submitted))
}

// Apply copies the evaluation onto the stored answer fields.
func (e Evaluation) Apply(answer *models.Answer) {
	answer.Evaluation = e.Outcome.Persisted()
	switch e.Outcome {
	case Correct, Incorrect:
		correct := e.Outcome == Correct
		answer.IsCorrect = &correct
		answer.PointsEarned = decimal.NewNullDecimal(e.Points)
	default:
		answer.IsCorrect = nil
		answer.PointsEarned = decimal.NullDecimal{}
	}
}
