package validator

import (
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/shopspring/decimal"
)

// Both bounds match the numeric(8,2) columns holding question points and
// attempt max/total scores.
var (
	maxPoints     = decimal.RequireFromString("999999.99")
	maxQuizPoints = maxPoints
)

// QuestionValidator checks that a question's fields fit its type.
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuizTotal rejects a question whose points would push the quiz total
// past what an attempt score can hold.
func (v *QuestionValidator) ValidateQuizTotal(current, added decimal.Decimal) error {
	total := current.Add(added)
	if total.GreaterThan(maxQuizPoints) {
		return ValidationErrors{{
			Field:   "points",
			Message: "quiz total must be at most " + maxQuizPoints.String(),
			Value:   total.String(),
		}}
	}
	return nil
}

// ValidateQuestion returns ValidationErrors listing every problem, or nil.
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	var errs ValidationErrors
	add := func(field, message string, value interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: message, Value: value})
	}

	if !question.Type.IsValid() {
		add("type", "must be a valid question type (multiple_choice, true_false, short_answer, essay)", question.Type)
		return errs
	}
	if strings.TrimSpace(question.QuestionText) == "" {
		add("question_text", "is required", nil)
	}
	if !question.Points.IsPositive() {
		add("points", "must be greater than zero", question.Points.String())
	} else if question.Points.GreaterThan(maxPoints) {
		add("points", "must be at most "+maxPoints.String(), question.Points.String())
	} else if !question.Points.Equal(question.Points.Round(2)) {
		add("points", "must have at most two decimal places", question.Points.String())
	}
	if question.OrderIndex < 0 {
		add("order_index", "must be greater than or equal to 0", question.OrderIndex)
	}

	options, err := question.OptionList()
	if err != nil {
		add("options", "must be a list of strings", nil)
	}

	switch question.Type {
	case models.MultipleChoice:
		v.validateMultipleChoice(options, question.ExpectedAnswer, add)
	case models.TrueFalse:
		if len(options) > 0 {
			add("options", "only multiple choice questions have options", nil)
		}
		if question.ExpectedAnswer != nil {
			key := strings.ToLower(strings.TrimSpace(*question.ExpectedAnswer))
			if key != "true" && key != "false" {
				add("expected_answer", "must be true or false", *question.ExpectedAnswer)
			}
		}
	case models.ShortAnswer:
		if len(options) > 0 {
			add("options", "only multiple choice questions have options", nil)
		}
		if question.ExpectedAnswer != nil && strings.TrimSpace(*question.ExpectedAnswer) == "" {
			add("expected_answer", "must not be blank", nil)
		}
	case models.Essay:
		if len(options) > 0 {
			add("options", "only multiple choice questions have options", nil)
		}
		if question.ExpectedAnswer != nil {
			add("expected_answer", "essay questions have no expected answer", nil)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *QuestionValidator) validateMultipleChoice(options []string, key *string, add func(string, string, interface{})) {
	if len(options) < 2 {
		add("options", "must have at least 2 options", len(options))
		return
	}

	seen := make(map[string]bool, len(options))
	for _, option := range options {
		normalized := strings.ToLower(strings.TrimSpace(option))
		if normalized == "" {
			add("options", "must not contain blank options", nil)
			return
		}
		if seen[normalized] {
			add("options", "must not contain duplicate options", option)
			return
		}
		seen[normalized] = true
	}

	if key != nil && !seen[strings.ToLower(strings.TrimSpace(*key))] {
		add("expected_answer", "must be one of the options", *key)
	}
}
