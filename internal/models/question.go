package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	Essay          QuestionType = "essay"
)

// QuestionTypes lists every supported type in display order.
var QuestionTypes = []QuestionType{MultipleChoice, TrueFalse, ShortAnswer, Essay}

func (t QuestionType) IsValid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsObjective reports whether answers of this type can be graded automatically.
func (t QuestionType) IsObjective() bool {
	return t == MultipleChoice || t == TrueFalse || t == ShortAnswer
}

// Question is the stored row. Use Definition to get a type-safe view of it.
type Question struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	QuizID         uint            `json:"quiz_id" gorm:"not null;uniqueIndex:idx_questions_quiz_order"`
	Type           QuestionType    `json:"type" gorm:"not null;size:20"`
	QuestionText   string          `json:"question_text" gorm:"type:text;not null"`
	Options        datatypes.JSON  `json:"options" gorm:"type:jsonb"`
	ExpectedAnswer *string         `json:"expected_answer" gorm:"type:text"`
	Points         decimal.Decimal `json:"points" gorm:"type:numeric(8,2);not null"`
	OrderIndex     int             `json:"order_index" gorm:"not null;uniqueIndex:idx_questions_quiz_order"`

	CreatedAt time.Time `json:"created_at"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList decodes the stored options. Rows without options yield nil.
func (q *Question) OptionList() ([]string, error) {
	if len(q.Options) == 0 || string(q.Options) == "null" {
		return nil, nil
	}
	var options []string
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil, fmt.Errorf("decode options of question %d: %w", q.ID, err)
	}
	return options, nil
}

// SetOptions encodes options into the JSON column. A nil slice clears it.
func (q *Question) SetOptions(options []string) error {
	if options == nil {
		q.Options = nil
		return nil
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return err
	}
	q.Options = datatypes.JSON(raw)
	return nil
}

// Definition converts the row into its tagged variant, dropping fields that
// have no meaning for the question's type.
func (q *Question) Definition() (QuestionDefinition, error) {
	base := questionBase{id: q.ID, points: q.Points}
	switch q.Type {
	case MultipleChoice:
		options, err := q.OptionList()
		if err != nil {
			return nil, err
		}
		return &MultipleChoiceQuestion{questionBase: base, Options: options, Key: q.ExpectedAnswer}, nil
	case TrueFalse:
		return &TrueFalseQuestion{questionBase: base, Key: q.ExpectedAnswer}, nil
	case ShortAnswer:
		return &ShortAnswerQuestion{questionBase: base, Key: q.ExpectedAnswer}, nil
	case Essay:
		return &EssayQuestion{questionBase: base}, nil
	default:
		return nil, fmt.Errorf("question %d has unknown type %q", q.ID, q.Type)
	}
}

// QuestionDefinition is one of MultipleChoiceQuestion, TrueFalseQuestion,
// ShortAnswerQuestion or EssayQuestion.
type QuestionDefinition interface {
	QuestionID() uint
	Kind() QuestionType
	Weight() decimal.Decimal
}

// ObjectiveQuestion is implemented by the variants that carry an answer key.
type ObjectiveQuestion interface {
	QuestionDefinition
	ExpectedAnswer() (string, bool)
}

type questionBase struct {
	id     uint
	points decimal.Decimal
}

func (b questionBase) QuestionID() uint        { return b.id }
func (b questionBase) Weight() decimal.Decimal { return b.points }

type MultipleChoiceQuestion struct {
	questionBase
	Options []string
	Key     *string
}

func (*MultipleChoiceQuestion) Kind() QuestionType { return MultipleChoice }

func (q *MultipleChoiceQuestion) ExpectedAnswer() (string, bool) { return deref(q.Key) }

type TrueFalseQuestion struct {
	questionBase
	Key *string
}

func (*TrueFalseQuestion) Kind() QuestionType { return TrueFalse }

func (q *TrueFalseQuestion) ExpectedAnswer() (string, bool) { return deref(q.Key) }

type ShortAnswerQuestion struct {
	questionBase
	Key *string
}

func (*ShortAnswerQuestion) Kind() QuestionType { return ShortAnswer }

func (q *ShortAnswerQuestion) ExpectedAnswer() (string, bool) { return deref(q.Key) }

// EssayQuestion has no answer key; it is always graded by hand.
type EssayQuestion struct {
	questionBase
}

func (*EssayQuestion) Kind() QuestionType { return Essay }

// NewDefinition builds a variant directly, mostly for callers that do not
// hold a stored row.
func NewDefinition(id uint, kind QuestionType, points decimal.Decimal, key *string, options []string) (QuestionDefinition, error) {
	q := &Question{ID: id, Type: kind, Points: points, ExpectedAnswer: key}
	if err := q.SetOptions(options); err != nil {
		return nil, err
	}
	return q.Definition()
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}
