package models

import (
	"time"
)

type Quiz struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`
	TeacherID   uint    `json:"teacher_id" gorm:"not null;index"`
	IsPublished bool    `json:"is_published" gorm:"default:false;not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Teacher   User       `json:"-" gorm:"foreignKey:TeacherID"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// PublicationState is what the attempt ledger needs to know about a quiz
// before letting a student start it.
type PublicationState struct {
	Exists      bool `json:"exists"`
	IsPublished bool `json:"is_published"`
}
