package model

import (
	"time"

	"github.com/google/uuid"
)

// Question represents a persisted question belonging to a section.
type Question struct {
	ID           uuid.UUID        `json:"id"`
	SectionID    uuid.UUID        `json:"section_id"`
	QuestionText string           `json:"question_text"`
	QuestionType QuestionType     `json:"question_type"`
	Complexity   Complexity       `json:"complexity"`
	Explanation  string           `json:"explanation"`
	Points       int              `json:"points"`
	OrderNum     int              `json:"order_num"`
	Options      []QuestionOption `json:"options"`
	CreatedAt    time.Time        `json:"created_at"`
}

// QuestionOption is a persisted answer choice.
type QuestionOption struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	OptionText string    `json:"option_text"`
	IsCorrect  bool      `json:"is_correct"`
	OrderNum   int       `json:"order_num"`
}
