package model

import (
	"time"

	"github.com/google/uuid"
)

// Section is a persisted section belonging to a survey.
type Section struct {
	ID             uuid.UUID `json:"id"`
	SurveyID       uuid.UUID `json:"survey_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	QuestionsCount int       `json:"questions_count"`
	OrderNum       int       `json:"order_num"`
	CreatedAt      time.Time `json:"created_at"`
}
