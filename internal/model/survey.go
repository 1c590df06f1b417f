package model

import (
	"time"

	"github.com/google/uuid"
)

// Survey is a persisted survey in the catalog.
type Survey struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalQuestions  int       `json:"total_questions"`
	PassingScore    int       `json:"passing_score"`
	MaxAttempts     int       `json:"max_attempts"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SurveyTree is a survey with its sections, questions and options, all ordered.
type SurveyTree struct {
	Survey
	Sections []SectionTree `json:"sections"`
}

// SectionTree is a section with its ordered questions.
type SectionTree struct {
	Section
	Questions []Question `json:"questions"`
}
