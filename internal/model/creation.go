package model

// CreationResult is what the entity creation gateway returns for any create call.
type CreationResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	CreatedID string `json:"created_id,omitempty"`
}

// SurveyMetadata is the survey payload: the template's top-level fields without sections.
type SurveyMetadata struct {
	Title           string `json:"title" binding:"required,min=3,max=255"`
	Description     string `json:"description" binding:"max=2000"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=1,max=480"`
	TotalQuestions  int    `json:"total_questions" binding:"min=0"`
	PassingScore    int    `json:"passing_score" binding:"min=0,max=100"`
	MaxAttempts     int    `json:"max_attempts" binding:"required,min=1"`
}

// SectionMetadata is the section payload: the section template without questions.
type SectionMetadata struct {
	Title          string `json:"title" binding:"required,max=255"`
	Description    string `json:"description" binding:"max=2000"`
	QuestionsCount int    `json:"questions_count" binding:"min=0"`
	Order          int    `json:"order" binding:"required,min=1"`
}

// QuestionPayload is a question template extended with its parent section and position.
type QuestionPayload struct {
	SectionID   string       `json:"section_id"`
	Order       int          `json:"order" binding:"required,min=1"`
	Text        string       `json:"text" binding:"required,max=2000"`
	Type        QuestionType `json:"type" binding:"required,oneof=single_choice multiple_choice"`
	Complexity  Complexity   `json:"complexity" binding:"required,oneof=easy medium hard"`
	Options     []Option     `json:"options" binding:"required,min=1,dive"`
	Explanation string       `json:"explanation" binding:"max=2000"`
	Points      int          `json:"points" binding:"required,min=1"`
}

// NewQuestionPayload extends q with the section it belongs to and its 1-based order.
func NewQuestionPayload(sectionID string, order int, q QuestionTemplate) QuestionPayload {
	return QuestionPayload{
		SectionID:   sectionID,
		Order:       order,
		Text:        q.Text,
		Type:        q.Type,
		Complexity:  q.Complexity,
		Options:     append([]Option(nil), q.Options...),
		Explanation: q.Explanation,
		Points:      q.Points,
	}
}
