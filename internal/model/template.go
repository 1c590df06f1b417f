package model

// QuestionType enumerates how many options of a question may be correct.
type QuestionType string

const (
	QuestionTypeSingleChoice   QuestionType = "single_choice"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
)

// Complexity grades the difficulty of a question.
type Complexity string

const (
	ComplexityEasy   Complexity = "easy"
	ComplexityMedium Complexity = "medium"
	ComplexityHard   Complexity = "hard"
)

// Option is a single answer choice of a question.
type Option struct {
	Text      string `json:"text" binding:"required,max=500" validate:"required,max=500"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionTemplate is a question definition that has not been persisted yet.
type QuestionTemplate struct {
	Text        string       `json:"text" validate:"required,max=2000"`
	Type        QuestionType `json:"type" validate:"required,oneof=single_choice multiple_choice"`
	Complexity  Complexity   `json:"complexity" validate:"required,oneof=easy medium hard"`
	Options     []Option     `json:"options" validate:"required,min=2,dive"`
	Explanation string       `json:"explanation" validate:"max=2000"`
	Points      int          `json:"points" validate:"gt=0"`
}

// CorrectOptions returns how many options are flagged as correct.
func (q QuestionTemplate) CorrectOptions() int {
	n := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			n++
		}
	}
	return n
}

// SectionTemplate groups ordered questions inside a survey template.
type SectionTemplate struct {
	Title          string             `json:"title" validate:"required,max=255"`
	Description    string             `json:"description" validate:"max=2000"`
	QuestionsCount int                `json:"questions_count" validate:"gte=0"`
	Order          int                `json:"order" validate:"gte=1"`
	Questions      []QuestionTemplate `json:"questions" validate:"required,dive"`
}

// Metadata returns the section fields sent to the creation gateway.
func (s SectionTemplate) Metadata() SectionMetadata {
	return SectionMetadata{
		Title:          s.Title,
		Description:    s.Description,
		QuestionsCount: s.QuestionsCount,
		Order:          s.Order,
	}
}

// SurveyTemplate is the static, immutable definition of a survey hierarchy.
type SurveyTemplate struct {
	ID             string            `json:"id" validate:"required,max=100"`
	Title          string            `json:"title" validate:"required,min=3,max=255"`
	Description    string            `json:"description" validate:"max=2000"`
	Duration       int               `json:"duration" validate:"gt=0,max=480"`
	TotalQuestions int               `json:"total_questions" validate:"gte=0"`
	PassingScore   int               `json:"passing_score" validate:"gte=0,lte=100"`
	MaxAttempts    int               `json:"max_attempts" validate:"gte=1"`
	Sections       []SectionTemplate `json:"sections" validate:"required,min=1,dive"`
}

// Metadata returns the survey fields sent to the creation gateway.
func (t SurveyTemplate) Metadata() SurveyMetadata {
	return SurveyMetadata{
		Title:           t.Title,
		Description:     t.Description,
		DurationMinutes: t.Duration,
		TotalQuestions:  t.TotalQuestions,
		PassingScore:    t.PassingScore,
		MaxAttempts:     t.MaxAttempts,
	}
}

// QuestionCount sums the questions actually present in every section.
func (t SurveyTemplate) QuestionCount() int {
	n := 0
	for _, s := range t.Sections {
		n += len(s.Questions)
	}
	return n
}

// Clone returns a deep copy so callers can never alias template storage.
func (t SurveyTemplate) Clone() SurveyTemplate {
	out := t
	if t.Sections == nil {
		return out
	}
	out.Sections = make([]SectionTemplate, len(t.Sections))
	for i, s := range t.Sections {
		cs := s
		if s.Questions != nil {
			cs.Questions = make([]QuestionTemplate, len(s.Questions))
			for j, q := range s.Questions {
				cq := q
				if q.Options != nil {
					cq.Options = append([]Option(nil), q.Options...)
				}
				cs.Questions[j] = cq
			}
		}
		out.Sections[i] = cs
	}
	return out
}

// TemplateSummary is the list view of a template.
type TemplateSummary struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Sections       int      `json:"sections"`
	TotalQuestions int      `json:"total_questions"`
	Valid          bool     `json:"valid"`
	Problems       []string `json:"problems,omitempty"`
}
