package model

import "fmt"

// QuestionResult is the per-item result of one question creation attempt.
type QuestionResult struct {
	Order      int    `json:"order"`
	Created    bool   `json:"created"`
	QuestionID string `json:"question_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

// SectionOutcome records what happened to one section and its questions.
type SectionOutcome struct {
	SectionTitle       string           `json:"section_title"`
	Order              int              `json:"order"`
	SectionCreated     bool             `json:"section_created"`
	SectionID          string           `json:"section_id,omitempty"`
	QuestionsAttempted int              `json:"questions_attempted"`
	QuestionsCreated   int              `json:"questions_created"`
	Message            string           `json:"message"`
	Questions          []QuestionResult `json:"questions,omitempty"`
}

// QuestionsFailed returns how many attempted questions were not created.
func (o SectionOutcome) QuestionsFailed() int {
	return o.QuestionsAttempted - o.QuestionsCreated
}

// SurveyOutcome records what happened to one template.
type SurveyOutcome struct {
	TemplateID      string           `json:"template_id"`
	SurveyCreated   bool             `json:"survey_created"`
	CreatedSurveyID string           `json:"created_survey_id,omitempty"`
	SectionOutcomes []SectionOutcome `json:"section_outcomes"`
	Message         string           `json:"message"`
}

// SectionsCreated counts sections whose creation call succeeded.
func (o SurveyOutcome) SectionsCreated() int {
	n := 0
	for _, s := range o.SectionOutcomes {
		if s.SectionCreated {
			n++
		}
	}
	return n
}

// QuestionTotals sums attempted and created questions across sections.
func (o SurveyOutcome) QuestionTotals() (attempted, created int) {
	for _, s := range o.SectionOutcomes {
		attempted += s.QuestionsAttempted
		created += s.QuestionsCreated
	}
	return attempted, created
}

// Complete reports whether the survey and every one of its sections were created.
// Question-level failures do not count against it.
func (o SurveyOutcome) Complete() bool {
	return o.SurveyCreated && o.SectionsCreated() == len(o.SectionOutcomes)
}

// Summary is a one-line human readable description of the outcome.
func (o SurveyOutcome) Summary() string {
	if !o.SurveyCreated {
		return fmt.Sprintf("%s: survey not created: %s", o.TemplateID, o.Message)
	}
	attempted, created := o.QuestionTotals()
	return fmt.Sprintf("%s: survey %s, %d/%d sections, %d/%d questions",
		o.TemplateID, o.CreatedSurveyID, o.SectionsCreated(), len(o.SectionOutcomes), created, attempted)
}

// BatchOutcome aggregates the outcomes of a batch of templates.
type BatchOutcome struct {
	PerTemplate  []SurveyOutcome `json:"per_template"`
	SuccessCount int             `json:"success_count"`
	TotalCount   int             `json:"total_count"`
}

// Succeeded reports whether every template's survey was created.
func (b BatchOutcome) Succeeded() bool {
	return b.SuccessCount == b.TotalCount
}

// CompleteCount counts templates whose survey and all sections were created.
func (b BatchOutcome) CompleteCount() int {
	n := 0
	for _, o := range b.PerTemplate {
		if o.Complete() {
			n++
		}
	}
	return n
}
