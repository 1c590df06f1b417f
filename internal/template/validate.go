package template

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/stemsi/survey-seeder/internal/model"
	"github.com/stemsi/survey-seeder/internal/validator"
)

var (
	// ErrMalformedTemplate marks a template whose shape the pipeline cannot walk.
	ErrMalformedTemplate = errors.New("malformed template")
	// ErrInvalidTemplate marks a template that breaks a content invariant.
	ErrInvalidTemplate = errors.New("invalid template")
)

// ValidationError lists every invariant a template breaks.
type ValidationError struct {
	TemplateID string
	Problems   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("template %q: %s", e.TemplateID, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidTemplate }

// CheckShape verifies the structure the pipeline relies on: an id, a sections
// list, and question/option lists on every section and question.
func CheckShape(t model.SurveyTemplate) error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedTemplate)
	}
	if t.Sections == nil {
		return fmt.Errorf("%w: template %q has no sections list", ErrMalformedTemplate, t.ID)
	}
	for i, s := range t.Sections {
		if s.Questions == nil {
			return fmt.Errorf("%w: template %q sections[%d] has no questions list", ErrMalformedTemplate, t.ID, i)
		}
		for j, q := range s.Questions {
			if q.Options == nil {
				return fmt.Errorf("%w: template %q sections[%d].questions[%d] has no options list", ErrMalformedTemplate, t.ID, i, j)
			}
		}
	}
	return nil
}

// Validate runs the full pre-flight check. It returns nil, an error wrapping
// ErrMalformedTemplate, or a *ValidationError.
func Validate(t model.SurveyTemplate) error {
	if err := CheckShape(t); err != nil {
		return err
	}
	if problems := Problems(t); len(problems) > 0 {
		return &ValidationError{TemplateID: t.ID, Problems: problems}
	}
	return nil
}

// Problems returns every field and cross-field violation in t, field errors first.
func Problems(t model.SurveyTemplate) []string {
	var problems []string

	fields := validator.Struct(t)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		problems = append(problems, k+": "+fields[k])
	}

	total := 0
	prevOrder := 0
	for i, s := range t.Sections {
		total += len(s.Questions)

		if s.QuestionsCount != len(s.Questions) {
			problems = append(problems, fmt.Sprintf("sections[%d].questions_count: declares %d questions, has %d",
				i, s.QuestionsCount, len(s.Questions)))
		}
		if i > 0 && s.Order <= prevOrder {
			problems = append(problems, fmt.Sprintf("sections[%d].order: %d must be greater than previous order %d",
				i, s.Order, prevOrder))
		}
		prevOrder = s.Order

		for j, q := range s.Questions {
			correct := q.CorrectOptions()
			path := fmt.Sprintf("sections[%d].questions[%d].options", i, j)
			switch q.Type {
			case model.QuestionTypeSingleChoice:
				if correct != 1 {
					problems = append(problems, fmt.Sprintf("%s: single_choice needs exactly one correct option, has %d", path, correct))
				}
			case model.QuestionTypeMultipleChoice:
				if correct < 1 {
					problems = append(problems, path+": multiple_choice needs at least one correct option")
				}
			}
		}
	}

	if total != t.TotalQuestions {
		problems = append(problems, fmt.Sprintf("total_questions: declares %d, sections hold %d", t.TotalQuestions, total))
	}

	return problems
}
