package template

import (
	"errors"
	"fmt"

	"github.com/stemsi/survey-seeder/internal/model"
)

// ErrTemplateNotFound is returned when a lookup names an unknown template.
var ErrTemplateNotFound = errors.New("template not found")

// Store is an immutable, ordered set of survey templates.
// Every accessor hands out deep copies.
type Store struct {
	templates []model.SurveyTemplate
	index     map[string]int
}

// NewStore builds a store from templates, keeping their order.
// Duplicate ids and malformed templates are rejected.
func NewStore(templates ...model.SurveyTemplate) (*Store, error) {
	s := &Store{
		templates: make([]model.SurveyTemplate, 0, len(templates)),
		index:     make(map[string]int, len(templates)),
	}
	for _, t := range templates {
		if err := CheckShape(t); err != nil {
			return nil, err
		}
		if _, dup := s.index[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		s.index[t.ID] = len(s.templates)
		s.templates = append(s.templates, t.Clone())
	}
	return s, nil
}

// Len returns the number of templates.
func (s *Store) Len() int { return len(s.templates) }

// IDs returns template ids in registration order.
func (s *Store) IDs() []string {
	ids := make([]string, len(s.templates))
	for i, t := range s.templates {
		ids[i] = t.ID
	}
	return ids
}

// Get returns a copy of the template with the given id.
func (s *Store) Get(id string) (model.SurveyTemplate, bool) {
	i, ok := s.index[id]
	if !ok {
		return model.SurveyTemplate{}, false
	}
	return s.templates[i].Clone(), true
}

// Sections returns a copy of the sections of the template with the given id.
func (s *Store) Sections(id string) ([]model.SectionTemplate, bool) {
	t, ok := s.Get(id)
	if !ok {
		return nil, false
	}
	return t.Sections, true
}

// All returns copies of every template in registration order.
func (s *Store) All() []model.SurveyTemplate {
	out := make([]model.SurveyTemplate, len(s.templates))
	for i, t := range s.templates {
		out[i] = t.Clone()
	}
	return out
}

// Lookup resolves ids in the order given. An empty list selects every template.
func (s *Store) Lookup(ids []string) ([]model.SurveyTemplate, error) {
	if len(ids) == 0 {
		return s.All(), nil
	}
	out := make([]model.SurveyTemplate, 0, len(ids))
	for _, id := range ids {
		t, ok := s.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
		}
		out = append(out, t)
	}
	return out, nil
}

// Summaries describes every template together with its validation status.
func (s *Store) Summaries() []model.TemplateSummary {
	out := make([]model.TemplateSummary, len(s.templates))
	for i, t := range s.templates {
		problems := Problems(t)
		out[i] = model.TemplateSummary{
			ID:             t.ID,
			Title:          t.Title,
			Sections:       len(t.Sections),
			TotalQuestions: t.TotalQuestions,
			Valid:          len(problems) == 0,
			Problems:       problems,
		}
	}
	return out
}
