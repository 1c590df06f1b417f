package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/model"
	"golang.org/x/sync/errgroup"
)

// Materializer turns one survey template into catalog entities through an EntityGateway.
//
// A survey that fails to create aborts its template; a section that fails to
// create skips its questions; a question that fails is recorded and the loop
// moves on. Every failure ends up in the returned outcome, never as an error.
type Materializer struct {
	gateway             EntityGateway
	progress            ProgressReporter
	questionConcurrency int
	log                 zerolog.Logger
}

// MaterializerOption customises a Materializer.
type MaterializerOption func(*Materializer)

// WithProgress attaches a reporter that sees every creation call.
func WithProgress(p ProgressReporter) MaterializerOption {
	return func(m *Materializer) {
		if p != nil {
			m.progress = p
		}
	}
}

// WithQuestionConcurrency lets up to n questions of one created section be in flight.
func WithQuestionConcurrency(n int) MaterializerOption {
	return func(m *Materializer) {
		if n > 0 {
			m.questionConcurrency = n
		}
	}
}

// NewMaterializer creates a new Materializer.
func NewMaterializer(gateway EntityGateway, log zerolog.Logger, opts ...MaterializerOption) *Materializer {
	m := &Materializer{
		gateway:             gateway,
		progress:            NopProgress{},
		questionConcurrency: 1,
		log:                 log.With().Str("component", "materializer").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MaterializeSurvey creates the survey, then each section in ascending order.
// SectionOutcomes follow creation order, not template order: for a template
// whose sections are not already sorted, match outcomes by their Order field.
func (m *Materializer) MaterializeSurvey(ctx context.Context, tpl model.SurveyTemplate) model.SurveyOutcome {
	out := model.SurveyOutcome{
		TemplateID:      tpl.ID,
		SectionOutcomes: []model.SectionOutcome{},
	}
	log := m.log.With().Str("template_id", tpl.ID).Logger()

	res, err := m.gateway.CreateSurvey(ctx, tpl.Metadata())
	surveyID, ok, msg := settle(res, err, true)
	if !ok {
		out.Message = "survey creation failed: " + msg
		log.Error().Str("reason", msg).Msg("Survey creation failed, skipping template")

		ev := newEvent(ctx, model.ProgressSurveyFailed, tpl.ID)
		ev.Message = msg
		m.progress.Report(ctx, ev)
		return out
	}

	out.SurveyCreated = true
	out.CreatedSurveyID = surveyID

	ev := newEvent(ctx, model.ProgressSurveyCreated, tpl.ID)
	ev.EntityID = surveyID
	m.progress.Report(ctx, ev)

	for _, i := range creationOrder(tpl.Sections) {
		out.SectionOutcomes = append(out.SectionOutcomes, m.materializeSection(ctx, tpl.ID, surveyID, tpl.Sections[i]))
	}

	attempted, created := out.QuestionTotals()
	out.Message = fmt.Sprintf("survey created: %d/%d sections, %d/%d questions",
		out.SectionsCreated(), len(out.SectionOutcomes), created, attempted)

	log.Info().
		Str("survey_id", surveyID).
		Int("sections_created", out.SectionsCreated()).
		Int("sections_total", len(out.SectionOutcomes)).
		Int("questions_created", created).
		Int("questions_attempted", attempted).
		Msg("Template materialized")

	return out
}

// MaterializeSection creates one section under surveyID and then its questions.
func (m *Materializer) MaterializeSection(ctx context.Context, surveyID string, section model.SectionTemplate) model.SectionOutcome {
	return m.materializeSection(ctx, "", surveyID, section)
}

func (m *Materializer) materializeSection(ctx context.Context, templateID, surveyID string, section model.SectionTemplate) model.SectionOutcome {
	out := model.SectionOutcome{
		SectionTitle: section.Title,
		Order:        section.Order,
	}
	log := m.log.With().
		Str("template_id", templateID).
		Str("survey_id", surveyID).
		Int("section_order", section.Order).
		Logger()

	res, err := m.gateway.CreateSection(ctx, surveyID, section.Metadata())
	sectionID, ok, msg := settle(res, err, true)
	if !ok {
		out.Message = "section creation failed: " + msg
		log.Error().Str("reason", msg).Msg("Section creation failed, skipping its questions")

		ev := newEvent(ctx, model.ProgressSectionFailed, templateID)
		ev.SectionOrder = section.Order
		ev.Message = msg
		m.progress.Report(ctx, ev)
		return out
	}

	out.SectionCreated = true
	out.SectionID = sectionID

	ev := newEvent(ctx, model.ProgressSectionCreated, templateID)
	ev.SectionOrder = section.Order
	ev.EntityID = sectionID
	m.progress.Report(ctx, ev)

	out.Questions = m.createQuestions(ctx, log, templateID, section, sectionID)
	out.QuestionsAttempted, out.QuestionsCreated = summarizeQuestions(out.Questions)
	out.Message = fmt.Sprintf("section created: %d/%d questions", out.QuestionsCreated, out.QuestionsAttempted)

	return out
}

// createQuestions attempts every question; results keep template order
// whatever the concurrency.
func (m *Materializer) createQuestions(ctx context.Context, log zerolog.Logger, templateID string, section model.SectionTemplate, sectionID string) []model.QuestionResult {
	results := make([]model.QuestionResult, len(section.Questions))

	if m.questionConcurrency <= 1 {
		for i, q := range section.Questions {
			results[i] = m.createQuestion(ctx, log, templateID, section.Order, sectionID, i+1, q)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(m.questionConcurrency)
	for i, q := range section.Questions {
		g.Go(func() error {
			results[i] = m.createQuestion(ctx, log, templateID, section.Order, sectionID, i+1, q)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (m *Materializer) createQuestion(ctx context.Context, log zerolog.Logger, templateID string, sectionOrder int, sectionID string, order int, q model.QuestionTemplate) model.QuestionResult {
	payload := model.NewQuestionPayload(sectionID, order, q)
	created, err := m.gateway.CreateQuestion(ctx, payload)
	questionID, ok, msg := settle(created, err, false)

	res := model.QuestionResult{Order: order, Created: ok, QuestionID: questionID, Message: msg}

	kind := model.ProgressQuestionCreated
	if !ok {
		kind = model.ProgressQuestionFailed
		log.Warn().Int("question_order", order).Str("reason", msg).Msg("Question creation failed, continuing")
	}
	ev := newEvent(ctx, kind, templateID)
	ev.SectionOrder = sectionOrder
	ev.QuestionOrder = order
	ev.EntityID = questionID
	ev.Message = msg
	m.progress.Report(ctx, ev)

	return res
}

// settle folds both gateway failure modes into (id, ok, message).
// With needID set, a success without an identifier counts as a failure;
// surveys and sections need one for their children, questions do not.
func settle(res model.CreationResult, err error, needID bool) (string, bool, string) {
	if err != nil {
		return "", false, err.Error()
	}
	if !res.Success {
		if res.Message == "" {
			return "", false, "gateway reported failure"
		}
		return "", false, res.Message
	}
	if needID && res.CreatedID == "" {
		return "", false, "gateway returned no identifier"
	}
	return res.CreatedID, true, res.Message
}

// summarizeQuestions counts attempted and created questions.
func summarizeQuestions(results []model.QuestionResult) (attempted, created int) {
	for _, r := range results {
		attempted++
		if r.Created {
			created++
		}
	}
	return attempted, created
}

// creationOrder returns the indexes of sections sorted by ascending Order.
// The sort is stable so equal orders keep their template position.
func creationOrder(sections []model.SectionTemplate) []int {
	idx := make([]int, len(sections))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return sections[idx[a]].Order < sections[idx[b]].Order })
	return idx
}
