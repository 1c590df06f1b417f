package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/stemsi/survey-seeder/internal/model"
)

var errBoom = errors.New("connection reset")

type failMode int

const (
	failNone failMode = iota
	failReport
	failRaise
	failNoID
)

// fakeGateway hands out sequential ids and fails the calls it is told to.
// Calls are keyed by kind and 1-based call number for that kind.
type fakeGateway struct {
	mu        sync.Mutex
	surveys   int
	sections  int
	questions int

	failSurvey   map[int]failMode
	failSection  map[int]failMode
	failQuestion map[int]failMode

	surveyCalls   []model.SurveyMetadata
	sectionCalls  []sectionCall
	questionCalls []model.QuestionPayload
}

type sectionCall struct {
	SurveyID string
	Meta     model.SectionMetadata
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		failSurvey:   map[int]failMode{},
		failSection:  map[int]failMode{},
		failQuestion: map[int]failMode{},
	}
}

func (f *fakeGateway) CreateSurvey(_ context.Context, meta model.SurveyMetadata) (model.CreationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.surveys++
	f.surveyCalls = append(f.surveyCalls, meta)
	return answer(f.failSurvey[f.surveys], fmt.Sprintf("survey-%d", f.surveys))
}

func (f *fakeGateway) CreateSection(_ context.Context, surveyID string, meta model.SectionMetadata) (model.CreationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sections++
	f.sectionCalls = append(f.sectionCalls, sectionCall{SurveyID: surveyID, Meta: meta})
	return answer(f.failSection[f.sections], fmt.Sprintf("section-%d", f.sections))
}

func (f *fakeGateway) CreateQuestion(_ context.Context, payload model.QuestionPayload) (model.CreationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions++
	f.questionCalls = append(f.questionCalls, payload)
	return answer(f.failQuestion[f.questions], fmt.Sprintf("question-%d", f.questions))
}

func (f *fakeGateway) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.surveys + f.sections + f.questions
}

func answer(mode failMode, id string) (model.CreationResult, error) {
	switch mode {
	case failReport:
		return model.CreationResult{Success: false, Message: "rejected"}, nil
	case failRaise:
		return model.CreationResult{}, errBoom
	case failNoID:
		return model.CreationResult{Success: true}, nil
	}
	return model.CreationResult{Success: true, CreatedID: id}, nil
}

// recorder collects progress events.
type recorder struct {
	mu     sync.Mutex
	events []model.ProgressEvent
}

func (r *recorder) Report(_ context.Context, e model.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count(kind model.ProgressKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func q(text string) model.QuestionTemplate {
	return model.QuestionTemplate{
		Text:       text,
		Type:       model.QuestionTypeSingleChoice,
		Complexity: model.ComplexityEasy,
		Options: []model.Option{
			{Text: "yes", IsCorrect: true},
			{Text: "no"},
		},
		Points: 1,
	}
}

func section(order, questions int) model.SectionTemplate {
	s := model.SectionTemplate{
		Title:          fmt.Sprintf("Section %d", order),
		QuestionsCount: questions,
		Order:          order,
		Questions:      []model.QuestionTemplate{},
	}
	for i := 1; i <= questions; i++ {
		s.Questions = append(s.Questions, q(fmt.Sprintf("S%d Q%d", order, i)))
	}
	return s
}

func survey(id string, sections ...model.SectionTemplate) model.SurveyTemplate {
	t := model.SurveyTemplate{
		ID:           id,
		Title:        "Survey " + id,
		Duration:     30,
		PassingScore: 60,
		MaxAttempts:  1,
		Sections:     sections,
	}
	t.TotalQuestions = t.QuestionCount()
	return t
}
