package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/model"
)

func TestMaterializeSurvey_AllCreated(t *testing.T) {
	gw := newFakeGateway()
	rec := &recorder{}
	m := NewMaterializer(gw, zerolog.Nop(), WithProgress(rec))

	out := m.MaterializeSurvey(context.Background(), survey("two-by-three", section(1, 3), section(2, 3)))

	if !out.SurveyCreated || out.CreatedSurveyID != "survey-1" {
		t.Fatalf("survey not created: %+v", out)
	}
	if len(out.SectionOutcomes) != 2 {
		t.Fatalf("expected 2 section outcomes, got %d", len(out.SectionOutcomes))
	}
	for i, s := range out.SectionOutcomes {
		if !s.SectionCreated || s.QuestionsAttempted != 3 || s.QuestionsCreated != 3 {
			t.Errorf("section %d: %+v", i, s)
		}
	}
	if !out.Complete() {
		t.Error("expected outcome to be complete")
	}
	if gw.calls() != 1+2+6 {
		t.Errorf("expected 9 gateway calls, got %d", gw.calls())
	}
	if rec.count(model.ProgressQuestionCreated) != 6 || rec.count(model.ProgressSectionCreated) != 2 || rec.count(model.ProgressSurveyCreated) != 1 {
		t.Errorf("unexpected progress events: %+v", rec.events)
	}
}

func TestMaterializeSurvey_SectionFailureSkipsItsQuestions(t *testing.T) {
	gw := newFakeGateway()
	gw.failSection[2] = failReport
	m := NewMaterializer(gw, zerolog.Nop())

	out := m.MaterializeSurvey(context.Background(), survey("two-by-three", section(1, 3), section(2, 3)))

	if !out.SurveyCreated {
		t.Fatal("survey should be created")
	}
	first, second := out.SectionOutcomes[0], out.SectionOutcomes[1]
	if !first.SectionCreated || first.QuestionsAttempted != 3 || first.QuestionsCreated != 3 {
		t.Errorf("first section: %+v", first)
	}
	if second.SectionCreated || second.QuestionsAttempted != 0 || second.QuestionsCreated != 0 {
		t.Errorf("second section: %+v", second)
	}
	if !strings.Contains(second.Message, "rejected") {
		t.Errorf("expected gateway message in outcome, got %q", second.Message)
	}
	if len(gw.questionCalls) != 3 {
		t.Errorf("questions of the failed section must not be attempted, got %d calls", len(gw.questionCalls))
	}
	if out.Complete() {
		t.Error("outcome with a failed section is not complete")
	}
}

func TestMaterializeSurvey_SurveyFailureStopsTemplate(t *testing.T) {
	for name, mode := range map[string]failMode{"reported": failReport, "raised": failRaise, "no id": failNoID} {
		t.Run(name, func(t *testing.T) {
			gw := newFakeGateway()
			gw.failSurvey[1] = mode
			m := NewMaterializer(gw, zerolog.Nop())

			out := m.MaterializeSurvey(context.Background(), survey("t", section(1, 2)))

			if out.SurveyCreated || out.CreatedSurveyID != "" {
				t.Fatalf("survey must not be created: %+v", out)
			}
			if out.SectionOutcomes == nil || len(out.SectionOutcomes) != 0 {
				t.Errorf("expected empty, non-nil section outcomes, got %#v", out.SectionOutcomes)
			}
			if gw.calls() != 1 {
				t.Errorf("expected only the survey call, got %d", gw.calls())
			}
			if !strings.HasPrefix(out.Message, "survey creation failed: ") {
				t.Errorf("unexpected message %q", out.Message)
			}
		})
	}
}

func TestMaterializeSection_QuestionFailuresAreFailOpen(t *testing.T) {
	gw := newFakeGateway()
	gw.failQuestion[2] = failRaise
	gw.failQuestion[4] = failReport
	m := NewMaterializer(gw, zerolog.Nop())

	out := m.MaterializeSection(context.Background(), "survey-x", section(1, 5))

	if !out.SectionCreated || out.SectionID != "section-1" {
		t.Fatalf("section not created: %+v", out)
	}
	if out.QuestionsAttempted != 5 || out.QuestionsCreated != 3 || out.QuestionsFailed() != 2 {
		t.Errorf("unexpected counts: %+v", out)
	}
	if len(gw.questionCalls) != 5 {
		t.Errorf("every question must be attempted, got %d", len(gw.questionCalls))
	}
	if out.Questions[1].Created || out.Questions[1].Message != errBoom.Error() {
		t.Errorf("raised failure not recorded: %+v", out.Questions[1])
	}
	if out.Questions[3].Created || out.Questions[3].Message != "rejected" {
		t.Errorf("reported failure not recorded: %+v", out.Questions[3])
	}
	if gw.sectionCalls[0].SurveyID != "survey-x" {
		t.Errorf("section created under wrong survey: %q", gw.sectionCalls[0].SurveyID)
	}
}

func TestMaterializeSection_QuestionOrderAndParent(t *testing.T) {
	gw := newFakeGateway()
	m := NewMaterializer(gw, zerolog.Nop())

	m.MaterializeSection(context.Background(), "survey-x", section(3, 4))

	for i, p := range gw.questionCalls {
		if p.Order != i+1 {
			t.Errorf("question %d sent with order %d", i, p.Order)
		}
		if p.SectionID != "section-1" {
			t.Errorf("question %d sent under section %q", i, p.SectionID)
		}
	}
}

func TestMaterializeSection_EmptySection(t *testing.T) {
	gw := newFakeGateway()
	m := NewMaterializer(gw, zerolog.Nop())

	out := m.MaterializeSection(context.Background(), "survey-x", section(1, 0))

	if !out.SectionCreated || out.QuestionsAttempted != 0 || out.QuestionsCreated != 0 {
		t.Errorf("unexpected outcome: %+v", out)
	}
}

func TestMaterializeSurvey_UnsortedSectionsReportedInCreationOrder(t *testing.T) {
	gw := newFakeGateway()
	m := NewMaterializer(gw, zerolog.Nop())

	out := m.MaterializeSurvey(context.Background(), survey("t", section(3, 3), section(1, 1), section(2, 2)))

	for i, call := range gw.sectionCalls {
		if call.Meta.Order != i+1 {
			t.Errorf("section call %d had order %d", i, call.Meta.Order)
		}
	}

	if len(out.SectionOutcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(out.SectionOutcomes))
	}
	for i, so := range out.SectionOutcomes {
		order := i + 1
		if so.Order != order || so.SectionTitle != fmt.Sprintf("Section %d", order) {
			t.Errorf("outcome %d = (order %d, %q), want order %d", i, so.Order, so.SectionTitle, order)
		}
		// Each section holds as many questions as its order.
		if so.QuestionsAttempted != order {
			t.Errorf("outcome %d attempted %d questions, want %d", i, so.QuestionsAttempted, order)
		}
	}
}

func TestMaterializeSection_QuestionWithoutIDStillCounts(t *testing.T) {
	gw := newFakeGateway()
	gw.failQuestion[2] = failNoID
	m := NewMaterializer(gw, zerolog.Nop())

	out := m.MaterializeSection(context.Background(), "survey-x", section(1, 3))

	if out.QuestionsAttempted != 3 || out.QuestionsCreated != 3 {
		t.Errorf("expected 3/3 questions, got %d/%d", out.QuestionsCreated, out.QuestionsAttempted)
	}
	if !out.Questions[1].Created || out.Questions[1].QuestionID != "" {
		t.Errorf("second question: %+v", out.Questions[1])
	}
}

func TestMaterializeSurvey_SectionWithoutIDSkipsQuestions(t *testing.T) {
	gw := newFakeGateway()
	gw.failSection[1] = failNoID
	m := NewMaterializer(gw, zerolog.Nop())

	out := m.MaterializeSurvey(context.Background(), survey("t", section(1, 2), section(2, 2)))

	if out.SectionOutcomes[0].SectionCreated || out.SectionOutcomes[0].QuestionsAttempted != 0 {
		t.Errorf("section without id should fail: %+v", out.SectionOutcomes[0])
	}
	if !out.SectionOutcomes[1].SectionCreated || out.SectionOutcomes[1].QuestionsCreated != 2 {
		t.Errorf("sibling section: %+v", out.SectionOutcomes[1])
	}
	if len(gw.questionCalls) != 2 {
		t.Errorf("expected 2 question calls, got %d", len(gw.questionCalls))
	}
}

func TestMaterializeSection_ConcurrentKeepsOrder(t *testing.T) {
	gw := newFakeGateway()
	gw.failQuestion[5] = failReport
	m := NewMaterializer(gw, zerolog.Nop(), WithQuestionConcurrency(4))

	out := m.MaterializeSection(context.Background(), "survey-x", section(1, 12))

	if out.QuestionsAttempted != 12 || out.QuestionsCreated != 11 {
		t.Fatalf("unexpected counts: %+v", out)
	}
	for i, r := range out.Questions {
		if r.Order != i+1 {
			t.Errorf("result %d has order %d", i, r.Order)
		}
	}
	seen := map[int]bool{}
	for _, p := range gw.questionCalls {
		seen[p.Order] = true
	}
	if len(seen) != 12 {
		t.Errorf("expected 12 distinct orders, got %d", len(seen))
	}
}

func TestMaterializer_ProgressCarriesRunID(t *testing.T) {
	gw := newFakeGateway()
	rec := &recorder{}
	m := NewMaterializer(gw, zerolog.Nop(), WithProgress(rec))

	m.MaterializeSurvey(WithRunID(context.Background(), "run-7"), survey("t", section(1, 1)))

	if len(rec.events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(rec.events))
	}
	for _, e := range rec.events {
		if e.RunID != "run-7" || e.TemplateID != "t" {
			t.Errorf("event missing run or template id: %+v", e)
		}
	}
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name   string
		res    model.CreationResult
		err    error
		needID bool
		wantID string
		wantOK bool
		msg    string
	}{
		{"success", model.CreationResult{Success: true, CreatedID: "a"}, nil, true, "a", true, ""},
		{"raised", model.CreationResult{Success: true, CreatedID: "a"}, errBoom, true, "", false, errBoom.Error()},
		{"reported", model.CreationResult{Message: "nope"}, nil, true, "", false, "nope"},
		{"reported silently", model.CreationResult{}, nil, false, "", false, "gateway reported failure"},
		{"no id for parent", model.CreationResult{Success: true}, nil, true, "", false, "gateway returned no identifier"},
		{"no id for leaf", model.CreationResult{Success: true}, nil, false, "", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok, msg := settle(tt.res, tt.err, tt.needID)
			if id != tt.wantID || ok != tt.wantOK || msg != tt.msg {
				t.Errorf("settle() = (%q, %v, %q), want (%q, %v, %q)", id, ok, msg, tt.wantID, tt.wantOK, tt.msg)
			}
		})
	}
}
