package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/model"
	"github.com/stemsi/survey-seeder/internal/template"
)

func newOrchestrator(t *testing.T, gw EntityGateway, cfg OrchestratorConfig, templates ...model.SurveyTemplate) *BatchOrchestrator {
	t.Helper()
	store, err := template.NewStore(templates...)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return NewBatchOrchestrator(NewMaterializer(gw, zerolog.Nop()), store, cfg, zerolog.Nop())
}

func TestMaterializeBatch_OneSurveyFails(t *testing.T) {
	gw := newFakeGateway()
	gw.failSurvey[1] = failRaise
	o := newOrchestrator(t, gw, OrchestratorConfig{StrictValidation: true})

	batch, err := o.MaterializeBatch(context.Background(), []model.SurveyTemplate{
		survey("a", section(1, 2)),
		survey("b", section(1, 2)),
	})
	if err != nil {
		t.Fatalf("MaterializeBatch: %v", err)
	}
	if batch.SuccessCount != 1 || batch.TotalCount != 2 {
		t.Errorf("expected 1/2, got %d/%d", batch.SuccessCount, batch.TotalCount)
	}
	if batch.PerTemplate[0].TemplateID != "a" || batch.PerTemplate[0].SurveyCreated {
		t.Errorf("first outcome: %+v", batch.PerTemplate[0])
	}
	if batch.PerTemplate[1].TemplateID != "b" || !batch.PerTemplate[1].SurveyCreated {
		t.Errorf("second outcome: %+v", batch.PerTemplate[1])
	}
	if batch.Succeeded() {
		t.Error("batch with a failed survey should not report success")
	}
}

func TestMaterializeBatch_SuccessCountIgnoresSectionFailures(t *testing.T) {
	gw := newFakeGateway()
	gw.failSection[1] = failReport
	o := newOrchestrator(t, gw, OrchestratorConfig{})

	batch, err := o.MaterializeBatch(context.Background(), []model.SurveyTemplate{survey("a", section(1, 1))})
	if err != nil {
		t.Fatalf("MaterializeBatch: %v", err)
	}
	if batch.SuccessCount != 1 {
		t.Errorf("expected success count 1, got %d", batch.SuccessCount)
	}
	if batch.CompleteCount() != 0 {
		t.Errorf("expected complete count 0, got %d", batch.CompleteCount())
	}
}

func TestMaterializeBatch_Empty(t *testing.T) {
	o := newOrchestrator(t, newFakeGateway(), OrchestratorConfig{})

	batch, err := o.MaterializeBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("MaterializeBatch: %v", err)
	}
	if batch.TotalCount != 0 || batch.SuccessCount != 0 || len(batch.PerTemplate) != 0 {
		t.Errorf("unexpected outcome: %+v", batch)
	}
}

func TestMaterializeBatch_MalformedFailsBeforeAnyCall(t *testing.T) {
	gw := newFakeGateway()
	o := newOrchestrator(t, gw, OrchestratorConfig{})

	broken := survey("broken", section(1, 1))
	broken.Sections[0].Questions = nil

	_, err := o.MaterializeBatch(context.Background(), []model.SurveyTemplate{survey("ok", section(1, 1)), broken})
	if !errors.Is(err, template.ErrMalformedTemplate) {
		t.Fatalf("expected ErrMalformedTemplate, got %v", err)
	}
	if gw.calls() != 0 {
		t.Errorf("expected no gateway calls, got %d", gw.calls())
	}
}

func TestMaterializeBatch_StrictValidation(t *testing.T) {
	invalid := survey("invalid", section(1, 2))
	invalid.TotalQuestions = 5

	t.Run("strict rejects only the invalid template", func(t *testing.T) {
		gw := newFakeGateway()
		o := newOrchestrator(t, gw, OrchestratorConfig{StrictValidation: true})

		batch, err := o.MaterializeBatch(context.Background(), []model.SurveyTemplate{
			survey("valid", section(1, 2)),
			invalid,
		})
		if err != nil {
			t.Fatalf("MaterializeBatch: %v", err)
		}
		if batch.TotalCount != 2 || batch.SuccessCount != 1 {
			t.Fatalf("expected 1/2, got %d/%d", batch.SuccessCount, batch.TotalCount)
		}
		if !batch.PerTemplate[0].SurveyCreated {
			t.Errorf("valid template not created: %+v", batch.PerTemplate[0])
		}
		rejected := batch.PerTemplate[1]
		if rejected.TemplateID != "invalid" || rejected.SurveyCreated {
			t.Errorf("invalid template outcome: %+v", rejected)
		}
		if rejected.SectionOutcomes == nil || len(rejected.SectionOutcomes) != 0 {
			t.Errorf("expected empty section outcomes, got %+v", rejected.SectionOutcomes)
		}
		if !strings.Contains(rejected.Message, "total_questions") {
			t.Errorf("message should name the problem: %q", rejected.Message)
		}
		if len(gw.surveyCalls) != 1 || gw.surveyCalls[0].Title != "Survey valid" {
			t.Errorf("expected only the valid survey to be submitted, got %+v", gw.surveyCalls)
		}
	})

	t.Run("strict with concurrency", func(t *testing.T) {
		gw := newFakeGateway()
		o := newOrchestrator(t, gw, OrchestratorConfig{StrictValidation: true, TemplateConcurrency: 2})

		batch, err := o.MaterializeBatch(context.Background(), []model.SurveyTemplate{
			invalid, survey("a", section(1, 1)), survey("b", section(1, 1)),
		})
		if err != nil {
			t.Fatalf("MaterializeBatch: %v", err)
		}
		if batch.SuccessCount != 2 || batch.PerTemplate[0].SurveyCreated {
			t.Errorf("unexpected batch: %+v", batch)
		}
	})

	t.Run("single template keeps the validation error", func(t *testing.T) {
		gw := newFakeGateway()
		o := newOrchestrator(t, gw, OrchestratorConfig{StrictValidation: true}, invalid)

		_, err := o.MaterializeTemplate(context.Background(), "invalid")
		var verr *template.ValidationError
		if !errors.As(err, &verr) || verr.TemplateID != "invalid" {
			t.Fatalf("expected ValidationError for %q, got %v", "invalid", err)
		}
		if !errors.Is(err, template.ErrInvalidTemplate) {
			t.Errorf("expected ErrInvalidTemplate, got %v", err)
		}
		if gw.calls() != 0 {
			t.Errorf("expected no gateway calls, got %d", gw.calls())
		}
	})

	t.Run("lenient", func(t *testing.T) {
		gw := newFakeGateway()
		o := newOrchestrator(t, gw, OrchestratorConfig{StrictValidation: false})

		batch, err := o.MaterializeBatch(context.Background(), []model.SurveyTemplate{invalid})
		if err != nil {
			t.Fatalf("MaterializeBatch: %v", err)
		}
		if batch.SuccessCount != 1 {
			t.Errorf("expected the template to be submitted, got %+v", batch)
		}
	})
}

func TestMaterializeBatch_ConcurrentKeepsInputOrder(t *testing.T) {
	gw := newFakeGateway()
	o := newOrchestrator(t, gw, OrchestratorConfig{TemplateConcurrency: 3})

	ids := []string{"a", "b", "c", "d", "e"}
	var templates []model.SurveyTemplate
	for _, id := range ids {
		templates = append(templates, survey(id, section(1, 2), section(2, 1)))
	}

	batch, err := o.MaterializeBatch(context.Background(), templates)
	if err != nil {
		t.Fatalf("MaterializeBatch: %v", err)
	}
	if batch.TotalCount != 5 || batch.SuccessCount != 5 {
		t.Fatalf("unexpected counts: %+v", batch)
	}
	for i, out := range batch.PerTemplate {
		if out.TemplateID != ids[i] {
			t.Errorf("outcome %d is %q, want %q", i, out.TemplateID, ids[i])
		}
	}
	if gw.calls() != 5*(1+2+3) {
		t.Errorf("expected %d gateway calls, got %d", 5*(1+2+3), gw.calls())
	}
}

func TestMaterializeIDs(t *testing.T) {
	gw := newFakeGateway()
	o := newOrchestrator(t, gw, OrchestratorConfig{}, survey("a", section(1, 1)), survey("b", section(1, 1)))

	batch, err := o.MaterializeIDs(context.Background(), []string{"b"})
	if err != nil {
		t.Fatalf("MaterializeIDs: %v", err)
	}
	if batch.TotalCount != 1 || batch.PerTemplate[0].TemplateID != "b" {
		t.Errorf("unexpected batch: %+v", batch)
	}

	if _, err := o.MaterializeIDs(context.Background(), []string{"missing"}); !errors.Is(err, template.ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}

	all, err := o.MaterializeAll(context.Background())
	if err != nil {
		t.Fatalf("MaterializeAll: %v", err)
	}
	if all.TotalCount != 2 {
		t.Errorf("expected both templates, got %d", all.TotalCount)
	}
}

func TestMaterializeTemplate(t *testing.T) {
	gw := newFakeGateway()
	o := newOrchestrator(t, gw, OrchestratorConfig{StrictValidation: true}, template.Builtin()...)

	out, err := o.MaterializeTemplate(context.Background(), "go-fundamentals")
	if err != nil {
		t.Fatalf("MaterializeTemplate: %v", err)
	}
	if !out.Complete() {
		t.Errorf("expected a complete outcome, got %+v", out)
	}
	attempted, created := out.QuestionTotals()
	if attempted != 6 || created != 6 {
		t.Errorf("expected 6/6 questions, got %d/%d", created, attempted)
	}

	if _, err := o.MaterializeTemplate(context.Background(), "nope"); !errors.Is(err, template.ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}
