package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/model"
	"github.com/stemsi/survey-seeder/internal/template"
	"golang.org/x/sync/errgroup"
)

// OrchestratorConfig tunes a BatchOrchestrator.
type OrchestratorConfig struct {
	// StrictValidation keeps a template that breaks an invariant from being
	// submitted: it is reported as not created and the rest of the batch
	// still runs. When false, violations are logged and the gateway gets to
	// reject bad payloads itself.
	StrictValidation bool
	// TemplateConcurrency caps how many templates materialize at once.
	TemplateConcurrency int
}

// BatchOrchestrator drives the Materializer over a set of templates.
type BatchOrchestrator struct {
	materializer *Materializer
	templates    *template.Store
	cfg          OrchestratorConfig
	log          zerolog.Logger
}

// NewBatchOrchestrator creates a new BatchOrchestrator over the given template store.
func NewBatchOrchestrator(materializer *Materializer, templates *template.Store, cfg OrchestratorConfig, log zerolog.Logger) *BatchOrchestrator {
	if cfg.TemplateConcurrency < 1 {
		cfg.TemplateConcurrency = 1
	}
	return &BatchOrchestrator{
		materializer: materializer,
		templates:    templates,
		cfg:          cfg,
		log:          log.With().Str("component", "batch_orchestrator").Logger(),
	}
}

// Templates returns the store the orchestrator was built with.
func (o *BatchOrchestrator) Templates() *template.Store {
	return o.templates
}

// MaterializeTemplate materializes a single registered template. Unlike a
// batch, a strict-mode rejection comes back as the *template.ValidationError.
func (o *BatchOrchestrator) MaterializeTemplate(ctx context.Context, id string) (model.SurveyOutcome, error) {
	tpl, ok := o.templates.Get(id)
	if !ok {
		return model.SurveyOutcome{}, fmt.Errorf("%w: %s", template.ErrTemplateNotFound, id)
	}
	rejected, err := o.Preflight([]model.SurveyTemplate{tpl})
	if err != nil {
		return model.SurveyOutcome{}, err
	}
	if rejected[0] != nil {
		return model.SurveyOutcome{}, rejected[0]
	}
	return o.materializer.MaterializeSurvey(ctx, tpl), nil
}

// MaterializeIDs materializes registered templates by id, in the order given.
// An empty list selects every template.
func (o *BatchOrchestrator) MaterializeIDs(ctx context.Context, ids []string) (model.BatchOutcome, error) {
	templates, err := o.templates.Lookup(ids)
	if err != nil {
		return model.BatchOutcome{}, err
	}
	return o.MaterializeBatch(ctx, templates)
}

// MaterializeAll materializes every registered template.
func (o *BatchOrchestrator) MaterializeAll(ctx context.Context) (model.BatchOutcome, error) {
	return o.MaterializeIDs(ctx, nil)
}

// MaterializeBatch attempts every template and never stops early on a
// template failure. The only error it returns is a malformed template,
// found before any creation call is made.
func (o *BatchOrchestrator) MaterializeBatch(ctx context.Context, templates []model.SurveyTemplate) (model.BatchOutcome, error) {
	rejected, err := o.Preflight(templates)
	if err != nil {
		return model.BatchOutcome{}, err
	}

	o.log.Info().
		Int("templates", len(templates)).
		Int("concurrency", o.cfg.TemplateConcurrency).
		Str("run_id", RunIDFromContext(ctx)).
		Msg("Batch materialization started")

	outcomes := make([]model.SurveyOutcome, len(templates))
	for i, verr := range rejected {
		if verr != nil {
			outcomes[i] = rejectedOutcome(verr)
		}
	}

	if o.cfg.TemplateConcurrency <= 1 {
		for i, tpl := range templates {
			if rejected[i] == nil {
				outcomes[i] = o.materializer.MaterializeSurvey(ctx, tpl)
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(o.cfg.TemplateConcurrency)
		for i, tpl := range templates {
			if rejected[i] != nil {
				continue
			}
			g.Go(func() error {
				outcomes[i] = o.materializer.MaterializeSurvey(ctx, tpl)
				return nil
			})
		}
		_ = g.Wait()
	}

	batch := summarizeBatch(outcomes)

	evt := o.log.Info()
	if !batch.Succeeded() {
		evt = o.log.Warn()
	}
	evt.
		Int("success", batch.SuccessCount).
		Int("total", batch.TotalCount).
		Int("complete", batch.CompleteCount()).
		Msg("Batch materialization finished")

	return batch, nil
}

// Preflight checks templates before any creation call. A malformed template
// fails the whole call. In strict mode, rejected[i] holds the invariant
// violations of templates[i]; otherwise they are only logged and every
// entry is nil.
func (o *BatchOrchestrator) Preflight(templates []model.SurveyTemplate) (rejected []*template.ValidationError, err error) {
	for _, tpl := range templates {
		if err := template.CheckShape(tpl); err != nil {
			return nil, err
		}
	}

	rejected = make([]*template.ValidationError, len(templates))
	for i, tpl := range templates {
		problems := template.Problems(tpl)
		if len(problems) == 0 {
			continue
		}
		evt := o.log.Warn().Str("template_id", tpl.ID).Strs("problems", problems)
		if o.cfg.StrictValidation {
			rejected[i] = &template.ValidationError{TemplateID: tpl.ID, Problems: problems}
			evt.Msg("Template breaks invariants, not submitting it")
			continue
		}
		evt.Msg("Template breaks invariants, submitting anyway")
	}
	return rejected, nil
}

// rejectedOutcome reports a template that validation kept from the gateway.
func rejectedOutcome(verr *template.ValidationError) model.SurveyOutcome {
	return model.SurveyOutcome{
		TemplateID:      verr.TemplateID,
		SectionOutcomes: []model.SectionOutcome{},
		Message:         "template rejected: " + strings.Join(verr.Problems, "; "),
	}
}

// summarizeBatch counts templates whose survey was created.
func summarizeBatch(outcomes []model.SurveyOutcome) model.BatchOutcome {
	batch := model.BatchOutcome{
		PerTemplate: outcomes,
		TotalCount:  len(outcomes),
	}
	for _, o := range outcomes {
		if o.SurveyCreated {
			batch.SuccessCount++
		}
	}
	return batch
}
