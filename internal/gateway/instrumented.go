package gateway

import (
	"context"
	"time"

	"github.com/stemsi/survey-seeder/internal/model"
	"github.com/stemsi/survey-seeder/internal/monitoring"
	"github.com/stemsi/survey-seeder/internal/service"
)

// Instrumented records call counts and latency for any gateway.
type Instrumented struct {
	next service.EntityGateway
}

// Instrument wraps next with Prometheus metrics.
func Instrument(next service.EntityGateway) *Instrumented {
	return &Instrumented{next: next}
}

func (i *Instrumented) CreateSurvey(ctx context.Context, meta model.SurveyMetadata) (model.CreationResult, error) {
	start := time.Now()
	res, err := i.next.CreateSurvey(ctx, meta)
	observe("survey", start, res, err)
	return res, err
}

func (i *Instrumented) CreateSection(ctx context.Context, surveyID string, meta model.SectionMetadata) (model.CreationResult, error) {
	start := time.Now()
	res, err := i.next.CreateSection(ctx, surveyID, meta)
	observe("section", start, res, err)
	return res, err
}

func (i *Instrumented) CreateQuestion(ctx context.Context, payload model.QuestionPayload) (model.CreationResult, error) {
	start := time.Now()
	res, err := i.next.CreateQuestion(ctx, payload)
	observe("question", start, res, err)
	return res, err
}

func observe(entity string, start time.Time, res model.CreationResult, err error) {
	result := "created"
	switch {
	case err != nil:
		result = "error"
	case !res.Success:
		result = "rejected"
	}
	monitoring.GatewayCalls.WithLabelValues(entity, result).Inc()
	monitoring.GatewayDuration.WithLabelValues(entity).Observe(time.Since(start).Seconds())
}
