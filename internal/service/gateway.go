package service

import (
	"context"

	"github.com/stemsi/survey-seeder/internal/model"
)

// EntityGateway creates catalog entities on behalf of the seeding pipeline.
//
// A returned error means the call itself broke (transport failure, timeout,
// cancelled context). A CreationResult with Success=false means the gateway
// answered and refused. The pipeline treats both as a failed creation and
// never retries or dedupes on its own.
type EntityGateway interface {
	CreateSurvey(ctx context.Context, meta model.SurveyMetadata) (model.CreationResult, error)
	CreateSection(ctx context.Context, surveyID string, meta model.SectionMetadata) (model.CreationResult, error)
	CreateQuestion(ctx context.Context, payload model.QuestionPayload) (model.CreationResult, error)
}
