package gateway

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/model"
	"github.com/stemsi/survey-seeder/internal/service"
)

var _ service.EntityGateway = (*StoreGateway)(nil)

// Catalog is the part of service.CatalogService the store gateway needs.
type Catalog interface {
	CreateSurvey(ctx context.Context, meta model.SurveyMetadata) (*model.Survey, error)
	CreateSection(ctx context.Context, surveyID uuid.UUID, meta model.SectionMetadata) (*model.Section, error)
	CreateQuestion(ctx context.Context, sectionID uuid.UUID, payload model.QuestionPayload) (*model.Question, error)
}

// StoreGateway writes entities straight into the catalog store, bypassing HTTP.
// Domain rejections (unknown parent, taken order, bad id) are reported
// failures; anything else, such as a lost database connection, is returned as an error.
type StoreGateway struct {
	catalog Catalog
	log     zerolog.Logger
}

// NewStoreGateway creates a new StoreGateway.
func NewStoreGateway(catalog Catalog, log zerolog.Logger) *StoreGateway {
	return &StoreGateway{
		catalog: catalog,
		log:     log.With().Str("component", "store_gateway").Logger(),
	}
}

// CreateSurvey implements service.EntityGateway.
func (g *StoreGateway) CreateSurvey(ctx context.Context, meta model.SurveyMetadata) (model.CreationResult, error) {
	survey, err := g.catalog.CreateSurvey(ctx, meta)
	if err != nil {
		return g.rejectOrRaise("survey", err)
	}
	return created(survey.ID), nil
}

// CreateSection implements service.EntityGateway.
func (g *StoreGateway) CreateSection(ctx context.Context, surveyID string, meta model.SectionMetadata) (model.CreationResult, error) {
	id, err := uuid.Parse(surveyID)
	if err != nil {
		return g.reject("section", "invalid survey id "+surveyID), nil
	}
	section, err := g.catalog.CreateSection(ctx, id, meta)
	if err != nil {
		return g.rejectOrRaise("section", err)
	}
	return created(section.ID), nil
}

// CreateQuestion implements service.EntityGateway.
func (g *StoreGateway) CreateQuestion(ctx context.Context, payload model.QuestionPayload) (model.CreationResult, error) {
	id, err := uuid.Parse(payload.SectionID)
	if err != nil {
		return g.reject("question", "invalid section id "+payload.SectionID), nil
	}
	question, err := g.catalog.CreateQuestion(ctx, id, payload)
	if err != nil {
		return g.rejectOrRaise("question", err)
	}
	return created(question.ID), nil
}

func created(id uuid.UUID) model.CreationResult {
	return model.CreationResult{Success: true, CreatedID: id.String(), Message: "created"}
}

func (g *StoreGateway) rejectOrRaise(entity string, err error) (model.CreationResult, error) {
	switch {
	case errors.Is(err, service.ErrSurveyNotFound),
		errors.Is(err, service.ErrSectionNotFound),
		errors.Is(err, service.ErrDuplicateOrder):
		return g.reject(entity, err.Error()), nil
	}
	return model.CreationResult{}, err
}

func (g *StoreGateway) reject(entity, reason string) model.CreationResult {
	g.log.Warn().Str("entity", entity).Str("reason", reason).Msg("Catalog rejected entity")
	return model.CreationResult{Success: false, Message: reason}
}
