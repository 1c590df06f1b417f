package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/model"
	"github.com/stemsi/survey-seeder/internal/repository"
)

var (
	ErrSurveyNotFound  = errors.New("survey not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrDuplicateOrder  = errors.New("order already used by a sibling")
)

// SurveyStore persists surveys and reads them back as trees.
type SurveyStore interface {
	Create(ctx context.Context, s *model.Survey) error
	ListPaginated(ctx context.Context, limit, offset int) ([]model.Survey, int, error)
	GetTree(ctx context.Context, id uuid.UUID) (*model.SurveyTree, error)
}

// SectionStore persists sections.
type SectionStore interface {
	Create(ctx context.Context, s *model.Section) error
}

// QuestionStore persists questions with their options.
type QuestionStore interface {
	Create(ctx context.Context, q *model.Question) error
}

var (
	_ SurveyStore   = (*repository.SurveyRepository)(nil)
	_ SectionStore  = (*repository.SectionRepository)(nil)
	_ QuestionStore = (*repository.QuestionRepository)(nil)
)

// CatalogService owns the persistent survey catalog.
type CatalogService struct {
	surveyRepo   SurveyStore
	sectionRepo  SectionStore
	questionRepo QuestionStore
	log          zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	surveyRepo SurveyStore,
	sectionRepo SectionStore,
	questionRepo QuestionStore,
	log zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		surveyRepo:   surveyRepo,
		sectionRepo:  sectionRepo,
		questionRepo: questionRepo,
		log:          log.With().Str("component", "catalog_service").Logger(),
	}
}

// CreateSurvey stores a new survey.
func (s *CatalogService) CreateSurvey(ctx context.Context, meta model.SurveyMetadata) (*model.Survey, error) {
	survey := &model.Survey{
		Title:           meta.Title,
		Description:     meta.Description,
		DurationMinutes: meta.DurationMinutes,
		TotalQuestions:  meta.TotalQuestions,
		PassingScore:    meta.PassingScore,
		MaxAttempts:     meta.MaxAttempts,
	}
	if err := s.surveyRepo.Create(ctx, survey); err != nil {
		return nil, err
	}
	s.log.Debug().Str("survey_id", survey.ID.String()).Msg("Survey created")
	return survey, nil
}

// CreateSection stores a new section under an existing survey.
func (s *CatalogService) CreateSection(ctx context.Context, surveyID uuid.UUID, meta model.SectionMetadata) (*model.Section, error) {
	section := &model.Section{
		SurveyID:       surveyID,
		Title:          meta.Title,
		Description:    meta.Description,
		QuestionsCount: meta.QuestionsCount,
		OrderNum:       meta.Order,
	}
	err := s.sectionRepo.Create(ctx, section)
	switch {
	case errors.Is(err, repository.ErrParentNotFound):
		return nil, ErrSurveyNotFound
	case errors.Is(err, repository.ErrDuplicateOrder):
		return nil, ErrDuplicateOrder
	case err != nil:
		return nil, err
	}
	s.log.Debug().Str("section_id", section.ID.String()).Int("order", section.OrderNum).Msg("Section created")
	return section, nil
}

// CreateQuestion stores a new question and its options under an existing section.
func (s *CatalogService) CreateQuestion(ctx context.Context, sectionID uuid.UUID, payload model.QuestionPayload) (*model.Question, error) {
	question := &model.Question{
		SectionID:    sectionID,
		QuestionText: payload.Text,
		QuestionType: payload.Type,
		Complexity:   payload.Complexity,
		Explanation:  payload.Explanation,
		Points:       payload.Points,
		OrderNum:     payload.Order,
		Options:      make([]model.QuestionOption, len(payload.Options)),
	}
	for i, o := range payload.Options {
		question.Options[i] = model.QuestionOption{OptionText: o.Text, IsCorrect: o.IsCorrect}
	}

	err := s.questionRepo.Create(ctx, question)
	switch {
	case errors.Is(err, repository.ErrParentNotFound):
		return nil, ErrSectionNotFound
	case errors.Is(err, repository.ErrDuplicateOrder):
		return nil, ErrDuplicateOrder
	case err != nil:
		return nil, err
	}
	return question, nil
}

// ListSurveys returns a page of surveys and the total count.
func (s *CatalogService) ListSurveys(ctx context.Context, limit, offset int) ([]model.Survey, int, error) {
	return s.surveyRepo.ListPaginated(ctx, limit, offset)
}

// GetSurveyTree returns a survey with every section, question and option.
func (s *CatalogService) GetSurveyTree(ctx context.Context, id uuid.UUID) (*model.SurveyTree, error) {
	tree, err := s.surveyRepo.GetTree(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSurveyNotFound
	}
	return tree, err
}
