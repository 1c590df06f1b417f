package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/survey-seeder/internal/model"
)

// SurveyRepository handles survey data access.
type SurveyRepository struct {
	pool *pgxpool.Pool
}

// NewSurveyRepository creates a new SurveyRepository.
func NewSurveyRepository(pool *pgxpool.Pool) *SurveyRepository {
	return &SurveyRepository{pool: pool}
}

// Create inserts a new survey.
func (r *SurveyRepository) Create(ctx context.Context, s *model.Survey) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO surveys (title, description, duration_minutes, total_questions, passing_score, max_attempts)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		s.Title, s.Description, s.DurationMinutes, s.TotalQuestions, s.PassingScore, s.MaxAttempts,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a survey without its children.
func (r *SurveyRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Survey, error) {
	s := &model.Survey{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, duration_minutes, total_questions, passing_score, max_attempts, created_at, updated_at
		 FROM surveys WHERE id = $1`, id,
	).Scan(&s.ID, &s.Title, &s.Description, &s.DurationMinutes, &s.TotalQuestions, &s.PassingScore, &s.MaxAttempts, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListPaginated retrieves surveys, newest first, with the total count.
func (r *SurveyRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.Survey, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM surveys`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, duration_minutes, total_questions, passing_score, max_attempts, created_at, updated_at
		 FROM surveys ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	surveys := []model.Survey{}
	for rows.Next() {
		var s model.Survey
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.DurationMinutes, &s.TotalQuestions, &s.PassingScore, &s.MaxAttempts, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		surveys = append(surveys, s)
	}
	return surveys, total, rows.Err()
}

// GetTree loads a survey with its sections, questions and options, each level ordered by order_num.
func (r *SurveyRepository) GetTree(ctx context.Context, id uuid.UUID) (*model.SurveyTree, error) {
	survey, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tree := &model.SurveyTree{Survey: *survey, Sections: []model.SectionTree{}}

	sections, err := listSections(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	questions, err := listQuestionsBySurvey(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}

	bySection := make(map[uuid.UUID][]model.Question, len(sections))
	for _, q := range questions {
		bySection[q.SectionID] = append(bySection[q.SectionID], q)
	}
	for _, s := range sections {
		qs := bySection[s.ID]
		if qs == nil {
			qs = []model.Question{}
		}
		tree.Sections = append(tree.Sections, model.SectionTree{Section: s, Questions: qs})
	}
	return tree, nil
}
