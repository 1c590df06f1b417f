package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/survey-seeder/internal/model"
)

// SectionRepository handles section data access.
type SectionRepository struct {
	pool *pgxpool.Pool
}

// NewSectionRepository creates a new SectionRepository.
func NewSectionRepository(pool *pgxpool.Pool) *SectionRepository {
	return &SectionRepository{pool: pool}
}

// Create inserts a new section. Returns ErrParentNotFound for an unknown
// survey and ErrDuplicateOrder when the order is already used in that survey.
func (r *SectionRepository) Create(ctx context.Context, s *model.Section) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sections (survey_id, title, description, questions_count, order_num)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		s.SurveyID, s.Title, s.Description, s.QuestionsCount, s.OrderNum,
	).Scan(&s.ID, &s.CreatedAt)
	return translate(err)
}

func listSections(ctx context.Context, pool *pgxpool.Pool, surveyID uuid.UUID) ([]model.Section, error) {
	rows, err := pool.Query(ctx,
		`SELECT id, survey_id, title, description, questions_count, order_num, created_at
		 FROM sections WHERE survey_id = $1
		 ORDER BY order_num`, surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []model.Section
	for rows.Next() {
		var s model.Section
		if err := rows.Scan(&s.ID, &s.SurveyID, &s.Title, &s.Description, &s.QuestionsCount, &s.OrderNum, &s.CreatedAt); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}
