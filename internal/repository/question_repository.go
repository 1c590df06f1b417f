package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/survey-seeder/internal/model"
)

// QuestionRepository handles question and option data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Create inserts a question and its options in one transaction. Options get
// order_num 1..n in slice order.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO questions (section_id, question_text, question_type, complexity, explanation, points, order_num)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		q.SectionID, q.QuestionText, q.QuestionType, q.Complexity, q.Explanation, q.Points, q.OrderNum,
	).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return translate(err)
	}

	batch := &pgx.Batch{}
	for i := range q.Options {
		opt := &q.Options[i]
		opt.QuestionID = q.ID
		opt.OrderNum = i + 1
		batch.Queue(
			`INSERT INTO question_options (question_id, option_text, is_correct, order_num)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			opt.QuestionID, opt.OptionText, opt.IsCorrect, opt.OrderNum,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&opt.ID)
		})
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert options: %w", err)
	}

	return tx.Commit(ctx)
}

// listQuestionsBySurvey loads every question of a survey with options, in
// section then question order.
func listQuestionsBySurvey(ctx context.Context, pool *pgxpool.Pool, surveyID uuid.UUID) ([]model.Question, error) {
	questions, err := scanQuestions(ctx, pool,
		`SELECT q.id, q.section_id, q.question_text, q.question_type, q.complexity, q.explanation, q.points, q.order_num, q.created_at
		 FROM questions q JOIN sections s ON s.id = q.section_id
		 WHERE s.survey_id = $1
		 ORDER BY s.order_num, q.order_num`, surveyID)
	if err != nil {
		return nil, err
	}
	return questions, attachOptions(ctx, pool, questions,
		`SELECT o.id, o.question_id, o.option_text, o.is_correct, o.order_num
		 FROM question_options o
		 JOIN questions q ON q.id = o.question_id
		 JOIN sections s ON s.id = q.section_id
		 WHERE s.survey_id = $1
		 ORDER BY o.question_id, o.order_num`, surveyID)
}

func scanQuestions(ctx context.Context, pool *pgxpool.Pool, query string, arg uuid.UUID) ([]model.Question, error) {
	rows, err := pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.SectionID, &q.QuestionText, &q.QuestionType, &q.Complexity, &q.Explanation, &q.Points, &q.OrderNum, &q.CreatedAt); err != nil {
			return nil, err
		}
		q.Options = []model.QuestionOption{}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func attachOptions(ctx context.Context, pool *pgxpool.Pool, questions []model.Question, query string, arg uuid.UUID) error {
	if len(questions) == 0 {
		return nil
	}
	index := make(map[uuid.UUID]int, len(questions))
	for i, q := range questions {
		index[q.ID] = i
	}

	rows, err := pool.Query(ctx, query, arg)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var o model.QuestionOption
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.OptionText, &o.IsCorrect, &o.OrderNum); err != nil {
			return err
		}
		if i, ok := index[o.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	return rows.Err()
}
