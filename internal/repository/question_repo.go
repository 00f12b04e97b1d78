package repository

import (
	"context"
	"fmt"

	"github.com/KoshmareG/KHSM/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

const questionsTable = "questions"

// QuestionRepository is the question bank in Postgres.
type QuestionRepository struct {
	db *pgxpool.Pool
}

func NewQuestionRepository(db *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// DrawQuestions picks one random question for every level 0..levels-1.
func (r *QuestionRepository) DrawQuestions(ctx context.Context, levels int) ([]domain.Question, error) {
	sqlStr, args, err := psql.Select(
		"DISTINCT ON (level) id", "level", "text", "answer1", "answer2", "answer3", "answer4", "correct_index",
	).
		From(questionsTable).
		Where(sq.Lt{"level": levels}).
		OrderBy("level", "random()").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := conn(ctx, r.db).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Question, 0, levels)
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Level, &q.Text,
			&q.Answers[0], &q.Answers[1], &q.Answers[2], &q.Answers[3], &q.CorrectIndex); err != nil {
			return nil, err
		}
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// по одному вопросу на каждый уровень, иначе игру не начать
	for i := 0; i < levels; i++ {
		if i >= len(result) || result[i].Level != i {
			return nil, fmt.Errorf("%w: level %d", ErrNotEnoughQuestions, i)
		}
	}
	return result, nil
}

// Create inserts a question and sets its id.
func (r *QuestionRepository) Create(ctx context.Context, q *domain.Question) error {
	sqlStr, args, err := psql.Insert(questionsTable).
		Columns("level", "text", "answer1", "answer2", "answer3", "answer4", "correct_index").
		Values(q.Level, q.Text, q.Answers[0], q.Answers[1], q.Answers[2], q.Answers[3], q.CorrectIndex).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}
	return conn(ctx, r.db).QueryRow(ctx, sqlStr, args...).Scan(&q.ID)
}

// CountByLevel returns how many questions each level has.
func (r *QuestionRepository) CountByLevel(ctx context.Context) (map[int]int, error) {
	sqlStr, args, err := psql.Select("level", "count(*)").
		From(questionsTable).
		GroupBy("level").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := conn(ctx, r.db).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[int]int)
	for rows.Next() {
		var level, n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, err
		}
		res[level] = n
	}
	return res, rows.Err()
}
