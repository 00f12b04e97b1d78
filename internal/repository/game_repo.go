package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KoshmareG/KHSM/internal/domain"
	"github.com/KoshmareG/KHSM/internal/game"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	gamesTable         = "games"
	gameQuestionsTable = "game_questions"

	// частичный уникальный индекс: одна незавершённая игра на пользователя
	activeGameIndex = "games_one_active_per_user"
)

var gameColumns = []string{
	"id", "user_id", "current_level", "is_failed", "prize",
	"fifty_fifty_used", "audience_help_used", "friend_call_used",
	"created_at", "finished_at",
}

// GameRepository stores games and their questions in Postgres.
type GameRepository struct {
	db *pgxpool.Pool
}

func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db}
}

// Create inserts the game row and all of its questions.
func (r *GameRepository) Create(ctx context.Context, s *game.State) error {
	query := psql.Insert(gamesTable).
		Columns(gameColumns...).
		Values(s.ID, s.UserID, s.CurrentLevel, s.IsFailed, s.Prize,
			s.FiftyFiftyUsed, s.AudienceHelpUsed, s.FriendCallUsed,
			s.CreatedAt, s.FinishedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}
	if _, err := conn(ctx, r.db).Exec(ctx, sqlStr, args...); err != nil {
		if isUniqueViolation(err, activeGameIndex) {
			return ErrActiveGameExists
		}
		return fmt.Errorf("insert game: %w", err)
	}

	if len(s.Questions) == 0 {
		return nil
	}

	qi := psql.Insert(gameQuestionsTable).
		Columns("game_id", "level", "question_id", "mapping", "help")
	for _, q := range s.Questions {
		help, err := json.Marshal(q.Help)
		if err != nil {
			return err
		}
		qi = qi.Values(s.ID, q.Level, q.Question.ID, mappingToDB(q.Mapping), help)
	}

	sqlStr, args, err = qi.ToSql()
	if err != nil {
		return err
	}
	if _, err := conn(ctx, r.db).Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert game questions: %w", err)
	}
	return nil
}

// Save updates the mutable part of a game: level, flags, prize, finish
// time and the help records of its questions.
func (r *GameRepository) Save(ctx context.Context, s *game.State) error {
	query := psql.Update(gamesTable).
		Set("current_level", s.CurrentLevel).
		Set("is_failed", s.IsFailed).
		Set("prize", s.Prize).
		Set("fifty_fifty_used", s.FiftyFiftyUsed).
		Set("audience_help_used", s.AudienceHelpUsed).
		Set("friend_call_used", s.FriendCallUsed).
		Set("finished_at", s.FinishedAt).
		Where(sq.Eq{"id": s.ID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := conn(ctx, r.db).Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	batch := &pgx.Batch{}
	for _, q := range s.Questions {
		help, err := json.Marshal(q.Help)
		if err != nil {
			return err
		}
		sqlStr, args, err := psql.Update(gameQuestionsTable).
			Set("help", help).
			Where(sq.Eq{"game_id": s.ID, "level": q.Level}).
			ToSql()
		if err != nil {
			return err
		}
		batch.Queue(sqlStr, args...)
	}
	if batch.Len() == 0 {
		return nil
	}

	br := conn(ctx, r.db).SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("update game question help: %w", err)
		}
	}
	return br.Close()
}

// GetByID loads a game with its questions and locks the game row when
// called inside a transaction.
func (r *GameRepository) GetByID(ctx context.Context, id string) (*game.State, error) {
	sqlStr, args, err := psql.Select(gameColumns...).
		From(gamesTable).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, err
	}

	s, err := scanGame(conn(ctx, r.db).QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.Questions, err = r.loadQuestions(ctx, id); err != nil {
		return nil, err
	}
	return s, nil
}

// GetActiveByUser returns the unfinished game of the user.
func (r *GameRepository) GetActiveByUser(ctx context.Context, userID int64) (*game.State, error) {
	sqlStr, args, err := psql.Select("id").
		From(gamesTable).
		Where(sq.Eq{"user_id": userID, "finished_at": nil}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var id string
	if err := conn(ctx, r.db).QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// ListByUser returns the user's games, newest first, without questions.
func (r *GameRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*game.State, error) {
	if limit <= 0 {
		limit = 100
	}

	sqlStr, args, err := psql.Select(gameColumns...).
		From(gamesTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := conn(ctx, r.db).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*game.State
	for rows.Next() {
		s, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *GameRepository) loadQuestions(ctx context.Context, gameID string) ([]*game.GameQuestion, error) {
	sqlStr, args, err := psql.Select(
		"gq.level", "gq.mapping", "gq.help",
		"q.id", "q.level", "q.text", "q.answer1", "q.answer2", "q.answer3", "q.answer4", "q.correct_index",
	).
		From(gameQuestionsTable + " gq").
		Join(questionsTable + " q ON q.id = gq.question_id").
		Where(sq.Eq{"gq.game_id": gameID}).
		OrderBy("gq.level").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := conn(ctx, r.db).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*game.GameQuestion
	for rows.Next() {
		var (
			gq      game.GameQuestion
			mapping []int32
			help    []byte
			q       domain.Question
		)
		if err := rows.Scan(&gq.Level, &mapping, &help,
			&q.ID, &q.Level, &q.Text, &q.Answers[0], &q.Answers[1], &q.Answers[2], &q.Answers[3], &q.CorrectIndex,
		); err != nil {
			return nil, err
		}

		if gq.Mapping, err = mappingFromDB(mapping); err != nil {
			return nil, fmt.Errorf("game %s level %d: %w", gameID, gq.Level, err)
		}
		if len(help) > 0 {
			if err := json.Unmarshal(help, &gq.Help); err != nil {
				return nil, fmt.Errorf("game %s level %d help: %w", gameID, gq.Level, err)
			}
		}
		gq.Question = q
		result = append(result, &gq)
	}
	return result, rows.Err()
}

func scanGame(row pgx.Row) (*game.State, error) {
	var s game.State
	err := row.Scan(&s.ID, &s.UserID, &s.CurrentLevel, &s.IsFailed, &s.Prize,
		&s.FiftyFiftyUsed, &s.AudienceHelpUsed, &s.FriendCallUsed,
		&s.CreatedAt, &s.FinishedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func mappingToDB(m [domain.AnswersCount]int) []int32 {
	res := make([]int32, len(m))
	for i, v := range m {
		res[i] = int32(v)
	}
	return res
}

func mappingFromDB(v []int32) ([domain.AnswersCount]int, error) {
	var m [domain.AnswersCount]int
	if len(v) != domain.AnswersCount {
		return m, fmt.Errorf("mapping has %d slots", len(v))
	}
	for i, x := range v {
		m[i] = int(x)
	}
	return m, nil
}
