package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quizhub-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Store is a Postgres implementation of app.Store. Domain records are kept as
// JSONB documents keyed by their domain identifiers; the event log uses a
// BIGSERIAL column as the sequence number so commit order is the stream order.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) NextQuizID(ctx context.Context) (uint64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `SELECT next_quiz_id FROM quiz_counter WHERE id=1`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read quiz counter: %w", err)
	}
	return uint64(id), nil
}

func (s *Store) SetNextQuizID(ctx context.Context, id uint64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_counter (id, next_quiz_id) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET next_quiz_id=EXCLUDED.next_quiz_id`, int64(id))
	if err != nil {
		return fmt.Errorf("set quiz counter: %w", err)
	}
	return nil
}

func (s *Store) InsertQuiz(ctx context.Context, quiz domain.QuizSet) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO quizzes (id, data) VALUES ($1, $2)`, int64(quiz.ID), data)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *Store) GetQuiz(ctx context.Context, quizID uint64) (domain.QuizSet, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, int64(quizID)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizSet{}, false, nil
	}
	if err != nil {
		return domain.QuizSet{}, false, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.QuizSet
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.QuizSet{}, false, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, true, nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.QuizSet, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM quizzes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []domain.QuizSet
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var quiz domain.QuizSet
		if err := json.Unmarshal(raw, &quiz); err != nil {
			return nil, fmt.Errorf("unmarshal quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func (s *Store) GetAttempt(ctx context.Context, quizID uint64, user string) (domain.Attempt, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM attempts WHERE quiz_id=$1 AND user_name=$2`, int64(quizID), user).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, false, nil
	}
	if err != nil {
		return domain.Attempt{}, false, fmt.Errorf("load attempt: %w", err)
	}
	var attempt domain.Attempt
	if err := json.Unmarshal(raw, &attempt); err != nil {
		return domain.Attempt{}, false, fmt.Errorf("unmarshal attempt: %w", err)
	}
	return attempt, true, nil
}

func (s *Store) InsertAttempt(ctx context.Context, attempt domain.Attempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO attempts (quiz_id, user_name, data) VALUES ($1, $2, $3)`,
		int64(attempt.QuizID), attempt.User, data)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *Store) ListQuizAttempts(ctx context.Context, quizID uint64) ([]domain.Attempt, error) {
	return s.listAttempts(ctx, `SELECT data FROM attempts WHERE quiz_id=$1`, int64(quizID))
}

func (s *Store) ListUserAttempts(ctx context.Context, user string) ([]domain.Attempt, error) {
	return s.listAttempts(ctx, `SELECT data FROM attempts WHERE user_name=$1`, user)
}

func (s *Store) ListAttempts(ctx context.Context) ([]domain.Attempt, error) {
	return s.listAttempts(ctx, `SELECT data FROM attempts`)
}

func (s *Store) listAttempts(ctx context.Context, query string, args ...interface{}) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.Attempt
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var attempt domain.Attempt
		if err := json.Unmarshal(raw, &attempt); err != nil {
			return nil, fmt.Errorf("unmarshal attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

func (s *Store) GetLeaderboard(ctx context.Context, quizID uint64) ([]domain.LeaderboardEntry, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM leaderboards WHERE quiz_id=$1`, int64(quizID)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal leaderboard: %w", err)
	}
	return entries, nil
}

func (s *Store) PutLeaderboard(ctx context.Context, quizID uint64, entries []domain.LeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO leaderboards (quiz_id, data) VALUES ($1, $2)
		 ON CONFLICT (quiz_id) DO UPDATE SET data=EXCLUDED.data`, int64(quizID), data)
	if err != nil {
		return fmt.Errorf("put leaderboard: %w", err)
	}
	return nil
}

func (s *Store) GetParticipations(ctx context.Context, user string) ([]uint64, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT quiz_ids FROM participations WHERE user_name=$1`, user).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load participations: %w", err)
	}
	var quizIDs []uint64
	if err := json.Unmarshal(raw, &quizIDs); err != nil {
		return nil, fmt.Errorf("unmarshal participations: %w", err)
	}
	return quizIDs, nil
}

func (s *Store) PutParticipations(ctx context.Context, user string, quizIDs []uint64) error {
	data, err := json.Marshal(quizIDs)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO participations (user_name, quiz_ids) VALUES ($1, $2)
		 ON CONFLICT (user_name) DO UPDATE SET quiz_ids=EXCLUDED.quiz_ids`, user, data)
	if err != nil {
		return fmt.Errorf("put participations: %w", err)
	}
	return nil
}

func (s *Store) AppendEvent(ctx context.Context, event domain.Event) (uint64, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return 0, err
	}
	var seq int64
	err = s.pool.QueryRow(ctx,
		`INSERT INTO events (data) VALUES ($1) RETURNING seq`, data).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	return uint64(seq), nil
}

func (s *Store) EventsSince(ctx context.Context, after uint64) ([]domain.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT seq, data FROM events WHERE seq > $1 ORDER BY seq`, int64(after))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			seq int64
			raw []byte
		)
		if err := rows.Scan(&seq, &raw); err != nil {
			return nil, err
		}
		var event domain.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("unmarshal event: %w", err)
		}
		event.Seq = uint64(seq)
		events = append(events, event)
	}
	return events, rows.Err()
}
