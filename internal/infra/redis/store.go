package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"quizhub-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	nextQuizIDKey = "quizhub:next_quiz_id"
	quizzesKey    = "quizhub:quizzes"
	attemptsKey   = "quizhub:attempts"
	eventsKey     = "quizhub:events"
)

// Store is a Redis implementation of app.Store. Quizzes and attempts live in
// hashes keyed by id, leaderboards and participations as JSON strings, the
// event log as a list whose position is the sequence number. The engine
// serializes mutations, so read-modify-write here needs no Redis locking.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) NextQuizID(ctx context.Context) (uint64, error) {
	raw, err := s.client.Get(ctx, nextQuizIDKey).Result()
	if errors.Is(err, redis.Nil) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt quiz counter %q: %w", raw, err)
	}
	return id, nil
}

func (s *Store) SetNextQuizID(ctx context.Context, id uint64) error {
	return s.client.Set(ctx, nextQuizIDKey, strconv.FormatUint(id, 10), 0).Err()
}

func (s *Store) InsertQuiz(ctx context.Context, quiz domain.QuizSet) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, quizzesKey, strconv.FormatUint(quiz.ID, 10), data).Err()
}

func (s *Store) GetQuiz(ctx context.Context, quizID uint64) (domain.QuizSet, bool, error) {
	raw, err := s.client.HGet(ctx, quizzesKey, strconv.FormatUint(quizID, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.QuizSet{}, false, nil
	}
	if err != nil {
		return domain.QuizSet{}, false, err
	}
	var quiz domain.QuizSet
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
		return domain.QuizSet{}, false, err
	}
	return quiz, true, nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.QuizSet, error) {
	values, err := s.client.HVals(ctx, quizzesKey).Result()
	if err != nil {
		return nil, err
	}
	quizzes := make([]domain.QuizSet, 0, len(values))
	for _, raw := range values {
		var quiz domain.QuizSet
		if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

func (s *Store) GetAttempt(ctx context.Context, quizID uint64, user string) (domain.Attempt, bool, error) {
	raw, err := s.client.HGet(ctx, attemptsKey, attemptField(quizID, user)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Attempt{}, false, nil
	}
	if err != nil {
		return domain.Attempt{}, false, err
	}
	var attempt domain.Attempt
	if err := json.Unmarshal([]byte(raw), &attempt); err != nil {
		return domain.Attempt{}, false, err
	}
	return attempt, true, nil
}

func (s *Store) InsertAttempt(ctx context.Context, attempt domain.Attempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, attemptsKey, attemptField(attempt.QuizID, attempt.User), data).Err()
}

func (s *Store) ListQuizAttempts(ctx context.Context, quizID uint64) ([]domain.Attempt, error) {
	attempts, err := s.ListAttempts(ctx)
	if err != nil {
		return nil, err
	}
	filtered := attempts[:0]
	for _, attempt := range attempts {
		if attempt.QuizID == quizID {
			filtered = append(filtered, attempt)
		}
	}
	return filtered, nil
}

func (s *Store) ListUserAttempts(ctx context.Context, user string) ([]domain.Attempt, error) {
	attempts, err := s.ListAttempts(ctx)
	if err != nil {
		return nil, err
	}
	filtered := attempts[:0]
	for _, attempt := range attempts {
		if attempt.User == user {
			filtered = append(filtered, attempt)
		}
	}
	return filtered, nil
}

func (s *Store) ListAttempts(ctx context.Context) ([]domain.Attempt, error) {
	values, err := s.client.HVals(ctx, attemptsKey).Result()
	if err != nil {
		return nil, err
	}
	attempts := make([]domain.Attempt, 0, len(values))
	for _, raw := range values {
		var attempt domain.Attempt
		if err := json.Unmarshal([]byte(raw), &attempt); err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, nil
}

func (s *Store) GetLeaderboard(ctx context.Context, quizID uint64) ([]domain.LeaderboardEntry, error) {
	raw, err := s.client.Get(ctx, leaderboardKey(quizID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) PutLeaderboard(ctx context.Context, quizID uint64, entries []domain.LeaderboardEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, leaderboardKey(quizID), data, 0).Err()
}

func (s *Store) GetParticipations(ctx context.Context, user string) ([]uint64, error) {
	raw, err := s.client.Get(ctx, participationsKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var quizIDs []uint64
	if err := json.Unmarshal([]byte(raw), &quizIDs); err != nil {
		return nil, err
	}
	return quizIDs, nil
}

func (s *Store) PutParticipations(ctx context.Context, user string, quizIDs []uint64) error {
	data, err := json.Marshal(quizIDs)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, participationsKey(user), data, 0).Err()
}

func (s *Store) AppendEvent(ctx context.Context, event domain.Event) (uint64, error) {
	length, err := s.client.LLen(ctx, eventsKey).Result()
	if err != nil {
		return 0, err
	}
	event.Seq = uint64(length) + 1
	data, err := json.Marshal(event)
	if err != nil {
		return 0, err
	}
	if err := s.client.RPush(ctx, eventsKey, data).Err(); err != nil {
		return 0, err
	}
	return event.Seq, nil
}

func (s *Store) EventsSince(ctx context.Context, after uint64) ([]domain.Event, error) {
	values, err := s.client.LRange(ctx, eventsKey, int64(after), -1).Result()
	if err != nil {
		return nil, err
	}
	events := make([]domain.Event, 0, len(values))
	for _, raw := range values {
		var event domain.Event
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func attemptField(quizID uint64, user string) string {
	return strconv.FormatUint(quizID, 10) + ":" + user
}

func leaderboardKey(quizID uint64) string {
	return "quizhub:leaderboard:" + strconv.FormatUint(quizID, 10)
}

func participationsKey(user string) string {
	return "quizhub:participations:" + user
}
