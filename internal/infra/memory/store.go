package memory

import (
	"context"
	"slices"
	"sync"

	"quizhub-service/internal/domain"
)

type attemptKey struct {
	quizID uint64
	user   string
}

// Store is an in-memory implementation of app.Store, the default when neither
// Redis nor Postgres is configured. Slices are copied on the way in and out so
// callers never alias stored state.
type Store struct {
	mu             sync.RWMutex
	nextQuizID     uint64
	quizzes        map[uint64]domain.QuizSet
	attempts       map[attemptKey]domain.Attempt
	leaderboards   map[uint64][]domain.LeaderboardEntry
	participations map[string][]uint64
	events         []domain.Event
}

func NewStore() *Store {
	return &Store{
		nextQuizID:     1,
		quizzes:        make(map[uint64]domain.QuizSet),
		attempts:       make(map[attemptKey]domain.Attempt),
		leaderboards:   make(map[uint64][]domain.LeaderboardEntry),
		participations: make(map[string][]uint64),
	}
}

func (s *Store) NextQuizID(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextQuizID, nil
}

func (s *Store) SetNextQuizID(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextQuizID = id
	return nil
}

func (s *Store) InsertQuiz(_ context.Context, quiz domain.QuizSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *Store) GetQuiz(_ context.Context, quizID uint64) (domain.QuizSet, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	return quiz, ok, nil
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.QuizSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quizzes := make([]domain.QuizSet, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

func (s *Store) GetAttempt(_ context.Context, quizID uint64, user string) (domain.Attempt, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptKey{quizID, user}]
	return attempt, ok, nil
}

func (s *Store) InsertAttempt(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attemptKey{attempt.QuizID, attempt.User}] = attempt
	return nil
}

func (s *Store) ListQuizAttempts(_ context.Context, quizID uint64) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var attempts []domain.Attempt
	for key, attempt := range s.attempts {
		if key.quizID == quizID {
			attempts = append(attempts, attempt)
		}
	}
	return attempts, nil
}

func (s *Store) ListUserAttempts(_ context.Context, user string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var attempts []domain.Attempt
	for key, attempt := range s.attempts {
		if key.user == user {
			attempts = append(attempts, attempt)
		}
	}
	return attempts, nil
}

func (s *Store) ListAttempts(_ context.Context) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempts := make([]domain.Attempt, 0, len(s.attempts))
	for _, attempt := range s.attempts {
		attempts = append(attempts, attempt)
	}
	return attempts, nil
}

func (s *Store) GetLeaderboard(_ context.Context, quizID uint64) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.leaderboards[quizID]), nil
}

func (s *Store) PutLeaderboard(_ context.Context, quizID uint64, entries []domain.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaderboards[quizID] = slices.Clone(entries)
	return nil
}

func (s *Store) GetParticipations(_ context.Context, user string) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.participations[user]), nil
}

func (s *Store) PutParticipations(_ context.Context, user string, quizIDs []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participations[user] = slices.Clone(quizIDs)
	return nil
}

func (s *Store) AppendEvent(_ context.Context, event domain.Event) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.Seq = uint64(len(s.events)) + 1
	s.events = append(s.events, event)
	return event.Seq, nil
}

func (s *Store) EventsSince(_ context.Context, after uint64) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if after >= uint64(len(s.events)) {
		return nil, nil
	}
	return slices.Clone(s.events[after:]), nil
}
