package app

import (
	"context"

	"quizhub-service/internal/domain"
)

// QuizStore owns quiz records and the sequential id counter.
type QuizStore interface {
	// NextQuizID returns the id the next created quiz will receive. Starts at 1.
	NextQuizID(ctx context.Context) (uint64, error)
	SetNextQuizID(ctx context.Context, id uint64) error
	InsertQuiz(ctx context.Context, quiz domain.QuizSet) error
	GetQuiz(ctx context.Context, quizID uint64) (domain.QuizSet, bool, error)
	ListQuizzes(ctx context.Context) ([]domain.QuizSet, error)
}

// AttemptStore owns attempt records keyed by (quiz id, user).
type AttemptStore interface {
	GetAttempt(ctx context.Context, quizID uint64, user string) (domain.Attempt, bool, error)
	InsertAttempt(ctx context.Context, attempt domain.Attempt) error
	ListQuizAttempts(ctx context.Context, quizID uint64) ([]domain.Attempt, error)
	ListUserAttempts(ctx context.Context, user string) ([]domain.Attempt, error)
	ListAttempts(ctx context.Context) ([]domain.Attempt, error)
}

// LeaderboardStore holds the denormalized per-quiz leaderboard cache.
type LeaderboardStore interface {
	GetLeaderboard(ctx context.Context, quizID uint64) ([]domain.LeaderboardEntry, error)
	PutLeaderboard(ctx context.Context, quizID uint64, entries []domain.LeaderboardEntry) error
}

// ParticipationStore holds the per-user set of attempted quiz ids.
type ParticipationStore interface {
	GetParticipations(ctx context.Context, user string) ([]uint64, error)
	PutParticipations(ctx context.Context, user string, quizIDs []uint64) error
}

// EventLog is the append-only record of committed operations. Appended events
// receive a monotonically increasing sequence number; past entries never change.
type EventLog interface {
	AppendEvent(ctx context.Context, event domain.Event) (uint64, error)
	// EventsSince returns all events with Seq > after, in sequence order.
	EventsSince(ctx context.Context, after uint64) ([]domain.Event, error)
}

// Store is the full persistence surface the engine runs against.
type Store interface {
	QuizStore
	AttemptStore
	LeaderboardStore
	ParticipationStore
	EventLog
}

// QuizReader is the read path for quiz lookups. Quizzes are immutable once
// created, so implementations may cache freely.
type QuizReader interface {
	GetQuiz(ctx context.Context, quizID uint64) (domain.QuizSet, bool, error)
}
