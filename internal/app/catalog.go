package app

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"quizhub-service/internal/domain"
)

// maxQuizSpanMicros caps a quiz window at 100 years.
const maxQuizSpanMicros = uint64(100) * 365 * 24 * 3600 * 1_000_000

// Caller is the authenticated identity injected by the transport. An empty
// signer means the request is unauthenticated.
type Caller struct {
	Signer string
}

func (c Caller) Authenticated() bool {
	return c.Signer != ""
}

// QuizService executes the two mutating operations: quiz creation and answer
// submission. Mutations are serialized so each operation runs against a
// consistent snapshot of the store.
type QuizService struct {
	mu      sync.Mutex
	store   Store
	quizzes QuizReader
	feed    *Feed
	clock   func() time.Time
}

func NewQuizService(store Store, quizzes QuizReader, feed *Feed) *QuizService {
	return NewQuizServiceWithClock(store, quizzes, feed, time.Now)
}

// NewQuizServiceWithClock allows deterministic timestamps in tests.
func NewQuizServiceWithClock(store Store, quizzes QuizReader, feed *Feed, now func() time.Time) *QuizService {
	return &QuizService{store: store, quizzes: quizzes, feed: feed, clock: now}
}

// CreateQuiz validates and persists a new quiz, returning its assigned id.
// Validation is fail-fast: the first failure wins and nothing is written.
func (s *QuizService) CreateQuiz(ctx context.Context, params domain.CreateQuizParams, caller Caller) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := microsOf(s.clock())

	startTime, err := parseMillisTimestamp("start time", params.StartTime)
	if err != nil {
		return 0, err
	}
	endTime, err := parseMillisTimestamp("end time", params.EndTime)
	if err != nil {
		return 0, err
	}

	if startTime <= now {
		return 0, domain.ErrInvalidTimeRange("start time must be in the future")
	}
	if endTime <= startTime {
		return 0, domain.ErrInvalidTimeRange("end time must be after start time")
	}
	if endTime-startTime > maxQuizSpanMicros {
		return 0, domain.ErrInvalidTimeRange("time range is too long (maximum 100 years)")
	}

	if !caller.Authenticated() {
		return 0, domain.ErrUnauthorized()
	}

	for i, q := range params.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return 0, domain.ErrInvalidInput("question %d text cannot be empty", i+1)
		}
		if len(q.Options) < 2 {
			return 0, domain.ErrInvalidInput("question %d must have at least 2 options", i+1)
		}
		if len(q.CorrectOptions) == 0 {
			return 0, domain.ErrInvalidInput("question %d must have at least one correct option", i+1)
		}
		for j, option := range q.Options {
			if strings.TrimSpace(option) == "" {
				return 0, domain.ErrInvalidInput("question %d option %d text cannot be empty", i+1, j+1)
			}
		}
	}

	quizID, err := s.store.NextQuizID(ctx)
	if err != nil {
		return 0, domain.ErrStorage("failed to read quiz counter", err)
	}

	questions := make([]domain.Question, 0, len(params.Questions))
	for i, q := range params.Questions {
		questions = append(questions, domain.Question{
			ID:             uint32(i),
			Text:           q.Text,
			Options:        q.Options,
			CorrectOptions: q.CorrectOptions,
			Points:         q.Points,
		})
	}

	quiz := domain.QuizSet{
		ID:          quizID,
		Title:       params.Title,
		Description: params.Description,
		Creator:     params.NickName,
		Questions:   questions,
		TimeLimit:   params.TimeLimit,
		StartTime:   startTime,
		EndTime:     endTime,
		CreatedAt:   now,
	}

	if err := s.store.InsertQuiz(ctx, quiz); err != nil {
		return 0, domain.ErrStorage("failed to store quiz", err)
	}

	if quizID == math.MaxUint64 {
		return 0, domain.ErrOther("quiz id overflow")
	}
	if err := s.store.SetNextQuizID(ctx, quizID+1); err != nil {
		return 0, domain.ErrStorage("failed to advance quiz counter", err)
	}

	if _, err := s.store.AppendEvent(ctx, domain.Event{Type: domain.EventQuizCreated, Quiz: &quiz}); err != nil {
		return 0, domain.ErrStorage("failed to record quiz event", err)
	}
	s.feed.Wake()

	return quizID, nil
}

// parseMillisTimestamp parses a decimal millisecond timestamp and converts it
// to microseconds. The digit-length check guards against second- or
// nanosecond-scale input.
func parseMillisTimestamp(field, raw string) (uint64, error) {
	millis, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidTimestampFormat("%s is not a valid number", field)
	}
	digits := len(strconv.FormatUint(millis, 10))
	if digits < 10 || digits > 14 {
		return 0, domain.ErrInvalidTimestampFormat("%s seems invalid (should be a millisecond timestamp)", field)
	}
	if millis > math.MaxUint64/1000 {
		return 0, domain.ErrInvalidTimestampFormat("%s overflow when converting to microseconds", field)
	}
	return millis * 1000, nil
}

func microsOf(t time.Time) uint64 {
	return uint64(t.UnixMicro())
}
