package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quizhub-service/internal/domain"
)

type countingSource struct {
	quizzes map[uint64]domain.QuizSet
	calls   int
}

func (s *countingSource) GetQuiz(ctx context.Context, quizID uint64) (domain.QuizSet, bool, error) {
	s.calls++
	quiz, ok := s.quizzes[quizID]
	return quiz, ok, nil
}

func newTestCache(t *testing.T, source *countingSource, ttl time.Duration) *QuizCache {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQuizCache(client, source, ttl)
}

func TestQuizCacheFillsFromSourceOnce(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{quizzes: map[uint64]domain.QuizSet{
		1: {ID: 1, Title: "Cached"},
	}}
	cache := newTestCache(t, source, time.Minute)

	quiz, ok, err := cache.GetQuiz(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("get quiz: ok=%v err=%v", ok, err)
	}
	if quiz.Title != "Cached" {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if source.calls != 1 {
		t.Fatalf("expected one source read, got %d", source.calls)
	}

	if _, _, err := cache.GetQuiz(ctx, 1); err != nil {
		t.Fatalf("get quiz again: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected a cache hit, source reads=%d", source.calls)
	}
}

func TestQuizCachePassesMissesThrough(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{quizzes: map[uint64]domain.QuizSet{}}
	cache := newTestCache(t, source, time.Minute)

	if _, ok, err := cache.GetQuiz(ctx, 9); ok || err != nil {
		t.Fatalf("expected miss: ok=%v err=%v", ok, err)
	}

	source.quizzes[9] = domain.QuizSet{ID: 9, Title: "Late"}
	quiz, ok, err := cache.GetQuiz(ctx, 9)
	if err != nil || !ok {
		t.Fatalf("expected late quiz to load: ok=%v err=%v", ok, err)
	}
	if quiz.Title != "Late" {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if source.calls != 2 {
		t.Fatalf("misses must not be cached, source reads=%d", source.calls)
	}
}
