package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quizhub-service/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client)
}

func TestStoreCounterDefaultsToOne(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	next, err := store.NextQuizID(ctx)
	if err != nil {
		t.Fatalf("next quiz id: %v", err)
	}
	if next != 1 {
		t.Fatalf("expected counter 1 on empty store, got %d", next)
	}

	if err := store.SetNextQuizID(ctx, 42); err != nil {
		t.Fatalf("set counter: %v", err)
	}
	next, err = store.NextQuizID(ctx)
	if err != nil {
		t.Fatalf("next quiz id: %v", err)
	}
	if next != 42 {
		t.Fatalf("expected counter 42, got %d", next)
	}
}

func TestStoreQuizRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	quiz := domain.QuizSet{
		ID:      3,
		Title:   "Geography",
		Creator: "alice",
		Questions: []domain.Question{
			{ID: 1, Text: "Capital of France?", Options: []string{"Paris", "Lyon"}, CorrectOptions: []uint32{0}, Points: 5},
		},
		StartTime: 1_700_000_000_000_000,
		EndTime:   1_700_000_100_000_000,
	}
	if err := store.InsertQuiz(ctx, quiz); err != nil {
		t.Fatalf("insert quiz: %v", err)
	}

	got, ok, err := store.GetQuiz(ctx, 3)
	if err != nil || !ok {
		t.Fatalf("get quiz: ok=%v err=%v", ok, err)
	}
	if got.Title != quiz.Title || len(got.Questions) != 1 || got.Questions[0].Points != 5 {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if _, ok, err := store.GetQuiz(ctx, 99); ok || err != nil {
		t.Fatalf("expected miss for unknown quiz: ok=%v err=%v", ok, err)
	}

	quizzes, err := store.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list quizzes: %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("expected 1 quiz, got %d", len(quizzes))
	}
}

func TestStoreAttemptFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	attempts := []domain.Attempt{
		{QuizID: 1, User: "bob", Answers: [][]uint32{{0}}, Score: 5, TimeTaken: 1200},
		{QuizID: 1, User: "carol", Answers: [][]uint32{{1}}, Score: 0, TimeTaken: 800},
		{QuizID: 2, User: "bob", Answers: [][]uint32{{0}}, Score: 3, TimeTaken: 500},
	}
	for _, attempt := range attempts {
		if err := store.InsertAttempt(ctx, attempt); err != nil {
			t.Fatalf("insert attempt: %v", err)
		}
	}

	got, ok, err := store.GetAttempt(ctx, 1, "bob")
	if err != nil || !ok {
		t.Fatalf("get attempt: ok=%v err=%v", ok, err)
	}
	if got.Score != 5 || got.TimeTaken != 1200 {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	forQuiz, err := store.ListQuizAttempts(ctx, 1)
	if err != nil {
		t.Fatalf("list quiz attempts: %v", err)
	}
	if len(forQuiz) != 2 {
		t.Fatalf("expected 2 attempts for quiz 1, got %d", len(forQuiz))
	}

	forUser, err := store.ListUserAttempts(ctx, "bob")
	if err != nil {
		t.Fatalf("list user attempts: %v", err)
	}
	if len(forUser) != 2 {
		t.Fatalf("expected 2 attempts for bob, got %d", len(forUser))
	}

	all, err := store.ListAttempts(ctx)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(all))
	}
}

func TestStoreLeaderboardAndParticipations(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	empty, err := store.GetLeaderboard(ctx, 1)
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", empty)
	}

	entries := []domain.LeaderboardEntry{
		{User: "bob", Score: 7},
		{User: "carol", Score: 5},
	}
	if err := store.PutLeaderboard(ctx, 1, entries); err != nil {
		t.Fatalf("put leaderboard: %v", err)
	}
	got, err := store.GetLeaderboard(ctx, 1)
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	if len(got) != 2 || got[0].User != "bob" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if err := store.PutParticipations(ctx, "bob", []uint64{1, 4}); err != nil {
		t.Fatalf("put participations: %v", err)
	}
	quizIDs, err := store.GetParticipations(ctx, "bob")
	if err != nil {
		t.Fatalf("get participations: %v", err)
	}
	if len(quizIDs) != 2 || quizIDs[1] != 4 {
		t.Fatalf("round trip mismatch: %v", quizIDs)
	}
}

func TestStoreEventLog(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		seq, err := store.AppendEvent(ctx, domain.Event{Type: domain.EventQuizCreated})
		if err != nil {
			t.Fatalf("append event: %v", err)
		}
		if seq != uint64(i)+1 {
			t.Fatalf("expected seq %d, got %d", i+1, seq)
		}
	}

	tail, err := store.EventsSince(ctx, 1)
	if err != nil {
		t.Fatalf("events since: %v", err)
	}
	if len(tail) != 2 || tail[0].Seq != 2 || tail[1].Seq != 3 {
		t.Fatalf("unexpected tail: %+v", tail)
	}

	none, err := store.EventsSince(ctx, 3)
	if err != nil {
		t.Fatalf("events since: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no events past the end, got %+v", none)
	}
}
