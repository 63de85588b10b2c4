package memory

import (
	"context"
	"testing"

	"quizhub-service/internal/domain"
)

func TestStoreCounterStartsAtOne(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	next, err := store.NextQuizID(ctx)
	if err != nil {
		t.Fatalf("next quiz id: %v", err)
	}
	if next != 1 {
		t.Fatalf("expected counter 1, got %d", next)
	}

	if err := store.SetNextQuizID(ctx, 5); err != nil {
		t.Fatalf("set counter: %v", err)
	}
	next, _ = store.NextQuizID(ctx)
	if next != 5 {
		t.Fatalf("expected counter 5, got %d", next)
	}
}

func TestStoreQuizRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if _, ok, _ := store.GetQuiz(ctx, 1); ok {
		t.Fatalf("unexpected quiz before insert")
	}

	quiz := domain.QuizSet{ID: 1, Title: "First", Creator: "alice"}
	if err := store.InsertQuiz(ctx, quiz); err != nil {
		t.Fatalf("insert quiz: %v", err)
	}

	got, ok, err := store.GetQuiz(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("get quiz: ok=%v err=%v", ok, err)
	}
	if got.Title != "First" {
		t.Fatalf("unexpected quiz %+v", got)
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
	store := NewStore()

	attempts := []domain.Attempt{
		{QuizID: 1, User: "bob", Score: 5},
		{QuizID: 1, User: "carol", Score: 7},
		{QuizID: 2, User: "bob", Score: 3},
	}
	for _, attempt := range attempts {
		if err := store.InsertAttempt(ctx, attempt); err != nil {
			t.Fatalf("insert attempt: %v", err)
		}
	}

	if _, ok, _ := store.GetAttempt(ctx, 1, "bob"); !ok {
		t.Fatalf("expected attempt for (1, bob)")
	}
	if _, ok, _ := store.GetAttempt(ctx, 2, "carol"); ok {
		t.Fatalf("unexpected attempt for (2, carol)")
	}

	forQuiz, _ := store.ListQuizAttempts(ctx, 1)
	if len(forQuiz) != 2 {
		t.Fatalf("expected 2 attempts for quiz 1, got %d", len(forQuiz))
	}
	forUser, _ := store.ListUserAttempts(ctx, "bob")
	if len(forUser) != 2 {
		t.Fatalf("expected 2 attempts for bob, got %d", len(forUser))
	}
	all, _ := store.ListAttempts(ctx)
	if len(all) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(all))
	}
}

func TestStoreEventSequence(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

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
		t.Fatalf("unexpected tail %+v", tail)
	}

	none, _ := store.EventsSince(ctx, 3)
	if len(none) != 0 {
		t.Fatalf("expected no events past the end, got %+v", none)
	}
}

func TestStoreCopiesParticipations(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	quizIDs := []uint64{1, 2}
	if err := store.PutParticipations(ctx, "bob", quizIDs); err != nil {
		t.Fatalf("put participations: %v", err)
	}
	quizIDs[0] = 99

	got, _ := store.GetParticipations(ctx, "bob")
	if got[0] != 1 {
		t.Fatalf("stored participations aliased caller slice: %v", got)
	}
}
