package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
	"quizhub-service/internal/infra/memory"
)

func newQueryMux(t *testing.T) *http.ServeMux {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	quizzes := []domain.QuizSet{
		{ID: 1, Title: "Capitals", Creator: "alice", Questions: []domain.Question{
			{ID: 0, Text: "Capital of France?", Options: []string{"Paris", "Lyon"}, CorrectOptions: []uint32{0}, Points: 5},
		}, StartTime: 1_700_000_000_000_000, EndTime: 1_700_000_100_000_000, CreatedAt: 1_699_999_000_000_000},
		{ID: 2, Title: "Planets", Creator: "carol", StartTime: 1_700_000_000_000_000, EndTime: 1_700_000_100_000_000},
	}
	for _, quiz := range quizzes {
		if err := store.InsertQuiz(ctx, quiz); err != nil {
			t.Fatalf("seed quiz: %v", err)
		}
	}

	attempts := []domain.Attempt{
		{QuizID: 1, User: "bob", Answers: [][]uint32{{0}}, Score: 5, TimeTaken: 3000, CompletedAt: 1_700_000_050_000_000},
		{QuizID: 1, User: "carol", Answers: [][]uint32{{0}}, Score: 5, TimeTaken: 1000, CompletedAt: 1_700_000_060_000_000},
		{QuizID: 2, User: "bob", Answers: [][]uint32{{1}}, Score: 3, TimeTaken: 2000, CompletedAt: 1_700_000_070_000_000},
	}
	for _, attempt := range attempts {
		if err := store.InsertAttempt(ctx, attempt); err != nil {
			t.Fatalf("seed attempt: %v", err)
		}
	}
	if err := store.PutParticipations(ctx, "bob", []uint64{1, 2}); err != nil {
		t.Fatalf("seed participations: %v", err)
	}

	mux := http.NewServeMux()
	NewQueryHandler(app.NewQueryService(store, store)).Register(mux)
	return mux
}

func get(t *testing.T, mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestListQuizzesEndpoint(t *testing.T) {
	mux := newQueryMux(t)

	rec := get(t, mux, "/quizzes?sort=title&order=desc")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var quizzes []domain.QuizSetView
	decode(t, rec, &quizzes)
	if len(quizzes) != 2 || quizzes[0].Title != "Planets" {
		t.Fatalf("unexpected listing: %+v", quizzes)
	}

	rec = get(t, mux, "/quizzes?sort=bogus")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown sort, got %d", rec.Code)
	}

	rec = get(t, mux, "/quizzes?limit=1")
	decode(t, rec, &quizzes)
	if len(quizzes) != 1 || quizzes[0].ID != 1 {
		t.Fatalf("unexpected page: %+v", quizzes)
	}
}

func TestGetQuizEndpointHidesAnswers(t *testing.T) {
	mux := newQueryMux(t)

	rec := get(t, mux, "/quizzes/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "correctOptions") {
		t.Fatalf("response leaks correct options: %s", rec.Body.String())
	}
	var quiz domain.QuizSetView
	decode(t, rec, &quiz)
	if quiz.Title != "Capitals" || quiz.StartTime != "1700000000000000" {
		t.Fatalf("unexpected quiz view: %+v", quiz)
	}

	rec = get(t, mux, "/quizzes/99")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var payload errorPayload
	decode(t, rec, &payload)
	if payload.Kind != domain.KindQuizNotFound {
		t.Fatalf("unexpected error payload: %+v", payload)
	}

	rec = get(t, mux, "/quizzes/abc")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestLeaderboardEndpoints(t *testing.T) {
	mux := newQueryMux(t)

	rec := get(t, mux, "/quizzes/1/leaderboard")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var entries []domain.LeaderboardEntry
	decode(t, rec, &entries)
	if len(entries) != 2 || entries[0].User != "carol" {
		t.Fatalf("expected carol to win on time, got %+v", entries)
	}

	rec = get(t, mux, "/leaderboard")
	decode(t, rec, &entries)
	if len(entries) != 2 || entries[0].User != "bob" || entries[0].Score != 8 {
		t.Fatalf("expected bob leading with 8, got %+v", entries)
	}
}

func TestUserEndpoints(t *testing.T) {
	mux := newQueryMux(t)

	rec := get(t, mux, "/users/bob/attempts")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var attempts []domain.UserAttemptView
	decode(t, rec, &attempts)
	if len(attempts) != 2 || attempts[0].QuizID != 1 {
		t.Fatalf("unexpected attempts: %+v", attempts)
	}

	rec = get(t, mux, "/users/bob/participations")
	var quizIDs []uint64
	decode(t, rec, &quizIDs)
	if len(quizIDs) != 2 {
		t.Fatalf("unexpected participations: %v", quizIDs)
	}

	rec = get(t, mux, "/users/nobody/participations")
	decode(t, rec, &quizIDs)
	if quizIDs == nil || len(quizIDs) != 0 {
		t.Fatalf("expected empty list, got %v (%s)", quizIDs, rec.Body.String())
	}

	rec = get(t, mux, "/users/alice/created-quizzes")
	var quizzes []domain.QuizSetView
	decode(t, rec, &quizzes)
	if len(quizzes) != 1 || quizzes[0].ID != 1 {
		t.Fatalf("unexpected created quizzes: %+v", quizzes)
	}

	rec = get(t, mux, "/users/bob/participated-quizzes")
	decode(t, rec, &quizzes)
	if len(quizzes) != 2 {
		t.Fatalf("unexpected participated quizzes: %+v", quizzes)
	}
}
