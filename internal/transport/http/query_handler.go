package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"quizhub-service/internal/app"
	"quizhub-service/internal/domain"
)

// QueryHandler exposes the read-only surface as JSON over HTTP.
type QueryHandler struct {
	queries *app.QueryService
}

func NewQueryHandler(queries *app.QueryService) *QueryHandler {
	return &QueryHandler{queries: queries}
}

// Register mounts the query routes on mux.
func (h *QueryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /quizzes", h.listQuizzes)
	mux.HandleFunc("GET /quizzes/{id}", h.getQuiz)
	mux.HandleFunc("GET /quizzes/{id}/leaderboard", h.quizLeaderboard)
	mux.HandleFunc("GET /leaderboard", h.globalLeaderboard)
	mux.HandleFunc("GET /users/{user}/attempts", h.userAttempts)
	mux.HandleFunc("GET /users/{user}/participations", h.userParticipations)
	mux.HandleFunc("GET /users/{user}/created-quizzes", h.userCreatedQuizzes)
	mux.HandleFunc("GET /users/{user}/participated-quizzes", h.userParticipatedQuizzes)
}

func (h *QueryHandler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	opts := app.ListOptions{SortBy: app.SortByID}
	q := r.URL.Query()
	switch q.Get("sort") {
	case "", "id":
	case "title":
		opts.SortBy = app.SortByTitle
	case "created_at":
		opts.SortBy = app.SortByCreated
	default:
		writeError(w, domain.ErrInvalidInput("unknown sort key %q", q.Get("sort")))
		return
	}
	opts.Desc = q.Get("order") == "desc"
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, domain.ErrInvalidInput("invalid offset"))
			return
		}
		opts.Offset = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, domain.ErrInvalidInput("invalid limit"))
			return
		}
		opts.Limit = n
	}

	quizzes, err := h.queries.QuizSets(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, quizzes)
}

func (h *QueryHandler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathQuizID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	quiz, err := h.queries.QuizSet(r.Context(), quizID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, quiz)
}

func (h *QueryHandler) quizLeaderboard(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathQuizID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := h.queries.QuizLeaderboard(r.Context(), quizID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, entries)
}

func (h *QueryHandler) globalLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.queries.GlobalLeaderboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, entries)
}

func (h *QueryHandler) userAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.queries.UserAttempts(r.Context(), r.PathValue("user"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, attempts)
}

func (h *QueryHandler) userParticipations(w http.ResponseWriter, r *http.Request) {
	quizIDs, err := h.queries.UserParticipations(r.Context(), r.PathValue("user"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, quizIDs)
}

func (h *QueryHandler) userCreatedQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.queries.UserCreatedQuizzes(r.Context(), r.PathValue("user"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, quizzes)
}

func (h *QueryHandler) userParticipatedQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.queries.UserParticipatedQuizzes(r.Context(), r.PathValue("user"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, quizzes)
}

func pathQuizID(r *http.Request) (uint64, error) {
	quizID, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidInput("invalid quiz id")
	}
	return quizID, nil
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var engineErr *domain.Error
	if errors.As(err, &engineErr) {
		switch engineErr.Kind {
		case domain.KindQuizNotFound:
			status = http.StatusNotFound
		case domain.KindInvalidInput, domain.KindInvalidAnswerFormat,
			domain.KindInvalidTimestampFormat, domain.KindInvalidTimeRange:
			status = http.StatusBadRequest
		case domain.KindUnauthorized:
			status = http.StatusUnauthorized
		case domain.KindAlreadySubmitted:
			status = http.StatusConflict
		case domain.KindQuizNotStarted, domain.KindQuizEnded:
			status = http.StatusForbidden
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorPayload{Kind: domain.KindOf(err), Message: err.Error()})
}
