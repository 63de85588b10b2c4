package app

import (
	"context"
	"sort"

	"quizhub-service/internal/domain"
)

// QuizSort selects the ordering for quiz listings.
type QuizSort string

const (
	SortByID      QuizSort = "id"
	SortByTitle   QuizSort = "title"
	SortByCreated QuizSort = "created_at"
)

// ListOptions pages and sorts quiz listings. A zero Limit means no limit.
type ListOptions struct {
	SortBy QuizSort
	Desc   bool
	Offset int
	Limit  int
}

// QueryService serves the read-only surface. Ranked leaderboards are always
// recomputed from attempts; the merged cache is not consulted here.
type QueryService struct {
	store   Store
	quizzes QuizReader
}

func NewQueryService(store Store, quizzes QuizReader) *QueryService {
	return &QueryService{store: store, quizzes: quizzes}
}

// QuizSet fetches one quiz by id.
func (q *QueryService) QuizSet(ctx context.Context, quizID uint64) (domain.QuizSetView, error) {
	quiz, ok, err := q.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizSetView{}, domain.ErrStorage("failed to get quiz", err)
	}
	if !ok {
		return domain.QuizSetView{}, domain.ErrQuizNotFound(quizID)
	}
	return domain.ViewOfQuiz(quiz), nil
}

// QuizSets lists quizzes, sorted and paged per opts.
func (q *QueryService) QuizSets(ctx context.Context, opts ListOptions) ([]domain.QuizSetView, error) {
	quizzes, err := q.store.ListQuizzes(ctx)
	if err != nil {
		return nil, domain.ErrStorage("failed to get quizzes", err)
	}
	sortQuizzes(quizzes, opts)
	return viewsOfQuizzes(pageQuizzes(quizzes, opts)), nil
}

// UserAttempts lists every attempt a user has made, across all quizzes.
func (q *QueryService) UserAttempts(ctx context.Context, user string) ([]domain.UserAttemptView, error) {
	attempts, err := q.store.ListUserAttempts(ctx, user)
	if err != nil {
		return nil, domain.ErrStorage("failed to get user attempts", err)
	}
	views := make([]domain.UserAttemptView, 0, len(attempts))
	for _, attempt := range attempts {
		views = append(views, domain.ViewOfAttempt(attempt))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].QuizID < views[j].QuizID })
	return views, nil
}

// QuizLeaderboard ranks one quiz from its attempts.
func (q *QueryService) QuizLeaderboard(ctx context.Context, quizID uint64) ([]domain.LeaderboardEntry, error) {
	attempts, err := q.store.ListQuizAttempts(ctx, quizID)
	if err != nil {
		return nil, domain.ErrStorage("failed to get quiz leaderboard", err)
	}
	return RankQuizAttempts(attempts), nil
}

// GlobalLeaderboard ranks users across every quiz.
func (q *QueryService) GlobalLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	attempts, err := q.store.ListAttempts(ctx)
	if err != nil {
		return nil, domain.ErrStorage("failed to get leaderboard", err)
	}
	return RankGlobal(attempts), nil
}

// UserParticipations returns the ids of quizzes the user has attempted.
func (q *QueryService) UserParticipations(ctx context.Context, user string) ([]uint64, error) {
	quizIDs, err := q.store.GetParticipations(ctx, user)
	if err != nil {
		return nil, domain.ErrStorage("failed to get user participations", err)
	}
	if quizIDs == nil {
		quizIDs = []uint64{}
	}
	return quizIDs, nil
}

// UserCreatedQuizzes lists quizzes whose creator label matches the nickname.
func (q *QueryService) UserCreatedQuizzes(ctx context.Context, nickname string) ([]domain.QuizSetView, error) {
	quizzes, err := q.store.ListQuizzes(ctx)
	if err != nil {
		return nil, domain.ErrStorage("failed to get user created quizzes", err)
	}
	created := quizzes[:0:0]
	for _, quiz := range quizzes {
		if quiz.Creator == nickname {
			created = append(created, quiz)
		}
	}
	sortQuizzes(created, ListOptions{SortBy: SortByID})
	return viewsOfQuizzes(created), nil
}

// UserParticipatedQuizzes resolves the user's participation index to quizzes.
// Ids that no longer resolve are skipped.
func (q *QueryService) UserParticipatedQuizzes(ctx context.Context, nickname string) ([]domain.QuizSetView, error) {
	quizIDs, err := q.store.GetParticipations(ctx, nickname)
	if err != nil {
		return nil, domain.ErrStorage("failed to get user participated quizzes", err)
	}
	views := make([]domain.QuizSetView, 0, len(quizIDs))
	for _, quizID := range quizIDs {
		quiz, ok, err := q.quizzes.GetQuiz(ctx, quizID)
		if err != nil || !ok {
			continue
		}
		views = append(views, domain.ViewOfQuiz(quiz))
	}
	return views, nil
}

func sortQuizzes(quizzes []domain.QuizSet, opts ListOptions) {
	less := func(a, b domain.QuizSet) bool { return a.ID < b.ID }
	switch opts.SortBy {
	case SortByTitle:
		less = func(a, b domain.QuizSet) bool {
			if a.Title != b.Title {
				return a.Title < b.Title
			}
			return a.ID < b.ID
		}
	case SortByCreated:
		less = func(a, b domain.QuizSet) bool {
			if a.CreatedAt != b.CreatedAt {
				return a.CreatedAt < b.CreatedAt
			}
			return a.ID < b.ID
		}
	}
	sort.Slice(quizzes, func(i, j int) bool {
		if opts.Desc {
			return less(quizzes[j], quizzes[i])
		}
		return less(quizzes[i], quizzes[j])
	})
}

func pageQuizzes(quizzes []domain.QuizSet, opts ListOptions) []domain.QuizSet {
	if opts.Offset > 0 {
		if opts.Offset >= len(quizzes) {
			return nil
		}
		quizzes = quizzes[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(quizzes) {
		quizzes = quizzes[:opts.Limit]
	}
	return quizzes
}

func viewsOfQuizzes(quizzes []domain.QuizSet) []domain.QuizSetView {
	views := make([]domain.QuizSetView, 0, len(quizzes))
	for _, quiz := range quizzes {
		views = append(views, domain.ViewOfQuiz(quiz))
	}
	return views
}
