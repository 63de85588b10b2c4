package app

import (
	"context"
	"math"
	"sort"

	"quizhub-service/internal/domain"
)

// mergeLeaderboardEntry maintains the denormalized per-quiz leaderboard cache:
// last write wins for an existing user's score, new users are appended with a
// zeroed elapsed time, and the list is kept sorted by score descending. The
// cache is an accelerator only; ranked reads recompute from attempts.
func (s *QuizService) mergeLeaderboardEntry(ctx context.Context, quizID uint64, user string, score uint32) error {
	entries, err := s.store.GetLeaderboard(ctx, quizID)
	if err != nil {
		return domain.ErrStorage("failed to get leaderboard", err)
	}

	found := false
	for i := range entries {
		if entries[i].User == user {
			entries[i].Score = score
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, domain.LeaderboardEntry{User: user, Score: score})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	if err := s.store.PutLeaderboard(ctx, quizID, entries); err != nil {
		return domain.ErrStorage("failed to update leaderboard", err)
	}
	return nil
}

// RankQuizAttempts recomputes one quiz's leaderboard from its attempts,
// keeping the best attempt per user (higher score, then lower elapsed time).
func RankQuizAttempts(attempts []domain.Attempt) []domain.LeaderboardEntry {
	byUser := make(map[string]domain.LeaderboardEntry)
	for _, attempt := range attempts {
		entry, ok := byUser[attempt.User]
		if !ok ||
			attempt.Score > entry.Score ||
			(attempt.Score == entry.Score && attempt.TimeTaken < entry.TimeTaken) {
			byUser[attempt.User] = domain.LeaderboardEntry{
				User:      attempt.User,
				Score:     attempt.Score,
				TimeTaken: attempt.TimeTaken,
			}
		}
	}
	return rankEntries(byUser)
}

// RankGlobal aggregates every user's attempts across all quizzes: scores sum
// saturating at the uint32 maximum, elapsed time is the minimum observed.
func RankGlobal(attempts []domain.Attempt) []domain.LeaderboardEntry {
	byUser := make(map[string]domain.LeaderboardEntry)
	for _, attempt := range attempts {
		entry, ok := byUser[attempt.User]
		if !ok {
			entry = domain.LeaderboardEntry{User: attempt.User, TimeTaken: math.MaxUint64}
		}
		if entry.Score < math.MaxUint32-attempt.Score {
			entry.Score += attempt.Score
		} else {
			entry.Score = math.MaxUint32
		}
		if attempt.TimeTaken < entry.TimeTaken {
			entry.TimeTaken = attempt.TimeTaken
		}
		byUser[attempt.User] = entry
	}
	return rankEntries(byUser)
}

// rankEntries orders by score descending, elapsed time ascending, then user
// so identical inputs always rank identically.
func rankEntries(byUser map[string]domain.LeaderboardEntry) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(byUser))
	for _, entry := range byUser {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].TimeTaken != entries[j].TimeTaken {
			return entries[i].TimeTaken < entries[j].TimeTaken
		}
		return entries[i].User < entries[j].User
	})
	return entries
}
