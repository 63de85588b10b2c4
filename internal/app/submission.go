package app

import (
	"context"
	"slices"

	"quizhub-service/internal/domain"
)

// SubmitAnswers admits, grades, and records one answer set. Admission checks
// run in order: quiz existence, time window, duplicate attempt, answer shape.
// Nothing is written until every check passes; a storage failure mid-commit
// surfaces verbatim and aborts the remaining steps.
func (s *QuizService) SubmitAnswers(ctx context.Context, params domain.SubmitAnswersParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := params.NickName
	quizID := params.QuizID
	now := microsOf(s.clock())

	quiz, ok, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.ErrStorage("failed to retrieve quiz", err)
	}
	if !ok {
		return domain.ErrQuizNotFound(quizID)
	}

	if now < quiz.StartTime {
		return domain.ErrQuizNotStarted(quizID)
	}
	if now > quiz.EndTime {
		return domain.ErrQuizEnded(quizID)
	}

	if _, exists, err := s.store.GetAttempt(ctx, quizID, user); err != nil {
		return domain.ErrStorage("failed to check user attempt", err)
	} else if exists {
		return domain.ErrAlreadySubmitted(user, quizID)
	}

	if len(params.Answers) != len(quiz.Questions) {
		return domain.ErrInvalidAnswerFormat("answer count mismatch: expected %d answers, got %d", len(quiz.Questions), len(params.Answers))
	}

	for i, chosen := range params.Answers {
		question := quiz.Questions[i]
		if hasDuplicateIndices(chosen) {
			return domain.ErrInvalidAnswerFormat("question %d has duplicate answers", i+1)
		}
		for _, idx := range chosen {
			if int(idx) >= len(question.Options) {
				return domain.ErrInvalidAnswerFormat("question %d has invalid answer index: %d", i+1, idx)
			}
		}
	}

	attempt := domain.Attempt{
		QuizID:      quizID,
		User:        user,
		Answers:     params.Answers,
		Score:       gradeAnswers(quiz.Questions, params.Answers),
		TimeTaken:   params.TimeTaken,
		CompletedAt: now,
	}

	if err := s.store.InsertAttempt(ctx, attempt); err != nil {
		return domain.ErrStorage("failed to store user attempt", err)
	}

	if _, err := s.store.AppendEvent(ctx, domain.Event{Type: domain.EventAttemptAccepted, Attempt: &attempt}); err != nil {
		return domain.ErrStorage("failed to record attempt event", err)
	}
	s.feed.Wake()

	participations, err := s.store.GetParticipations(ctx, user)
	if err != nil {
		return domain.ErrStorage("failed to get user participations", err)
	}
	if !slices.Contains(participations, quizID) {
		participations = append(participations, quizID)
		if err := s.store.PutParticipations(ctx, user, participations); err != nil {
			return domain.ErrStorage("failed to update user participations", err)
		}
	}

	return s.mergeLeaderboardEntry(ctx, quizID, user, attempt.Score)
}

// gradeAnswers awards each question's full point value iff the chosen indices
// equal the correct set exactly; partial matches score zero.
func gradeAnswers(questions []domain.Question, answers [][]uint32) uint32 {
	var score uint32
	for i, question := range questions {
		chosen := slices.Clone(answers[i])
		slices.Sort(chosen)
		correct := slices.Clone(question.CorrectOptions)
		slices.Sort(correct)
		if slices.Equal(chosen, correct) {
			score += question.Points
		}
	}
	return score
}

func hasDuplicateIndices(indices []uint32) bool {
	sorted := slices.Clone(indices)
	slices.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return true
		}
	}
	return false
}
