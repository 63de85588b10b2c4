package domain

import "strconv"

// Question is a single multiple-choice question inside a quiz. The ID is the
// zero-based position assigned at creation; CorrectOptions holds the indices
// of every option that must be selected for full credit.
type Question struct {
	ID             uint32   `json:"id"`
	Text           string   `json:"text"`
	Options        []string `json:"options"`
	CorrectOptions []uint32 `json:"correctOptions"`
	Points         uint32   `json:"points"`
}

// QuizSet is a published quiz. Immutable once created; all timestamps are
// microseconds since the Unix epoch.
type QuizSet struct {
	ID          uint64     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Creator     string     `json:"creator"`
	Questions   []Question `json:"questions"`
	TimeLimit   uint64     `json:"timeLimit"` // seconds, advisory only
	StartTime   uint64     `json:"startTime"`
	EndTime     uint64     `json:"endTime"`
	CreatedAt   uint64     `json:"createdAt"`
}

// Attempt records one user's single submission for a quiz. The (QuizID, User)
// pair is unique; attempts are never mutated after acceptance.
type Attempt struct {
	QuizID      uint64     `json:"quizId"`
	User        string     `json:"user"`
	Answers     [][]uint32 `json:"answers"`
	Score       uint32     `json:"score"`
	TimeTaken   uint64     `json:"timeTaken"` // milliseconds, client reported
	CompletedAt uint64     `json:"completedAt"`
}

// LeaderboardEntry is one ranked row of a quiz or global leaderboard.
type LeaderboardEntry struct {
	User      string `json:"user"`
	Score     uint32 `json:"score"`
	TimeTaken uint64 `json:"timeTaken"`
}

// EventType discriminates entries of the append-only event log.
type EventType string

const (
	EventQuizCreated     EventType = "quiz_created"
	EventAttemptAccepted EventType = "attempt_accepted"
)

// Event is an append-only log record. Seq is assigned by the store at append
// time and increases monotonically in commit order.
type Event struct {
	Seq     uint64    `json:"seq"`
	Type    EventType `json:"type"`
	Quiz    *QuizSet  `json:"quiz,omitempty"`
	Attempt *Attempt  `json:"attempt,omitempty"`
}

// CreateQuizParams carries a quiz creation request. Start and end times arrive
// as decimal millisecond-timestamp strings and are validated by the catalog.
type CreateQuizParams struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []QuestionParams `json:"questions"`
	TimeLimit   uint64           `json:"timeLimit"`
	StartTime   string           `json:"startTime"`
	EndTime     string           `json:"endTime"`
	NickName    string           `json:"nickName"`
}

// QuestionParams is the creation-time shape of a question.
type QuestionParams struct {
	Text           string   `json:"text"`
	Options        []string `json:"options"`
	CorrectOptions []uint32 `json:"correctOptions"`
	Points         uint32   `json:"points"`
}

// SubmitAnswersParams carries one answer set: one index list per question, in
// quiz-question order.
type SubmitAnswersParams struct {
	QuizID    uint64     `json:"quizId"`
	Answers   [][]uint32 `json:"answers"`
	TimeTaken uint64     `json:"timeTaken"`
	NickName  string     `json:"nickName"`
}

// QuestionView is the answer-free projection served to readers.
type QuestionView struct {
	ID      uint32   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Points  uint32   `json:"points"`
}

// QuizSetView is the read-side projection of a quiz. Timestamps render as
// decimal microsecond strings.
type QuizSetView struct {
	ID          uint64         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Creator     string         `json:"creator"`
	Questions   []QuestionView `json:"questions"`
	StartTime   string         `json:"startTime"`
	EndTime     string         `json:"endTime"`
	CreatedAt   string         `json:"createdAt"`
}

// UserAttemptView is the read-side projection of an attempt.
type UserAttemptView struct {
	QuizID      uint64     `json:"quizId"`
	User        string     `json:"user"`
	Answers     [][]uint32 `json:"answers"`
	Score       uint32     `json:"score"`
	TimeTaken   uint64     `json:"timeTaken"`
	CompletedAt string     `json:"completedAt"`
}

// ViewOfQuiz projects a quiz for readers, omitting correct-option indices.
func ViewOfQuiz(quiz QuizSet) QuizSetView {
	questions := make([]QuestionView, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Options: q.Options,
			Points:  q.Points,
		})
	}
	return QuizSetView{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Creator:     quiz.Creator,
		Questions:   questions,
		StartTime:   strconv.FormatUint(quiz.StartTime, 10),
		EndTime:     strconv.FormatUint(quiz.EndTime, 10),
		CreatedAt:   strconv.FormatUint(quiz.CreatedAt, 10),
	}
}

// ViewOfAttempt projects an attempt for readers.
func ViewOfAttempt(attempt Attempt) UserAttemptView {
	return UserAttemptView{
		QuizID:      attempt.QuizID,
		User:        attempt.User,
		Answers:     attempt.Answers,
		Score:       attempt.Score,
		TimeTaken:   attempt.TimeTaken,
		CompletedAt: strconv.FormatUint(attempt.CompletedAt, 10),
	}
}
