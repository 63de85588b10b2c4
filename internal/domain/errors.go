package domain

import (
	"errors"
	"fmt"
)

// ErrorKind tags every failure the engine can report. Errors travel by return
// value only; callers branch on the kind, messages are for humans.
type ErrorKind string

const (
	KindQuizNotFound           ErrorKind = "QUIZ_NOT_FOUND"
	KindQuizNotStarted         ErrorKind = "QUIZ_NOT_STARTED"
	KindQuizEnded              ErrorKind = "QUIZ_ENDED"
	KindAlreadySubmitted       ErrorKind = "ALREADY_SUBMITTED"
	KindUnauthorized           ErrorKind = "UNAUTHORIZED"
	KindInvalidInput           ErrorKind = "INVALID_INPUT"
	KindInvalidAnswerFormat    ErrorKind = "INVALID_ANSWER_FORMAT"
	KindInvalidTimestampFormat ErrorKind = "INVALID_TIMESTAMP_FORMAT"
	KindInvalidTimeRange       ErrorKind = "INVALID_TIME_RANGE"
	KindStorage                ErrorKind = "STORAGE"
	KindOther                  ErrorKind = "OTHER"
)

// Error is the engine's error type. QuizID and User identify the subject
// where the kind calls for it.
type Error struct {
	Kind    ErrorKind
	Message string
	QuizID  uint64
	User    string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is lets errors.Is match two engine errors by kind alone.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// KindOf extracts the kind from an error chain, or empty for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

func ErrQuizNotFound(quizID uint64) error {
	return &Error{Kind: KindQuizNotFound, QuizID: quizID, Message: fmt.Sprintf("quiz %d not found", quizID)}
}

func ErrQuizNotStarted(quizID uint64) error {
	return &Error{Kind: KindQuizNotStarted, QuizID: quizID, Message: fmt.Sprintf("quiz %d has not started yet", quizID)}
}

func ErrQuizEnded(quizID uint64) error {
	return &Error{Kind: KindQuizEnded, QuizID: quizID, Message: fmt.Sprintf("quiz %d has already ended", quizID)}
}

func ErrAlreadySubmitted(user string, quizID uint64) error {
	return &Error{Kind: KindAlreadySubmitted, QuizID: quizID, User: user, Message: fmt.Sprintf("user %s already submitted quiz %d", user, quizID)}
}

func ErrUnauthorized() error {
	return &Error{Kind: KindUnauthorized, Message: "user is not authenticated"}
}

func ErrInvalidInput(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func ErrInvalidAnswerFormat(format string, args ...any) error {
	return &Error{Kind: KindInvalidAnswerFormat, Message: fmt.Sprintf(format, args...)}
}

func ErrInvalidTimestampFormat(format string, args ...any) error {
	return &Error{Kind: KindInvalidTimestampFormat, Message: fmt.Sprintf(format, args...)}
}

func ErrInvalidTimeRange(format string, args ...any) error {
	return &Error{Kind: KindInvalidTimeRange, Message: fmt.Sprintf(format, args...)}
}

// ErrStorage wraps a persistence failure verbatim; op names the failed step.
func ErrStorage(op string, err error) error {
	return &Error{Kind: KindStorage, Message: fmt.Sprintf("%s: %v", op, err), cause: err}
}

func ErrOther(format string, args ...any) error {
	return &Error{Kind: KindOther, Message: fmt.Sprintf(format, args...)}
}
