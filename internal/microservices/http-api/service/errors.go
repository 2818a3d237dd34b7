package service

import "errors"

// Error kinds. Handlers map these to HTTP statuses with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
)

// Error is a user-displayable message of one kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

var (
	ErrGoalNotFound  = newError(ErrNotFound, "goal not found")
	ErrLogNotFound   = newError(ErrNotFound, "log not found")
	ErrMediaNotFound = newError(ErrNotFound, "media not found")

	ErrInvalidGoalType  = newError(ErrInvalidArgument, "type must be one of time, chars, episodes, pages")
	ErrInvalidTarget    = newError(ErrInvalidArgument, "target must be greater than 0")
	ErrInvalidLogType   = newError(ErrInvalidArgument, "type must be one of anime, manga, reading, vn, video, audio, movie, tv show, other")
	ErrMissingDate      = newError(ErrInvalidArgument, "date is required")
	ErrNegativeAmount   = newError(ErrInvalidArgument, "time, episodes, pages and chars must not be negative")
	ErrNoAmount         = newError(ErrInvalidArgument, "at least one of time, episodes, pages or chars is required")
	ErrMissingContentID = newError(ErrInvalidArgument, "contentId is required")
	ErrInvalidMediaID   = newError(ErrInvalidArgument, "mediaId must be a UUID")

	ErrActiveGoalExists = newError(ErrConflict, "an active goal of this type already exists")
)

// InvalidArgument wraps a validation message from outside the service package.
func InvalidArgument(msg string) error {
	return newError(ErrInvalidArgument, msg)
}
