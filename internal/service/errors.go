package service

import (
	"errors"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/repository"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: username or email already exists")
	ErrInternalServer       = errors.New("internal server error")

	ErrRoomNotFound      = errors.New("room not found")
	ErrBucketNotFound    = errors.New("bucket not found")
	ErrCardNotFound      = errors.New("card not found")
	ErrTodoNotFound      = errors.New("todo not found")
	ErrInvalidInviteCode = errors.New("invalid invite code")

	ErrNotRoomMaster     = errors.New("only the room master may do this")
	ErrNotRoomMember     = errors.New("not a member of this room")
	ErrAlreadyMember     = errors.New("already a member of this room")
	ErrMasterCannotLeave = errors.New("the room master cannot leave the room")

	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidOrder = errors.New("invalid order")
	ErrConflict     = errors.New("the board changed, reload and retry")
)

// mapBoardError translates repository and domain errors from board writes.
// notFound is used for a repository.ErrNotFound that names no record type.
// Validation details stay in the message while errors.Is still matches the
// service sentinel.
func mapBoardError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrRoomNotFound):
		return ErrRoomNotFound
	case errors.Is(err, repository.ErrBucketNotFound):
		return ErrBucketNotFound
	case errors.Is(err, repository.ErrCardNotFound):
		return ErrCardNotFound
	case errors.Is(err, repository.ErrTodoNotFound):
		return ErrTodoNotFound
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrConflict), errors.Is(err, domain.ErrStaleBoard):
		return ErrConflict
	case errors.Is(err, domain.ErrInvalidOrder):
		return wrapDetail(ErrInvalidOrder, err)
	case errors.Is(err, domain.ErrInvalidDates):
		return wrapDetail(ErrInvalidInput, err)
	default:
		return ErrInternalServer
	}
}

// detailError carries a sentinel for errors.Is and the underlying message for clients.
type detailError struct {
	kind error
	err  error
}

func (e *detailError) Error() string { return e.err.Error() }
func (e *detailError) Unwrap() error { return e.kind }

func wrapDetail(kind, err error) error {
	return &detailError{kind: kind, err: err}
}
