package repository

import (
	"errors"
	"fmt"
)

// Errors every repository implementation maps its driver errors onto.
var (
	// ErrNotFound means the requested record does not exist (or is soft-deleted).
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry means a unique constraint rejected the write.
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
	// ErrConflict means a versioned write lost a race with another writer.
	ErrConflict = errors.New("repository: version conflict")
	// ErrRoomNotDeleted means a purge was asked for a room that is still live.
	ErrRoomNotDeleted = errors.New("repository: room is not deleted")
)

// Per-record not-found errors. Each matches ErrNotFound with errors.Is.
var (
	ErrUserNotFound   = fmt.Errorf("%w: user", ErrNotFound)
	ErrRoomNotFound   = fmt.Errorf("%w: room", ErrNotFound)
	ErrBucketNotFound = fmt.Errorf("%w: bucket", ErrNotFound)
	ErrCardNotFound   = fmt.Errorf("%w: card", ErrNotFound)
	ErrTodoNotFound   = fmt.Errorf("%w: todo", ErrNotFound)
)
