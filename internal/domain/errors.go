package domain

import "errors"

var (
	// ErrInvalidOrder means a caller-supplied ordering is not a valid
	// arrangement of the ids it is meant to arrange.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrStaleBoard means the caller's view of the board is out of date
	// (version mismatch, card no longer in the claimed bucket).
	ErrStaleBoard = errors.New("board changed since it was read")
	// ErrInvalidDates means a card ends before it starts.
	ErrInvalidDates = errors.New("end date is before start date")
)
