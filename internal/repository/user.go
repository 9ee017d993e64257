package repository

import (
	"context"

	"github.com/team-pig/backend/internal/domain"
)

// UserRepository stores accounts.
type UserRepository interface {
	// FindByUsername returns ErrUserNotFound when no account has that name.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByID returns ErrUserNotFound when the id is unknown.
	FindByID(ctx context.Context, id uint) (*domain.User, error)

	// Save creates the user when ID is zero, updates it otherwise.
	// A taken username or email yields ErrDuplicateEntry.
	Save(ctx context.Context, user *domain.User) error
}
