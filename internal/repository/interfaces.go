package repository

import (
	"context"
	"time"

	"editor-web/internal/domain/user"

	"github.com/google/uuid"
)

// UserRepository is the identity store. Username uniqueness is enforced by
// the store itself: Create returns editor_errors.ErrAlreadyExists when the
// username is taken, even if a prior FindByUsername reported it free.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	// FindByUsername reports found=false with a nil error when no user has
	// that username.
	FindByUsername(ctx context.Context, username string) (u user.User, found bool, err error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Ping(ctx context.Context) error
}
