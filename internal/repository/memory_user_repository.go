package repository

import (
	"context"
	"sync"
	"time"

	"editor-web/internal/domain/user"
	editor_errors "editor-web/pkg/errors"

	"github.com/google/uuid"
)

// MemoryUserRepository keeps users in a map. It backs STORE_DRIVER=memory
// and the handler tests.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	byUsername map[string]user.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byUsername: make(map[string]user.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[u.Username]; exists {
		return editor_errors.ErrAlreadyExists
	}
	r.byUsername[u.Username] = *u
	return nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byUsername[username]
	return u, ok, nil
}

func (r *MemoryUserRepository) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, u := range r.byUsername {
		if u.ID == id {
			u.LastLoginAt.Time = at
			u.LastLoginAt.Valid = true
			u.UpdatedAt = at
			r.byUsername[name] = u
			return nil
		}
	}
	return editor_errors.ErrNotFound
}

func (r *MemoryUserRepository) Ping(context.Context) error {
	return nil
}

// Count returns how many users are stored.
func (r *MemoryUserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUsername)
}
