package session

import (
	"context"
	"sync"
	"time"
)

// Registry is the server-side record of live authenticated sessions. A
// cookie only authenticates while its session id is registered, so revoking
// the id ends the session even if a copy of the cookie survives.
type Registry interface {
	Register(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	// Lookup reports ok=false with a nil error for unknown or expired ids.
	Lookup(ctx context.Context, sessionID string) (userID string, ok bool, err error)
	Revoke(ctx context.Context, sessionID string) error
}

type memoryEntry struct {
	userID    string
	expiresAt time.Time
}

// MemoryRegistry keeps sessions in process memory. Suitable for a single
// instance and for tests.
type MemoryRegistry struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sessions: make(map[string]memoryEntry), now: time.Now}
}

func (r *MemoryRegistry) Register(_ context.Context, sessionID, userID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = memoryEntry{userID: userID, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *MemoryRegistry) Lookup(_ context.Context, sessionID string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sessionID]
	if !ok {
		return "", false, nil
	}
	if !r.now().Before(e.expiresAt) {
		delete(r.sessions, sessionID)
		return "", false, nil
	}
	return e.userID, true, nil
}

func (r *MemoryRegistry) Revoke(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

// Len returns the number of registered sessions, expired ones included.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
