package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Key pattern: session:{id} -> user id, expiring with the session.

// SessionRegistry records live authenticated sessions in Redis.
type SessionRegistry struct {
	client *goredis.Client
}

func NewSessionRegistry(client *goredis.Client) *SessionRegistry {
	return &SessionRegistry{client: client}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// Register stores the session with a TTL matching the cookie lifetime.
func (r *SessionRegistry) Register(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, sessionKey(sessionID), userID, ttl).Err(); err != nil {
		return fmt.Errorf("register session: %w", err)
	}
	return nil
}

func (r *SessionRegistry) Lookup(ctx context.Context, sessionID string) (string, bool, error) {
	userID, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup session: %w", err)
	}
	return userID, true, nil
}

func (r *SessionRegistry) Revoke(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
