package session

import (
	"errors"
	"net/http"
	"time"

	"editor-web/internal/csrf"
	"editor-web/internal/domain/user"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CookieName = "editor_session"

	sessionKeyUserID   = "auth_user_id"
	sessionKeyUsername = "auth_username"
	sessionKeyIssuedAt = "issued_at"
	sessionKeyID       = "session_id"
)

// Identity is the authenticated user bound to a session.
type Identity struct {
	UserID   string
	Username string
}

// Manager binds identities to the request's session.
type Manager interface {
	// Establish replaces whatever the session held with u and rotates the
	// CSRF token. It returns the new token.
	Establish(c *gin.Context, u user.User) (string, error)
	// Destroy ends the session. Destroying an anonymous session is a no-op.
	Destroy(c *gin.Context) error
	Current(c *gin.Context) (Identity, bool)
}

type StoreOptions struct {
	Secret string
	MaxAge time.Duration
	Secure bool
}

// NewStore builds the signed cookie store the session middleware uses.
func NewStore(opts StoreOptions) sessions.Store {
	store := cookie.NewStore([]byte(opts.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// Middleware attaches the session to every request.
func Middleware(store sessions.Store) gin.HandlerFunc {
	return sessions.Sessions(CookieName, store)
}

// CookieManager keeps the identity in the signed cookie and its session id
// in a Registry. The cookie alone never authenticates.
type CookieManager struct {
	registry Registry
	maxAge   time.Duration
	secure   bool
	now      func() time.Time
}

func NewCookieManager(registry Registry, maxAge time.Duration, secure bool) *CookieManager {
	return &CookieManager{registry: registry, maxAge: maxAge, secure: secure, now: time.Now}
}

func (m *CookieManager) Establish(c *gin.Context, u user.User) (string, error) {
	ctx := c.Request.Context()
	s := sessions.Default(c)
	if old, ok := s.Get(sessionKeyID).(string); ok && old != "" {
		if err := m.registry.Revoke(ctx, old); err != nil {
			return "", err
		}
	}

	sessionID := uuid.NewString()
	if err := m.registry.Register(ctx, sessionID, u.ID.String(), m.maxAge); err != nil {
		return "", err
	}

	s.Clear()
	s.Set(sessionKeyID, sessionID)
	s.Set(sessionKeyUserID, u.ID.String())
	s.Set(sessionKeyUsername, u.Username)
	s.Set(sessionKeyIssuedAt, m.now().Unix())

	token, err := csrf.Rotate(s)
	if err != nil {
		return "", err
	}
	if err := s.Save(); err != nil {
		return "", err
	}
	return token, nil
}

// Destroy revokes the session server-side and expires the cookie. The
// cookie is expired even when revocation fails.
func (m *CookieManager) Destroy(c *gin.Context) error {
	s := sessions.Default(c)

	var revokeErr error
	if sessionID, ok := s.Get(sessionKeyID).(string); ok && sessionID != "" {
		revokeErr = m.registry.Revoke(c.Request.Context(), sessionID)
	}

	s.Clear()
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return errors.Join(revokeErr, s.Save())
}

// Current reports the signed-in identity. Sessions whose id is no longer
// registered, or whose owner changed, are anonymous.
func (m *CookieManager) Current(c *gin.Context) (Identity, bool) {
	s := sessions.Default(c)
	userID, ok := s.Get(sessionKeyUserID).(string)
	if !ok || userID == "" {
		return Identity{}, false
	}
	sessionID, ok := s.Get(sessionKeyID).(string)
	if !ok || sessionID == "" {
		return Identity{}, false
	}

	issuedAt := readUnix(s.Get(sessionKeyIssuedAt))
	if issuedAt.IsZero() || m.now().Sub(issuedAt) > m.maxAge {
		return Identity{}, false
	}

	owner, live, err := m.registry.Lookup(c.Request.Context(), sessionID)
	if err != nil || !live || owner != userID {
		return Identity{}, false
	}

	username, _ := s.Get(sessionKeyUsername).(string)
	return Identity{UserID: userID, Username: username}, true
}

func readUnix(v interface{}) time.Time {
	switch t := v.(type) {
	case int64:
		return time.Unix(t, 0)
	case int:
		return time.Unix(int64(t), 0)
	case float64:
		return time.Unix(int64(t), 0)
	default:
		return time.Time{}
	}
}
