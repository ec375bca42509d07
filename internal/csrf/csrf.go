// Package csrf issues and checks the anti-forgery token kept in the session.
//
// Forms send the token back in the csrfmiddlewaretoken field; scripts may use
// the X-CSRFToken header instead.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	FormField  = "csrfmiddlewaretoken"
	HeaderName = "X-CSRFToken"

	sessionKey = "csrf_token"
	tokenBytes = 32
)

var ErrTokenMismatch = errors.New("csrf token missing or incorrect")

// Token returns the session's token, issuing and saving a new one if the
// session has none yet.
func Token(c *gin.Context) (string, error) {
	session := sessions.Default(c)
	if token, ok := session.Get(sessionKey).(string); ok && token != "" {
		return token, nil
	}
	token, err := Rotate(session)
	if err != nil {
		return "", err
	}
	if err := session.Save(); err != nil {
		return "", err
	}
	return token, nil
}

// Rotate stores a fresh token in session without saving it.
func Rotate(session sessions.Session) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	session.Set(sessionKey, token)
	return token, nil
}

// Verify checks the token submitted with an unsafe request against the
// session's token. Safe methods always pass.
func Verify(c *gin.Context) error {
	if isSafeMethod(c.Request.Method) {
		return nil
	}

	expected, ok := sessions.Default(c).Get(sessionKey).(string)
	if !ok || expected == "" {
		return ErrTokenMismatch
	}

	received := c.GetHeader(HeaderName)
	if received == "" {
		received = c.PostForm(FormField)
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
		return ErrTokenMismatch
	}
	return nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
