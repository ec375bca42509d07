package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"editor-web/config"
	"editor-web/internal/handler"
	"editor-web/internal/metrics"
	"editor-web/internal/middleware"
	editorredis "editor-web/internal/redis"
	"editor-web/internal/repository"
	"editor-web/internal/services"
	"editor-web/internal/session"
	"editor-web/internal/transport/httpdto"
	"editor-web/internal/web"
	editor_errors "editor-web/pkg/errors"
	"editor-web/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var tokenPattern = regexp.MustCompile(`name="csrfmiddlewaretoken" value="([0-9a-f]{64})"`)

func newTestServer(t *testing.T, limiter middleware.AuthLimiter) *Server {
	t.Helper()
	return newTestServerWithRegistry(t, limiter, session.NewMemoryRegistry())
}

func newTestServerWithRegistry(t *testing.T, limiter middleware.AuthLimiter, registry session.Registry) *Server {
	t.Helper()
	l := logger.NewNop()
	repo := repository.NewMemoryUserRepository()
	svc, err := services.NewAuthService(repo, bcrypt.MinCost, l)
	require.NoError(t, err)
	tmpl, err := web.Templates()
	require.NoError(t, err)

	mgr := session.NewCookieManager(registry, time.Hour, false)
	m := metrics.NewAuthMetrics()

	s := New(&config.Config{AppMode: TestMode, AppPort: "0"}, l)
	s.SetupRoutes(&Handlers{
		Auth:   handler.NewAuthHandler(svc, mgr, m, l),
		Health: handler.NewHealthHandler(repo, l),
	}, Dependencies{
		SessionStore: session.NewStore(session.StoreOptions{Secret: "test-secret", MaxAge: time.Hour}),
		Sessions:     mgr,
		Templates:    tmpl,
		Metrics:      m,
		Limiter:      limiter,
	})
	return s
}

type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, s *Server) *browser {
	return &browser{t: t, handler: s.Engine(), cookies: map[string]*http.Cookie{}}
}

func (b *browser) send(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, ck := range b.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.send(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.send(req)
}

func (b *browser) pageToken() string {
	b.t.Helper()
	m := tokenPattern.FindStringSubmatch(b.get("/").Body.String())
	require.Len(b.t, m, 2)
	return m[1]
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) httpdto.AuthResponse {
	t.Helper()
	var resp httpdto.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestServer_RegisterLoginLogoutFlow(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))
	token := b.pageToken()

	reg := decode(t, b.post("/register", url.Values{
		"csrfmiddlewaretoken": {token},
		"username":            {"alice"},
		"password":            {"secret1"},
		"pwConfirm":           {"secret1"},
	}))
	require.True(t, reg.Success)
	assert.NotEqual(t, token, reg.CSRFToken)

	// The pre-login token is no longer accepted.
	stale := b.post("/login", url.Values{"csrfmiddlewaretoken": {token}, "username": {"alice"}, "password": {"secret1"}})
	assert.Equal(t, http.StatusForbidden, stale.Code)

	rec := b.post("/logout", url.Values{"csrfmiddlewaretoken": {reg.CSRFToken}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	token = b.pageToken()
	login := decode(t, b.post("/login", url.Values{"csrfmiddlewaretoken": {token}, "username": {"alice"}, "password": {"secret1"}}))
	assert.True(t, login.Success)
	assert.Contains(t, b.get("/").Body.String(), "Signed in as alice")
}

// snapshot copies the cookie jar so it can be replayed later.
func (b *browser) snapshot() map[string]*http.Cookie {
	saved := make(map[string]*http.Cookie, len(b.cookies))
	for name, ck := range b.cookies {
		saved[name] = ck
	}
	return saved
}

func TestServer_LogoutEndsSessionServerSide(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	registries := map[string]session.Registry{
		"memory": session.NewMemoryRegistry(),
		"redis":  editorredis.NewSessionRegistry(client),
	}
	for name, registry := range registries {
		t.Run(name, func(t *testing.T) {
			s := newTestServerWithRegistry(t, nil, registry)
			b := newBrowser(t, s)
			token := b.pageToken()

			reg := decode(t, b.post("/register", url.Values{
				"csrfmiddlewaretoken": {token},
				"username":            {"alice"},
				"password":            {"secret1"},
				"pwConfirm":           {"secret1"},
			}))
			require.True(t, reg.Success)
			require.Contains(t, b.get("/").Body.String(), "Signed in as alice")
			saved := b.snapshot()

			rec := b.get("/logout")
			require.Equal(t, http.StatusFound, rec.Code)

			// A copy of the cookie taken before logout no longer authenticates.
			replay := newBrowser(t, s)
			replay.cookies = saved
			page := replay.get("/")
			require.Equal(t, http.StatusOK, page.Code)
			assert.NotContains(t, page.Body.String(), "Signed in as")
			assert.Contains(t, page.Body.String(), `href="/login"`)
		})
	}
}

func TestServer_LoginReplacesEarlierSession(t *testing.T) {
	s := newTestServer(t, nil)
	b := newBrowser(t, s)
	token := b.pageToken()

	first := decode(t, b.post("/register", url.Values{
		"csrfmiddlewaretoken": {token},
		"username":            {"alice"},
		"password":            {"secret1"},
		"pwConfirm":           {"secret1"},
	}))
	require.True(t, first.Success)
	before := b.snapshot()

	again := decode(t, b.post("/login", url.Values{
		"csrfmiddlewaretoken": {first.CSRFToken},
		"username":            {"alice"},
		"password":            {"secret1"},
	}))
	require.True(t, again.Success)
	assert.Contains(t, b.get("/").Body.String(), "Signed in as alice")

	old := newBrowser(t, s)
	old.cookies = before
	assert.NotContains(t, old.get("/").Body.String(), "Signed in as")
}

func TestServer_CSRFRequired(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))
	token := b.pageToken()
	form := url.Values{"username": {"alice"}, "password": {"secret1"}, "pwConfirm": {"secret1"}}

	for _, path := range []string{"/register", "/login", "/logout", "/"} {
		rec := b.post(path, form)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		resp := decode(t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, editor_errors.MessageCSRFFailed, resp.Message)
		assert.Equal(t, token, resp.CSRFToken)
	}

	form.Set("csrfmiddlewaretoken", "0000")
	assert.Equal(t, http.StatusForbidden, b.post("/register", form).Code)
}

func TestServer_CSRFHeaderAccepted(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))
	token := b.pageToken()

	form := url.Values{"username": {"alice"}, "password": {"secret1"}, "pwConfirm": {"secret1"}}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRFToken", token)

	rec := b.send(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode(t, rec).Success)
}

func TestServer_NoSessionMeansNoPost(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=a&password=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, decode(t, rec).CSRFToken, 64)
}

func TestServer_RateLimitsCredentialPosts(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter := editorredis.NewRateLimiter(client, editorredis.RateLimitConfig{AuthLimit: 2, AuthWindow: time.Minute})

	b := newBrowser(t, newTestServer(t, limiter))
	token := b.pageToken()
	form := url.Values{"csrfmiddlewaretoken": {token}, "username": {"nobody"}, "password": {"secret1"}}

	for i := 0; i < 2; i++ {
		rec := b.post("/login", form)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, editor_errors.MessageBadCredentials, decode(t, rec).Message)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := b.post("/login", form)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, editor_errors.MessageRateLimited, resp.Message)
	assert.Equal(t, token, resp.CSRFToken)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	// Page loads are not counted.
	assert.Equal(t, http.StatusOK, b.get("/").Code)

	mr.FastForward(time.Minute)
	assert.Equal(t, http.StatusOK, b.post("/login", form).Code)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))

	rec := b.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var health httpdto.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)

	rec = b.get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RequestIDEchoed(t *testing.T) {
	b := newBrowser(t, newTestServer(t, nil))

	rec := b.get("/")
	assert.Len(t, rec.Header().Get(middleware.RequestIDHeader), 32)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	rec = b.send(req)
	assert.Equal(t, "abc-123", rec.Header().Get(middleware.RequestIDHeader))
}
