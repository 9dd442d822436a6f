package middleware_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/middleware"
	"github.com/pkordes/museo-companion/internal/session"
)

// fakeSessions is an in-memory middleware.Sessions.
type fakeSessions struct {
	mu      sync.Mutex
	known   map[uuid.UUID]bool
	created int
	touched int
}

func (f *fakeSessions) Create(context.Context) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.known[id] = true
	f.created++
	return domain.Session{ID: id, CreatedAt: time.Now()}, nil
}
func (f *fakeSessions) GetByID(_ context.Context, id uuid.UUID) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.known[id] {
		return domain.Session{}, domain.ErrNotFound
	}
	return domain.Session{ID: id}, nil
}
func (f *fakeSessions) Touch(context.Context, uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched++
	return nil
}

var _ middleware.Sessions = (*fakeSessions)(nil)

// kvStore is an in-memory session.Store.
type kvStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *kvStore) Get(_ context.Context, id uuid.UUID, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[id.String()+"/"+key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}
func (m *kvStore) Set(_ context.Context, id uuid.UUID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[id.String()+"/"+key] = value
	return nil
}
func (m *kvStore) Remove(_ context.Context, id uuid.UUID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, id.String()+"/"+key)
	return nil
}
func (m *kvStore) Clear(context.Context, uuid.UUID) error { return nil }

type sessionFixture struct {
	sessions *fakeSessions
	tokens   *session.Tokens
	handler  http.Handler
	seen     *uuid.UUID
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		sessions: &fakeSessions{known: map[uuid.UUID]bool{}},
		tokens:   session.NewTokens("test-secret", time.Hour),
		seen:     new(uuid.UUID),
	}
	mw := middleware.NewSessionHandler(middleware.SessionOptions{
		Sessions: f.sessions,
		Store:    &kvStore{values: map[string]string{}},
		Tokens:   f.tokens,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	f.handler = mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := session.FromContext(r.Context())
		if st == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		*f.seen = st.ID()
		w.WriteHeader(http.StatusOK)
	}))
	return f
}

// TestSessionHandler_NewVisitorGetsCookie verifies that a request without a
// token starts a session and receives it as a cookie and a header.
func TestSessionHandler_NewVisitorGetsCookie(t *testing.T) {
	f := newSessionFixture()

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.sessions.created)

	res := rec.Result()
	require.Len(t, res.Cookies(), 1)
	c := res.Cookies()[0]
	assert.Equal(t, session.CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, c.Value, rec.Header().Get(middleware.SessionTokenHeader))

	id, err := f.tokens.Parse(c.Value)
	require.NoError(t, err)
	assert.Equal(t, id, *f.seen)
}

// TestSessionHandler_ReusesSession verifies that both the cookie and the
// bearer header resolve an existing session without issuing a new one.
func TestSessionHandler_ReusesSession(t *testing.T) {
	f := newSessionFixture()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	tok := rec.Header().Get(middleware.SessionTokenHeader)
	first := *f.seen

	byCookie := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	byCookie.AddCookie(&http.Cookie{Name: session.CookieName, Value: tok})
	byBearer := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	byBearer.Header.Set("Authorization", "Bearer "+tok)

	for _, req := range []*http.Request{byCookie, byBearer} {
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
		assert.Equal(t, first, *f.seen)
	}
	assert.Equal(t, 1, f.sessions.created)
	assert.Equal(t, 2, f.sessions.touched)
}

// TestSessionHandler_InvalidTokenStartsOver verifies that a forged or stale
// token is replaced with a fresh session instead of failing the request.
func TestSessionHandler_InvalidTokenStartsOver(t *testing.T) {
	f := newSessionFixture()
	stale, err := f.tokens.Issue(uuid.New())
	require.NoError(t, err)

	for _, tok := range []string{"garbage", stale} {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: tok})
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(middleware.SessionTokenHeader))
	}
	assert.Equal(t, 2, f.sessions.created)
}
