package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/session"
)

// memStore is an in-memory session.Store shared by the service tests.
type memStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memStore) Get(_ context.Context, id uuid.UUID, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[id.String()+"/"+key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}
func (m *memStore) Set(_ context.Context, id uuid.UUID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[id.String()+"/"+key] = value
	return nil
}
func (m *memStore) Remove(_ context.Context, id uuid.UUID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, id.String()+"/"+key)
	return nil
}
func (m *memStore) Clear(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.values)
	return nil
}

var _ session.Store = (*memStore)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// anonymousState returns a fresh session with nobody logged in.
func anonymousState(t *testing.T) *session.State {
	t.Helper()
	st, err := session.Open(context.Background(), &memStore{values: map[string]string{}}, uuid.New(), discardLogger())
	require.NoError(t, err)
	return st
}

// loggedInState returns a session with visitor 7 logged in.
func loggedInState(t *testing.T) *session.State {
	t.Helper()
	st := anonymousState(t)
	require.NoError(t, st.Login(context.Background(), domain.SessionUser{
		VisitorID: 7,
		Name:      "Ana Torres",
		Email:     "ana@example.com",
		LoginTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}, "backend-token"))
	return st
}

func intPtr(n int) *int { return &n }

func boolPtr(b bool) *bool { return &b }
