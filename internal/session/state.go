// Package session holds the visitor's authentication state for one browser
// session. A State is hydrated from storage when a request arrives and every
// mutation is written back to storage before it becomes visible in memory.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/museo-companion/internal/domain"
)

// Storage keys.
const (
	KeyUser  = "museo_user"
	KeyToken = "access_token"
)

// Store is the key/value storage a State mirrors itself into.
// repo.StorageRepo satisfies it.
type Store interface {
	Get(ctx context.Context, sessionID uuid.UUID, key string) (string, error)
	Set(ctx context.Context, sessionID uuid.UUID, key, value string) error
	Remove(ctx context.Context, sessionID uuid.UUID, key string) error
	Clear(ctx context.Context, sessionID uuid.UUID) error
}

// State is the current visitor, if any, for one session.
type State struct {
	id    uuid.UUID
	store Store
	log   *slog.Logger

	mu    sync.RWMutex
	user  *domain.SessionUser
	token string
}

// Open hydrates the State for session id from store. A stored user that no
// longer parses is discarded and removed from storage.
func Open(ctx context.Context, store Store, id uuid.UUID, log *slog.Logger) (*State, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &State{id: id, store: store, log: log}

	raw, err := store.Get(ctx, id, KeyUser)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("session.Open: %w", err)
	default:
		var u domain.SessionUser
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			log.WarnContext(ctx, "discarding corrupt stored user", "session_id", id, "error", err)
			if err := store.Remove(ctx, id, KeyUser); err != nil {
				return nil, fmt.Errorf("session.Open: remove corrupt user: %w", err)
			}
		} else {
			s.user = &u
		}
	}

	tok, err := store.Get(ctx, id, KeyToken)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("session.Open: %w", err)
	default:
		s.token = tok
	}

	return s, nil
}

// ID returns the session id.
func (s *State) ID() uuid.UUID {
	return s.id
}

// User returns a copy of the current user and whether one is logged in.
func (s *State) User() (domain.SessionUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.SessionUser{}, false
	}
	return *s.user, true
}

// Authenticated reports whether a logged-in user is present.
func (s *State) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.Authenticated
}

// Token returns the backend access token, or "" when none is stored.
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Login replaces the current user. An empty token leaves any stored token
// untouched.
func (s *State) Login(ctx context.Context, u domain.SessionUser, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Authenticated = true
	if err := s.writeUser(ctx, u); err != nil {
		return fmt.Errorf("session.State.Login: %w", err)
	}
	if token != "" {
		if err := s.store.Set(ctx, s.id, KeyToken, token); err != nil {
			return fmt.Errorf("session.State.Login: %w", err)
		}
		s.token = token
	}
	s.user = &u
	return nil
}

// Update applies fn to a copy of the current user and stores the result.
// Returns domain.ErrUnauthenticated when nobody is logged in.
func (s *State) Update(ctx context.Context, fn func(*domain.SessionUser)) (domain.SessionUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return domain.SessionUser{}, fmt.Errorf("session.State.Update: %w", domain.ErrUnauthenticated)
	}
	u := *s.user
	fn(&u)
	if err := s.writeUser(ctx, u); err != nil {
		return domain.SessionUser{}, fmt.Errorf("session.State.Update: %w", err)
	}
	s.user = &u
	return u, nil
}

// Logout clears memory and storage. Where the visitor goes next is up to
// the caller.
func (s *State) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.token = ""
	if err := s.store.Clear(ctx, s.id); err != nil {
		return fmt.Errorf("session.State.Logout: %w", err)
	}
	return nil
}

func (s *State) writeUser(ctx context.Context, u domain.SessionUser) error {
	buf, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.id, KeyUser, string(buf))
}

type ctxKey struct{}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the State stored by NewContext, or nil.
func FromContext(ctx context.Context) *State {
	s, _ := ctx.Value(ctxKey{}).(*State)
	return s
}
