// Package service contains the business logic for the museum companion.
// Services validate inputs, enforce business rules, and orchestrate calls to
// the museum backend and the local repos. Each service declares the slice of
// the backend it needs as an interface; *museum.Client satisfies all of them.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/museum"
	"github.com/pkordes/museo-companion/internal/session"
)

// AuthBackend is the part of the museum backend used for login.
type AuthBackend interface {
	LoginURL() string
	Logout(ctx context.Context) error
	GetVisitor(ctx context.Context, id int) (domain.Visitor, error)
}

// LoginCallback carries the query parameters of the OAuth redirect.
type LoginCallback struct {
	VisitorID       int
	Name            string
	Email           string
	Picture         string
	Success         bool
	ProfileComplete bool
	Error           string
	Token           string
}

// AuthService logs visitors in and out of a session.
type AuthService struct {
	backend AuthBackend
	log     *slog.Logger
	now     func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(backend AuthBackend, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{backend: backend, log: log, now: time.Now}
}

// LoginURL is where the browser goes to start the OAuth flow.
func (s *AuthService) LoginURL() string {
	return s.backend.LoginURL()
}

// Login stores the visitor from a successful OAuth callback in st.
// Returns domain.ErrUnauthenticated when the callback reports a failure, lacks
// the visitor's id, name, or email, or names a visitor the backend does not
// confirm.
func (s *AuthService) Login(ctx context.Context, st *session.State, cb LoginCallback) (domain.SessionUser, error) {
	if cb.Error != "" {
		return domain.SessionUser{}, fmt.Errorf("service.AuthService.Login: %w: %s", domain.ErrUnauthenticated, cb.Error)
	}
	if !cb.Success || cb.VisitorID <= 0 || strings.TrimSpace(cb.Name) == "" || strings.TrimSpace(cb.Email) == "" {
		return domain.SessionUser{}, fmt.Errorf("service.AuthService.Login: %w: incomplete login callback", domain.ErrUnauthenticated)
	}

	u := domain.SessionUser{
		VisitorID:       cb.VisitorID,
		Name:            cb.Name,
		Email:           cb.Email,
		Picture:         cb.Picture,
		LoginTime:       s.now().UTC(),
		ProfileComplete: cb.ProfileComplete,
	}

	// With a token the backend must confirm the visitor. Without one a failed
	// lookup does not block the login. A record that disagrees with the
	// callback always does.
	v, err := s.backend.GetVisitor(museum.WithBearer(ctx, cb.Token), cb.VisitorID)
	switch {
	case err != nil && cb.Token != "":
		return domain.SessionUser{}, fmt.Errorf("service.AuthService.Login: %w: visitor could not be verified: %v", domain.ErrUnauthenticated, err)
	case err != nil:
		s.log.WarnContext(ctx, "could not load visitor profile at login", "visitor_id", cb.VisitorID, "error", err)
	case !sameVisitor(v, cb):
		s.log.WarnContext(ctx, "login callback does not match backend visitor", "visitor_id", cb.VisitorID, "backend_visitor_id", v.ID)
		return domain.SessionUser{}, fmt.Errorf("service.AuthService.Login: %w: visitor could not be verified", domain.ErrUnauthenticated)
	default:
		u.Country, u.City = v.Country, v.City
		u.VisitorType, u.EntryType = v.VisitorType, v.EntryType
		u.Companions = v.Companions
		u.ProfileComplete = u.ProfileComplete || v.ProfileComplete
	}

	if err := st.Login(ctx, u, cb.Token); err != nil {
		return domain.SessionUser{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	s.log.InfoContext(ctx, "visitor logged in", "visitor_id", u.VisitorID, "session_id", st.ID())
	u.Authenticated = true
	return u, nil
}

// sameVisitor reports whether the backend record is the visitor the callback
// names. Emails compare case-insensitively.
func sameVisitor(v domain.Visitor, cb LoginCallback) bool {
	return v.ID == cb.VisitorID &&
		strings.EqualFold(strings.TrimSpace(v.Email), strings.TrimSpace(cb.Email))
}

// Logout tells the backend and then clears st. A backend failure is logged
// and does not stop the local logout.
func (s *AuthService) Logout(ctx context.Context, st *session.State) error {
	if st.Authenticated() {
		if err := s.backend.Logout(ctx); err != nil {
			s.log.WarnContext(ctx, "backend logout failed", "session_id", st.ID(), "error", err)
		}
	}
	if err := st.Logout(ctx); err != nil {
		return fmt.Errorf("service.AuthService.Logout: %w", err)
	}
	return nil
}

// Me returns the logged-in visitor.
func (s *AuthService) Me(st *session.State) (domain.SessionUser, error) {
	return currentUser(st)
}

// currentUser returns the authenticated user in st or domain.ErrUnauthenticated.
func currentUser(st *session.State) (domain.SessionUser, error) {
	if st == nil || !st.Authenticated() {
		return domain.SessionUser{}, domain.ErrUnauthenticated
	}
	u, _ := st.User()
	return u, nil
}
