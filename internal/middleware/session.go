package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/museum"
	"github.com/pkordes/museo-companion/internal/session"
)

// SessionTokenHeader carries a newly issued session token for clients that
// authenticate with a bearer header instead of the cookie.
const SessionTokenHeader = "X-Session-Token"

// Sessions is the session persistence the middleware needs.
// repo.SessionRepo satisfies it.
type Sessions interface {
	Create(ctx context.Context) (domain.Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Session, error)
	Touch(ctx context.Context, id uuid.UUID) error
}

// SessionOptions configures NewSessionHandler.
type SessionOptions struct {
	Sessions Sessions
	Store    session.Store
	Tokens   *session.Tokens
	// Secure marks the session cookie HTTPS-only.
	Secure bool
	Log    *slog.Logger
}

// NewSessionHandler returns a middleware that resolves the caller's session
// from the museo_session cookie or an Authorization bearer token, starting a
// new one when neither names a live session. The hydrated *session.State is
// placed in the request context, and the visitor's backend token (if any) is
// attached for museum calls.
func NewSessionHandler(opts SessionOptions) func(http.Handler) http.Handler {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			id, ok := existingSession(ctx, r, opts, log)
			if !ok {
				s, err := opts.Sessions.Create(ctx)
				if err != nil {
					log.ErrorContext(ctx, "could not start session", "error", err)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				id = s.ID
				if err := issue(w, opts, id); err != nil {
					log.ErrorContext(ctx, "could not issue session token", "error", err)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
			}

			st, err := session.Open(ctx, opts.Store, id, log)
			if err != nil {
				log.ErrorContext(ctx, "could not load session", "session_id", id, "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			ctx = session.NewContext(ctx, st)
			ctx = museum.WithBearer(ctx, st.Token())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// existingSession returns the live session named by the request, if any.
func existingSession(ctx context.Context, r *http.Request, opts SessionOptions, log *slog.Logger) (uuid.UUID, bool) {
	raw := requestToken(r)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := opts.Tokens.Parse(raw)
	if err != nil {
		log.DebugContext(ctx, "ignoring invalid session token", "error", err)
		return uuid.Nil, false
	}
	if _, err := opts.Sessions.GetByID(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.WarnContext(ctx, "session lookup failed", "session_id", id, "error", err)
		}
		return uuid.Nil, false
	}
	if err := opts.Sessions.Touch(ctx, id); err != nil {
		log.WarnContext(ctx, "could not touch session", "session_id", id, "error", err)
	}
	return id, true
}

func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if c, err := r.Cookie(session.CookieName); err == nil {
		return c.Value
	}
	return ""
}

func issue(w http.ResponseWriter, opts SessionOptions, id uuid.UUID) error {
	tok, err := opts.Tokens.Issue(id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(opts.Tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(SessionTokenHeader, tok)
	return nil
}
