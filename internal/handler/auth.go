package handler

import (
	"net/http"
	"net/url"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/service"
)

// profileRequest is the body of PUT /profile.
type profileRequest struct {
	Country     string             `json:"country"`
	City        string             `json:"city"`
	Phone       string             `json:"phone"`
	VisitorType domain.VisitorType `json:"visitor_type"`
	EntryType   domain.EntryType   `json:"entry_type"`
	Companions  int                `json:"companions"`
}

// Login handles GET /auth/login by sending the browser to the backend's
// OAuth entry point.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.Auth.LoginURL(), http.StatusFound)
}

// LoginCallback handles GET /auth/callback, where the OAuth flow lands.
// On success the visitor is stored in the session and sent on to profile
// completion or straight to itinerary generation. On failure the visitor is
// sent back to the login page with the reason.
func (s *Server) LoginCallback(w http.ResponseWriter, r *http.Request) {
	var (
		visitorID                *int
		name, email, picture     *string
		success, profileComplete *bool
		loginErr, token          *string
	)
	for _, p := range []struct {
		name string
		dst  any
	}{
		{"visitante_id", &visitorID},
		{"nombre", &name},
		{"email", &email},
		{"picture", &picture},
		{"success", &success},
		{"datos_completos", &profileComplete},
		{"error", &loginErr},
		{"access_token", &token},
	} {
		if err := queryParam(r, p.name, p.dst); err != nil {
			s.redirectLogin(w, r, "invalid_callback")
			return
		}
	}

	st := state(r)
	if st == nil {
		s.writeError(w, r, domain.ErrUnauthenticated)
		return
	}

	u, err := s.Auth.Login(r.Context(), st, service.LoginCallback{
		VisitorID:       deref(visitorID),
		Name:            deref(name),
		Email:           deref(email),
		Picture:         deref(picture),
		Success:         deref(success),
		ProfileComplete: deref(profileComplete),
		Error:           deref(loginErr),
		Token:           deref(token),
	})
	if err != nil {
		reason := deref(loginErr)
		if reason == "" {
			reason = "login_failed"
		}
		s.log.WarnContext(r.Context(), "login callback rejected", "reason", reason, "error", err)
		s.redirectLogin(w, r, reason)
		return
	}

	next := "/generate"
	if !u.ProfileComplete {
		next = "/profile"
	}
	http.Redirect(w, r, s.PublicURL+next, http.StatusFound)
}

func (s *Server) redirectLogin(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, s.PublicURL+"/login?error="+url.QueryEscape(reason), http.StatusFound)
}

// Logout handles POST /auth/logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.Logout(r.Context(), state(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	u, err := s.Auth.Me(state(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// CompleteProfile handles PUT /profile.
func (s *Server) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.Profiles.Complete(r.Context(), state(r), domain.ProfileUpdate{
		Country:     req.Country,
		City:        req.City,
		Phone:       req.Phone,
		VisitorType: req.VisitorType,
		EntryType:   req.EntryType,
		Companions:  req.Companions,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
