package handler

import (
	"net/http"

	"github.com/pkordes/museo-companion/internal/domain"
)

// Pagination echoes the page that was served.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type visitorsResponse struct {
	Data       []domain.Visitor `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// GetAdminStats handles GET /admin/stats.
func (s *Server) GetAdminStats(w http.ResponseWriter, r *http.Request) {
	d, err := s.Admin.Dashboard(r.Context(), state(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ListVisitors handles GET /admin/visitors.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=10, max=50).
func (s *Server) ListVisitors(w http.ResponseWriter, r *http.Request) {
	p, err := pagination(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	vs, err := s.Admin.Visitors(r.Context(), state(r), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, visitorsResponse{
		Data:       vs,
		Pagination: Pagination{Page: p.Page, Limit: p.Limit},
	})
}
