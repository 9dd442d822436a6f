package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pkordes/museo-companion/internal/certificate"
	"github.com/pkordes/museo-companion/internal/domain"
)

// generateRequest is the body of POST /itineraries/generate.
// A missing duration_minutes means "no rush".
type generateRequest struct {
	DurationMinutes *int               `json:"duration_minutes"`
	DetailLevel     domain.DetailLevel `json:"detail_level"`
	EntryType       domain.EntryType   `json:"entry_type"`
	Companions      int                `json:"companions"`
	Areas           []string           `json:"areas"`
	AvoidAreas      []int              `json:"avoid_areas"`
}

type suggestedAreasResponse struct {
	Areas []string `json:"areas"`
}

// ListAreas handles GET /areas.
func (s *Server) ListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := s.Areas.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, areas)
}

// GetArea handles GET /areas/{areaId}.
func (s *Server) GetArea(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "areaId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	a, err := s.Areas.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// SuggestedAreas handles GET /areas/suggested: the area codes to preselect
// on the generation form.
func (s *Server) SuggestedAreas(w http.ResponseWriter, r *http.Request) {
	codes, err := s.Itineraries.SuggestedAreas(r.Context(), state(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestedAreasResponse{Areas: codes})
}

// GenerateItinerary handles POST /itineraries/generate.
// Responds 201 with the itinerary as far as it is generated; the remaining
// stops can be followed on the generation endpoints.
func (s *Server) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	it, err := s.Itineraries.Generate(r.Context(), state(r), domain.GenerateOptions{
		Duration:    req.DurationMinutes,
		DetailLevel: req.DetailLevel,
		EntryType:   req.EntryType,
		Companions:  req.Companions,
		AreaCodes:   req.Areas,
		AvoidAreas:  req.AvoidAreas,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// ListItineraries handles GET /itineraries.
func (s *Server) ListItineraries(w http.ResponseWriter, r *http.Request) {
	its, err := s.Itineraries.List(r.Context(), state(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, its)
}

// GetItinerary handles GET /itineraries/{itineraryId}.
func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "itineraryId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	it, err := s.Itineraries.Get(r.Context(), state(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// StartItinerary handles POST /itineraries/{itineraryId}/start.
func (s *Server) StartItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "itineraryId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	it, err := s.Itineraries.Start(r.Context(), state(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// DeleteItinerary handles DELETE /itineraries/{itineraryId}.
func (s *Server) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "itineraryId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Itineraries.Delete(r.Context(), state(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGenerationStatus handles GET /itineraries/{itineraryId}/generation.
func (s *Server) GetGenerationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "itineraryId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	gs, err := s.Itineraries.Status(r.Context(), state(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gs)
}

// GenerationLive handles GET /itineraries/{itineraryId}/generation/live,
// a WebSocket that reports generation progress until it completes.
func (s *Server) GenerationLive(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "itineraryId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// Resolve the itinerary first so a bad id or a logged-out caller gets
	// a plain HTTP error instead of an empty socket.
	if _, err := s.Itineraries.Get(r.Context(), state(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Live.ServeGeneration(w, r, s.Poller, id)
}

// GetCertificate handles GET /itineraries/{itineraryId}/certificate.pdf.
func (s *Server) GetCertificate(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "itineraryId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	link := s.PublicURL + "/itineraries/" + strconv.Itoa(id)
	c, err := s.Itineraries.Certificate(r.Context(), state(r), id, link)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := certificate.Render(&buf, c); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", c.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}
