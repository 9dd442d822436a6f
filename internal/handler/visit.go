package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/service"
	"github.com/pkordes/museo-companion/internal/session"
	"github.com/pkordes/museo-companion/internal/visit"
)

type mountRequest struct {
	ItineraryID int `json:"itinerary_id"`
}

// evaluationRequest is the body of POST /visits/{visitId}/complete.
// Unanswered questions are left null.
type evaluationRequest struct {
	Rating        int    `json:"rating"`
	Personalized  *bool  `json:"personalized"`
	GoodDecisions *bool  `json:"good_decisions"`
	Companionship *bool  `json:"companionship"`
	Understanding *bool  `json:"understanding"`
	Relevant      *bool  `json:"relevant"`
	WouldUseAgain *bool  `json:"would_use_again"`
	Comment       string `json:"comment"`
}

// visitResponse describes a mounted view and its current progress.
type visitResponse struct {
	ID          uuid.UUID      `json:"id"`
	ItineraryID int            `json:"itinerary_id"`
	StartedAt   time.Time      `json:"started_at"`
	Progress    visit.Snapshot `json:"progress"`
}

func toVisitResponse(v *service.View) visitResponse {
	return visitResponse{
		ID:          v.ID,
		ItineraryID: v.ItineraryID,
		StartedAt:   v.StartedAt,
		Progress:    v.Tracker.Snapshot(),
	}
}

// MountVisit handles POST /visits. The view's clock starts now.
func (s *Server) MountVisit(w http.ResponseWriter, r *http.Request) {
	var req mountRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.ItineraryID <= 0 {
		badRequest(w, "itinerary_id is required")
		return
	}
	v, err := s.Visits.Mount(r.Context(), state(r), req.ItineraryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toVisitResponse(v))
}

// GetVisit handles GET /visits/{visitId}.
func (s *Server) GetVisit(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "visitId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	v, err := s.Visits.Get(r.Context(), state(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toVisitResponse(v))
}

// UnmountVisit handles DELETE /visits/{visitId}.
func (s *Server) UnmountVisit(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "visitId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Visits.Unmount(r.Context(), state(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkStopVisited handles POST /visits/{visitId}/stops/{stopId}/visited.
func (s *Server) MarkStopVisited(w http.ResponseWriter, r *http.Request) {
	s.stopAction(w, r, s.Visits.MarkVisited)
}

// SkipStop handles POST /visits/{visitId}/stops/{stopId}/skip.
func (s *Server) SkipStop(w http.ResponseWriter, r *http.Request) {
	s.stopAction(w, r, s.Visits.Skip)
}

type stopActionFunc func(ctx context.Context, st *session.State, id uuid.UUID, stopID int) (visit.Snapshot, error)

func (s *Server) stopAction(w http.ResponseWriter, r *http.Request, act stopActionFunc) {
	id, err := pathUUID(r, "visitId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	stopID, err := pathInt(r, "stopId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	snap, err := act(r.Context(), state(r), id, stopID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GoBack handles POST /visits/{visitId}/back. When the backend could not be
// updated the stop is still reopened and the snapshot carries a warning.
func (s *Server) GoBack(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "visitId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	snap, err := s.Visits.Back(r.Context(), state(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// CompleteVisit handles POST /visits/{visitId}/complete.
func (s *Server) CompleteVisit(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "visitId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req evaluationRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	snap, err := s.Visits.Complete(r.Context(), state(r), id, domain.Evaluation{
		Rating:        req.Rating,
		Personalized:  req.Personalized,
		GoodDecisions: req.GoodDecisions,
		Companionship: req.Companionship,
		Understanding: req.Understanding,
		Relevant:      req.Relevant,
		WouldUseAgain: req.WouldUseAgain,
		Comment:       req.Comment,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// VisitLive handles GET /visits/{visitId}/live, a WebSocket that pushes the
// elapsed time every tick until the socket or the view closes.
func (s *Server) VisitLive(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "visitId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	v, err := s.Visits.Get(r.Context(), state(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Live.ServeVisit(w, r, v.Tracker, v.Done())
}
