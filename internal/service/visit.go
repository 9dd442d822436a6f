package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/museo-companion/internal/domain"
	"github.com/pkordes/museo-companion/internal/repo"
	"github.com/pkordes/museo-companion/internal/session"
	"github.com/pkordes/museo-companion/internal/visit"
)

// VisitBackend is the part of the museum backend a visit view needs.
type VisitBackend interface {
	visit.Recorder
	GetItinerary(ctx context.Context, id int) (domain.Itinerary, error)
	GenerationStatus(ctx context.Context, itineraryID int) (domain.GenerationStatus, error)
}

// View is a mounted visit-progress view. Done is closed when the view is
// unmounted or the service shuts down; live tickers stop on it.
type View struct {
	domain.VisitView
	Tracker *visit.Tracker

	ctx    context.Context
	cancel context.CancelFunc

	// generating is set until the backend reports every stop generated.
	generating atomic.Bool
}

// Done is closed when the view is torn down.
func (v *View) Done() <-chan struct{} {
	return v.ctx.Done()
}

// VisitService keeps the registry of mounted visit views. A view evicted by
// a restart is rebuilt from its persisted start time on first use.
type VisitService struct {
	backend VisitBackend
	visits  repo.VisitRepo
	log     *slog.Logger
	now     func() time.Time

	base     context.Context
	shutdown context.CancelFunc

	mu    sync.Mutex
	views map[uuid.UUID]*View
}

// NewVisitService constructs a VisitService.
func NewVisitService(backend VisitBackend, visits repo.VisitRepo, log *slog.Logger) *VisitService {
	if log == nil {
		log = slog.Default()
	}
	base, cancel := context.WithCancel(context.Background())
	return &VisitService{
		backend:  backend,
		visits:   visits,
		log:      log,
		now:      time.Now,
		base:     base,
		shutdown: cancel,
		views:    make(map[uuid.UUID]*View),
	}
}

// Mount opens a new view over itineraryID. Elapsed time starts now.
func (s *VisitService) Mount(ctx context.Context, st *session.State, itineraryID int) (*View, error) {
	if _, err := currentUser(st); err != nil {
		return nil, fmt.Errorf("service.VisitService.Mount: %w", err)
	}
	it, err := s.backend.GetItinerary(ctx, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("service.VisitService.Mount: %w", err)
	}
	if len(it.Stops) == 0 {
		return nil, fmt.Errorf("service.VisitService.Mount: %w: itinerary has no stops yet", domain.ErrConflict)
	}

	vv, err := s.visits.Create(ctx, st.ID(), itineraryID)
	if err != nil {
		return nil, fmt.Errorf("service.VisitService.Mount: %w", err)
	}

	v := s.register(vv, it)
	s.refresh(ctx, v)
	s.log.InfoContext(ctx, "visit view mounted", "view_id", vv.ID, "itinerary_id", itineraryID)
	return v, nil
}

// Get returns a mounted view owned by st, rebuilding it when needed.
// Returns domain.ErrNotFound for unknown, foreign, or unmounted views.
func (s *VisitService) Get(ctx context.Context, st *session.State, id uuid.UUID) (*View, error) {
	if _, err := currentUser(st); err != nil {
		return nil, fmt.Errorf("service.VisitService.Get: %w", err)
	}

	s.mu.Lock()
	v, ok := s.views[id]
	s.mu.Unlock()
	if ok {
		if v.SessionID != st.ID() {
			return nil, fmt.Errorf("service.VisitService.Get: %w", domain.ErrNotFound)
		}
		s.refresh(ctx, v)
		return v, nil
	}

	vv, err := s.visits.GetByID(ctx, st.ID(), id)
	if err != nil {
		return nil, fmt.Errorf("service.VisitService.Get: %w", err)
	}
	if !vv.Open() {
		return nil, fmt.Errorf("service.VisitService.Get: %w", domain.ErrNotFound)
	}
	it, err := s.backend.GetItinerary(ctx, vv.ItineraryID)
	if err != nil {
		return nil, fmt.Errorf("service.VisitService.Get: %w", err)
	}
	s.log.InfoContext(ctx, "visit view restored", "view_id", vv.ID, "itinerary_id", vv.ItineraryID)
	v = s.register(vv, it)
	s.refresh(ctx, v)
	return v, nil
}

// register adds a tracker for vv, or returns the one a concurrent request
// registered first.
func (s *VisitService) register(vv domain.VisitView, it domain.Itinerary) *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.views[vv.ID]; ok {
		return v
	}
	generating := it.Status != domain.ItineraryCompleted
	ctx, cancel := context.WithCancel(s.base)
	v := &View{
		VisitView: vv,
		Tracker: visit.New(it, vv.StartedAt, s.backend,
			visit.WithClock(s.now), visit.WithLogger(s.log), visit.WithGenerating(generating)),
		ctx:    ctx,
		cancel: cancel,
	}
	v.generating.Store(generating)
	s.views[vv.ID] = v
	return v
}

// refresh pulls stops the backend generated after the view was built.
// Status is read before the itinerary so a complete status implies every
// stop is in the copy that follows. Failures leave the view marked as
// generating, which keeps completion closed.
func (s *VisitService) refresh(ctx context.Context, v *View) {
	if !v.generating.Load() {
		return
	}
	gs, err := s.backend.GenerationStatus(ctx, v.ItineraryID)
	if err != nil {
		s.log.WarnContext(ctx, "generation status unavailable", "view_id", v.ID, "error", err)
		return
	}
	it, err := s.backend.GetItinerary(ctx, v.ItineraryID)
	if err != nil {
		s.log.WarnContext(ctx, "itinerary refresh failed", "view_id", v.ID, "error", err)
		return
	}
	v.Tracker.Sync(it, !gs.Complete)
	if gs.Complete {
		v.generating.Store(false)
	}
}

// Unmount tears the view down: its live tickers stop and it can no longer
// be used.
func (s *VisitService) Unmount(ctx context.Context, st *session.State, id uuid.UUID) error {
	v, err := s.Get(ctx, st, id)
	if err != nil {
		return fmt.Errorf("service.VisitService.Unmount: %w", err)
	}
	if err := s.visits.End(ctx, id, s.now()); err != nil {
		return fmt.Errorf("service.VisitService.Unmount: %w", err)
	}

	s.mu.Lock()
	delete(s.views, id)
	s.mu.Unlock()
	v.cancel()

	s.log.InfoContext(ctx, "visit view unmounted", "view_id", id)
	return nil
}

// MarkVisited marks the view's current stop as visited.
func (s *VisitService) MarkVisited(ctx context.Context, st *session.State, id uuid.UUID, stopID int) (visit.Snapshot, error) {
	v, err := s.Get(ctx, st, id)
	if err != nil {
		return visit.Snapshot{}, fmt.Errorf("service.VisitService.MarkVisited: %w", err)
	}
	return v.Tracker.MarkVisited(ctx, stopID)
}

// Skip skips the view's current stop.
func (s *VisitService) Skip(ctx context.Context, st *session.State, id uuid.UUID, stopID int) (visit.Snapshot, error) {
	v, err := s.Get(ctx, st, id)
	if err != nil {
		return visit.Snapshot{}, fmt.Errorf("service.VisitService.Skip: %w", err)
	}
	return v.Tracker.Skip(ctx, stopID)
}

// Back reopens the stop before the cursor.
func (s *VisitService) Back(ctx context.Context, st *session.State, id uuid.UUID) (visit.Snapshot, error) {
	v, err := s.Get(ctx, st, id)
	if err != nil {
		return visit.Snapshot{}, fmt.Errorf("service.VisitService.Back: %w", err)
	}
	return v.Tracker.GoToPrevious(ctx)
}

// Complete submits the evaluation and finishes the visit.
func (s *VisitService) Complete(ctx context.Context, st *session.State, id uuid.UUID, e domain.Evaluation) (visit.Snapshot, error) {
	v, err := s.Get(ctx, st, id)
	if err != nil {
		return visit.Snapshot{}, fmt.Errorf("service.VisitService.Complete: %w", err)
	}
	snap, err := v.Tracker.Complete(ctx, e)
	if err != nil {
		return visit.Snapshot{}, fmt.Errorf("service.VisitService.Complete: %w", err)
	}
	if err := s.visits.MarkCompleted(ctx, id, s.now()); err != nil && !errors.Is(err, domain.ErrConflict) {
		s.log.ErrorContext(ctx, "could not record visit completion", "view_id", id, "error", err)
	}
	return snap, nil
}

// Close tears down every mounted view. Used at shutdown.
func (s *VisitService) Close() {
	s.shutdown()
	s.mu.Lock()
	n := len(s.views)
	clear(s.views)
	s.mu.Unlock()
	s.log.Info("visit views closed", "count", n)
}
