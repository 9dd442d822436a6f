// Package visit tracks a visitor's progress through an itinerary's stops.
//
// A Tracker owns the stop flags and the cursor for one mounted visit view.
// Stop changes are recorded on the museum backend before they are applied
// locally, except when going back, where the local state always moves.
package visit

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/pkordes/museo-companion/internal/domain"
)

var (
	// ErrAtFirstStop is returned by GoToPrevious when the cursor is already
	// on the first stop. Nothing changes; callers show it as a warning.
	ErrAtFirstStop = errors.New("already at the first stop")

	// ErrNotCurrentStop is returned when a stop other than the cursor stop
	// is marked or skipped.
	ErrNotCurrentStop = fmt.Errorf("%w: stop is not the current stop", domain.ErrConflict)

	// ErrVisitComplete is returned when marking or skipping after every
	// stop is already visited or skipped.
	ErrVisitComplete = fmt.Errorf("%w: every stop is already visited or skipped", domain.ErrConflict)

	// ErrStopsPending is returned by Complete while some stop is still pending.
	ErrStopsPending = fmt.Errorf("%w: some stops are still pending", domain.ErrConflict)

	// ErrStopsGenerating is returned by Complete, and by MarkVisited or Skip
	// once every known stop is done, while the backend is still producing
	// the itinerary's remaining stops.
	ErrStopsGenerating = fmt.Errorf("%w: the remaining stops are still being generated", domain.ErrConflict)

	// ErrAlreadyCompleted is returned by any mutation after Complete succeeded.
	ErrAlreadyCompleted = fmt.Errorf("%w: visit already completed", domain.ErrConflict)
)

// Recorder records stop and itinerary changes on the museum backend.
// *museum.Client satisfies it.
type Recorder interface {
	MarkStopVisited(ctx context.Context, stopID int, at time.Time) error
	SkipStop(ctx context.Context, stopID int) error
	ReactivateStop(ctx context.Context, stopID int) error
	UnmarkStop(ctx context.Context, stopID int) error
	SubmitEvaluation(ctx context.Context, e domain.Evaluation) error
	RequestCertificate(ctx context.Context, itineraryID int) error
	CompleteItinerary(ctx context.Context, id int) (domain.Itinerary, error)
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger used for backend failures.
func WithLogger(log *slog.Logger) Option {
	return func(t *Tracker) { t.log = log }
}

// WithGenerating marks the itinerary as still being generated, so more
// stops may arrive through Sync.
func WithGenerating(generating bool) Option {
	return func(t *Tracker) { t.generating = generating }
}

// Tracker is the progress state machine for one visit view.
// All methods are safe for concurrent use; mutations are serialized,
// including the backend call each one makes.
type Tracker struct {
	rec Recorder
	log *slog.Logger
	now func() time.Time

	mu          sync.Mutex
	itinerary   domain.Itinerary
	cursor      int
	startedAt   time.Time
	lastElapsed time.Duration
	evaluated   bool
	completed   bool
	generating  bool
}

// New returns a Tracker over it whose elapsed time counts from startedAt.
// Stops are ordered by their Order field and the cursor starts on the
// first stop that is neither visited nor skipped.
func New(it domain.Itinerary, startedAt time.Time, rec Recorder, opts ...Option) *Tracker {
	t := &Tracker{
		rec:       rec,
		log:       slog.Default(),
		now:       time.Now,
		itinerary: it,
		startedAt: startedAt,
		completed: it.Status == domain.ItineraryCompleted,
	}
	for _, o := range opts {
		o(t)
	}

	t.itinerary.Stops = slices.Clone(it.Stops)
	slices.SortStableFunc(t.itinerary.Stops, func(a, b domain.Stop) int {
		return cmp.Compare(a.Order, b.Order)
	})

	t.cursor = max(len(t.itinerary.Stops)-1, 0)
	if i := t.firstPending(0); i >= 0 {
		t.cursor = i
	}
	t.evaluated = t.completed
	return t
}

// Sync merges a fresh copy of the itinerary into the tracker. Stops it has
// not seen are added in order; known stops take the new content but keep
// their local visited and skipped flags. generating reports whether more
// stops may still arrive.
func (t *Tracker) Sync(it domain.Itinerary, generating bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.generating = generating
	if len(it.Stops) == 0 {
		return
	}
	known := make(map[int]int, len(t.itinerary.Stops))
	for i, st := range t.itinerary.Stops {
		known[st.ID] = i
	}
	curID := -1
	if len(t.itinerary.Stops) > 0 {
		curID = t.itinerary.Stops[t.cursor].ID
	}

	for _, fresh := range it.Stops {
		i, ok := known[fresh.ID]
		if !ok {
			t.itinerary.Stops = append(t.itinerary.Stops, fresh)
			continue
		}
		local := t.itinerary.Stops[i]
		fresh.Visited, fresh.Skipped = local.Visited, local.Skipped
		fresh.StartedAt, fresh.FinishedAt = local.StartedAt, local.FinishedAt
		t.itinerary.Stops[i] = fresh
	}
	slices.SortStableFunc(t.itinerary.Stops, func(a, b domain.Stop) int {
		return cmp.Compare(a.Order, b.Order)
	})

	t.cursor = max(len(t.itinerary.Stops)-1, 0)
	for i, st := range t.itinerary.Stops {
		if st.ID == curID {
			t.cursor = i
		}
	}
	if t.itinerary.Stops[t.cursor].Terminal() {
		t.advance()
	}
}

// ItineraryID returns the tracked itinerary's id.
func (t *Tracker) ItineraryID() int {
	return t.itinerary.ID
}

// StartedAt returns the instant elapsed time counts from.
func (t *Tracker) StartedAt() time.Time {
	return t.startedAt
}

// MarkVisited records stopID as visited and advances the cursor.
func (t *Tracker) MarkVisited(ctx context.Context, stopID int) (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkCursorStop(stopID); err != nil {
		return Snapshot{}, fmt.Errorf("visit.Tracker.MarkVisited: %w", err)
	}

	at := t.now()
	if err := t.rec.MarkStopVisited(ctx, stopID, at); err != nil {
		t.log.ErrorContext(ctx, "mark stop visited failed",
			"itinerary_id", t.itinerary.ID, "stop_id", stopID, "error", err)
		return Snapshot{}, fmt.Errorf("visit.Tracker.MarkVisited: %w", err)
	}

	s := &t.itinerary.Stops[t.cursor]
	s.Visited, s.Skipped = true, false
	s.FinishedAt = &at
	t.advance()
	return t.snapshot(), nil
}

// Skip records stopID as skipped and advances the cursor.
func (t *Tracker) Skip(ctx context.Context, stopID int) (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkCursorStop(stopID); err != nil {
		return Snapshot{}, fmt.Errorf("visit.Tracker.Skip: %w", err)
	}

	if err := t.rec.SkipStop(ctx, stopID); err != nil {
		t.log.ErrorContext(ctx, "skip stop failed",
			"itinerary_id", t.itinerary.ID, "stop_id", stopID, "error", err)
		return Snapshot{}, fmt.Errorf("visit.Tracker.Skip: %w", err)
	}

	s := &t.itinerary.Stops[t.cursor]
	s.Skipped, s.Visited = true, false
	t.advance()
	return t.snapshot(), nil
}

// GoToPrevious resets the stop before the cursor to pending and moves the
// cursor onto it. At the first stop it returns ErrAtFirstStop and changes
// nothing.
//
// If the backend rejects the reset the local state still moves and the
// returned snapshot carries a desync warning.
func (t *Tracker) GoToPrevious(ctx context.Context) (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.completed {
		return Snapshot{}, fmt.Errorf("visit.Tracker.GoToPrevious: %w", ErrAlreadyCompleted)
	}
	if t.cursor == 0 {
		return Snapshot{}, ErrAtFirstStop
	}

	prev := t.cursor - 1
	s := &t.itinerary.Stops[prev]

	var err error
	switch s.Status() {
	case domain.StopVisited:
		err = t.rec.UnmarkStop(ctx, s.ID)
	case domain.StopSkipped:
		err = t.rec.ReactivateStop(ctx, s.ID)
	}

	s.Visited, s.Skipped = false, false
	s.FinishedAt = nil
	t.cursor = prev

	snap := t.snapshot()
	if err != nil {
		t.log.WarnContext(ctx, "go back not recorded on backend; local state moved anyway",
			"itinerary_id", t.itinerary.ID, "stop_id", s.ID, "error", err)
		snap.Warning = "The previous stop was reopened here but the museum service did not confirm it."
	}
	return snap, nil
}

// Complete finishes the visit: it validates e, submits it, requests the
// certificate, and marks the itinerary completed. It is accepted only once
// every stop is visited or skipped, and only once per tracker. A failed
// certificate request is logged and reported as a warning.
func (t *Tracker) Complete(ctx context.Context, e domain.Evaluation) (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.completed {
		return Snapshot{}, fmt.Errorf("visit.Tracker.Complete: %w", ErrAlreadyCompleted)
	}
	if !t.allTerminal() {
		return Snapshot{}, fmt.Errorf("visit.Tracker.Complete: %w", ErrStopsPending)
	}
	if t.generating {
		return Snapshot{}, fmt.Errorf("visit.Tracker.Complete: %w", ErrStopsGenerating)
	}
	if err := ValidateEvaluation(e); err != nil {
		return Snapshot{}, fmt.Errorf("visit.Tracker.Complete: %w", err)
	}

	id := t.itinerary.ID
	if !t.evaluated {
		e.ItineraryID = id
		e.SubmittedAt = t.now()
		if err := t.rec.SubmitEvaluation(ctx, e); err != nil {
			t.log.ErrorContext(ctx, "submit evaluation failed", "itinerary_id", id, "error", err)
			return Snapshot{}, fmt.Errorf("visit.Tracker.Complete: %w", err)
		}
		t.evaluated = true
	}

	var warning string
	if err := t.rec.RequestCertificate(ctx, id); err != nil {
		t.log.WarnContext(ctx, "certificate request failed", "itinerary_id", id, "error", err)
		warning = "Your visit was completed but the certificate e-mail could not be requested."
	}

	updated, err := t.rec.CompleteItinerary(ctx, id)
	if err != nil {
		t.log.ErrorContext(ctx, "complete itinerary failed", "itinerary_id", id, "error", err)
		return Snapshot{}, fmt.Errorf("visit.Tracker.Complete: %w", err)
	}

	t.completed = true
	t.itinerary.Status = domain.ItineraryCompleted
	if updated.FinishedAt != nil {
		t.itinerary.FinishedAt = updated.FinishedAt
	} else {
		at := t.now()
		t.itinerary.FinishedAt = &at
	}

	snap := t.snapshot()
	snap.Warning = warning
	return snap, nil
}

// Elapsed returns the wall-clock time since the view started. It never
// decreases between calls, even if the clock steps backwards.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed()
}

// Snapshot returns the tracker's current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

func (t *Tracker) elapsed() time.Duration {
	d := max(t.now().Sub(t.startedAt), 0)
	if d < t.lastElapsed {
		d = t.lastElapsed
	}
	t.lastElapsed = d
	return d
}

func (t *Tracker) checkCursorStop(stopID int) error {
	if t.completed {
		return ErrAlreadyCompleted
	}
	if !slices.ContainsFunc(t.itinerary.Stops, func(s domain.Stop) bool { return s.ID == stopID }) {
		return domain.ErrNotFound
	}
	if t.allTerminal() {
		if t.generating {
			return ErrStopsGenerating
		}
		return ErrVisitComplete
	}
	if t.itinerary.Stops[t.cursor].ID != stopID {
		return ErrNotCurrentStop
	}
	return nil
}

// advance moves the cursor to the next pending stop after it, wrapping to
// the first pending stop overall. With no pending stops it stays put.
func (t *Tracker) advance() {
	if i := t.firstPending(t.cursor + 1); i >= 0 {
		t.cursor = i
		return
	}
	if i := t.firstPending(0); i >= 0 {
		t.cursor = i
	}
}

func (t *Tracker) firstPending(from int) int {
	for i := from; i < len(t.itinerary.Stops); i++ {
		if !t.itinerary.Stops[i].Terminal() {
			return i
		}
	}
	return -1
}

func (t *Tracker) allTerminal() bool {
	return !slices.ContainsFunc(t.itinerary.Stops, func(s domain.Stop) bool { return !s.Terminal() })
}

// ValidateEvaluation checks a survey before anything is sent: the rating
// must be 1 to 5 and all six questions answered.
func ValidateEvaluation(e domain.Evaluation) error {
	if e.Rating < 1 || e.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}
	for _, a := range e.Answers() {
		if a == nil {
			return fmt.Errorf("%w: please answer all the questions", domain.ErrValidation)
		}
	}
	return nil
}

// progressPercent is visited stops over all stops, rounded to a whole percent.
func progressPercent(visited, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(visited) * 100 / float64(total)))
}
