package visit

import (
	"fmt"
	"slices"
	"time"

	"github.com/pkordes/museo-companion/internal/domain"
)

// Snapshot is a point-in-time view of a Tracker, shaped for the API.
type Snapshot struct {
	ItineraryID    int                    `json:"itinerary_id"`
	Title          string                 `json:"title"`
	Status         domain.ItineraryStatus `json:"status"`
	Stops          []domain.Stop          `json:"stops"`
	Cursor         int                    `json:"cursor"`
	Current        *domain.Stop           `json:"current,omitempty"`
	Hints          *Hints                 `json:"hints,omitempty"`
	Visited        int                    `json:"visited"`
	Skipped        int                    `json:"skipped"`
	Pending        int                    `json:"pending"`
	Total          int                    `json:"total"`
	Progress       int                    `json:"progress_percent"`
	AllDone        bool                   `json:"all_done"`
	Generating     bool                   `json:"generating"`
	Completed      bool                   `json:"completed"`
	StartedAt      time.Time              `json:"started_at"`
	ElapsedSeconds int64                  `json:"elapsed_seconds"`
	Elapsed        string                 `json:"elapsed"`
	Warning        string                 `json:"warning,omitempty"`
}

func (t *Tracker) snapshot() Snapshot {
	stops := slices.Clone(t.itinerary.Stops)
	elapsed := t.elapsed()

	s := Snapshot{
		ItineraryID:    t.itinerary.ID,
		Title:          t.itinerary.Title,
		Status:         t.itinerary.Status,
		Stops:          stops,
		Cursor:         t.cursor,
		Total:          len(stops),
		Completed:      t.completed,
		Generating:     t.generating,
		StartedAt:      t.startedAt,
		ElapsedSeconds: int64(elapsed / time.Second),
		Elapsed:        FormatElapsed(elapsed),
	}
	for _, st := range stops {
		switch st.Status() {
		case domain.StopVisited:
			s.Visited++
		case domain.StopSkipped:
			s.Skipped++
		default:
			s.Pending++
		}
	}
	s.AllDone = s.Pending == 0 && !t.generating
	s.Progress = progressPercent(s.Visited, s.Total)

	if len(stops) > 0 && s.Pending > 0 {
		cur := stops[t.cursor]
		s.Current = &cur
		if t.cursor+1 < len(stops) {
			h := NavigationHints(cur, stops[t.cursor+1])
			s.Hints = &h
		}
	}
	return s
}

// FormatElapsed renders d as "1h 5m" from one hour up, otherwise "3m 12s".
func FormatElapsed(d time.Duration) string {
	secs := int64(max(d, 0) / time.Second)
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}
