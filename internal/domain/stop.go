package domain

import "time"

// StopStatus is the progress state of a stop during a visit.
// Pending means neither visited nor skipped.
type StopStatus string

const (
	StopPending StopStatus = "pending"
	StopVisited StopStatus = "visited"
	StopSkipped StopStatus = "skipped"
)

// Stop is one scheduled area visit within an itinerary.
// Order is fixed at generation time; Visited and Skipped mutate during the
// visit and are never both true.
type Stop struct {
	ID               int        `json:"id"`
	ItineraryID      int        `json:"itinerary_id"`
	Order            int        `json:"order"`
	Area             *Area      `json:"area,omitempty"`
	SuggestedMinutes int        `json:"suggested_minutes"`
	Introduction     string     `json:"introduction,omitempty"`
	History          string     `json:"history,omitempty"`
	Trivia           []string   `json:"trivia,omitempty"`
	Observe          []string   `json:"observe,omitempty"`
	KeyPoints        []string   `json:"key_points,omitempty"`
	Recommendation   string     `json:"recommendation,omitempty"`
	Visited          bool       `json:"visited"`
	Skipped          bool       `json:"skipped"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}

// Status derives the stop's progress state from its flags.
func (s Stop) Status() StopStatus {
	switch {
	case s.Visited:
		return StopVisited
	case s.Skipped:
		return StopSkipped
	}
	return StopPending
}

// Terminal reports whether the stop has been visited or skipped.
func (s Stop) Terminal() bool {
	return s.Visited || s.Skipped
}
