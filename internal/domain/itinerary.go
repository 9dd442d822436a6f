package domain

import "time"

// ItineraryStatus is the lifecycle state of an itinerary.
// Transitions are driven by explicit visitor actions (start, complete).
type ItineraryStatus string

const (
	ItineraryGenerated ItineraryStatus = "generated"
	ItineraryActive    ItineraryStatus = "active"
	ItineraryPaused    ItineraryStatus = "paused"
	ItineraryCompleted ItineraryStatus = "completed"
	ItineraryCancelled ItineraryStatus = "cancelled"
)

// Itinerary is a generated visit plan: an ordered list of stops.
type Itinerary struct {
	ID          int             `json:"id"`
	Status      ItineraryStatus `json:"status"`
	GeneratedAt time.Time       `json:"generated_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Duration    int             `json:"duration_minutes"`
	EntryType   EntryType       `json:"entry_type,omitempty"`
	Companions  int             `json:"companions"`
	Stops       []Stop          `json:"stops"`
}

// Area is a physical section of the museum. Read-only reference data.
type Area struct {
	ID          int    `json:"id"`
	Code        string `json:"code,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Floor       int    `json:"floor"`
	Zone        string `json:"zone,omitempty"`
	MinMinutes  int    `json:"min_minutes"`
	MaxMinutes  int    `json:"max_minutes"`
	Active      bool   `json:"active"`
}
