package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is one browser's server-side storage scope.
type Session struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VisitView is a mounted visit-progress view over one itinerary.
// StartedAt anchors the elapsed-time display; EndedAt is set on unmount.
type VisitView struct {
	ID          uuid.UUID  `json:"id"`
	SessionID   uuid.UUID  `json:"session_id"`
	ItineraryID int        `json:"itinerary_id"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Open reports whether the view has not been unmounted.
func (v VisitView) Open() bool {
	return v.EndedAt == nil
}
