// Package domain contains the core data types for the museum companion.
// This package has no dependencies beyond uuid and is imported by every other
// internal package (museum, session, visit, service, handler).
package domain

import "time"

// VisitorType classifies where a visitor comes from.
type VisitorType string

const (
	VisitorLocal         VisitorType = "local"
	VisitorNational      VisitorType = "national"
	VisitorInternational VisitorType = "international"
)

// Valid reports whether t is one of the known visitor types.
func (t VisitorType) Valid() bool {
	switch t {
	case VisitorLocal, VisitorNational, VisitorInternational:
		return true
	}
	return false
}

// EntryType is the ticket category a visitor enters with.
type EntryType string

const (
	EntryIndividual EntryType = "individual"
	EntryStudent    EntryType = "student"
	EntrySenior     EntryType = "senior"
	EntryGroup      EntryType = "group"
)

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	switch t {
	case EntryIndividual, EntryStudent, EntrySenior, EntryGroup:
		return true
	}
	return false
}

// Visitor is a museum visitor as known to the backend.
type Visitor struct {
	ID              int         `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	ProfileComplete bool        `json:"profile_complete"`
	Country         string      `json:"country,omitempty"`
	City            string      `json:"city,omitempty"`
	Phone           string      `json:"phone,omitempty"`
	VisitorType     VisitorType `json:"visitor_type,omitempty"`
	EntryType       EntryType   `json:"entry_type,omitempty"`
	Companions      int         `json:"companions"`
	TotalVisits     int         `json:"total_visits"`
	RegisteredAt    *time.Time  `json:"registered_at,omitempty"`
}

// SessionUser is the user object persisted in session storage.
// It is created at login and updated in place by profile completion.
type SessionUser struct {
	VisitorID       int         `json:"visitor_id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Picture         string      `json:"picture,omitempty"`
	Authenticated   bool        `json:"authenticated"`
	LoginTime       time.Time   `json:"login_time"`
	ProfileComplete bool        `json:"profile_complete"`
	Country         string      `json:"country,omitempty"`
	City            string      `json:"city,omitempty"`
	VisitorType     VisitorType `json:"visitor_type,omitempty"`
	EntryType       EntryType   `json:"entry_type,omitempty"`
	Companions      int         `json:"companions"`
}

// ProfileUpdate carries the fields collected by the profile completion form.
type ProfileUpdate struct {
	Country     string
	City        string
	Phone       string
	VisitorType VisitorType
	EntryType   EntryType
	Companions  int
}

// Preferences are the visitor's stored interests used to preselect areas.
type Preferences struct {
	Interests     []string
	AvailableTime *int
	DetailLevel   string
}
