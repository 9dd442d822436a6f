package domain

// VisitorStats is the backend's aggregate over registered visitors.
type VisitorStats struct {
	Total       int            `json:"total"`
	ByType      map[string]int `json:"by_type"`
	Recent30d   int            `json:"recent_30d"`
	ActiveCount int            `json:"active"`
}

// ItineraryStats is the backend's aggregate over generated itineraries.
type ItineraryStats struct {
	Total           int            `json:"total"`
	ByStatus        map[string]int `json:"by_status"`
	Completed       int            `json:"completed"`
	InProgress      int            `json:"in_progress"`
	AverageDuration float64        `json:"average_duration_minutes"`
	AverageScore    float64        `json:"average_score"`
	GeneratedWithAI int            `json:"generated_with_ai"`
}

// TodayStats summarises today's museum activity.
type TodayStats struct {
	VisitorsToday    int     `json:"visitors_today"`
	ActiveItinerary  int     `json:"active_itineraries"`
	AverageEntryTime string  `json:"average_entry_time,omitempty"`
	AverageDuration  float64 `json:"average_duration_minutes"`
}

// EvaluationStats is the backend's aggregate over submitted evaluations.
// Percentages are in the 0–100 range.
type EvaluationStats struct {
	Total            int     `json:"total"`
	AverageRating    float64 `json:"average_rating"`
	PctPersonalized  float64 `json:"pct_personalized"`
	PctGoodDecisions float64 `json:"pct_good_decisions"`
	PctCompanionship float64 `json:"pct_companionship"`
	PctUnderstanding float64 `json:"pct_understanding"`
	PctRelevant      float64 `json:"pct_relevant"`
	PctWouldUseAgain float64 `json:"pct_would_use_again"`
	Satisfaction     string  `json:"satisfaction"`
}

// PeakHour is the visitor count for one hour of the day ("10:00").
type PeakHour struct {
	Hour     string `json:"hour"`
	Visitors int    `json:"visitors"`
}

// WeekStats summarises the last seven days of visits.
type WeekStats struct {
	Period              string         `json:"period"`
	TotalVisits         int            `json:"total_visits"`
	VisitsByDay         map[string]int `json:"visits_by_day"`
	AverageSatisfaction *float64       `json:"average_satisfaction,omitempty"`
}
