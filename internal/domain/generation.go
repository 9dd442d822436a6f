package domain

// DetailLevel is how much narrative content each stop should carry.
type DetailLevel string

const (
	DetailBasic    DetailLevel = "basic"
	DetailMedium   DetailLevel = "medium"
	DetailDetailed DetailLevel = "detailed"
)

// Valid reports whether d is one of the known detail levels.
func (d DetailLevel) Valid() bool {
	switch d {
	case DetailBasic, DetailMedium, DetailDetailed:
		return true
	}
	return false
}

// GenerateOptions are the choices collected by the itinerary generation form.
// Duration nil means "no rush": the backend plans without a time limit.
type GenerateOptions struct {
	VisitorID   int
	Duration    *int
	DetailLevel DetailLevel
	EntryType   EntryType
	Companions  int
	AreaCodes   []string
	AvoidAreas  []int
}

// GenerationStatus reports how far the backend has progressed in producing
// stop content for an itinerary.
type GenerationStatus struct {
	ItineraryID    int             `json:"itinerary_id"`
	Complete       bool            `json:"complete"`
	AreasGenerated int             `json:"areas_generated"`
	TotalAreas     int             `json:"total_areas"`
	Percent        float64         `json:"percent"`
	Status         ItineraryStatus `json:"status"`
}
