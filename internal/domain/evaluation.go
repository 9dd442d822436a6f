package domain

import "time"

// Evaluation is the satisfaction survey submitted once at visit completion.
// Answers are pointers so an unanswered question is distinguishable from "no".
type Evaluation struct {
	ItineraryID   int       `json:"itinerary_id"`
	Rating        int       `json:"rating"`
	Personalized  *bool     `json:"personalized"`
	GoodDecisions *bool     `json:"good_decisions"`
	Companionship *bool     `json:"companionship"`
	Understanding *bool     `json:"understanding"`
	Relevant      *bool     `json:"relevant"`
	WouldUseAgain *bool     `json:"would_use_again"`
	Comment       string    `json:"comment,omitempty"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// Answers returns the six survey answers in their fixed question order.
func (e Evaluation) Answers() [6]*bool {
	return [6]*bool{
		e.Personalized,
		e.GoodDecisions,
		e.Companionship,
		e.Understanding,
		e.Relevant,
		e.WouldUseAgain,
	}
}
