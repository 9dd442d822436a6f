package visit

import (
	"fmt"

	"github.com/pkordes/museo-companion/internal/domain"
)

// FloorMove is the vertical direction between two stops.
type FloorMove string

const (
	FloorUp   FloorMove = "up"
	FloorDown FloorMove = "down"
	FloorSame FloorMove = "same"
)

// Hints tells the visitor how to get from the current stop to the next one.
type Hints struct {
	FromFloor int       `json:"from_floor"`
	ToFloor   int       `json:"to_floor"`
	Floor     FloorMove `json:"floor"`
	ToZone    string    `json:"to_zone"`
	// ZoneChange is false when both stops are in the same zone.
	ZoneChange   bool     `json:"zone_change"`
	Instructions []string `json:"instructions"`
}

const (
	defaultFloor = 1
	defaultZone  = "central"
)

var zoneDirections = map[string]string{
	"norte":    "Head north",
	"sur":      "Head south",
	"este":     "Head east",
	"oeste":    "Head west",
	"central":  "Head to the centre",
	"exterior": "Go outside",
}

// NavigationHints compares where two stops are. Stops without an area, or
// areas without a floor or zone, count as floor 1 in the central zone.
func NavigationHints(from, to domain.Stop) Hints {
	ff, fz := location(from)
	tf, tz := location(to)

	h := Hints{FromFloor: ff, ToFloor: tf, ToZone: tz}
	switch {
	case tf > ff:
		h.Floor = FloorUp
		h.Instructions = append(h.Instructions, fmt.Sprintf("Go up to floor %d", tf))
	case tf < ff:
		h.Floor = FloorDown
		h.Instructions = append(h.Instructions, fmt.Sprintf("Go down to floor %d", tf))
	default:
		h.Floor = FloorSame
		h.Instructions = append(h.Instructions, fmt.Sprintf("Same floor (floor %d)", ff))
	}

	if fz != tz {
		h.ZoneChange = true
		dir, ok := zoneDirections[tz]
		if !ok {
			dir = "Zone " + tz
		}
		h.Instructions = append(h.Instructions, dir)
	}
	return h
}

func location(s domain.Stop) (floor int, zone string) {
	floor, zone = defaultFloor, defaultZone
	if s.Area == nil {
		return floor, zone
	}
	if s.Area.Floor != 0 {
		floor = s.Area.Floor
	}
	if s.Area.Zone != "" {
		zone = s.Area.Zone
	}
	return floor, zone
}
