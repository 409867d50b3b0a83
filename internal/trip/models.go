package trip

import (
	"time"

	"backend-ecomap/internal/shared/geo"
)

// Waypoint is one itinerary entry as produced by the trip planner.
type Waypoint struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Distance    string `json:"distance"`
}

// Stop is a waypoint after coordinate lookup. Position is nil when the
// name has no known coordinates; the stop stays in the itinerary but gets
// no marker.
type Stop struct {
	Waypoint
	Index    int        `json:"index"`
	Position *geo.Point `json:"position,omitempty"`
}

func (s Stop) Resolved() bool { return s.Position != nil }

type Itinerary struct {
	ID          string     `json:"id"`
	Destination string     `json:"destination"`
	Waypoints   []Waypoint `json:"locations"`
	CreatedBy   string     `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
