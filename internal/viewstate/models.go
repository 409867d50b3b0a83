package viewstate

import (
	"backend-ecomap/internal/catalog"
	"backend-ecomap/internal/shared/geo"
	"backend-ecomap/internal/trip"
)

const (
	MinZoom     = 1
	MaxZoom     = 20
	DefaultZoom = 9
	// CloseZoom is used when the map follows an acquired position.
	CloseZoom = 12
	// DetailZoom is used for a selected location or "go to my location".
	DetailZoom = 15
)

type Style string

const (
	StyleRoad      Style = "roadmap"
	StyleSatellite Style = "satellite"
	StyleTerrain   Style = "terrain"
)

// Next cycles road, satellite, terrain, road.
func (s Style) Next() Style {
	switch s {
	case StyleRoad:
		return StyleSatellite
	case StyleSatellite:
		return StyleTerrain
	}
	return StyleRoad
}

type Mode string

const (
	ModeNormal Mode = "normal"
	ModeTrip   Mode = "trip"
)

type MarkerKind string

const (
	MarkerUser     MarkerKind = "user"
	MarkerSelected MarkerKind = "selected"
	MarkerWaypoint MarkerKind = "waypoint"
)

type Marker struct {
	Kind       MarkerKind `json:"kind"`
	Label      string     `json:"label"`
	Color      string     `json:"color"`
	Position   geo.Point  `json:"position"`
	LocationID string     `json:"location_id,omitempty"`
}

// Descriptor is everything the rendering surface needs to draw the view.
type Descriptor struct {
	Center  geo.Point `json:"center"`
	Zoom    int       `json:"zoom"`
	Style   Style     `json:"style"`
	Markers []Marker  `json:"markers"`
}

// View is the serializable image of a State.
type View struct {
	Center       geo.Point         `json:"center"`
	Zoom         int               `json:"zoom"`
	Style        Style             `json:"style"`
	Mode         Mode              `json:"mode"`
	Selected     *catalog.Location `json:"selected,omitempty"`
	UserPosition *geo.Point        `json:"user_position,omitempty"`
	Destination  string            `json:"destination,omitempty"`
	Stops        []trip.Stop       `json:"stops,omitempty"`
	DetailOpen   bool              `json:"detail_open"`
	ListOpen     bool              `json:"list_open"`
	Markers      []Marker          `json:"markers"`
}
