package mapsession

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend-ecomap/internal/trip"
)

var (
	ErrUnknownEvent    = errors.New("unknown event type")
	ErrBadEvent        = errors.New("invalid event payload")
	ErrUnknownLocation = errors.New("location not in catalog")
	ErrSessionNotFound = errors.New("map session not found")
	ErrSessionClosed   = errors.New("map session closed")
)

type EventType string

const (
	EventQuery          EventType = "query"
	EventCategory       EventType = "category"
	EventSelect         EventType = "select"
	EventRecenter       EventType = "recenter"
	EventMapStyle       EventType = "map_style"
	EventLocateMe       EventType = "locate_me"
	EventRetryLocation  EventType = "retry_location"
	EventPosition       EventType = "position"
	EventPositionDenied EventType = "position_denied"
	EventTouchStart     EventType = "touch_start"
	EventTouchMove      EventType = "touch_move"
	EventTouchEnd       EventType = "touch_end"
	EventTrip           EventType = "trip"
	EventExitTrip       EventType = "exit_trip"
	EventToggleList     EventType = "toggle_list"
)

// Event is one user or device input. Only the fields of its type are read.
type Event struct {
	Type EventType `json:"type"`

	Text       string  `json:"text,omitempty"`
	Category   string  `json:"category,omitempty"`
	LocationID string  `json:"location_id,omitempty"`
	Y          float64 `json:"y,omitempty"`

	Lat       *float64   `json:"lat,omitempty"`
	Lng       *float64   `json:"lng,omitempty"`
	Accuracy  float64    `json:"accuracy,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Reason    string     `json:"reason,omitempty"`

	Destination string          `json:"destination,omitempty"`
	Locations   string          `json:"locations,omitempty"`
	Waypoints   []trip.Waypoint `json:"waypoints,omitempty"`
	ItineraryID string          `json:"itinerary_id,omitempty"`
}

func DecodeEvent(raw []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrBadEvent, err)
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("%w: missing type", ErrBadEvent)
	}
	return ev, nil
}

// Message is the envelope pushed to stream subscribers.
type Message struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

const (
	MessageSnapshot = "snapshot"
	MessageLocate   = "locate"
	MessageError    = "error"
)

// LocateRequest asks the device for its position.
type LocateRequest struct {
	TimeoutMS    int64 `json:"timeout_ms"`
	MaximumAgeMS int64 `json:"maximum_age_ms"`
	HighAccuracy bool  `json:"high_accuracy"`
}
