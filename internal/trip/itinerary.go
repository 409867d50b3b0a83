package trip

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrBadItinerary = errors.New("invalid itinerary")

// ParseItinerary decodes the planner's "locations" query parameter: a
// URL-escaped JSON array of waypoints. An empty parameter is an empty trip.
func ParseItinerary(param string) ([]Waypoint, error) {
	if strings.TrimSpace(param) == "" {
		return nil, nil
	}
	raw, err := url.QueryUnescape(param)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadItinerary, err)
	}
	var waypoints []Waypoint
	if err := json.Unmarshal([]byte(raw), &waypoints); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadItinerary, err)
	}
	return waypoints, nil
}

// DirectionsURL builds a driving directions link through every stop.
// Unresolved stops and destinations are passed by name.
func DirectionsURL(destination string, stops []Stop) string {
	dest := url.QueryEscape(destination)
	if p, ok := Destinations.Lookup(strings.ToLower(destination)); ok {
		dest = p.String()
	}

	parts := make([]string, len(stops))
	for i, s := range stops {
		if s.Position != nil {
			parts[i] = s.Position.String()
		} else {
			parts[i] = url.QueryEscape(s.Name)
		}
	}

	return "https://www.google.com/maps/dir/?api=1&destination=" + dest +
		"&waypoints=" + strings.Join(parts, "|") + "&travelmode=driving"
}
