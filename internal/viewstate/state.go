// Package viewstate holds the single source of truth for what the map
// canvas shows. State is an immutable value: every command returns a new
// State and the marker set is always derived, never stored.
package viewstate

import (
	"strconv"

	"backend-ecomap/internal/catalog"
	"backend-ecomap/internal/geolocation"
	"backend-ecomap/internal/shared/geo"
	"backend-ecomap/internal/trip"
)

type State struct {
	center       geo.Point
	zoom         int
	style        Style
	mode         Mode
	selected     *catalog.Location
	userPosition *geo.Point
	destination  string
	stops        []trip.Stop
	detailOpen   bool
	listOpen     bool
}

// New returns the mount-time state: default region, default zoom, road
// style, no selection.
func New() State {
	return State{
		center: geo.DefaultCenter,
		zoom:   DefaultZoom,
		style:  StyleRoad,
		mode:   ModeNormal,
	}
}

func (s State) Center() geo.Point { return s.center }
func (s State) Zoom() int         { return s.zoom }
func (s State) Style() Style      { return s.style }
func (s State) Mode() Mode        { return s.mode }
func (s State) DetailOpen() bool  { return s.detailOpen }
func (s State) ListOpen() bool    { return s.listOpen }
func (s State) Destination() string {
	return s.destination
}

// SelectedID is empty when nothing is selected.
func (s State) SelectedID() string {
	if s.selected == nil {
		return ""
	}
	return s.selected.ID
}

func (s State) Selected() (catalog.Location, bool) {
	if s.selected == nil {
		return catalog.Location{}, false
	}
	return *s.selected, true
}

func (s State) UserPosition() (geo.Point, bool) {
	if s.userPosition == nil {
		return geo.Point{}, false
	}
	return *s.userPosition, true
}

func (s State) Stops() []trip.Stop {
	out := make([]trip.Stop, len(s.stops))
	copy(out, s.stops)
	return out
}

// Select focuses a location: centered, detail zoom, detail panel open,
// list overlay closed. Selecting leaves trip mode.
func (s State) Select(loc catalog.Location) State {
	if s.mode == ModeTrip {
		s = s.ExitTripMode()
	}
	l := loc
	s.selected = &l
	s.center = loc.Coordinates
	s.zoom = DetailZoom
	s.detailOpen = true
	s.listOpen = false
	return s
}

// Recenter clears the selection and returns to the default region.
func (s State) Recenter() State {
	s.selected = nil
	s.detailOpen = false
	s.center = geo.DefaultCenter
	s.zoom = DefaultZoom
	return s
}

// Dismiss closes the detail panel and clears the selection without moving
// the map.
func (s State) Dismiss() State {
	s.selected = nil
	s.detailOpen = false
	return s
}

// ChangeCategory is applied when the category filter changes: any open
// detail belongs to the previous filter.
func (s State) ChangeCategory() State {
	return s.Dismiss()
}

// CenterOn moves the map without touching selection or panels.
func (s State) CenterOn(p geo.Point, zoom int) State {
	s.center = p
	s.zoom = clampZoom(zoom)
	return s
}

func (s State) CycleStyle() State {
	s.style = s.style.Next()
	return s
}

func (s State) SetZoom(z int) State {
	s.zoom = clampZoom(z)
	return s
}

func (s State) ToggleList() State {
	s.listOpen = !s.listOpen
	return s
}

// SetUserPosition records where the user is. It never moves the map.
func (s State) SetUserPosition(p geo.Point) State {
	pos := p
	s.userPosition = &pos
	return s
}

// GoToUser centers on the recorded user position; without one it is a
// no-op.
func (s State) GoToUser() State {
	if s.userPosition == nil {
		return s
	}
	s.center = *s.userPosition
	s.zoom = DetailZoom
	return s
}

// ApplyGeolocation records a granted position and follows it at close zoom
// when it falls inside the catalog region. Denials leave the view alone.
func (s State) ApplyGeolocation(res geolocation.Result) State {
	if res.Status != geolocation.StatusGranted || res.Position == nil {
		return s
	}
	s = s.SetUserPosition(*res.Position)
	if geo.Himachal.Contains(*res.Position) {
		s.center = *res.Position
		s.zoom = CloseZoom
	}
	return s
}

// EnterTripMode shows an itinerary instead of browsing; it clears any
// selection.
func (s State) EnterTripMode(destination string, stops []trip.Stop) State {
	s = s.Dismiss()
	s.mode = ModeTrip
	s.destination = destination
	s.stops = make([]trip.Stop, len(stops))
	copy(s.stops, stops)
	return s
}

func (s State) ExitTripMode() State {
	s.mode = ModeNormal
	s.destination = ""
	s.stops = nil
	return s
}

// Reconcile drops a selection that is no longer in the visible set.
func (s State) Reconcile(visible []catalog.Location) State {
	if s.selected == nil {
		return s
	}
	for _, l := range visible {
		if l.ID == s.selected.ID {
			return s
		}
	}
	return s.Dismiss()
}

// Markers is derived from user position, selection, mode and stops only.
func (s State) Markers() []Marker {
	markers := make([]Marker, 0, len(s.stops)+2)
	if s.userPosition != nil {
		markers = append(markers, Marker{Kind: MarkerUser, Label: "You", Color: "blue", Position: *s.userPosition})
	}
	if s.mode == ModeTrip {
		for _, stop := range s.stops {
			if stop.Position == nil {
				continue
			}
			markers = append(markers, Marker{
				Kind:     MarkerWaypoint,
				Label:    strconv.Itoa(stop.Index),
				Color:    "green",
				Position: *stop.Position,
			})
		}
	}
	if s.selected != nil {
		markers = append(markers, Marker{
			Kind:       MarkerSelected,
			Label:      "Selected",
			Color:      "red",
			Position:   s.selected.Coordinates,
			LocationID: s.selected.ID,
		})
	}
	return markers
}

func (s State) Descriptor() Descriptor {
	return Descriptor{Center: s.center, Zoom: s.zoom, Style: s.style, Markers: s.Markers()}
}

func (s State) View() View {
	v := View{
		Center:      s.center,
		Zoom:        s.zoom,
		Style:       s.style,
		Mode:        s.mode,
		Destination: s.destination,
		Stops:       s.Stops(),
		DetailOpen:  s.detailOpen,
		ListOpen:    s.listOpen,
		Markers:     s.Markers(),
	}
	if loc, ok := s.Selected(); ok {
		v.Selected = &loc
	}
	if p, ok := s.UserPosition(); ok {
		v.UserPosition = &p
	}
	return v
}

// Equal compares every field that defines the view.
func (s State) Equal(o State) bool {
	if s.center != o.center || s.zoom != o.zoom || s.style != o.style || s.mode != o.mode ||
		s.destination != o.destination || s.detailOpen != o.detailOpen || s.listOpen != o.listOpen {
		return false
	}
	if s.SelectedID() != o.SelectedID() {
		return false
	}
	up, uok := s.UserPosition()
	op, ook := o.UserPosition()
	if uok != ook || up != op {
		return false
	}
	if len(s.stops) != len(o.stops) {
		return false
	}
	for i := range s.stops {
		if s.stops[i].Name != o.stops[i].Name || s.stops[i].Resolved() != o.stops[i].Resolved() {
			return false
		}
		if s.stops[i].Resolved() && *s.stops[i].Position != *o.stops[i].Position {
			return false
		}
	}
	return true
}

func clampZoom(z int) int {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
