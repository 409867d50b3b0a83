package trip

import (
	"strings"

	"backend-ecomap/internal/shared/geo"
)

// Table maps waypoint names to coordinates. Lookups are exact first, then
// case-insensitive.
type Table map[string]geo.Point

func (t Table) Lookup(name string) (geo.Point, bool) {
	if p, ok := t[name]; ok {
		return p, true
	}
	trimmed := strings.TrimSpace(name)
	for k, p := range t {
		if strings.EqualFold(k, trimmed) {
			return p, true
		}
	}
	return geo.Point{}, false
}

// Resolve keeps every waypoint in order and attaches coordinates where the
// table knows the name.
func (t Table) Resolve(waypoints []Waypoint) []Stop {
	stops := make([]Stop, len(waypoints))
	for i, wp := range waypoints {
		stops[i] = Stop{Waypoint: wp, Index: i + 1}
		if p, ok := t.Lookup(wp.Name); ok {
			pos := p
			stops[i].Position = &pos
		}
	}
	return stops
}

// Mapped counts resolved stops.
func Mapped(stops []Stop) int {
	n := 0
	for _, s := range stops {
		if s.Resolved() {
			n++
		}
	}
	return n
}

// Places known to the trip planner's itineraries.
var Places = Table{
	"N.B Waterfall":           {Lat: 31.2856, Lng: 76.7235},
	"Rukmani Kund":            {Lat: 31.3156, Lng: 76.7535},
	"Markandya Temple":        {Lat: 31.3356, Lng: 76.7835},
	"Bandla Paragliding Site": {Lat: 31.2956, Lng: 76.7435},
	"Chadwick Falls":          {Lat: 31.0848, Lng: 77.1534},
	"Prospect Hill":           {Lat: 31.1248, Lng: 77.1834},
	"Annandale Ground":        {Lat: 31.0948, Lng: 77.1634},
	"Summer Hill":             {Lat: 31.0748, Lng: 77.1434},
	"Solang Valley":           {Lat: 32.3196, Lng: 77.1487},
	"Rohtang Pass":            {Lat: 32.3726, Lng: 77.2497},
	"Old Manali":              {Lat: 32.2496, Lng: 77.1787},
	"Vashisht Hot Springs":    {Lat: 32.2696, Lng: 77.1987},
	"Bhagsu Waterfall":        {Lat: 32.239, Lng: 76.3134},
	"Triund Trek":             {Lat: 32.249, Lng: 76.3234},
	"Namgyal Monastery":       {Lat: 32.229, Lng: 76.3034},
	"Dal Lake":                {Lat: 32.219, Lng: 76.2934},
	"Tosh Village":            {Lat: 32.0402, Lng: 77.3447},
	"Malana Village":          {Lat: 32.0902, Lng: 77.2947},
	"Kheerganga Trek":         {Lat: 32.0702, Lng: 77.3247},
	"Chalal Village":          {Lat: 32.0202, Lng: 77.3047},
}

// Destinations are trip end points, keyed in lower case.
var Destinations = Table{
	"bilaspur":     {Lat: 31.3256, Lng: 76.7635},
	"shimla":       {Lat: 31.1048, Lng: 77.1734},
	"manali":       {Lat: 32.2396, Lng: 77.1887},
	"dharamshala":  {Lat: 32.219, Lng: 76.3234},
	"kasol":        {Lat: 32.0102, Lng: 77.3147},
	"spiti valley": {Lat: 32.2396, Lng: 78.0515},
	"kullu":        {Lat: 31.9578, Lng: 77.1734},
	"dalhousie":    {Lat: 32.5448, Lng: 75.9618},
	"chamba":       {Lat: 32.5563, Lng: 76.1318},
	"palampur":     {Lat: 32.1343, Lng: 76.537},
}
