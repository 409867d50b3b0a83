// Package announce publishes human-readable status lines after map state
// transitions, for screen readers listening on a live region.
package announce

import (
	"fmt"
	"log"
	"strconv"
	"sync"

	"backend-ecomap/internal/category"
)

// Sink accepts announcements. Implementations must not block.
type Sink interface {
	Announce(msg string)
}

type Func func(msg string)

func (f Func) Announce(msg string) { f(msg) }

// Multi fans an announcement out to every sink.
type Multi []Sink

func (m Multi) Announce(msg string) {
	for _, s := range m {
		if s != nil {
			s.Announce(msg)
		}
	}
}

// LogSink writes announcements to the standard logger.
type LogSink struct {
	Prefix string
}

func (l LogSink) Announce(msg string) {
	log.Printf("%sannounce: %s", l.Prefix, msg)
}

// Recorder keeps every announcement in order.
type Recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *Recorder) Announce(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	copy(out, r.msgs)
	return out
}

func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return ""
	}
	return r.msgs[len(r.msgs)-1]
}

func Found(count int, c category.Category, text string) string {
	msg := fmt.Sprintf("Found %d eco-locations", count)
	if !c.IsAll() {
		msg += " in " + c.Label()
	}
	if text != "" {
		msg += fmt.Sprintf(" matching %q", text)
	}
	return msg
}

func Selected(name string, c category.Category, rating float64) string {
	return fmt.Sprintf("Selected %s, %s with %s star eco-rating. Map centered on location.",
		name, c.Describe(), strconv.FormatFloat(rating, 'f', -1, 64))
}

func Recentered() string {
	return "Map recentered to Himachal Pradesh"
}

func CenteredOnUser() string {
	return "Map centered on your location"
}

func LocationDenied() string {
	return "Location access unavailable. Showing Himachal Pradesh."
}

func LocationOutsideRegion() string {
	return "Your location is outside Himachal Pradesh. Map view unchanged."
}

func Dismissed() string {
	return "Location details closed"
}

func StyleChanged(style string) string {
	return fmt.Sprintf("Switched to %s view", style)
}

func TripLoaded(destination string, stops, mapped int) string {
	return fmt.Sprintf("Showing trip to %s with %d stops, %d on the map", destination, stops, mapped)
}

func TripCleared() string {
	return "Trip cleared. Showing all eco-locations."
}
