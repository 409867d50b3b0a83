package mapsession

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"backend-ecomap/internal/announce"
	"backend-ecomap/internal/catalog"
	"backend-ecomap/internal/geolocation"
	"backend-ecomap/internal/search"
	"backend-ecomap/internal/trip"
)

// Itineraries resolves saved trip plans referenced by trip events.
type Itineraries interface {
	GetItinerary(ctx context.Context, id string) (trip.Itinerary, error)
}

type Options struct {
	Debounce      time.Duration
	SearchTimeout time.Duration
	Geolocation   geolocation.Options
	Publisher     Publisher
	Sink          announce.Sink
	Table         trip.Table
	Itineraries   Itineraries
	// IdleTimeout closes sessions without events for that long; zero keeps
	// them until deleted.
	IdleTimeout time.Duration
}

type Manager struct {
	client catalog.Client
	opts   Options

	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	session *Session
	touched time.Time
}

func NewManager(client catalog.Client, opts Options) *Manager {
	if opts.Debounce <= 0 {
		opts.Debounce = search.DefaultDebounce
	}
	if opts.Geolocation == (geolocation.Options{}) {
		opts.Geolocation = geolocation.DefaultOptions()
	}
	if opts.Sink == nil {
		opts.Sink = announce.LogSink{Prefix: "map "}
	}
	if opts.Table == nil {
		opts.Table = trip.Places
	}
	return &Manager{
		client:   client,
		opts:     opts,
		sessions: map[string]*entry{},
	}
}

// Create starts a session, loads the catalog and makes the one automatic
// geolocation request.
func (m *Manager) Create() *Session {
	s := newSession(uuid.NewString(), m.client, m.opts)

	m.mu.Lock()
	m.sessions[s.ID] = &entry{session: s, touched: time.Now()}
	m.mu.Unlock()

	s.load()
	s.locate(false)
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.touched = time.Now()
	return e.session, nil
}

func (m *Manager) Exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[id]
	return ok
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) Close(id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	e.session.Close()
	return nil
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[string]*entry{}
	m.mu.Unlock()
	for _, e := range sessions {
		e.session.Close()
	}
}

// Dispatch routes an event to a session. Saved itineraries are fetched
// here so the session goroutine never waits on the database.
func (m *Manager) Dispatch(ctx context.Context, id string, ev Event) (Snapshot, error) {
	s, err := m.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	if ev.Type == EventTrip && ev.ItineraryID != "" {
		if m.opts.Itineraries == nil {
			return Snapshot{}, fmt.Errorf("%w: saved itineraries unavailable", ErrBadEvent)
		}
		it, err := m.opts.Itineraries.GetItinerary(ctx, ev.ItineraryID)
		if err != nil {
			if errors.Is(err, trip.ErrNotFound) {
				return Snapshot{}, fmt.Errorf("%w: itinerary %s", ErrBadEvent, ev.ItineraryID)
			}
			return Snapshot{}, err
		}
		ev.Destination = it.Destination
		ev.Waypoints = it.Waypoints
		ev.Locations = ""
	}
	return s.Dispatch(ctx, ev)
}

// Sweep closes sessions idle longer than IdleTimeout and reports how many
// were closed.
func (m *Manager) Sweep(now time.Time) int {
	if m.opts.IdleTimeout <= 0 {
		return 0
	}
	var stale []*Session
	m.mu.Lock()
	for id, e := range m.sessions {
		if now.Sub(e.touched) > m.opts.IdleTimeout {
			stale = append(stale, e.session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// RunSweeper sweeps every interval until ctx ends.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	if m.opts.IdleTimeout <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}
