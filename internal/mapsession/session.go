// Package mapsession coordinates one interactive map. Every transition of a
// session runs on its own goroutine; timers, search responses and device
// replies are posted back to it instead of touching state directly.
package mapsession

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"backend-ecomap/internal/announce"
	"backend-ecomap/internal/catalog"
	"backend-ecomap/internal/category"
	"backend-ecomap/internal/geolocation"
	"backend-ecomap/internal/gesture"
	"backend-ecomap/internal/search"
	"backend-ecomap/internal/shared/geo"
	"backend-ecomap/internal/trip"
	"backend-ecomap/internal/viewstate"
)

// Publisher sends an encoded message to everyone following a session.
type Publisher interface {
	Broadcast(sessionID string, payload []byte)
}

type PublisherFunc func(sessionID string, payload []byte)

func (f PublisherFunc) Broadcast(sessionID string, payload []byte) { f(sessionID, payload) }

type Session struct {
	ID string

	inbox chan func()
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
	ctx   context.Context
	stop  context.CancelFunc

	resultMu sync.Mutex
	pending  *search.Result

	pipeline *search.Pipeline
	device   *geolocation.DeviceLocator
	acquirer *geolocation.Acquirer
	pub      Publisher
	sink     announce.Sink
	table    trip.Table

	// owned by the run goroutine
	state        viewstate.State
	gesture      gesture.Controller
	visible      []catalog.Location
	source       search.Source
	applied      uint64
	sequence     uint64
	permission   geolocation.Status
	locating     bool
	followUser   bool
	suppress     bool
	announcement string
	last         Snapshot
}

func newSession(id string, client catalog.Client, opts Options) *Session {
	ctx, stop := context.WithCancel(context.Background())
	s := &Session{
		ID:         id,
		inbox:      make(chan func(), 32),
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		ctx:        ctx,
		stop:       stop,
		pub:        opts.Publisher,
		sink:       opts.Sink,
		table:      opts.Table,
		state:      viewstate.New(),
		visible:    []catalog.Location{},
		permission: geolocation.StatusPrompt,
	}
	s.pipeline = search.NewPipeline(client, search.Options{
		Debounce: opts.Debounce,
		Timeout:  opts.SearchTimeout,
		Publish:  s.offer,
	})
	s.device = geolocation.NewDeviceLocator(s.requestPosition)
	s.acquirer = geolocation.NewAcquirer(s.device, opts.Geolocation)
	s.last = s.snapshot()
	go s.run()
	return s
}

func (s *Session) run() {
	for {
		select {
		case <-s.done:
			return
		case fn := <-s.inbox:
			fn()
		case <-s.wake:
			if s.takeResult() {
				s.emit()
			}
		}
	}
}

// Close stops the session. Pending passes and position requests are
// abandoned and nothing is published afterwards.
func (s *Session) Close() {
	s.once.Do(func() {
		s.stop()
		s.pipeline.Close()
		close(s.done)
	})
}

func (s *Session) Done() <-chan struct{} { return s.done }

// Snapshot returns the view after the latest transition.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	if err := s.do(ctx, func() { snap = s.last }); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Dispatch applies one event and returns the resulting snapshot.
func (s *Session) Dispatch(ctx context.Context, ev Event) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if perr := s.do(ctx, func() { snap, err = s.apply(ev) }); perr != nil {
		return Snapshot{}, perr
	}
	return snap, err
}

// do runs fn on the session goroutine and waits for it.
func (s *Session) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case s.inbox <- func() { fn(); close(finished) }:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues fn without waiting for it to run.
func (s *Session) post(fn func()) {
	select {
	case s.inbox <- fn:
	case <-s.done:
	}
}

// offer is the pipeline's publish hook. Only the newest result is kept, so
// the hook never blocks even when called from the session goroutine.
func (s *Session) offer(r search.Result) {
	s.resultMu.Lock()
	if s.pending == nil || r.Generation >= s.pending.Generation {
		s.pending = &r
	}
	s.resultMu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Session) takeResult() bool {
	s.resultMu.Lock()
	r := s.pending
	s.pending = nil
	s.resultMu.Unlock()
	// the remote leg of a category change shares the local leg's generation
	// and replaces it
	if r == nil || r.Generation < s.applied || r.Generation != s.pipeline.Generation() {
		return false
	}
	s.applied = r.Generation
	s.source = r.Source
	s.visible = r.Locations
	s.state = s.state.Reconcile(s.visible)
	s.announcement = r.Announcement
	return true
}

// load fetches the catalog; started once when the session is created.
func (s *Session) load() {
	go func() {
		if err := s.pipeline.Load(s.ctx); err != nil {
			s.post(func() {
				s.announcement = "Eco-locations could not be loaded"
				s.emit()
			})
		}
	}()
}

// locate runs an acquisition off the session goroutine and posts the
// result back.
func (s *Session) locate(retry bool) {
	go func() {
		var res geolocation.Result
		if retry {
			res = s.acquirer.Retry(s.ctx)
		} else {
			res = s.acquirer.Acquire(s.ctx)
		}
		s.post(func() {
			s.applyGeolocation(res)
			s.emit()
		})
	}()
}

func (s *Session) requestPosition(opts geolocation.Options) {
	s.publish(Message{Type: MessageLocate, Data: LocateRequest{
		TimeoutMS:    opts.Timeout.Milliseconds(),
		MaximumAgeMS: opts.MaximumAge.Milliseconds(),
		HighAccuracy: opts.HighAccuracy,
	}})
	s.post(func() {
		s.locating = true
		s.emit()
	})
}

func (s *Session) applyGeolocation(res geolocation.Result) {
	s.locating = false
	s.permission = res.Status
	follow := s.followUser
	s.followUser = false

	if res.Status != geolocation.StatusGranted || res.Position == nil {
		s.announcement = announce.LocationDenied()
		return
	}
	s.state = s.state.ApplyGeolocation(res)
	switch {
	case follow:
		s.state = s.state.GoToUser()
		s.announcement = announce.CenteredOnUser()
	case res.Within(geo.Himachal):
		s.announcement = announce.CenteredOnUser()
	default:
		s.announcement = announce.LocationOutsideRegion()
	}
}

func (s *Session) apply(ev Event) (Snapshot, error) {
	s.suppress = false
	switch ev.Type {
	case EventQuery:
		s.pipeline.SetText(ev.Text)
	case EventCategory:
		c, err := parseCategory(ev.Category)
		if err != nil {
			return Snapshot{}, err
		}
		s.state = s.state.ChangeCategory()
		s.pipeline.SetCategory(c)
		s.takeResult()
	case EventSelect:
		loc, ok := s.find(ev.LocationID)
		if !ok {
			return Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownLocation, ev.LocationID)
		}
		s.state = s.state.Select(loc)
		s.announcement = announce.Selected(loc.Name, loc.Category, loc.Rating)
	case EventRecenter:
		s.state = s.state.Recenter()
		s.announcement = announce.Recentered()
	case EventMapStyle:
		s.state = s.state.CycleStyle()
		s.announcement = announce.StyleChanged(string(s.state.Style()))
	case EventLocateMe:
		if _, ok := s.state.UserPosition(); ok {
			s.state = s.state.GoToUser()
			s.announcement = announce.CenteredOnUser()
			break
		}
		s.followUser = true
		s.locate(true)
	case EventRetryLocation:
		s.locate(true)
	case EventPosition:
		fix, err := fixFromEvent(ev)
		if err != nil {
			return Snapshot{}, err
		}
		// a fix nobody asked for only updates the user marker
		unsolicited := s.device.Pending() == 0
		s.device.Report(fix)
		if unsolicited {
			s.state = s.state.SetUserPosition(fix.Position)
		}
	case EventPositionDenied:
		var reason error
		if ev.Reason != "" {
			reason = fmt.Errorf("%w: %s", geolocation.ErrDenied, ev.Reason)
		}
		s.device.Deny(reason)
	case EventTouchStart:
		s.gesture.Start(ev.Y)
	case EventTouchMove:
		s.suppress = s.gesture.Move(ev.Y, s.state.DetailOpen())
	case EventTouchEnd:
		if out := s.gesture.End(ev.Y, s.state.DetailOpen()); out.Dismiss {
			s.state = s.state.Dismiss()
			s.announcement = announce.Dismissed()
		}
	case EventTrip:
		if err := s.enterTrip(ev); err != nil {
			return Snapshot{}, err
		}
	case EventExitTrip:
		s.state = s.state.ExitTripMode()
		s.announcement = announce.TripCleared()
	case EventToggleList:
		s.state = s.state.ToggleList()
	default:
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return s.emit(), nil
}

func (s *Session) enterTrip(ev Event) error {
	waypoints := ev.Waypoints
	if len(waypoints) == 0 && ev.Locations != "" {
		parsed, err := trip.ParseItinerary(ev.Locations)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadEvent, err)
		}
		waypoints = parsed
	}
	if strings.TrimSpace(ev.Destination) == "" {
		return fmt.Errorf("%w: destination is required", ErrBadEvent)
	}
	stops := s.table.Resolve(waypoints)
	s.state = s.state.EnterTripMode(ev.Destination, stops)
	if p, ok := trip.Destinations.Lookup(ev.Destination); ok {
		s.state = s.state.CenterOn(p, viewstate.DefaultZoom)
	}
	s.announcement = announce.TripLoaded(ev.Destination, len(stops), trip.Mapped(stops))
	return nil
}

func (s *Session) find(id string) (catalog.Location, bool) {
	for _, l := range s.visible {
		if l.ID == id {
			return l, true
		}
	}
	for _, l := range s.pipeline.Base() {
		if l.ID == id {
			return l, true
		}
	}
	return catalog.Location{}, false
}

// emit records and publishes the current snapshot. The announcement
// belongs to this transition only.
func (s *Session) emit() Snapshot {
	s.sequence++
	snap := s.snapshot()
	s.last = snap
	if s.announcement != "" && s.sink != nil {
		s.sink.Announce(s.announcement)
	}
	s.announcement = ""
	s.publish(Message{Type: MessageSnapshot, Data: snap})
	return snap
}

func (s *Session) snapshot() Snapshot {
	desc := s.state.Descriptor()
	base := s.pipeline.Base()
	snap := Snapshot{
		SessionID:      s.ID,
		Sequence:       s.sequence,
		View:           s.state.View(),
		Descriptor:     desc,
		EmbedURL:       desc.EmbedURL(),
		Query:          s.pipeline.Query(),
		Visible:        s.visible,
		Source:         s.source,
		Groups:         category.GroupBy(s.visible),
		Counts:         category.Counts(base),
		Total:          len(base),
		Permission:     s.permission,
		Locating:       s.locating,
		Loading:        s.pipeline.Loading(),
		SuppressScroll: s.suppress,
		Announcement:   s.announcement,
	}
	if s.state.Mode() == viewstate.ModeTrip {
		snap.DirectionsURL = trip.DirectionsURL(s.state.Destination(), s.state.Stops())
	}
	return snap
}

func (s *Session) publish(msg Message) {
	if s.pub == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("mapsession: encode %s for %s: %v", msg.Type, s.ID, err)
		return
	}
	s.pub.Broadcast(s.ID, payload)
}

func parseCategory(raw string) (category.Category, error) {
	if raw == "" || strings.EqualFold(raw, "all") {
		return "", nil
	}
	c, ok := category.Parse(raw)
	if !ok {
		return "", fmt.Errorf("%w: unknown category %q", ErrBadEvent, raw)
	}
	return c, nil
}

func fixFromEvent(ev Event) (geolocation.Fix, error) {
	if ev.Lat == nil || ev.Lng == nil {
		return geolocation.Fix{}, fmt.Errorf("%w: position needs lat and lng", ErrBadEvent)
	}
	p := geo.Point{Lat: *ev.Lat, Lng: *ev.Lng}
	if !p.Valid() {
		return geolocation.Fix{}, fmt.Errorf("%w: position %s out of range", ErrBadEvent, p)
	}
	fix := geolocation.Fix{Position: p, Accuracy: ev.Accuracy}
	if ev.Timestamp != nil {
		fix.Timestamp = *ev.Timestamp
	} else {
		fix.Timestamp = time.Now()
	}
	return fix, nil
}
