// Package search turns search text and a category filter into the visible
// location set. Text changes are debounced; each pass is tagged with a
// generation and only the newest generation may publish.
package search

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"backend-ecomap/internal/announce"
	"backend-ecomap/internal/catalog"
	"backend-ecomap/internal/category"
)

const DefaultDebounce = 300 * time.Millisecond

var ErrSearchUnavailable = errors.New("remote search unavailable")

type Query struct {
	Text     string            `json:"text"`
	Category category.Category `json:"category,omitempty"`
}

type Source string

const (
	SourceLocal    Source = "local"
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

type Result struct {
	Query        Query              `json:"query"`
	Locations    []catalog.Location `json:"locations"`
	Source       Source             `json:"source"`
	Generation   uint64             `json:"generation"`
	Announcement string             `json:"announcement"`
}

// Empty reports the "no results" state, which is not an error.
func (r Result) Empty() bool { return len(r.Locations) == 0 }

type Options struct {
	Debounce time.Duration
	// Timeout bounds each remote call; zero means no extra bound.
	Timeout time.Duration
	// Publish receives every result that is still current. It is called
	// from timer and caller goroutines and must not call back into the
	// pipeline while blocking.
	Publish func(Result)
}

type Pipeline struct {
	client   catalog.Client
	debounce time.Duration
	timeout  time.Duration
	publish  func(Result)

	mu         sync.Mutex
	base       []catalog.Location
	query      Query
	generation uint64
	timer      *time.Timer
	loading    bool
	closed     bool
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewPipeline(client catalog.Client, opts Options) *Pipeline {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Publish == nil {
		opts.Publish = func(Result) {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		client:   client,
		debounce: opts.Debounce,
		timeout:  opts.Timeout,
		publish:  opts.Publish,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (p *Pipeline) Query() Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// Generation is the tag of the newest pass.
func (p *Pipeline) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

func (p *Pipeline) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Base returns the full catalog the pipeline filters.
func (p *Pipeline) Base() []catalog.Location {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.base
}

// Load fetches the whole catalog. On failure the previous base set is kept.
func (p *Pipeline) Load(ctx context.Context) error {
	p.mu.Lock()
	p.loading = true
	p.mu.Unlock()

	resp, err := p.fetch(ctx, catalog.Query{})

	p.mu.Lock()
	p.loading = false
	p.mu.Unlock()

	if !catalog.Usable(resp, err) {
		if err == nil {
			err = catalog.ErrUnavailable
		}
		log.Printf("search: catalog load failed: %v", err)
		return err
	}
	p.SetCatalog(resp.Data)
	return nil
}

// SetCatalog replaces the base set. Without search text the filtered set
// is published at once; otherwise a remote pass is scheduled.
func (p *Pipeline) SetCatalog(locations []catalog.Location) {
	p.mu.Lock()
	p.base = locations
	gen := p.bumpLocked()
	q := p.query
	local := category.Filter(p.base, q.Category)
	if strings.TrimSpace(q.Text) != "" {
		p.scheduleLocked(gen)
		p.mu.Unlock()
		return
	}
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()
	p.deliver(gen, q, local, SourceLocal)
}

// SetText records new search text; the pass runs once the debounce window
// elapses without further input.
func (p *Pipeline) SetText(text string) {
	p.mu.Lock()
	p.query.Text = text
	gen := p.bumpLocked()
	p.scheduleLocked(gen)
	p.mu.Unlock()
}

// SetCategory applies the category filter immediately. When there is text
// to search, the remote leg is still debounced and is published under the
// same generation, after the local leg.
func (p *Pipeline) SetCategory(c category.Category) {
	p.mu.Lock()
	p.query.Category = c
	gen := p.bumpLocked()
	q := p.query
	local := category.Filter(p.base, q.Category)
	if strings.TrimSpace(q.Text) != "" {
		p.scheduleLocked(gen)
	}
	p.mu.Unlock()

	if strings.TrimSpace(q.Text) == "" {
		p.deliver(gen, q, local, SourceLocal)
		return
	}
	p.deliver(gen, q, MatchLocal(local, q.Text), SourceLocal)
}

// Flush runs the pending pass now instead of waiting for its timer.
func (p *Pipeline) Flush() {
	p.mu.Lock()
	if p.timer == nil || p.closed {
		p.mu.Unlock()
		return
	}
	p.timer.Stop()
	p.timer = nil
	gen := p.generation
	p.mu.Unlock()
	p.run(gen)
}

// Close cancels the pending pass and in-flight requests. Nothing is
// published afterwards.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.cancel()
}

func (p *Pipeline) bumpLocked() uint64 {
	p.generation++
	return p.generation
}

func (p *Pipeline) scheduleLocked(gen uint64) {
	if p.closed {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, func() { p.fire(gen) })
}

func (p *Pipeline) fire(gen uint64) {
	p.mu.Lock()
	if gen != p.generation || p.closed {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.mu.Unlock()
	p.run(gen)
}

func (p *Pipeline) run(gen uint64) {
	p.mu.Lock()
	q := p.query
	local := category.Filter(p.base, q.Category)
	p.mu.Unlock()

	text := strings.TrimSpace(q.Text)
	if text == "" {
		p.deliver(gen, q, local, SourceLocal)
		return
	}

	resp, err := p.fetch(p.ctx, catalog.Query{Text: q.Text, Category: q.Category})
	if catalog.Usable(resp, err) {
		p.deliver(gen, q, resp.Data, SourceRemote)
		return
	}
	if err == nil {
		err = ErrSearchUnavailable
	}
	if !p.current(gen) {
		return
	}
	log.Printf("search: remote search for %q failed, filtering locally: %v", q.Text, err)
	p.deliver(gen, q, MatchLocal(local, q.Text), SourceFallback)
}

func (p *Pipeline) fetch(ctx context.Context, q catalog.Query) (catalog.Response, error) {
	if p.client == nil {
		return catalog.Response{}, catalog.ErrUnavailable
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.client.Fetch(ctx, q)
}

func (p *Pipeline) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen == p.generation && !p.closed
}

// deliver publishes when gen is still current. Two passes may race past the
// check, so receivers drop results older than one they already applied.
func (p *Pipeline) deliver(gen uint64, q Query, locations []catalog.Location, src Source) {
	if locations == nil {
		locations = []catalog.Location{}
	}
	if !p.current(gen) {
		return
	}
	p.publish(Result{
		Query:        q,
		Locations:    locations,
		Source:       src,
		Generation:   gen,
		Announcement: announce.Found(len(locations), q.Category, q.Text),
	})
}
