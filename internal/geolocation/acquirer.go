package geolocation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Locator is the platform location service.
type Locator interface {
	CurrentPosition(ctx context.Context, opts Options) (Fix, error)
}

// Acquirer performs one-shot position requests and remembers the last
// outcome. It never panics and never returns an error: every failure
// resolves to a denied Result.
type Acquirer struct {
	locator Locator
	opts    Options
	now     func() time.Time

	mu   sync.Mutex
	last Result
}

func NewAcquirer(locator Locator, opts Options) *Acquirer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaximumAge <= 0 {
		opts.MaximumAge = DefaultMaxAge
	}
	return &Acquirer{
		locator: locator,
		opts:    opts,
		now:     time.Now,
		last:    Result{Status: StatusPrompt},
	}
}

// Last returns the most recent result, StatusPrompt before any request.
func (a *Acquirer) Last() Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Acquire reuses a granted result that is still fresh, otherwise asks the
// locator.
func (a *Acquirer) Acquire(ctx context.Context) Result {
	a.mu.Lock()
	last := a.last
	a.mu.Unlock()
	if last.Fresh(a.now(), a.opts.MaximumAge) {
		return last
	}
	return a.request(ctx)
}

// Retry always issues a fresh request; it backs the manual retry
// affordance shown after a denial.
func (a *Acquirer) Retry(ctx context.Context) Result {
	return a.request(ctx)
}

func (a *Acquirer) request(ctx context.Context) Result {
	res := a.locate(ctx)
	if res.Err != nil {
		log.Printf("geolocation: %v", res.Err)
	}
	a.mu.Lock()
	a.last = res
	a.mu.Unlock()
	return res
}

type outcome struct {
	fix Fix
	err error
}

func (a *Acquirer) locate(ctx context.Context) Result {
	if a.locator == nil {
		return denied(a.now(), ErrUnsupported)
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: locator panic: %v", ErrUnsupported, r)}
			}
		}()
		fix, err := a.locator.CurrentPosition(ctx, a.opts)
		done <- outcome{fix: fix, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out = outcome{err: ctx.Err()}
	}

	now := a.now()
	if out.err != nil {
		return denied(now, classify(out.err))
	}
	if !out.fix.Position.Valid() {
		return denied(now, fmt.Errorf("%w: invalid position %v", ErrUnsupported, out.fix.Position))
	}
	pos := out.fix.Position
	return Result{Status: StatusGranted, Position: &pos, AcquiredAt: now}
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrDenied), errors.Is(err, ErrTimeout), errors.Is(err, ErrUnsupported):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrDenied, err)
	}
	return fmt.Errorf("%w: %v", ErrDenied, err)
}
