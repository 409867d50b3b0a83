package geolocation

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DeviceLocator is a Locator fed by the remote device. A request blocks
// until the device reports a fix, denies access, or the context ends.
type DeviceLocator struct {
	onRequest func(Options)
	now       func() time.Time

	mu      sync.Mutex
	waiters []chan outcome
	last    *Fix
}

// NewDeviceLocator takes a hook that asks the device for its position; it
// is called outside the locator's lock on every request that cannot be
// served from the cached fix.
func NewDeviceLocator(onRequest func(Options)) *DeviceLocator {
	return &DeviceLocator{onRequest: onRequest, now: time.Now}
}

func (d *DeviceLocator) CurrentPosition(ctx context.Context, opts Options) (Fix, error) {
	d.mu.Lock()
	if d.last != nil && opts.MaximumAge > 0 && d.now().Sub(d.last.Timestamp) <= opts.MaximumAge {
		fix := *d.last
		d.mu.Unlock()
		return fix, nil
	}
	ch := make(chan outcome, 1)
	d.waiters = append(d.waiters, ch)
	d.mu.Unlock()

	if d.onRequest != nil {
		d.onRequest(opts)
	}

	select {
	case out := <-ch:
		return out.fix, out.err
	case <-ctx.Done():
		d.drop(ch)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Fix{}, ErrTimeout
		}
		return Fix{}, ctx.Err()
	}
}

// Report delivers a fix to every pending request and caches it.
func (d *DeviceLocator) Report(fix Fix) {
	if fix.Timestamp.IsZero() {
		fix.Timestamp = d.now()
	}
	d.mu.Lock()
	d.last = &fix
	waiters := d.waiters
	d.waiters = nil
	d.mu.Unlock()

	for _, ch := range waiters {
		ch <- outcome{fix: fix}
	}
}

// Deny fails every pending request. A nil reason means ErrDenied.
func (d *DeviceLocator) Deny(reason error) {
	if reason == nil {
		reason = ErrDenied
	}
	d.mu.Lock()
	d.last = nil
	waiters := d.waiters
	d.waiters = nil
	d.mu.Unlock()

	for _, ch := range waiters {
		ch <- outcome{err: reason}
	}
}

// Pending reports how many requests are waiting on the device.
func (d *DeviceLocator) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.waiters)
}

func (d *DeviceLocator) drop(ch chan outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, w := range d.waiters {
		if w == ch {
			d.waiters = append(d.waiters[:i], d.waiters[i+1:]...)
			return
		}
	}
}
