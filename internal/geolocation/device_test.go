package geolocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-ecomap/internal/shared/geo"
)

func TestDeviceLocatorReport(t *testing.T) {
	requested := make(chan Options, 1)
	d := NewDeviceLocator(func(opts Options) { requested <- opts })

	go func() {
		<-requested
		d.Report(Fix{Position: geo.Point{Lat: 32.24, Lng: 77.19}})
	}()

	fix, err := d.CurrentPosition(context.Background(), DefaultOptions())
	if err != nil {
		t.Fatalf("current position: %v", err)
	}
	if fix.Position.Lat != 32.24 || fix.Timestamp.IsZero() {
		t.Fatalf("unexpected fix: %+v", fix)
	}
	if d.Pending() != 0 {
		t.Fatalf("expected no pending waiters")
	}
}

func TestDeviceLocatorServesCachedFix(t *testing.T) {
	calls := 0
	d := NewDeviceLocator(func(Options) { calls++ })
	d.Report(Fix{Position: geo.Point{Lat: 31, Lng: 77}})

	if _, err := d.CurrentPosition(context.Background(), DefaultOptions()); err != nil {
		t.Fatalf("cached position: %v", err)
	}
	if calls != 0 {
		t.Fatalf("cached fix should not ask the device")
	}
}

func TestDeviceLocatorDeny(t *testing.T) {
	requested := make(chan struct{}, 1)
	d := NewDeviceLocator(func(Options) { requested <- struct{}{} })
	d.Report(Fix{Position: geo.Point{Lat: 31, Lng: 77}, Timestamp: time.Now().Add(-time.Hour)})

	go func() {
		<-requested
		d.Deny(nil)
	}()

	_, err := d.CurrentPosition(context.Background(), DefaultOptions())
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("expected denied, got %v", err)
	}
}

func TestDeviceLocatorTimeout(t *testing.T) {
	d := NewDeviceLocator(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := d.CurrentPosition(ctx, DefaultOptions())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if d.Pending() != 0 {
		t.Fatalf("timed out waiter should be dropped")
	}
}

func TestAcquirerWithDeviceLocatorUnsupported(t *testing.T) {
	var d *DeviceLocator
	d = NewDeviceLocator(func(Options) { go d.Deny(ErrUnsupported) })
	res := NewAcquirer(d, DefaultOptions()).Acquire(context.Background())
	if res.Status != StatusDenied || !errors.Is(res.Err, ErrUnsupported) {
		t.Fatalf("expected unsupported denial, got %+v", res)
	}
}
