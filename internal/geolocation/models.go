package geolocation

import (
	"errors"
	"time"

	"backend-ecomap/internal/shared/geo"
)

type Status string

const (
	StatusPrompt  Status = "prompt"
	StatusGranted Status = "granted"
	StatusDenied  Status = "denied"
)

var (
	ErrDenied      = errors.New("location permission denied")
	ErrTimeout     = errors.New("location request timed out")
	ErrUnsupported = errors.New("geolocation unsupported")
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultMaxAge  = 5 * time.Minute
)

// Options are handed to the platform locator on every request.
type Options struct {
	Timeout      time.Duration `json:"timeout"`
	MaximumAge   time.Duration `json:"maximum_age"`
	HighAccuracy bool          `json:"high_accuracy"`
}

func DefaultOptions() Options {
	return Options{Timeout: DefaultTimeout, MaximumAge: DefaultMaxAge, HighAccuracy: true}
}

// Fix is a raw position reported by the platform.
type Fix struct {
	Position  geo.Point `json:"position"`
	Accuracy  float64   `json:"accuracy_m,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Result struct {
	Status     Status     `json:"status"`
	Position   *geo.Point `json:"position,omitempty"`
	AcquiredAt time.Time  `json:"acquired_at"`
	Err        error      `json:"-"`
}

// Fresh reports whether a granted result is still inside the validity window.
func (r Result) Fresh(now time.Time, maxAge time.Duration) bool {
	if r.Status != StatusGranted || r.Position == nil {
		return false
	}
	return now.Sub(r.AcquiredAt) <= maxAge
}

// Within reports whether the result carries a position inside box.
func (r Result) Within(box geo.BoundingBox) bool {
	return r.Position != nil && box.Contains(*r.Position)
}

func denied(at time.Time, err error) Result {
	return Result{Status: StatusDenied, AcquiredAt: at, Err: err}
}
