package catalog

import (
	"context"
	"errors"

	"backend-ecomap/internal/shared/geo"
)

var (
	ErrNotFound    = errors.New("location not found")
	ErrUnavailable = errors.New("catalog unavailable")
)

// Client is the catalog collaborator consumed by the search pipeline.
// Callers must treat a nil error with Success false exactly like an error.
type Client interface {
	Fetch(ctx context.Context, q Query) (Response, error)
}

// Finder looks up a single location.
type Finder interface {
	Get(ctx context.Context, id string) (Location, error)
}

// NearbyFinder lists locations around a point. Stores that implement it
// get a /nearby route.
type NearbyFinder interface {
	Nearby(ctx context.Context, p geo.Point, radiusKm float64) ([]Location, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, q Query) (Response, error)

func (f ClientFunc) Fetch(ctx context.Context, q Query) (Response, error) {
	return f(ctx, q)
}

// Usable reports whether a fetch outcome can be applied.
func Usable(resp Response, err error) bool {
	return err == nil && resp.Success
}
