package catalog

import (
	"math"

	"backend-ecomap/internal/category"
	"backend-ecomap/internal/shared/geo"
)

type Location struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Category    category.Category `json:"type"`
	Coordinates geo.Point         `json:"coordinates"`
	Address     string            `json:"address"`
	Description string            `json:"description"`
	Rating      float64           `json:"eco_rating"`
	ImageRef    string            `json:"image,omitempty"`
	Images      []Image           `json:"review_images,omitempty"`
}

// Image is a photo attached to a location through one of its reviews.
type Image struct {
	URL      string `json:"url"`
	Caption  string `json:"caption,omitempty"`
	ReviewID string `json:"review_id"`
}

func (l Location) CategoryOf() category.Category { return l.Category }

// PhotoCount counts the cover image and every review image.
func (l Location) PhotoCount() int {
	n := len(l.Images)
	if l.ImageRef != "" {
		n++
	}
	return n
}

// Query parameterizes a catalog fetch. The zero value asks for everything.
type Query struct {
	Text     string            `json:"search,omitempty"`
	Category category.Category `json:"type,omitempty"`
}

func (q Query) IsZero() bool {
	return q.Text == "" && q.Category.IsAll()
}

// Response mirrors the catalog wire shape: Success false means Data must
// not be trusted.
type Response struct {
	Success bool       `json:"success"`
	Data    []Location `json:"data"`
}

// RoundRating clamps to 0-5 with one decimal.
func RoundRating(r float64) float64 {
	if math.IsNaN(r) || r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return math.Round(r*10) / 10
}
