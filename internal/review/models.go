package review

import "time"

// Review is a visitor's rating of an eco-location. Its photos show up in
// the location's image list in review order.
type Review struct {
	ID         string    `json:"id"`
	LocationID string    `json:"location_id"`
	UserID     string    `json:"user_id"`
	Rating     int       `json:"rating"`
	Body       string    `json:"body"`
	Photos     []Photo   `json:"photos,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Photo struct {
	ReviewID string `json:"review_id"`
	Position int    `json:"position"`
	URL      string `json:"photo_url"`
	Caption  string `json:"caption,omitempty"`
}
