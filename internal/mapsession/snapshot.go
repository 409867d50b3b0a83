package mapsession

import (
	"backend-ecomap/internal/catalog"
	"backend-ecomap/internal/category"
	"backend-ecomap/internal/geolocation"
	"backend-ecomap/internal/search"
	"backend-ecomap/internal/viewstate"
)

// Snapshot is the complete derived view after one transition.
type Snapshot struct {
	SessionID      string                             `json:"session_id"`
	Sequence       uint64                             `json:"sequence"`
	View           viewstate.View                     `json:"view"`
	Descriptor     viewstate.Descriptor               `json:"descriptor"`
	EmbedURL       string                             `json:"embed_url"`
	Query          search.Query                       `json:"query"`
	Visible        []catalog.Location                 `json:"visible"`
	Source         search.Source                      `json:"source,omitempty"`
	Groups         []category.Group[catalog.Location] `json:"groups"`
	Counts         map[category.Category]int          `json:"counts"`
	Total          int                                `json:"total"`
	Permission     geolocation.Status                 `json:"permission"`
	Locating       bool                               `json:"locating"`
	Loading        bool                               `json:"loading"`
	SuppressScroll bool                               `json:"suppress_scroll"`
	Announcement   string                             `json:"announcement,omitempty"`
	DirectionsURL  string                             `json:"directions_url,omitempty"`
}
