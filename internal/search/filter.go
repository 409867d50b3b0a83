package search

import (
	"strings"

	"backend-ecomap/internal/catalog"
)

// MatchLocal keeps locations whose name, address or category contains text,
// ignoring case.
func MatchLocal(locations []catalog.Location, text string) []catalog.Location {
	needle := strings.ToLower(text)
	out := make([]catalog.Location, 0, len(locations))
	for _, l := range locations {
		if strings.Contains(strings.ToLower(l.Name), needle) ||
			strings.Contains(strings.ToLower(l.Address), needle) ||
			strings.Contains(strings.ToLower(string(l.Category)), needle) {
			out = append(out, l)
		}
	}
	return out
}
