package viewstate

import (
	"strconv"
	"strings"
)

// EmbedURL renders the descriptor as a Google Maps embed link.
func (d Descriptor) EmbedURL() string {
	var b strings.Builder
	b.WriteString("https://maps.google.com/maps?q=")
	b.WriteString(d.Center.String())
	b.WriteString("&t=")
	b.WriteString(string(d.Style))
	b.WriteString("&z=")
	b.WriteString(strconv.Itoa(d.Zoom))
	b.WriteString("&output=embed")
	for _, m := range d.Markers {
		b.WriteString("&markers=")
		b.WriteString("color:" + m.Color + "%7Clabel:" + m.Label + "%7C" + m.Position.String())
	}
	return b.String()
}
