// Package gesture interprets touch drags on the location detail panel.
package gesture

import "math"

const (
	// CaptureThreshold is the travel after which a drag is treated as a
	// dismissal attempt rather than a page scroll.
	CaptureThreshold = 10.0
	// DismissThreshold is the travel a drag must exceed to close the panel.
	DismissThreshold = 50.0
)

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseDragging Phase = "dragging"
)

// Session lives from touch start to touch end.
type Session struct {
	StartY *float64 `json:"start_y,omitempty"`
	Active bool     `json:"active"`
}

// Outcome of a finished drag.
type Outcome struct {
	Dismiss bool    `json:"dismiss"`
	Delta   float64 `json:"delta"`
}

// Controller is not safe for concurrent use; it belongs to one session
// goroutine.
type Controller struct {
	session *Session
}

func (c *Controller) Phase() Phase {
	if c.session != nil && c.session.Active {
		return PhaseDragging
	}
	return PhaseIdle
}

// Session returns a copy of the active drag, if any.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Start begins a drag, replacing any drag that never saw an end.
func (c *Controller) Start(y float64) {
	start := y
	c.session = &Session{StartY: &start, Active: true}
}

// Move reports whether default scrolling should be suppressed.
func (c *Controller) Move(y float64, panelOpen bool) bool {
	if c.session == nil || c.session.StartY == nil {
		return false
	}
	delta := *c.session.StartY - y
	return panelOpen && math.Abs(delta) > CaptureThreshold
}

// End finishes the drag. The session is discarded whatever the outcome.
func (c *Controller) End(y float64, panelOpen bool) Outcome {
	s := c.session
	c.session = nil
	if s == nil || s.StartY == nil {
		return Outcome{}
	}
	delta := *s.StartY - y
	if panelOpen && math.Abs(delta) > DismissThreshold {
		return Outcome{Dismiss: true, Delta: delta}
	}
	return Outcome{Delta: delta}
}

// Cancel drops the drag without an outcome.
func (c *Controller) Cancel() {
	c.session = nil
}
