package gesture

import "testing"

func TestSwipeCommitsDismiss(t *testing.T) {
	var c Controller
	c.Start(500)
	if c.Phase() != PhaseDragging {
		t.Fatalf("expected dragging")
	}
	out := c.End(440, true)
	if !out.Dismiss || out.Delta != 60 {
		t.Fatalf("expected dismiss with delta 60, got %+v", out)
	}
	if c.Phase() != PhaseIdle {
		t.Fatalf("session must be destroyed at touch end")
	}
	if _, ok := c.Session(); ok {
		t.Fatalf("no session after end")
	}
}

func TestDownwardSwipeCommitsDismiss(t *testing.T) {
	var c Controller
	c.Start(300)
	if out := c.End(380, true); !out.Dismiss || out.Delta != -80 {
		t.Fatalf("expected downward swipe to dismiss, got %+v", out)
	}
}

func TestShortSwipeIsNoop(t *testing.T) {
	var c Controller
	c.Start(500)
	if out := c.End(470, true); out.Dismiss {
		t.Fatalf("30px must not dismiss")
	}
	c.Start(500)
	if out := c.End(450, true); out.Dismiss {
		t.Fatalf("exactly 50px must not dismiss")
	}
	if c.Phase() != PhaseIdle {
		t.Fatalf("session must be destroyed")
	}
}

func TestPanelClosedNeverDismisses(t *testing.T) {
	var c Controller
	c.Start(500)
	if c.Move(300, false) {
		t.Fatalf("no scroll capture while panel closed")
	}
	if out := c.End(300, false); out.Dismiss {
		t.Fatalf("closed panel must not dismiss")
	}
}

func TestMoveSuppressesScroll(t *testing.T) {
	var c Controller
	c.Start(500)
	if c.Move(495, true) {
		t.Fatalf("5px should not capture")
	}
	if !c.Move(489, true) {
		t.Fatalf("11px should capture")
	}
	if !c.Move(520, true) {
		t.Fatalf("downward drag beyond threshold should capture")
	}
	s, ok := c.Session()
	if !ok || s.StartY == nil || *s.StartY != 500 || !s.Active {
		t.Fatalf("unexpected session: %+v", s)
	}
}

func TestWithoutStart(t *testing.T) {
	var c Controller
	if c.Move(100, true) {
		t.Fatalf("move without start is a no-op")
	}
	if out := c.End(0, true); out.Dismiss {
		t.Fatalf("end without start is a no-op")
	}
}

func TestSessionsDoNotCarryOver(t *testing.T) {
	var c Controller
	c.Start(500)
	c.End(440, true)
	if out := c.End(300, true); out.Dismiss {
		t.Fatalf("second end must not reuse the destroyed session")
	}
	c.Start(200)
	c.Cancel()
	if c.Phase() != PhaseIdle {
		t.Fatalf("cancel should drop the session")
	}
}
