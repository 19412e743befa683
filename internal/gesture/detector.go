package gesture

import (
	"sync"
	"time"
)

// doubleTapWindow is how close two taps must land to count as a double
// tap. Exactly this far apart is not a double tap.
const doubleTapWindow = 300 * time.Millisecond

// Kind distinguishes touch from mouse input
type Kind int

const (
	KindMouse Kind = iota
	KindTouch
)

// Event is a tap or click arriving from a gesture zone (one zone per
// media item or post).
type Event struct {
	Zone string
	Kind Kind
	At   time.Time
}

// Action is what the caller should do with the event
type Action struct {
	// QuickReact is true when the event completed a double tap/click
	QuickReact bool
	// PreventDefault is true for touch events, which must suppress the
	// synthetic click and zoom behavior.
	PreventDefault bool
}

// Detector recognizes double taps and double clicks, mapping them to a
// quick-react action. Last-event timestamps are kept per zone, never
// shared, so simultaneously rendered entities cannot trigger each
// other's double taps.
type Detector struct {
	mu       sync.Mutex
	lastTap  map[string]time.Time
	pinching map[string]bool
}

// NewDetector creates an empty detector
func NewDetector() *Detector {
	return &Detector{
		lastTap:  make(map[string]time.Time),
		pinching: make(map[string]bool),
	}
}

// TouchStart records the start of a touch in a zone. More than one
// simultaneous touch arms the pinch flag, which suppresses detection in
// that zone until the touch ends.
func (d *Detector) TouchStart(zone string, touches int) {
	if touches <= 1 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pinching[zone] = true
}

// Handle processes a tap or click and reports whether it completed a
// double tap. A successful double tap consumes the stored timestamp, so
// a third event starts a fresh pair rather than chaining.
func (d *Detector) Handle(ev Event) Action {
	action := Action{PreventDefault: ev.Kind == KindTouch}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pinching[ev.Zone] {
		// The touch ending here was part of a pinch, not a tap.
		if ev.Kind == KindTouch {
			delete(d.pinching, ev.Zone)
		}
		return action
	}

	prior, ok := d.lastTap[ev.Zone]
	if ok && ev.At.Sub(prior) < doubleTapWindow {
		delete(d.lastTap, ev.Zone)
		action.QuickReact = true
		return action
	}

	d.lastTap[ev.Zone] = ev.At
	return action
}
